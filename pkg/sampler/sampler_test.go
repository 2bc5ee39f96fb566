package sampler

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newscompare/newscompare/pkg/domain"
)

// scriptedRand replays pre-programmed values so tests can force a branch
type scriptedRand struct {
	floats []float64
	ints   []int
}

func (r *scriptedRand) Float64() float64 {
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptedRand) Intn(n int) int {
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

func (r *scriptedRand) Perm(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return p
}

func testTaxonomy() domain.Taxonomy {
	return domain.Taxonomy{
		{
			Name: "Packaging",
			Groups: []domain.Group{
				{Name: "Rigid Plastics", Terms: []string{"PET Bottles", "HDPE Crates"}},
				{Name: "Flexible Films", Terms: []string{"BOPP Film"}},
				{Name: "Glass", Terms: nil},
				{Name: "Metal Cans", Terms: []string{"Aluminium Cans"}},
			},
		},
		{
			Name:   "Logistics",
			Groups: nil,
		},
	}
}

func TestSampler_Sample(t *testing.T) {
	t.Run("empty taxonomy returns empty string", func(t *testing.T) {
		s := New(&scriptedRand{floats: []float64{0.1}, ints: []int{0}})
		assert.Empty(t, s.Sample(domain.Taxonomy{}))
		assert.Empty(t, s.Sample(nil))
	})

	t.Run("industry with sub-industries branch", func(t *testing.T) {
		s := New(&scriptedRand{floats: []float64{0.2}, ints: []int{0}})
		got := s.Sample(testTaxonomy())
		assert.Equal(t, "Packaging (Rigid Plastics, Flexible Films, Glass)", got)
	})

	t.Run("sub-industry sample capped at three without duplicates", func(t *testing.T) {
		s := New(rand.New(rand.NewSource(42)))
		tax := testTaxonomy()
		for i := 0; i < 50; i++ {
			got := s.Sample(tax)
			require.NotEmpty(t, got)
			if !strings.HasPrefix(got, "Packaging (") {
				continue
			}
			inner := strings.TrimSuffix(strings.TrimPrefix(got, "Packaging ("), ")")
			parts := strings.Split(inner, ", ")
			assert.LessOrEqual(t, len(parts), 3)
			seen := map[string]bool{}
			for _, p := range parts {
				assert.False(t, seen[p], "duplicate sub-industry %q in %q", p, got)
				seen[p] = true
			}
		}
	})

	t.Run("industry without groups renders bare name", func(t *testing.T) {
		s := New(&scriptedRand{floats: []float64{0.2}, ints: []int{1}})
		assert.Equal(t, "Logistics", s.Sample(testTaxonomy()))
	})

	t.Run("leaf branch renders term with full path", func(t *testing.T) {
		// 0.9 -> leaf branch, industry 0, group 0, term 1
		s := New(&scriptedRand{floats: []float64{0.9}, ints: []int{0, 0, 1}})
		got := s.Sample(testTaxonomy())
		assert.Equal(t, "HDPE Crates (Packaging - Rigid Plastics)", got)
	})

	t.Run("leaf branch without terms renders group and industry", func(t *testing.T) {
		// group 2 (Glass) has no terms
		s := New(&scriptedRand{floats: []float64{0.9}, ints: []int{0, 2}})
		assert.Equal(t, "Glass (Packaging)", s.Sample(testTaxonomy()))
	})

	t.Run("leaf branch without groups renders bare industry", func(t *testing.T) {
		s := New(&scriptedRand{floats: []float64{0.9}, ints: []int{1}})
		assert.Equal(t, "Logistics", s.Sample(testTaxonomy()))
	})

	t.Run("always non-empty for non-empty taxonomy", func(t *testing.T) {
		s := New(rand.New(rand.NewSource(7)))
		tax := testTaxonomy()
		for i := 0; i < 200; i++ {
			assert.NotEmpty(t, s.Sample(tax))
		}
	})

	t.Run("fresh sample each call", func(t *testing.T) {
		s := New(rand.New(rand.NewSource(1)))
		tax := testTaxonomy()
		seen := map[string]bool{}
		for i := 0; i < 100; i++ {
			seen[s.Sample(tax)] = true
		}
		assert.Greater(t, len(seen), 1, "expected varied samples")
	})
}

func TestSampler_Pick(t *testing.T) {
	s := New(&scriptedRand{ints: []int{1}})
	assert.Equal(t, "Europe", s.Pick([]string{"North America", "Europe"}))
	assert.Empty(t, s.Pick(nil))
}

func TestNew_DefaultSource(t *testing.T) {
	s := New(nil)
	require.NotNil(t, s)
	assert.NotEmpty(t, s.Sample(testTaxonomy()))
}
