// Package sampler picks random category strings from the configured
// taxonomy to pre-fill the query form.
package sampler

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/newscompare/newscompare/pkg/domain"
)

// Rand is the random source used by the sampler. *rand.Rand satisfies it;
// tests supply scripted implementations to pin branch outcomes.
type Rand interface {
	Float64() float64
	Intn(n int) int
	Perm(n int) []int
}

// Sampler produces random category suggestions from a taxonomy
type Sampler struct {
	rnd Rand
}

// New creates a sampler with the given random source, seeding a default
// one if nil
func New(rnd Rand) *Sampler {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // not used for crypto
	}
	return &Sampler{rnd: rnd}
}

// Sample returns a fresh random category string. It flips a coin between
// two shapes: "<industry> (<up to 3 sub-industries>)" and
// "<leaf> (<industry> - <sub-industry>)". Returns "" for an empty taxonomy.
func (s *Sampler) Sample(tax domain.Taxonomy) string {
	if len(tax) == 0 {
		return ""
	}

	if s.rnd.Float64() < 0.5 {
		// industry with a sample of its sub-industries
		ind := tax[s.rnd.Intn(len(tax))]
		if len(ind.Groups) == 0 {
			return ind.Name
		}
		n := len(ind.Groups)
		if n > 3 {
			n = 3
		}
		names := make([]string, 0, n)
		for _, idx := range s.rnd.Perm(len(ind.Groups))[:n] {
			names = append(names, ind.Groups[idx].Name)
		}
		return fmt.Sprintf("%s (%s)", ind.Name, strings.Join(names, ", "))
	}

	// single leaf term qualified by its place in the tree
	ind := tax[s.rnd.Intn(len(tax))]
	if len(ind.Groups) == 0 {
		return ind.Name
	}
	grp := ind.Groups[s.rnd.Intn(len(ind.Groups))]
	if len(grp.Terms) == 0 {
		return fmt.Sprintf("%s (%s)", grp.Name, ind.Name)
	}
	term := grp.Terms[s.rnd.Intn(len(grp.Terms))]
	return fmt.Sprintf("%s (%s - %s)", term, ind.Name, grp.Name)
}

// Pick returns a uniformly random element of vals, or "" if empty.
// Backs the location and industry-prefix parts of the Randomize action.
func (s *Sampler) Pick(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return vals[s.rnd.Intn(len(vals))]
}
