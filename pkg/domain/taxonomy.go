package domain

// Taxonomy is the nested category structure (industry -> sub-industry ->
// leaf terms) used to pre-fill query forms. A slice keeps the order given
// in the configuration file.
type Taxonomy []Industry

// Industry is a top-level taxonomy entry
type Industry struct {
	Name   string  `yaml:"name" json:"name"`
	Groups []Group `yaml:"groups" json:"groups,omitempty"`
}

// Group is a sub-industry with optional leaf terms
type Group struct {
	Name  string   `yaml:"name" json:"name"`
	Terms []string `yaml:"terms" json:"terms,omitempty"`
}
