package domain

// Candidate is an article fetched from a source adapter and not yet judged or posted.
type Candidate struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Source    string `json:"source"`
	Points    int    `json:"hn_points,omitempty"`
	Preferred bool   `json:"hn_preferred,omitempty"`
	Canonical bool   `json:"canonical,omitempty"`
}

// QueueEntry is an admitted candidate waiting in the publish queue.
type QueueEntry struct {
	Candidate
	Score float64 `json:"score"`
}

// CanonicalReading is a curated evergreen essay used when sources run dry.
type CanonicalReading struct {
	Title    string `yaml:"title" json:"title"`
	URL      string `yaml:"url" json:"url"`
	Author   string `yaml:"author" json:"author"`
	Category string `yaml:"category" json:"category"`
}

// DefaultCanonicalSource labels canonical readings without an author.
const DefaultCanonicalSource = "Canonical"

// Candidate converts the reading into a candidate attributed to its author.
func (r CanonicalReading) Candidate() Candidate {
	source := r.Author
	if source == "" {
		source = DefaultCanonicalSource
	}
	return Candidate{Title: r.Title, Link: r.URL, Source: source, Canonical: true}
}
