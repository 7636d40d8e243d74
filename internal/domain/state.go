package domain

import (
	"encoding/json"
	"time"
)

// DateLayout formats calendar days for the daily source ledger.
const DateLayout = "2006-01-02"

// SeenSet holds normalized links that were already posted or sent for review.
// It only grows; insertion order is kept so the persisted form stays stable.
type SeenSet struct {
	order []string
	index map[string]struct{}
}

// NewSeenSet builds a set from already-normalized links.
func NewSeenSet(links ...string) *SeenSet {
	s := &SeenSet{index: make(map[string]struct{}, len(links))}
	for _, link := range links {
		s.Add(link)
	}
	return s
}

// Add inserts a normalized link and reports whether it was new.
func (s *SeenSet) Add(link string) bool {
	if s.index == nil {
		s.index = map[string]struct{}{}
	}
	if _, ok := s.index[link]; ok {
		return false
	}
	s.index[link] = struct{}{}
	s.order = append(s.order, link)
	return true
}

// Contains reports whether the normalized link was seen.
func (s *SeenSet) Contains(link string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[link]
	return ok
}

// Len returns the number of links.
func (s *SeenSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Links returns the links in insertion order.
func (s *SeenSet) Links() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.order...)
}

// MarshalJSON stores the set as an array.
func (s *SeenSet) MarshalJSON() ([]byte, error) {
	if s == nil || s.order == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.order)
}

// UnmarshalJSON restores the set from an array.
func (s *SeenSet) UnmarshalJSON(data []byte) error {
	var links []string
	if err := json.Unmarshal(data, &links); err != nil {
		return err
	}
	*s = *NewSeenSet(links...)
	return nil
}

// DailySources records which sources were already posted on a given day.
type DailySources struct {
	Date    string   `json:"date"`
	Sources []string `json:"sources"`
}

// Day formats t as the ledger date in t's location.
func Day(t time.Time) string {
	return t.Format(DateLayout)
}

// For returns the ledger for day, empty when the stored date is another day.
func (d DailySources) For(day string) DailySources {
	if d.Date != day {
		return DailySources{Date: day, Sources: []string{}}
	}
	return DailySources{Date: d.Date, Sources: append([]string{}, d.Sources...)}
}

// Has reports whether source was already posted on the ledger's day.
func (d DailySources) Has(source string) bool {
	for _, s := range d.Sources {
		if s == source {
			return true
		}
	}
	return false
}

// Add records source for day, resetting the ledger when the day changed.
func (d DailySources) Add(day, source string) DailySources {
	next := d.For(day)
	if !next.Has(source) {
		next.Sources = append(next.Sources, source)
	}
	return next
}
