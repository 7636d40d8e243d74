package domain

import (
	"encoding/json"
	"time"
)

// Rating is the reviewer's binary verdict on an article.
type Rating string

const (
	RatingGood Rating = "good"
	RatingBad  Rating = "bad"
)

// Valid reports whether r is one of the known ratings.
func (r Rating) Valid() bool {
	return r == RatingGood || r == RatingBad
}

// FeedbackRecord is one entry of the permanent feedback log.
type FeedbackRecord struct {
	ID      string    `json:"id,omitempty"`
	Title   string    `json:"title"`
	URL     string    `json:"url"`
	Source  string    `json:"source"`
	Rating  Rating    `json:"rating"`
	SentAt  time.Time `json:"sent_at"`
	RatedAt time.Time `json:"rated_at"`
}

// PendingReview is an article sent to the reviewer and awaiting a verdict.
type PendingReview struct {
	ID     string    `json:"id,omitempty"`
	Title  string    `json:"title"`
	URL    string    `json:"url"`
	Source string    `json:"source"`
	SentAt time.Time `json:"sent_at"`
}

// PendingQueue is the FIFO of articles awaiting review.
// Entries are appended in send order and consumed from the front in verdict order,
// so the k-th verdict always resolves the k-th oldest entry.
type PendingQueue struct {
	entries []PendingReview
}

// NewPendingQueue builds a queue holding entries in the given order.
func NewPendingQueue(entries ...PendingReview) PendingQueue {
	return PendingQueue{entries: append([]PendingReview(nil), entries...)}
}

// Len returns the number of entries awaiting a verdict.
func (q PendingQueue) Len() int {
	return len(q.entries)
}

// Entries returns a copy of the entries, oldest first.
func (q PendingQueue) Entries() []PendingReview {
	return append([]PendingReview(nil), q.entries...)
}

// Append adds an entry at the back.
func (q *PendingQueue) Append(entry PendingReview) {
	q.entries = append(q.entries, entry)
}

// Resolve pops one entry from the front per rating and turns it into a feedback record.
// Ratings beyond the queue length are discarded.
func (q *PendingQueue) Resolve(ratings []Rating, ratedAt time.Time) []FeedbackRecord {
	n := len(ratings)
	if n > len(q.entries) {
		n = len(q.entries)
	}

	records := make([]FeedbackRecord, 0, n)
	for i := 0; i < n; i++ {
		entry := q.entries[i]
		records = append(records, FeedbackRecord{
			ID:      entry.ID,
			Title:   entry.Title,
			URL:     entry.URL,
			Source:  entry.Source,
			Rating:  ratings[i],
			SentAt:  entry.SentAt,
			RatedAt: ratedAt,
		})
	}
	q.entries = append([]PendingReview(nil), q.entries[n:]...)
	return records
}

// MarshalJSON stores the queue as a plain array, oldest first.
func (q PendingQueue) MarshalJSON() ([]byte, error) {
	if q.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(q.entries)
}

// UnmarshalJSON restores the queue from an array.
func (q *PendingQueue) UnmarshalJSON(data []byte) error {
	var entries []PendingReview
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	q.entries = entries
	return nil
}
