package telegram

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"BrainCandy/internal/domain"
	"BrainCandy/internal/ports"
)

type update struct {
	UpdateID int64    `json:"update_id"`
	Message  *message `json:"message"`
}

type message struct {
	Text string `json:"text"`
	Chat struct {
		ID int64 `json:"id"`
	} `json:"chat"`
}

type getUpdatesRequest struct {
	Offset         int64    `json:"offset,omitempty"`
	Timeout        int      `json:"timeout"`
	AllowedUpdates []string `json:"allowed_updates,omitempty"`
}

// VerdictSource reads reviewer replies through getUpdates.
type VerdictSource struct {
	client      *Client
	pollTimeout int

	mu     sync.Mutex
	lastID int64
	polled bool
}

var _ ports.VerdictSource = (*VerdictSource)(nil)

// NewVerdictSource builds a long-polling verdict source.
func NewVerdictSource(client *Client, pollTimeout int) *VerdictSource {
	return &VerdictSource{client: client, pollTimeout: pollTimeout}
}

// Poll returns every pending text message with its ratings parsed.
// Messages without any rating symbol are still returned so Ack covers them.
// Updates returned by an earlier Poll are skipped even when Ack failed.
func (v *VerdictSource) Poll(ctx context.Context) ([]ports.Verdict, error) {
	var offset int64
	v.mu.Lock()
	if v.polled {
		offset = v.lastID + 1
	}
	v.mu.Unlock()

	var updates []update
	err := v.client.call(ctx, "getUpdates", getUpdatesRequest{
		Offset:         offset,
		Timeout:        v.pollTimeout,
		AllowedUpdates: []string{"message"},
	}, &updates)
	if err != nil {
		return nil, err
	}

	verdicts := make([]ports.Verdict, 0, len(updates))
	for _, u := range updates {
		v.remember(u.UpdateID)
		if u.Message == nil {
			continue
		}
		verdicts = append(verdicts, ports.Verdict{
			SenderID: strconv.FormatInt(u.Message.Chat.ID, 10),
			Ratings:  ParseRatings(u.Message.Text),
		})
	}
	return verdicts, nil
}

// Ack confirms every update returned by Poll by requesting the next offset.
func (v *VerdictSource) Ack(ctx context.Context) error {
	v.mu.Lock()
	if !v.polled {
		v.mu.Unlock()
		return nil
	}
	offset := v.lastID + 1
	v.mu.Unlock()

	if err := v.client.call(ctx, "getUpdates", getUpdatesRequest{Offset: offset, Timeout: 0}, nil); err != nil {
		return err
	}

	v.mu.Lock()
	v.polled = false
	v.mu.Unlock()
	return nil
}

func (v *VerdictSource) remember(id int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.polled || id > v.lastID {
		v.lastID = id
	}
	v.polled = true
}

// ParseRatings reads a reply such as "1", "0", "1,0,1", "10110" or "y n y".
// Anything other than 1/0/y/n is ignored.
func ParseRatings(text string) []domain.Rating {
	var ratings []domain.Rating
	for _, r := range strings.ToLower(text) {
		switch r {
		case '1', 'y':
			ratings = append(ratings, domain.RatingGood)
		case '0', 'n':
			ratings = append(ratings, domain.RatingBad)
		}
	}
	return ratings
}
