package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BrainCandy/internal/config"
)

func newFeedServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var b strings.Builder
		b.WriteString(`<?xml version="1.0"?><rss version="2.0"><channel><title>Essays</title>`)
		for i := 1; i <= 3; i++ {
			fmt.Fprintf(&b, `<item><title>Essay %d</title><link>https://essays.example/%d?utm_source=rss</link></item>`, i, i)
		}
		b.WriteString(`</channel></rss>`)
		_, _ = w.Write([]byte(b.String()))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestApp(t *testing.T) *Application {
	t.Helper()

	cfg := config.Default()
	cfg.Storage.Path = t.TempDir()
	cfg.HackerNews.Enabled = false
	cfg.Canonical = nil
	cfg.Curation.SourceDelay = 0
	cfg.Curation.PostDelay = 0
	cfg.Sites = []config.SiteConfig{{Name: "Essays", Scanner: "rss", URL: newFeedServer(t).URL}}

	application, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })
	return application
}

func TestRefillModeQueuesFeedEntries(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	require.NoError(t, a.Run(context.Background(), ModeRefill, 0))

	queue, err := a.repo.LoadQueue(context.Background())
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, "Essays", queue[0].Source)
}

func TestDrainWithoutTelegramKeepsQueue(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	require.NoError(t, a.Run(context.Background(), ModeDrain, 1))

	queue, err := a.repo.LoadQueue(context.Background())
	require.NoError(t, err)
	assert.Len(t, queue, 2)

	seen, err := a.repo.LoadSeen(context.Background())
	require.NoError(t, err)
	assert.Zero(t, seen.Len())
}

func TestUnknownMode(t *testing.T) {
	t.Parallel()

	err := newTestApp(t).Run(context.Background(), "weekly", 0)
	require.ErrorIs(t, err, ErrUnknownMode)
}
