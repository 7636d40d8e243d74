package scanner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"BrainCandy/internal/domain"
)

// ErrUnknownScanner is returned when a site names an unregistered strategy.
var ErrUnknownScanner = errors.New("scanner is not registered")

// Request carries all parameters required to scan one feed.
type Request struct {
	SiteName string
	URL      string
	Category string
	Limit    int
	Options  map[string]string
}

// Scanner captures a single strategy implementation (RSS, Atom, ...).
type Scanner interface {
	Name() string
	Scan(ctx context.Context, req Request) ([]domain.Candidate, error)
}

// Registry keeps a mapping from scanner names to their implementations.
type Registry struct {
	scanners map[string]Scanner
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{scanners: map[string]Scanner{}}
}

// Register adds or replaces a scanner implementation under its name and any aliases.
func (r *Registry) Register(scanner Scanner, aliases ...string) {
	if r.scanners == nil {
		r.scanners = map[string]Scanner{}
	}
	r.scanners[scanner.Name()] = scanner
	for _, alias := range aliases {
		r.scanners[alias] = scanner
	}
}

// Resolve returns a scanner by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Scanner, error) {
	if scanner, ok := r.scanners[name]; ok {
		return scanner, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownScanner, name)
}

// Names lists registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.scanners))
	for name := range r.scanners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Redirects rewrites known moved hosts inside links, e.g. "vitalik.ca/" to "vitalik.eth.limo/".
type Redirects map[string]string

// Apply returns link with every known fragment replaced, in a stable order.
func (r Redirects) Apply(link string) string {
	if len(r) == 0 {
		return link
	}
	from := make([]string, 0, len(r))
	for k := range r {
		from = append(from, k)
	}
	sort.Strings(from)
	for _, k := range from {
		if k != "" && strings.Contains(link, k) {
			link = strings.ReplaceAll(link, k, r[k])
		}
	}
	return link
}
