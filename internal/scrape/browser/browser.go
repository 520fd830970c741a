// Package browser is the boundary to the page-rendering collaborator. Site
// adapters talk to it through Session so tests can substitute canned pages.
package browser

import (
	"context"
	"time"
)

// Session is one live page inside an isolated browser context.
type Session interface {
	// Navigate loads the URL and waits for the DOM to settle.
	Navigate(ctx context.Context, url string) error

	// ExtractText returns the first matching element's text, reporting
	// whether the selector matched at all.
	ExtractText(selector string) (string, bool)

	// ExtractAttribute returns an attribute of the first matching element.
	ExtractAttribute(selector, attr string) (string, bool)

	// Content returns the full rendered HTML of the current page.
	Content() (string, error)

	Title() string

	// Count reports how many elements match the selector.
	Count(selector string) int
}

// Pool hands out browser sessions with bounded concurrency. The session and
// its context are released on every exit path, including panics and
// cancellation.
type Pool interface {
	WithSession(ctx context.Context, fn func(Session) error) error
	Close() error
}

// Pause sleeps for d unless the context ends first.
func Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
