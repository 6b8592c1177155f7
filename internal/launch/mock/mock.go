// Package mock provides in-memory implementations of [launch.Clipboard] and
// [launch.Opener] for use in unit tests.
//
// Both mocks are safe for concurrent use. They record every call and return
// the error stored in their exported fields.
//
// Typical usage:
//
//	cb := &mock.Clipboard{}
//	op := &mock.Opener{}
//	l := launch.New(cb, op, launch.WithTargetURL("https://example.com"))
//	err := l.Launch(ctx, rec)
//	// cb.Copied() holds the prompt, op.Opened() the URL.
package mock

import (
	"context"
	"sync"
)

// ─── Clipboard ───────────────────────────────────────────────────────────────

// Clipboard is a mock implementation of [launch.Clipboard].
type Clipboard struct {
	mu sync.Mutex

	// Err is returned by [Clipboard.Copy]. When set, nothing is recorded.
	Err error

	copied []string
	calls  int
}

// Copy implements [launch.Clipboard].
func (c *Clipboard) Copy(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.Err != nil {
		return c.Err
	}
	c.copied = append(c.copied, text)
	return nil
}

// Copied returns every successfully copied text, oldest first.
func (c *Clipboard) Copied() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.copied))
	copy(out, c.copied)
	return out
}

// Calls returns how many times Copy was called.
func (c *Clipboard) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// ─── Opener ──────────────────────────────────────────────────────────────────

// Opener is a mock implementation of [launch.Opener].
type Opener struct {
	mu sync.Mutex

	// Err is returned by [Opener.Open].
	Err error

	opened []string
}

// Open implements [launch.Opener]. The URL is recorded even when Err is set.
func (o *Opener) Open(_ context.Context, url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opened = append(o.opened, url)
	return o.Err
}

// Opened returns every URL passed to Open, oldest first.
func (o *Opener) Opened() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.opened))
	copy(out, o.opened)
	return out
}
