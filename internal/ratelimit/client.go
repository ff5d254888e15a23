// Package ratelimit serializes calls against quota-limited third-party
// APIs, enforcing a minimum inter-request delay regardless of caller
// concurrency.
package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// request is one queued unit of work awaiting its turn.
type request struct {
	ctx   context.Context
	fn    func(ctx context.Context) error
	reply chan error
}

// Client runs submitted calls strictly serialized and minimum-spaced, in
// FIFO order of submission. One loop goroutine owns the last-request
// timestamp; it is never touched concurrently.
type Client struct {
	interval time.Duration
	httpc    *http.Client
	requests chan request
	done     chan struct{}
}

// New returns a rate-limited client enforcing the given minimum spacing.
// Start must be called before use.
func New(interval time.Duration) *Client {
	return &Client{
		interval: interval,
		httpc:    &http.Client{Timeout: 30 * time.Second},
		requests: make(chan request, 64),
		done:     make(chan struct{}),
	}
}

// Start launches the consumer loop.
func (c *Client) Start(ctx context.Context) {
	go c.loop(ctx)
}

// Stop shuts the consumer loop down. Queued calls still waiting receive the
// loop's shutdown error.
func (c *Client) Stop() {
	close(c.done)
}

// Do submits fn and blocks until it has run (or the context ends while
// queued). Calls run in submission order, each at least the configured
// interval after the previous one started.
func (c *Client) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	req := request{ctx: ctx, fn: fn, reply: make(chan error, 1)}

	select {
	case c.requests <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return fmt.Errorf("rate-limited client is stopped")
	}

	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Get performs a rate-limited HTTP GET.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	var resp *http.Response
	err := c.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err = c.httpc.Do(req)
		return err
	})
	return resp, err
}

// loop dequeues one request at a time, sleeps out the remaining spacing
// against the previous request's start time, then runs the call.
func (c *Client) loop(ctx context.Context) {
	var last time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case req := <-c.requests:
			if wait := c.interval - time.Since(last); wait > 0 && !last.IsZero() {
				select {
				case <-time.After(wait):
				case <-ctx.Done():
					req.reply <- ctx.Err()
					return
				}
			}
			last = time.Now()

			if err := req.ctx.Err(); err != nil {
				req.reply <- err
				continue
			}
			req.reply <- req.fn(req.ctx)
		}
	}
}
