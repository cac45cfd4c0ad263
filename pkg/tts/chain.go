package tts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Member is one named provider in a Chain.
type Member struct {
	Name     string
	Provider Provider
}

// Chain falls back through its members in order. A member that fails is
// skipped for the cooldown period unless every member is cooling down.
type Chain struct {
	members  []Member
	cooldown time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	benchEnd map[string]time.Time
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithCooldown sets how long a failed member is skipped. Zero disables it.
func WithCooldown(d time.Duration) ChainOption { return func(c *Chain) { c.cooldown = d } }

// WithChainLogger sets the structured logger.
func WithChainLogger(l *slog.Logger) ChainOption { return func(c *Chain) { c.logger = l } }

// DefaultCooldown keeps a failing primary from adding its timeout to
// every line of a show.
const DefaultCooldown = 30 * time.Second

// NewChain builds a chain. At least one member is required.
func NewChain(members []Member, opts ...ChainOption) (*Chain, error) {
	if len(members) == 0 {
		return nil, ErrProviderUnavailable
	}
	c := &Chain{
		members:  members,
		cooldown: DefaultCooldown,
		logger:   slog.Default(),
		now:      time.Now,
		benchEnd: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "tts.chain")
	return c, nil
}

func (c *Chain) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	cerr := &ChainError{}
	for i, m := range c.order() {
		res, err := m.Provider.Synthesize(ctx, text)
		if err == nil {
			c.reinstate(m.Name)
			if i > 0 {
				c.logger.Info("fallback provider answered", "provider", m.Name, "chars", len(text))
			}
			return res, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.bench(m.Name)
		cerr.add(m.Name, err)
		c.logger.Warn("provider failed", "provider", m.Name, "error", err)
	}
	return nil, cerr
}

// order returns the available members first, then those cooling down.
func (c *Chain) order() []Member {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	ready := make([]Member, 0, len(c.members))
	var benched []Member
	for _, m := range c.members {
		if now.Before(c.benchEnd[m.Name]) {
			benched = append(benched, m)
			continue
		}
		ready = append(ready, m)
	}
	return append(ready, benched...)
}

func (c *Chain) bench(name string) {
	if c.cooldown <= 0 {
		return
	}
	c.mu.Lock()
	c.benchEnd[name] = c.now().Add(c.cooldown)
	c.mu.Unlock()
}

func (c *Chain) reinstate(name string) {
	c.mu.Lock()
	delete(c.benchEnd, name)
	c.mu.Unlock()
}

// Health succeeds when any member is healthy.
func (c *Chain) Health(ctx context.Context) error {
	cerr := &ChainError{}
	for _, m := range c.members {
		if err := m.Provider.Health(ctx); err != nil {
			cerr.add(m.Name, err)
			continue
		}
		return nil
	}
	return cerr
}

func (c *Chain) Close() error {
	var errs []error
	for _, m := range c.members {
		errs = append(errs, m.Provider.Close())
	}
	return errors.Join(errs...)
}

// Names returns the member names in configured order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.members))
	for i, m := range c.members {
		names[i] = m.Name
	}
	return names
}

// ChainError lists each member's failure. errors.Is and errors.As see
// all of them.
type ChainError struct {
	Names  []string
	Errors []error
}

func (e *ChainError) add(name string, err error) {
	e.Names = append(e.Names, name)
	e.Errors = append(e.Errors, err)
}

func (e *ChainError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		parts[i] = fmt.Sprintf("%s: %v", e.Names[i], err)
	}
	return "tts chain: all providers failed (" + strings.Join(parts, "; ") + ")"
}

func (e *ChainError) Unwrap() []error { return e.Errors }

var _ Provider = (*Chain)(nil)
