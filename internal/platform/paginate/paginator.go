// Package paginate walks cursor-paged upstream collections with bounded
// retries, bounded probing across empty pages and identity dedup.
package paginate

import (
	"context"
	"fmt"
	"time"
)

type State string

const (
	StateFetching State = "fetching"
	StateBackoff  State = "backoff"
	StateProbing  State = "probing"
	StateDone     State = "done"
	StateFailed   State = "failed"
)

type StopReason string

const (
	// StopCaughtUp means a page held no unseen items.
	StopCaughtUp         StopReason = "caught_up"
	StopEmptyBudget      StopReason = "empty_budget_exhausted"
	StopRetriesExhausted StopReason = "retries_exhausted"
	StopCanceled         StopReason = "canceled"
)

type Limits struct {
	MaxRetries        int
	MaxEmptyResponses int
	// RetryBackoff is multiplied by the retry count.
	RetryBackoff time.Duration
	ProbeDelay   time.Duration
	PageDelay    time.Duration
}

func DefaultLimits() Limits {
	return Limits{
		MaxRetries:        3,
		MaxEmptyResponses: 5,
		RetryBackoff:      2 * time.Second,
		ProbeDelay:        time.Second,
		PageDelay:         time.Second,
	}
}

func normalizeLimits(l Limits) Limits {
	defaults := DefaultLimits()
	if l.MaxRetries < 1 {
		l.MaxRetries = defaults.MaxRetries
	}
	if l.MaxEmptyResponses < 1 {
		l.MaxEmptyResponses = defaults.MaxEmptyResponses
	}
	if l.RetryBackoff < 0 {
		l.RetryBackoff = 0
	}
	if l.ProbeDelay < 0 {
		l.ProbeDelay = 0
	}
	if l.PageDelay < 0 {
		l.PageDelay = 0
	}
	return l
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type Transition[C any] struct {
	From           State
	To             State
	Cursor         C
	Retries        int
	EmptyResponses int
	Err            error
}

type Config[C any, T any, K comparable] struct {
	// Fetch returns one page. An empty page is not an error.
	Fetch func(ctx context.Context, cursor C) ([]T, error)
	// Identity keys dedup across pages.
	Identity func(item T) K
	// Next derives the following cursor from the last raw item of a page.
	Next func(last T) C
	// Probe advances the cursor past an empty page.
	Probe        func(cursor C) C
	Limits       Limits
	Sleep        Sleeper
	OnTransition func(Transition[C])
}

type Result[T any] struct {
	Items          []T
	Fetches        int
	Pages          int
	Retries        int
	EmptyResponses int
	Stop           StopReason
	LastErr        error
}

type Paginator[C any, T any, K comparable] struct {
	cfg Config[C, T, K]
}

func New[C any, T any, K comparable](cfg Config[C, T, K]) (*Paginator[C, T, K], error) {
	if cfg.Fetch == nil {
		return nil, fmt.Errorf("paginate: fetch func is required")
	}
	if cfg.Identity == nil {
		return nil, fmt.Errorf("paginate: identity func is required")
	}
	if cfg.Next == nil {
		return nil, fmt.Errorf("paginate: next cursor func is required")
	}
	if cfg.Probe == nil {
		return nil, fmt.Errorf("paginate: probe func is required")
	}
	if cfg.Sleep == nil {
		cfg.Sleep = SleepContext
	}
	cfg.Limits = normalizeLimits(cfg.Limits)

	return &Paginator[C, T, K]{cfg: cfg}, nil
}

type run[C any, T any, K comparable] struct {
	state   State
	cursor  C
	seen    map[K]struct{}
	retries int
	empty   int
	result  Result[T]
}

// Run pages from start until caught up, the empty-page budget is spent or the
// retry budget is spent. Whatever was collected is returned in all three
// cases; only context cancellation yields an error.
func (p *Paginator[C, T, K]) Run(ctx context.Context, start C) (Result[T], error) {
	r := &run[C, T, K]{
		state:  StateFetching,
		cursor: start,
		seen:   make(map[K]struct{}),
	}

	for {
		switch r.state {
		case StateFetching:
			if err := ctx.Err(); err != nil {
				return p.cancel(r, err)
			}
			if err := p.fetch(ctx, r); err != nil {
				return p.cancel(r, err)
			}
		case StateBackoff:
			if err := p.cfg.Sleep(ctx, p.cfg.Limits.RetryBackoff*time.Duration(r.retries)); err != nil {
				return p.cancel(r, err)
			}
			p.moveTo(r, StateFetching, nil)
		case StateProbing:
			r.cursor = p.cfg.Probe(r.cursor)
			if err := p.cfg.Sleep(ctx, p.cfg.Limits.ProbeDelay); err != nil {
				return p.cancel(r, err)
			}
			p.moveTo(r, StateFetching, nil)
		case StateDone, StateFailed:
			r.result.Retries = r.retries
			return r.result, nil
		}
	}
}

// fetch performs one request and picks the next state. It only returns an
// error when ctx is done.
func (p *Paginator[C, T, K]) fetch(ctx context.Context, r *run[C, T, K]) error {
	r.result.Fetches++
	page, err := p.cfg.Fetch(ctx, r.cursor)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			r.result.LastErr = err
			return ctxErr
		}
		r.retries++
		r.result.LastErr = err
		if r.retries >= p.cfg.Limits.MaxRetries {
			r.result.Stop = StopRetriesExhausted
			p.moveTo(r, StateFailed, err)
			return nil
		}
		p.moveTo(r, StateBackoff, err)
		return nil
	}
	r.result.Pages++

	if len(page) == 0 {
		r.empty++
		r.result.EmptyResponses++
		if r.empty >= p.cfg.Limits.MaxEmptyResponses {
			r.result.Stop = StopEmptyBudget
			p.moveTo(r, StateDone, nil)
			return nil
		}
		p.moveTo(r, StateProbing, nil)
		return nil
	}
	r.empty = 0

	fresh := 0
	for _, item := range page {
		key := p.cfg.Identity(item)
		if _, ok := r.seen[key]; ok {
			continue
		}
		r.seen[key] = struct{}{}
		r.result.Items = append(r.result.Items, item)
		fresh++
	}
	if fresh == 0 {
		r.result.Stop = StopCaughtUp
		p.moveTo(r, StateDone, nil)
		return nil
	}

	r.cursor = p.cfg.Next(page[len(page)-1])
	if err := p.cfg.Sleep(ctx, p.cfg.Limits.PageDelay); err != nil {
		return err
	}
	p.moveTo(r, StateFetching, nil)
	return nil
}

func (p *Paginator[C, T, K]) moveTo(r *run[C, T, K], to State, err error) {
	from := r.state
	r.state = to
	if p.cfg.OnTransition == nil {
		return
	}
	p.cfg.OnTransition(Transition[C]{
		From:           from,
		To:             to,
		Cursor:         r.cursor,
		Retries:        r.retries,
		EmptyResponses: r.empty,
		Err:            err,
	})
}

func (p *Paginator[C, T, K]) cancel(r *run[C, T, K], err error) (Result[T], error) {
	r.result.Stop = StopCanceled
	r.result.Retries = r.retries
	p.moveTo(r, StateFailed, err)
	return r.result, err
}
