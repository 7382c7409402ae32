package chx

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/multierr"
)

// InserterStats reports the outcome of a Commit call: how many rows
// and bytes had accumulated since the last commit, and whether this
// call actually rotated the underlying session (spec §8 invariant 6).
type InserterStats struct {
	Rows         int
	Bytes        int
	Transactions int
}

// InserterOption configures an Inserter at construction time.
type InserterOption func(*inserterConfig)

type inserterConfig struct {
	jitterBias float64
	clock      Clock
	rand       *rand.Rand
	insertOpts []InsertOption
}

// WithJitterBias sets the fractional jitter applied to the commit
// period, decorrelating peers that share the same period (spec §4.7,
// §8 invariant 7). bias is clamped to [0, 0.5], matching the documented
// range; the default is 0.1.
func WithJitterBias(bias float64) InserterOption {
	return func(cfg *inserterConfig) {
		if bias < 0 {
			bias = 0
		}
		if bias > 0.5 {
			bias = 0.5
		}
		cfg.jitterBias = bias
	}
}

// WithClock injects a Clock, letting tests advance virtual time
// deterministically (spec §9).
func WithClock(clock Clock) InserterOption {
	return func(cfg *inserterConfig) { cfg.clock = clock }
}

// WithRandSource injects the random source jitter is drawn from, for
// deterministic tests.
func WithRandSource(r *rand.Rand) InserterOption {
	return func(cfg *inserterConfig) { cfg.rand = r }
}

// WithInsertOptions forwards options (settings, compression) to every
// underlying Insert session the Inserter opens.
func WithInsertOptions(opts ...InsertOption) InserterOption {
	return func(cfg *inserterConfig) { cfg.insertOpts = append(cfg.insertOpts, opts...) }
}

// Inserter wraps a rotating sequence of Insert sessions with
// periodic-commit logic: a commit rotates the session whenever row,
// byte, or wall-clock thresholds trip, with a jittered period so
// multiple Inserter instances writing to the same table don't all
// commit in lockstep (spec §4.7).
type Inserter[R any] struct {
	client     *Client
	table      string
	maxRows    int
	maxBytes   int
	period     time.Duration
	jitterBias float64
	clock      Clock
	rand       *rand.Rand
	insertOpts []InsertOption

	session         *Insert[R]
	rowsSinceCommit int
	deadline        time.Time
}

// NewInserter builds an Inserter against table, committing whenever
// uncommitted rows reach maxRows, uncommitted bytes reach maxBytes, or
// period elapses since the last commit (spec §3, §4.7).
func NewInserter[R any](c *Client, table string, maxRows, maxBytes int, period time.Duration, opts ...InserterOption) *Inserter[R] {
	cfg := &inserterConfig{clock: systemClock{}, rand: rand.New(rand.NewSource(time.Now().UnixNano())), jitterBias: 0.1}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Inserter[R]{
		client:     c,
		table:      table,
		maxRows:    maxRows,
		maxBytes:   maxBytes,
		period:     period,
		jitterBias: cfg.jitterBias,
		clock:      cfg.clock,
		rand:       cfg.rand,
		insertOpts: cfg.insertOpts,
	}
}

// Write encodes row into the currently open session, lazily opening
// one (and starting a fresh commit period) if none is open — spec
// §9's "lazy session open: only on first write after commit".
func (ins *Inserter[R]) Write(ctx context.Context, row *R) error {
	if ins.session == nil {
		session, err := OpenInsert[R](ctx, ins.client, ins.table, ins.insertOpts...)
		if err != nil {
			return err
		}
		ins.session = session
		ins.deadline = ins.nextDeadline()
	}
	if err := ins.session.Write(row); err != nil {
		return err
	}
	ins.rowsSinceCommit++
	return nil
}

// Commit rotates the current session if any threshold has tripped
// (spec §8 invariant 6); otherwise it's a no-op reporting the current
// uncommitted counts with Transactions=0.
func (ins *Inserter[R]) Commit(ctx context.Context) (InserterStats, error) {
	if ins.session == nil {
		return InserterStats{}, nil
	}

	rows := ins.rowsSinceCommit
	bytesWritten := ins.session.BytesWritten()
	now := ins.clock.Now()

	// A zero threshold means "unlimited unless set" (spec §4.7), not
	// "trip immediately" — maxRows==0/maxBytes==0/period==0 each opt
	// their dimension out of the commit decision entirely.
	tripped := (ins.maxRows > 0 && rows >= ins.maxRows) ||
		(ins.maxBytes > 0 && bytesWritten >= ins.maxBytes) ||
		(ins.period > 0 && !now.Before(ins.deadline))
	if !tripped {
		return InserterStats{Rows: rows, Bytes: bytesWritten}, nil
	}

	endErr := ins.session.End()
	ins.session = nil
	ins.rowsSinceCommit = 0
	ins.deadline = time.Time{}

	// A commit that both failed to finalize and raced a canceled
	// context carries both causes; multierr keeps neither from
	// silently winning over the other.
	if err := multierr.Append(endErr, ctx.Err()); err != nil {
		return InserterStats{Rows: rows, Bytes: bytesWritten}, err
	}
	return InserterStats{Rows: rows, Bytes: bytesWritten, Transactions: 1}, nil
}

// Close flushes and commits any open session unconditionally, for use
// at shutdown.
func (ins *Inserter[R]) Close(ctx context.Context) error {
	if ins.session == nil {
		return nil
	}
	err := ins.session.End()
	ins.session = nil
	ins.rowsSinceCommit = 0
	return err
}

// TimeLeft returns how long remains before period-based commit would
// trip, or 0 if no session is open or the deadline has passed.
func (ins *Inserter[R]) TimeLeft() time.Duration {
	if ins.session == nil {
		return 0
	}
	left := ins.deadline.Sub(ins.clock.Now())
	if left < 0 {
		return 0
	}
	return left
}

// nextDeadline draws a jittered deadline: period scaled by a factor
// uniformly distributed in [1-bias, 1+bias) (spec §8 invariant 7).
func (ins *Inserter[R]) nextDeadline() time.Time {
	u := ins.rand.Float64()
	factor := 1 + ins.jitterBias*(2*u-1)
	return ins.clock.Now().Add(time.Duration(float64(ins.period) * factor))
}
