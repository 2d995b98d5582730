package solver

import (
	"context"
	"errors"
	rand "math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/lox/bombpot/internal/game"
	"github.com/lox/bombpot/internal/randutil"
)

// ErrRunning is returned when an operation needs the worker to be stopped.
var ErrRunning = errors.New("solver worker is running")

// RunState is the lifecycle state of the background worker.
type RunState uint8

const (
	Stopped RunState = iota
	Running
	Paused
)

func (r RunState) String() string {
	switch r {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// Stats summarises the tree and the most recent iteration.
type Stats struct {
	Iterations    int64
	DecisionNodes int64
	ChanceNodes   int64
	State         RunState
	Last          TraversalStats
}

// Option customises a Solver.
type Option func(*Solver)

// WithLogger sets the structured logger. The default discards output.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Solver) { s.log = l }
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c quartz.Clock) Option {
	return func(s *Solver) { s.clock = c }
}

// WithEvaluator overrides the evaluator named in the config.
func WithEvaluator(e game.Evaluator) Option {
	return func(s *Solver) { s.eval = e }
}

// WithRunID tags every log line with id.
func WithRunID(id string) Option {
	return func(s *Solver) { s.runID = id }
}

// Solver owns the game tree and the single background worker that refines
// it with outcome sampling CFR. The worker is the only writer to the tree and
// to the live game state; everything else reads.
type Solver struct {
	cfg   Config
	log   zerolog.Logger
	clock quartz.Clock
	eval  game.Evaluator
	runID string

	rng   *rand.Rand
	state *game.State
	root  *Node

	mu      sync.Mutex
	cond    *sync.Cond
	run     RunState
	active  bool // worker goroutine alive
	parked  bool // worker waiting while paused
	done    chan struct{}
	focus   *Node
	lastErr error

	iterations    atomic.Int64
	decisionNodes atomic.Int64
	chanceNodes   atomic.Int64

	statsMu sync.Mutex
	stats   TraversalStats
}

// New validates cfg, builds the initial game state and the root decision
// node. Nothing is started.
func New(cfg Config, opts ...Option) (*Solver, error) {
	sc, err := cfg.stateConfig()
	if err != nil {
		return nil, err
	}

	s := &Solver{
		cfg:   cfg,
		log:   zerolog.Nop(),
		clock: quartz.NewReal(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.eval == nil {
		if s.eval, err = game.EvaluatorByName(cfg.Evaluator); err != nil {
			return nil, err
		}
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s.rng = randutil.New(seed)

	if s.state, err = game.NewState(sc, s.rng, s.eval); err != nil {
		return nil, err
	}
	s.root = newDecision(nil, "", s.state)
	s.focus = s.root
	s.decisionNodes.Store(1)
	s.cond = sync.NewCond(&s.mu)
	if s.runID != "" {
		s.log = s.log.With().Str("run_id", s.runID).Logger()
	}
	return s, nil
}

// Config returns the configuration the solver was built with.
func (s *Solver) Config() Config { return s.cfg }

// Root returns the root of the tree. It never changes.
func (s *Solver) Root() *Node { return s.root }

// Focus returns the node currently selected for inspection.
func (s *Solver) Focus() *Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focus
}

// SetFocus swaps the inspected node. A running worker is paused for the
// swap and resumed afterwards; a paused or stopped worker stays that way.
func (s *Solver) SetFocus(n *Node) {
	if n == nil {
		return
	}
	s.mu.Lock()
	wasRunning := s.run == Running
	s.mu.Unlock()

	if wasRunning {
		s.Pause()
	}
	s.mu.Lock()
	prev := s.focus
	s.focus = n
	s.mu.Unlock()
	if wasRunning {
		s.Resume()
	}

	s.log.Info().
		Str("from", prev.PathString()).
		Str("to", n.PathString()).
		Str("position", n.Position()).
		Msg("focus changed")
}

// State reports the worker lifecycle state.
func (s *Solver) State() RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run
}

// Err returns the error that aborted the worker, if any.
func (s *Solver) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Iterations returns the number of completed iterations.
func (s *Solver) Iterations() int64 { return s.iterations.Load() }

// Stats returns a snapshot of the solver counters.
func (s *Solver) Stats() Stats {
	s.statsMu.Lock()
	last := s.stats
	s.statsMu.Unlock()
	return Stats{
		Iterations:    s.iterations.Load(),
		DecisionNodes: s.decisionNodes.Load(),
		ChanceNodes:   s.chanceNodes.Load(),
		State:         s.State(),
		Last:          last,
	}
}

func (s *Solver) setStats(stats TraversalStats) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	s.stats = stats
}

// Start launches the worker. Cancelling ctx stops it as if Stop had been
// called, without waiting for it to exit.
func (s *Solver) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return ErrRunning
	}
	s.run = Running
	s.active = true
	s.parked = false
	s.lastErr = nil
	s.done = make(chan struct{})

	unregister := context.AfterFunc(ctx, s.requestStop)
	go s.loop(ctx, s.done, unregister)

	s.log.Info().
		Int("seats", s.cfg.Seats).
		Str("flop_one", s.cfg.FlopOne).
		Str("flop_two", s.cfg.FlopTwo).
		Msg("solver started")
	return nil
}

// Pause asks the worker to stop between iterations and blocks until it has
// parked. It returns immediately if the worker is not running.
func (s *Solver) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run != Running {
		return
	}
	s.run = Paused
	for s.active && s.run == Paused && !s.parked {
		s.cond.Wait()
	}
}

// Resume restarts a paused worker.
func (s *Solver) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run != Paused {
		return
	}
	s.run = Running
	s.cond.Broadcast()
}

// Stop ends the worker and waits for it to exit. It returns the error that
// aborted the worker, if there was one.
func (s *Solver) Stop() error {
	s.mu.Lock()
	if !s.active {
		err := s.lastErr
		s.mu.Unlock()
		return err
	}
	s.run = Stopped
	s.cond.Broadcast()
	done := s.done
	s.mu.Unlock()

	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Wait blocks until the worker exits on its own or ctx is done.
func (s *Solver) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return s.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Iterate runs one iteration on the calling goroutine. The worker must not
// be running.
func (s *Solver) Iterate() error {
	s.mu.Lock()
	active := s.active
	s.mu.Unlock()
	if active {
		return ErrRunning
	}
	return s.iterate()
}

func (s *Solver) requestStop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active && s.run != Stopped {
		s.run = Stopped
		s.cond.Broadcast()
	}
}

func (s *Solver) loop(ctx context.Context, done chan struct{}, unregister func() bool) {
	tickCtx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		unregister()
		s.mu.Lock()
		s.active = false
		s.parked = false
		s.run = Stopped
		s.cond.Broadcast()
		s.mu.Unlock()
		close(done)
	}()

	if s.cfg.ProgressInterval > 0 {
		s.clock.TickerFunc(tickCtx, s.cfg.ProgressInterval, func() error {
			s.logProgress()
			return nil
		}, "solver", "progress")
	}

	for {
		if !s.waitRunnable() {
			break
		}
		if err := s.iterate(); err != nil {
			s.mu.Lock()
			s.lastErr = err
			s.mu.Unlock()
			s.log.Error().Err(err).Int64("iteration", s.iterations.Load()).Msg("solver worker aborted")
			return
		}
		if limit := s.cfg.MaxIterations; limit > 0 && s.iterations.Load() >= limit {
			s.log.Info().Int64("iteration", limit).Msg("iteration limit reached")
			break
		}
	}

	s.logProgress()
	s.log.Info().Msg("solver stopped")
}

// waitRunnable parks the worker while paused and reports whether it should
// run another iteration.
func (s *Solver) waitRunnable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.run == Paused {
		s.parked = true
		s.cond.Broadcast()
		s.cond.Wait()
	}
	s.parked = false
	return s.run == Running
}

func (s *Solver) logProgress() {
	st := s.Stats()
	s.log.Info().
		Int64("iteration", st.Iterations).
		Int64("decision_nodes", st.DecisionNodes).
		Int64("chance_nodes", st.ChanceNodes).
		Int("max_depth", st.Last.MaxDepth).
		Str("nodes", humanize.Comma(st.DecisionNodes+st.ChanceNodes)).
		Dur("last_iteration", st.Last.IterationTime).
		Msg("solver progress")
}
