// Package manager owns the authoritative acronym list and publishes it as
// immutable, versioned snapshots.
//
// Mutations are validated as a whole, rebuilt off to the side and published
// with a single pointer swap, so a reader holding a *Snapshot never sees a
// half-built index. There is one writer at a time: concurrent mutations
// queue behind it, or fail with ErrBusy when the manager was built
// WithRejectWhenBusy.
package manager

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/bastiangx/acroserve/internal/logger"
	"github.com/bastiangx/acroserve/pkg/dictionary"
	"github.com/bastiangx/acroserve/pkg/metrics"
	"github.com/bastiangx/acroserve/pkg/related"
	"github.com/bastiangx/acroserve/pkg/scanner"
	"github.com/bastiangx/acroserve/pkg/suggest"
)

// State of the writer side.
type State int32

const (
	StateClean State = iota
	StateRebuilding
)

func (s State) String() string {
	if s == StateRebuilding {
		return "rebuilding"
	}
	return "clean"
}

// Manager is safe for concurrent use.
type Manager struct {
	mu      sync.Mutex
	state   atomic.Int32
	current atomic.Pointer[Snapshot]
	version uint64

	engineOpts     []suggest.Option
	relatedOpts    []related.Option
	rejectWhenBusy bool
	hooks          []func(*Snapshot)
	logger         *log.Logger
}

// Option configures a Manager
type Option func(*Manager)

// WithEngineOptions passes options to every search engine the manager builds.
func WithEngineOptions(opts ...suggest.Option) Option {
	return func(m *Manager) { m.engineOpts = append(m.engineOpts, opts...) }
}

// WithPopularity sets the popularity source used by search.
func WithPopularity(p suggest.Popularity) Option {
	return WithEngineOptions(suggest.WithPopularity(p))
}

// WithRelatedWeights overrides the related-term edge weights.
func WithRelatedWeights(w related.Weights) Option {
	return func(m *Manager) { m.relatedOpts = append(m.relatedOpts, related.WithWeights(w)) }
}

// WithRejectWhenBusy makes a mutation fail with ErrBusy instead of waiting
// for a running rebuild.
func WithRejectWhenBusy() Option {
	return func(m *Manager) { m.rejectWhenBusy = true }
}

// WithPublishHook registers fn to run after every successful publish,
// including the initial one. Hooks run on the writer, in version order.
func WithPublishHook(fn func(*Snapshot)) Option {
	return func(m *Manager) {
		if fn != nil {
			m.hooks = append(m.hooks, fn)
		}
	}
}

// WithLogger replaces the default "manager" logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithStartVersion sets the version of the initial snapshot so a restarted
// server continues a persisted version sequence.
func WithStartVersion(v uint64) Option {
	return func(m *Manager) {
		if v > 0 {
			m.version = v - 1
		}
	}
}

// New validates entries and publishes them as the first snapshot.
func New(entries []dictionary.Entry, opts ...Option) (*Manager, error) {
	m := &Manager{logger: logger.New("manager")}
	for _, opt := range opts {
		opt(m)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.rebuild("init", canonical(entries)); err != nil {
		return nil, err
	}
	return m, nil
}

// Current returns the published snapshot. It never blocks.
func (m *Manager) Current() *Snapshot {
	return m.current.Load()
}

// State reports whether a rebuild is running.
func (m *Manager) State() State {
	return State(m.state.Load())
}

// Detect runs the scanner of the current snapshot.
func (m *Manager) Detect(text string) []scanner.Match {
	return m.Current().Detect(text)
}

// Search runs the engine of the current snapshot.
func (m *Manager) Search(query string, maxResults int, category dictionary.Category) []suggest.Result {
	return m.Current().Search(query, maxResults, category)
}

// Related queries the graph of the current snapshot.
func (m *Manager) Related(key string, maxResults int) []string {
	return m.Current().Related(key, maxResults)
}

// Export returns a deep copy of the current entries in registration order.
func (m *Manager) Export() []dictionary.Entry {
	return m.Current().Dictionary.Entries()
}

// AddEntry appends one entry. On failure the error is a
// dictionary.ValidationErrors and nothing changes.
func (m *Manager) AddEntry(entry dictionary.Entry) error {
	var base int
	err := m.mutate("add", func(cur []dictionary.Entry) ([]dictionary.Entry, error) {
		base = len(cur)
		return append(cur, entry.Canonical()), nil
	})
	return batchIndexes(err, base)
}

// RemoveEntry deletes the entry with the given key, ignoring case, and drops
// every related-key reference to it. Unknown keys yield a *LookupError.
func (m *Manager) RemoveEntry(key string) error {
	key = strings.TrimSpace(key)
	return m.mutate("remove", func(cur []dictionary.Entry) ([]dictionary.Entry, error) {
		idx := -1
		for i, e := range cur {
			if strings.EqualFold(e.Key, key) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, &LookupError{Key: key}
		}

		removed := cur[idx].Key
		next := make([]dictionary.Entry, 0, len(cur)-1)
		for i, e := range cur {
			if i != idx {
				next = append(next, e.WithoutRelated(removed))
			}
		}
		return next, nil
	})
}

// Import replaces the whole dictionary with entries. Every record is
// validated before anything is published; on failure the returned
// dictionary.ValidationErrors lists all bad records and nothing changes.
func (m *Manager) Import(entries []dictionary.Entry) error {
	return m.mutate("import", func([]dictionary.Entry) ([]dictionary.Entry, error) {
		return canonical(entries), nil
	})
}

// Merge appends entries to the dictionary, all or nothing. Validation
// errors index into entries, not into the merged dictionary.
func (m *Manager) Merge(entries []dictionary.Entry) error {
	var base int
	err := m.mutate("merge", func(cur []dictionary.Entry) ([]dictionary.Entry, error) {
		base = len(cur)
		return append(cur, canonical(entries)...), nil
	})
	return batchIndexes(err, base)
}

// batchIndexes renumbers validation errors of an appended batch so that
// record 0 is the first appended entry.
func batchIndexes(err error, base int) error {
	if base == 0 {
		return err
	}
	verrs, ok := dictionary.AsValidationErrors(err)
	if !ok {
		return err
	}
	for _, ve := range verrs {
		if ve.Index >= base {
			ve.Index -= base
		}
	}
	return err
}

func (m *Manager) mutate(op string, next func([]dictionary.Entry) ([]dictionary.Entry, error)) error {
	if m.rejectWhenBusy {
		if !m.mu.TryLock() {
			metrics.RebuildTotal.WithLabelValues(op, "busy").Inc()
			return ErrBusy
		}
	} else {
		m.mu.Lock()
	}
	defer m.mu.Unlock()

	entries, err := next(m.Current().Dictionary.Entries())
	if err != nil {
		metrics.RebuildTotal.WithLabelValues(op, metrics.Result(err)).Inc()
		return err
	}
	return m.rebuild(op, entries)
}

// rebuild must be called with mu held.
func (m *Manager) rebuild(op string, entries []dictionary.Entry) (err error) {
	m.state.Store(int32(StateRebuilding))
	start := time.Now()
	defer func() {
		m.state.Store(int32(StateClean))
		metrics.RebuildTotal.WithLabelValues(op, metrics.Result(err)).Inc()
	}()

	snap, err := m.build(entries)
	if err != nil {
		m.logger.Debugf("%s rejected: %v", op, err)
		return err
	}

	m.version++
	snap.Version = m.version
	m.current.Store(snap)

	metrics.ObserveSince(metrics.RebuildDuration, start)
	metrics.SnapshotVersion.Set(float64(snap.Version))
	metrics.SnapshotEntries.Set(float64(snap.Len()))
	m.logger.Debugf("%s published v%d (%d entries) in %v", op, snap.Version, snap.Len(), time.Since(start))

	for _, fn := range m.hooks {
		fn(snap)
	}
	return nil
}

// build validates entries and builds the three indexes in parallel.
func (m *Manager) build(entries []dictionary.Entry) (*Snapshot, error) {
	dict, err := dictionary.New(entries)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Dictionary: dict}
	var g errgroup.Group
	g.Go(func() error {
		snap.Scanner = scanner.New(dict)
		return nil
	})
	g.Go(func() error {
		snap.Engine = suggest.New(dict, m.engineOpts...)
		return nil
	})
	g.Go(func() error {
		graph, err := related.Build(dict, m.relatedOpts...)
		if err != nil {
			return fmt.Errorf("related graph: %w", err)
		}
		snap.Graph = graph
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	snap.BuiltAt = time.Now()
	return snap, nil
}

// Stats summarizes the current snapshot.
func (m *Manager) Stats() map[string]int {
	snap := m.Current()
	stats := map[string]int{
		"version": int(snap.Version),
		"entries": snap.Len(),
	}
	for k, v := range snap.Scanner.Stats() {
		stats["scanner_"+k] = v
	}
	for k, v := range snap.Engine.Stats() {
		stats["search_"+k] = v
	}
	for k, v := range snap.Graph.Stats() {
		stats["related_"+k] = v
	}
	return stats
}

func canonical(entries []dictionary.Entry) []dictionary.Entry {
	out := make([]dictionary.Entry, len(entries))
	for i, e := range entries {
		out[i] = e.Canonical()
	}
	return out
}
