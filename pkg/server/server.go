package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/panjf2000/ants/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/acroserve/internal/logger"
	"github.com/bastiangx/acroserve/pkg/config"
	"github.com/bastiangx/acroserve/pkg/dictionary"
	"github.com/bastiangx/acroserve/pkg/manager"
	"github.com/bastiangx/acroserve/pkg/metrics"
	"github.com/bastiangx/acroserve/pkg/scanner"
)

const defaultLimit = 10

// Server handles the IPC for acronym detection and dictionary management
type Server struct {
	mgr      *manager.Manager
	cfg      config.ServerConfig
	reader   io.Reader
	writer   *bufio.Writer
	enc      *msgpack.Encoder
	pool     *ants.Pool
	logger   *log.Logger
	requests atomic.Int64
}

// Option configures a Server
type Option func(*Server)

// WithIO replaces stdin/stdout, mostly for tests.
func WithIO(r io.Reader, w io.Writer) Option {
	return func(s *Server) {
		s.reader = r
		s.writer = bufio.NewWriter(w)
	}
}

// WithLogger replaces the default "server" logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a server using stdin/stdout for IPC. Close releases the
// batch worker pool.
func NewServer(mgr *manager.Manager, cfg config.ServerConfig, opts ...Option) (*Server, error) {
	s := &Server{
		mgr:    mgr,
		cfg:    cfg,
		reader: os.Stdin,
		writer: bufio.NewWriter(os.Stdout),
		logger: logger.New("server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.enc = msgpack.NewEncoder(s.writer)

	workers := cfg.BatchWorkers
	if workers < 1 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("batch pool: %w", err)
	}
	s.pool = pool
	return s, nil
}

// Close releases the worker pool.
func (s *Server) Close() {
	s.pool.Release()
}

// Start sends the ready banner and serves requests until the reader hits EOF.
// A well-formed message of the wrong shape gets a 400 and the loop goes on;
// bytes that are not msgpack at all get a final 400 and end the session with
// an error.
func (s *Server) Start() error {
	s.logger.Debug("Starting Server.")
	if err := s.send(StatusResponse{Status: "ready"}); err != nil {
		return err
	}

	dec := msgpack.NewDecoder(bufio.NewReader(s.reader))
	for {
		var raw msgpack.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Debug("Client closed input, stopping.")
				return nil
			}
			// Framing is lost once the stream itself is not msgpack.
			s.logger.Errorf("Malformed msgpack stream, closing session: %v", err)
			metrics.RequestTotal.WithLabelValues("invalid", "error").Inc()
			if sendErr := s.send(ErrorResponse{Error: "malformed msgpack stream", Code: 400}); sendErr != nil {
				return sendErr
			}
			return fmt.Errorf("read request: %w", err)
		}
		if err := s.handleRequest(raw); err != nil {
			return err
		}
	}
}

// handleRequest decodes one framed message and answers it. Only write
// failures are returned; request problems become error responses.
func (s *Server) handleRequest(raw []byte) error {
	s.requests.Add(1)
	start := time.Now()

	var req Request
	if err := msgpack.Unmarshal(raw, &req); err != nil {
		s.logger.Errorf("Unmarshaling request: %v", err)
		metrics.RequestTotal.WithLabelValues("invalid", "error").Inc()
		return s.send(ErrorResponse{Error: "invalid msgpack request", Code: 400})
	}

	resp, err := s.dispatch(req, start)
	metrics.ObserveSince(metrics.RequestDuration.WithLabelValues(opLabel(req.Op)), start)
	metrics.RequestTotal.WithLabelValues(opLabel(req.Op), metrics.Result(err)).Inc()
	if err != nil {
		s.logger.Debugf("%s %s failed: %v", req.Op, req.ID, err)
		return s.send(errorResponse(req.ID, err))
	}
	return s.send(resp)
}

func (s *Server) dispatch(req Request, start time.Time) (any, error) {
	switch req.Op {
	case "detect":
		return s.handleDetect(req, start)
	case "detect_batch":
		return s.handleDetectBatch(req, start)
	case "search":
		return s.handleSearch(req, start)
	case "related":
		return s.handleRelated(req, start)
	case "define":
		return s.handleDefine(req, start)
	case "add":
		if req.Entry == nil {
			return nil, badRequest("missing 'entry'")
		}
		return s.mutation(req, start, func() error { return s.mgr.AddEntry(*req.Entry) })
	case "remove":
		if req.Key == "" {
			return nil, badRequest("missing 'key'")
		}
		return s.mutation(req, start, func() error { return s.mgr.RemoveEntry(req.Key) })
	case "import":
		return s.mutation(req, start, func() error { return s.mgr.Import(req.Entries) })
	case "merge":
		return s.mutation(req, start, func() error { return s.mgr.Merge(req.Entries) })
	case "export":
		snap := s.mgr.Current()
		entries := snap.Dictionary.Entries()
		return ExportResponse{ID: req.ID, Entries: entries, Count: len(entries), Version: snap.Version, TimeTaken: micros(start)}, nil
	case "stats":
		return StatsResponse{
			ID:        req.ID,
			Status:    "ok",
			State:     s.mgr.State().String(),
			Stats:     s.mgr.Stats(),
			Requests:  s.requests.Load(),
			TimeTaken: micros(start),
		}, nil
	case "health":
		return StatusResponse{ID: req.ID, Status: "ok"}, nil
	case "":
		return nil, badRequest("missing 'op'")
	}
	return nil, badRequest(fmt.Sprintf("unknown op: %s", req.Op))
}

func (s *Server) handleDetect(req Request, start time.Time) (any, error) {
	if err := s.checkText(req.Text); err != nil {
		return nil, err
	}
	snap := s.mgr.Current()
	matches := toMatches(snap.Detect(req.Text))
	return DetectResponse{ID: req.ID, Matches: matches, Count: len(matches), Version: snap.Version, TimeTaken: micros(start)}, nil
}

// handleDetectBatch fans the texts out over the worker pool against one snapshot.
func (s *Server) handleDetectBatch(req Request, start time.Time) (any, error) {
	for _, text := range req.Texts {
		if err := s.checkText(text); err != nil {
			return nil, err
		}
	}

	snap := s.mgr.Current()
	results := make([][]Match, len(req.Texts))
	var wg sync.WaitGroup
	for i, text := range req.Texts {
		task := func() {
			defer wg.Done()
			results[i] = toMatches(snap.Detect(text))
		}
		wg.Add(1)
		if err := s.pool.Submit(task); err != nil {
			s.logger.Warnf("Batch pool rejected task, running inline: %v", err)
			task()
		}
	}
	wg.Wait()

	total := 0
	for _, r := range results {
		total += len(r)
	}
	return BatchDetectResponse{ID: req.ID, Results: results, Count: total, Version: snap.Version, TimeTaken: micros(start)}, nil
}

func (s *Server) handleSearch(req Request, start time.Time) (any, error) {
	n := utf8.RuneCountInString(req.Query)
	if req.Query == "" {
		return nil, badRequest("missing 'q'")
	}
	if n < s.cfg.MinQuery {
		return nil, badRequest(fmt.Sprintf("query must be at least %d characters", s.cfg.MinQuery))
	}
	if s.cfg.MaxQuery > 0 && n > s.cfg.MaxQuery {
		return nil, badRequest(fmt.Sprintf("query exceeds maximum length of %d characters", s.cfg.MaxQuery))
	}
	category, err := parseCategory(req.Category)
	if err != nil {
		return nil, err
	}

	snap := s.mgr.Current()
	results := snap.Search(req.Query, s.limit(req.Limit), category)
	suggestions := make([]Suggestion, len(results))
	for i, r := range results {
		suggestions[i] = Suggestion{Key: r.Key, Score: r.Score, MatchType: string(r.MatchType)}
		if e, ok := snap.Dictionary.Get(r.Key); ok {
			suggestions[i].Definition = e.Definition
		}
	}
	return SearchResponse{ID: req.ID, Suggestions: suggestions, Count: len(suggestions), Version: snap.Version, TimeTaken: micros(start)}, nil
}

func (s *Server) handleRelated(req Request, start time.Time) (any, error) {
	snap := s.mgr.Current()
	limit := s.limit(req.Limit)

	var keys []string
	switch {
	case req.Key != "":
		keys = snap.Related(req.Key, limit)
	case req.Text != "":
		if err := s.checkText(req.Text); err != nil {
			return nil, err
		}
		keys = snap.ForContext(req.Text, limit)
	default:
		return nil, badRequest("missing 'key' or 'text'")
	}
	if keys == nil {
		keys = []string{}
	}
	return RelatedResponse{ID: req.ID, Keys: keys, Count: len(keys), Version: snap.Version, TimeTaken: micros(start)}, nil
}

func (s *Server) handleDefine(req Request, start time.Time) (any, error) {
	if req.Key == "" {
		return nil, badRequest("missing 'key'")
	}
	snap := s.mgr.Current()
	entry, ok := snap.Lookup(req.Key)
	if !ok {
		return nil, &manager.LookupError{Key: req.Key}
	}
	return DefineResponse{ID: req.ID, Entry: entry, Version: snap.Version, TimeTaken: micros(start)}, nil
}

func (s *Server) mutation(req Request, start time.Time, apply func() error) (any, error) {
	if err := apply(); err != nil {
		return nil, err
	}
	snap := s.mgr.Current()
	return MutationResponse{ID: req.ID, Status: "ok", Count: snap.Len(), Version: snap.Version, TimeTaken: micros(start)}, nil
}

func (s *Server) checkText(text string) error {
	if s.cfg.MaxTextBytes > 0 && len(text) > s.cfg.MaxTextBytes {
		return &requestError{code: 413, msg: fmt.Sprintf("text exceeds %d bytes", s.cfg.MaxTextBytes)}
	}
	return nil
}

func (s *Server) limit(requested int) int {
	limit := requested
	if limit < 1 {
		limit = defaultLimit
	}
	if s.cfg.MaxLimit > 0 && limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}
	return limit
}

// send encodes one response and flushes it so the client sees it immediately.
func (s *Server) send(response any) error {
	if err := s.enc.Encode(response); err != nil {
		s.logger.Errorf("Marshaling response: %v", err)
		return err
	}
	return s.writer.Flush()
}

// requestError is a client mistake with an IPC status code.
type requestError struct {
	code int
	msg  string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(msg string) error {
	return &requestError{code: 400, msg: msg}
}

func errorResponse(id string, err error) ErrorResponse {
	resp := ErrorResponse{ID: id, Error: err.Error(), Code: 500}

	var reqErr *requestError
	var lookupErr *manager.LookupError
	switch {
	case errors.As(err, &reqErr):
		resp.Code = reqErr.code
	case errors.As(err, &lookupErr):
		resp.Code = 404
	case errors.Is(err, manager.ErrBusy):
		resp.Code = 409
	default:
		if verrs, ok := dictionary.AsValidationErrors(err); ok {
			resp.Code = 422
			resp.Problems = make([]Problem, len(verrs))
			for i, ve := range verrs {
				resp.Problems[i] = Problem{Index: ve.Index, Key: ve.Key, Field: ve.Field, Error: ve.Error()}
			}
		}
	}
	return resp
}

func parseCategory(name string) (dictionary.Category, error) {
	if name == "" {
		return "", nil
	}
	c, ok := dictionary.ParseCategory(name)
	if !ok {
		return "", badRequest(fmt.Sprintf("unknown category: %s", name))
	}
	return c, nil
}

func toMatches(ms []scanner.Match) []Match {
	out := make([]Match, len(ms))
	for i, m := range ms {
		out[i] = Match{Start: m.Start, End: m.End, Key: m.Key, Text: m.MatchedText}
	}
	return out
}

// opLabel keeps client-chosen op names out of the metric label space.
func opLabel(op string) string {
	switch op {
	case "detect", "detect_batch", "search", "related", "define", "add",
		"remove", "import", "merge", "export", "stats", "health":
		return op
	}
	return "unknown"
}

func micros(start time.Time) int64 {
	return time.Since(start).Microseconds()
}
