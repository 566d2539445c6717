// Package pipeline drives the conversion engine over a content root:
// read, normalize frontmatter, rewrite the body, write back, record.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/starford/kramify/internal/apperr"
	"github.com/starford/kramify/internal/checksum"
	"github.com/starford/kramify/internal/convert"
	"github.com/starford/kramify/internal/frontmatter"
	"github.com/starford/kramify/internal/ledger"
	"github.com/starford/kramify/internal/metrics"
	"github.com/starford/kramify/internal/models"
	"github.com/starford/kramify/internal/storage"
)

// Event kinds passed to an EventCallback.
const (
	EventConverted = "converted"
	EventRemoved   = "removed"
)

// EventCallback is called after a document is written or dropped.
type EventCallback func(kind string, path string)

// Config selects what a run does.
type Config struct {
	Generator        convert.Generator
	Frontmatter      bool
	ForceFrontmatter bool
	// FrontmatterOnly normalizes headers without converting bodies. The
	// ledger is neither consulted nor updated.
	FrontmatterOnly bool
	Workers         int
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithLedger enables skipping documents unchanged since their last conversion.
func WithLedger(l ledger.Store) Option {
	return func(s *Service) { s.ledger = l }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithNotifier registers a callback for written and removed documents.
func WithNotifier(cb EventCallback) Option {
	return func(s *Service) { s.notify = cb }
}

// WithMetrics sets the recorder for document and run observations.
func WithMetrics(r metrics.Recorder) Option {
	return func(s *Service) { s.metrics = r }
}

// Service coordinates storage, engine and ledger.
type Service struct {
	engine  *convert.Engine
	store   storage.Provider
	cfg     Config
	ledger  ledger.Store
	logger  *slog.Logger
	notify  EventCallback
	metrics metrics.Recorder
	now     func() time.Time

	runMu sync.Mutex

	mu      sync.Mutex
	written map[string]string // path → checksum of our last write
}

// NewService creates a pipeline service.
func NewService(engine *convert.Engine, store storage.Provider, cfg Config, opts ...Option) *Service {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	s := &Service{
		engine:  engine,
		store:   store,
		cfg:     cfg,
		logger:  slog.Default(),
		metrics: metrics.NoopRecorder{},
		now:     time.Now,
		written: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generator returns the generator the service converts for.
func (s *Service) Generator() convert.Generator { return s.cfg.Generator }

// Root returns the content root.
func (s *Service) Root() string { return s.store.Root() }

// Ledger returns the configured ledger or apperr.ErrNotConfigured.
func (s *Service) Ledger() (ledger.Store, error) {
	if s.ledger == nil {
		return nil, apperr.ErrNotConfigured
	}
	return s.ledger, nil
}

// Convert rewrites a whole document in memory. The frontmatter header is
// passed through untouched; Result.Content holds the full document.
func (s *Service) Convert(content []byte, gen convert.Generator, isIndex bool) (convert.Result, error) {
	doc := frontmatter.Split(content)
	res, err := s.engine.Rewrite(string(doc.Body), gen, isIndex)
	if err != nil {
		return convert.Result{}, err
	}
	res.Content = string(doc.Join([]byte(res.Content)))
	return res, nil
}

// Outcome describes what happened to one document.
type Outcome struct {
	Path        string
	Written     bool
	Unchanged   bool
	Frontmatter bool
	Result      convert.Result
}

// ProcessFile converts the document at path and writes it back when the
// content changed. The document is fully transformed before the write.
func (s *Service) ProcessFile(ctx context.Context, path string) (Outcome, error) {
	out, err := s.processFile(ctx, path)
	s.observe(out, err)
	return out, err
}

func (s *Service) observe(out Outcome, err error) {
	switch {
	case err != nil:
		s.metrics.IncDocument(metrics.OutcomeFailed)
		return
	case out.Written:
		s.metrics.IncDocument(metrics.OutcomeWritten)
	case out.Unchanged:
		s.metrics.IncDocument(metrics.OutcomeUnchanged)
	default:
		s.metrics.IncDocument(metrics.OutcomeNoop)
	}
	s.metrics.AddConstructs("link", out.Result.Links)
	s.metrics.AddConstructs("image", out.Result.Images)
	s.metrics.AddConstructs("callout", out.Result.Callouts)
	s.metrics.AddPrunedLines(out.Result.PrunedLines)
}

func (s *Service) processFile(ctx context.Context, path string) (Outcome, error) {
	out := Outcome{Path: path}
	if err := ctx.Err(); err != nil {
		return out, err
	}

	data, err := s.store.Read(path)
	if err != nil {
		return out, err
	}
	if s.upToDate(path, data) {
		out.Unchanged = true
		return out, nil
	}

	content := data
	if s.cfg.Frontmatter {
		mod, err := s.store.ModTime(path)
		if err != nil {
			return out, err
		}
		content, out.Frontmatter, err = frontmatter.Normalize(content, path, mod, s.cfg.ForceFrontmatter)
		if err != nil {
			return out, fmt.Errorf("pipeline: %s: %w", path, err)
		}
	}

	res := convert.Result{Content: string(content)}
	if !s.cfg.FrontmatterOnly {
		var err error
		res, err = s.Convert(content, s.cfg.Generator, s.engine.IsIndex(path))
		if err != nil {
			return out, fmt.Errorf("pipeline: %s: %w", path, err)
		}
	}
	out.Result = res

	final := []byte(res.Content)
	if !bytes.Equal(final, data) {
		if err := s.store.Write(path, final); err != nil {
			return out, err
		}
		out.Written = true
	}

	sum := checksum.Sum(final)
	s.mu.Lock()
	s.written[path] = sum
	s.mu.Unlock()

	if s.ledger != nil && !s.cfg.FrontmatterOnly {
		if err := s.ledger.Record(models.ConversionRecord{
			Path:        path,
			Checksum:    sum,
			Generator:   s.cfg.Generator.String(),
			ConvertedAt: s.now().UTC(),
		}); err != nil {
			s.logger.Warn("pipeline: ledger record failed", slog.String("path", path), slog.String("error", err.Error()))
		}
	}

	if out.Written {
		s.logger.Debug("pipeline: converted",
			slog.String("path", path),
			slog.Int("images", res.Images),
			slog.Int("links", res.Links),
			slog.Int("callouts", res.Callouts),
			slog.Int("pruned_lines", res.PrunedLines))
		if s.notify != nil {
			s.notify(EventConverted, path)
		}
	}
	return out, nil
}

// upToDate reports whether data is exactly what we last produced for path,
// either in this process or according to the ledger. The ledger only
// records body conversion, so it is not consulted when headers are
// normalized as well.
func (s *Service) upToDate(path string, data []byte) bool {
	s.mu.Lock()
	last := s.written[path]
	s.mu.Unlock()
	if checksum.Equal(data, last) {
		return true
	}
	if s.ledger == nil || s.cfg.Frontmatter || s.cfg.FrontmatterOnly {
		return false
	}
	rec, err := s.ledger.Get(path)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			s.logger.Warn("pipeline: ledger lookup failed", slog.String("path", path), slog.String("error", err.Error()))
		}
		return false
	}
	return rec.Generator == s.cfg.Generator.String() && checksum.Equal(data, rec.Checksum)
}

// Forget drops any record of path after it disappeared from disk.
func (s *Service) Forget(path string) error {
	s.mu.Lock()
	delete(s.written, path)
	s.mu.Unlock()
	if s.ledger == nil {
		return nil
	}
	return s.ledger.Delete(path)
}

// Summary aggregates a full run.
type Summary struct {
	RunID       string `json:"run_id"`
	Documents   int    `json:"documents"`
	Written     int    `json:"written"`
	Unchanged   int    `json:"unchanged"`
	Converted   int    `json:"converted"`
	PrunedLines int    `json:"pruned_lines"`
	Removed     int    `json:"removed"`
}

func (s *Summary) add(o Outcome) {
	s.Documents++
	if o.Written {
		s.Written++
	}
	if o.Unchanged {
		s.Unchanged++
	}
	s.Converted += o.Result.Converted()
	s.PrunedLines += o.Result.PrunedLines
}

// Run processes every document under the root with bounded concurrency and
// drops ledger entries for files that no longer exist. The first I/O error
// aborts the run. Runs are serialized.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.run(ctx)
}

// TryRun is Run but fails with apperr.ErrBusy instead of waiting for a run
// in progress.
func (s *Service) TryRun(ctx context.Context) (Summary, error) {
	if !s.runMu.TryLock() {
		return Summary{}, apperr.ErrBusy
	}
	defer s.runMu.Unlock()
	return s.run(ctx)
}

func (s *Service) run(ctx context.Context) (summary Summary, err error) {
	summary.RunID = uuid.NewString()
	start := s.now()
	defer func() { s.metrics.ObserveRun(s.now().Sub(start), err) }()

	metas, err := s.store.List("")
	if err != nil {
		return summary, err
	}

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for _, m := range metas {
		g.Go(func() error {
			o, err := s.ProcessFile(gCtx, m.Path)
			if err != nil {
				return err
			}
			mu.Lock()
			summary.add(o)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}

	removed, err := s.pruneLedger(metas)
	if err != nil {
		s.logger.Warn("pipeline: ledger prune failed", slog.String("error", err.Error()))
	}
	summary.Removed = removed

	s.logger.Info("pipeline: run complete",
		slog.String("run_id", summary.RunID),
		slog.String("root", s.store.Root()),
		slog.String("generator", s.cfg.Generator.String()),
		slog.Int("documents", summary.Documents),
		slog.Int("written", summary.Written),
		slog.Int("unchanged", summary.Unchanged),
		slog.Int("converted", summary.Converted))
	return summary, nil
}

func (s *Service) pruneLedger(metas []models.DocumentMetadata) (int, error) {
	if s.ledger == nil || s.cfg.FrontmatterOnly {
		return 0, nil
	}
	checksums, err := s.ledger.AllChecksums()
	if err != nil {
		return 0, err
	}
	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}
	}
	removed := 0
	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := s.Forget(p); err != nil {
			return removed, err
		}
		removed++
		if s.notify != nil {
			s.notify(EventRemoved, p)
		}
	}
	return removed, nil
}
