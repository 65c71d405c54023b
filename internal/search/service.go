package search

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SoyJotaGS/buscador-rrv-web/internal/metrics"
	"github.com/SoyJotaGS/buscador-rrv-web/internal/model"
)

// ErrEmptyQuery the plate query is blank
var ErrEmptyQuery = errors.New("empty plate query")

// Verifier checks a plate against an external registry. Implementations never fail;
// problems are expressed in the verdict.
type Verifier interface {
	Lookup(ctx context.Context, plate string) model.Verdict
}

// Service answers plate queries: spreadsheet scan and registry lookup run side by side
type Service struct {
	aggregator *Aggregator
	verifier   Verifier
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewService creates the search service.
func NewService(aggregator *Aggregator, verifier Verifier, logger *zap.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		aggregator: aggregator,
		verifier:   verifier,
		logger:     logger,
		metrics:    m,
	}
}

// Aggregator the underlying aggregator
func (s *Service) Aggregator() *Aggregator { return s.aggregator }

// Search runs the scan and the registry lookup concurrently and waits for both.
// A source failure fails the whole query; zero matches is a successful empty result.
func (s *Service) Search(ctx context.Context, query string, progress ProgressFunc) (*model.SearchResponse, error) {
	start := time.Now()
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	var (
		scan    *Scan
		verdict model.Verdict
	)

	// plain group: a failed scan must not cancel the lookup, and both
	// goroutines are joined before returning
	g := new(errgroup.Group)
	g.Go(func() error {
		var err error
		scan, err = s.aggregator.Aggregate(ctx, query, progress)
		return err
	})
	g.Go(func() error {
		verdict = s.verifier.Lookup(ctx, query)
		return nil
	})
	if err := g.Wait(); err != nil {
		s.metrics.ObserveSearch("error", 0, time.Since(start))
		s.logger.Error("search failed", zap.String("query", query), zap.Error(err))
		return nil, err
	}
	s.metrics.ObserveVerdict(string(verdict.Status))

	records := SortChronological(scan.Records)
	resp := &model.SearchResponse{
		ID:          uuid.NewString(),
		Query:       query,
		Records:     records,
		Verdict:     verdict,
		Stats:       ComputeStats(records),
		Timeline:    BuildTimeline(records),
		Sheets:      scan.Summaries(),
		ElapsedMS:   time.Since(start).Milliseconds(),
		CompletedAt: time.Now(),
	}

	outcome := "found"
	if len(records) == 0 {
		outcome = "empty"
	}
	s.metrics.ObserveSearch(outcome, len(records), time.Since(start))
	s.logger.Info("search completed",
		zap.String("id", resp.ID),
		zap.String("query", query),
		zap.Int("records", len(records)),
		zap.Int("worksheets", scan.Searched),
		zap.Int("failed_worksheets", scan.Failed),
		zap.String("verdict", string(verdict.Status)),
		zap.Int64("elapsed_ms", resp.ElapsedMS))
	return resp, nil
}

// StreamEvent one message of a streamed search: progress, then a result or an error
type StreamEvent struct {
	Type      string                `json:"type"` // progress/result/error
	Progress  *ProgressEvent        `json:"progress,omitempty"`
	Result    *model.SearchResponse `json:"result,omitempty"`
	Error     string                `json:"error,omitempty"`
	Timestamp time.Time             `json:"timestamp"`
}

// Stream runs Search in the background and returns its events. Progress events are
// dropped when the consumer lags; the final result or error is always delivered.
// The channel is closed after the final event.
func (s *Service) Stream(ctx context.Context, query string) <-chan StreamEvent {
	ch := make(chan StreamEvent, 100)

	go func() {
		defer close(ch)

		progress := func(ev ProgressEvent) {
			select {
			case ch <- StreamEvent{Type: "progress", Progress: &ev, Timestamp: time.Now()}:
			default:
			}
		}

		resp, err := s.Search(ctx, query, progress)
		final := StreamEvent{Type: "result", Result: resp, Timestamp: time.Now()}
		if err != nil {
			final = StreamEvent{Type: "error", Error: err.Error(), Timestamp: time.Now()}
		}
		select {
		case ch <- final:
		case <-ctx.Done():
		}
	}()

	return ch
}
