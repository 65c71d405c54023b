package search

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/SoyJotaGS/buscador-rrv-web/internal/metrics"
	"github.com/SoyJotaGS/buscador-rrv-web/internal/model"
	"github.com/SoyJotaGS/buscador-rrv-web/internal/source"
)

type fixedVerifier struct {
	status model.VerdictStatus
	calls  atomic.Int32
	plate  atomic.Value
}

func (v *fixedVerifier) Lookup(ctx context.Context, plate string) model.Verdict {
	v.calls.Add(1)
	v.plate.Store(plate)
	return model.Verdict{Status: v.status, Plate: plate}
}

// timeoutVerifier behaves like a registry that never answers within its deadline.
type timeoutVerifier struct {
	timeout time.Duration
}

func (v timeoutVerifier) Lookup(ctx context.Context, plate string) model.Verdict {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()
	<-ctx.Done()
	return model.Verdict{Status: model.VerdictNotActive, Plate: plate, Detail: "registry lookup timed out"}
}

func newTestService(t *testing.T, src source.Source, v Verifier) *Service {
	t.Helper()
	logger := zaptest.NewLogger(t)
	return NewService(NewAggregator(src, WithLogger(logger)), v, logger, nil)
}

func TestSearch_SortsAndVerifies(t *testing.T) {
	t.Parallel()

	v := &fixedVerifier{status: model.VerdictActive}
	svc := newTestService(t, fixtureSource(), v)
	assert.Equal(t, DefaultMarker, svc.Aggregator().Marker())

	resp, err := svc.Search(context.Background(), "  ABC ", nil)
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "ABC", resp.Query)
	require.Len(t, resp.Records, 2)
	assert.Equal(t, "01/03/2024", resp.Records[0].Date)
	assert.Equal(t, "15/01/2024", resp.Records[1].Date)

	assert.Equal(t, model.VerdictActive, resp.Verdict.Status)
	assert.Equal(t, int32(1), v.calls.Load())
	assert.Equal(t, "ABC", v.plate.Load())

	require.NotNil(t, resp.Stats)
	assert.Equal(t, 46, resp.Stats.TotalDays)
	assert.Len(t, resp.Timeline, 2)
	assert.Len(t, resp.Sheets, 3)
	assert.False(t, resp.CompletedAt.IsZero())
}

func TestSearch_NoMatches(t *testing.T) {
	t.Parallel()

	resp, err := newTestService(t, fixtureSource(), &fixedVerifier{status: model.VerdictNotActive}).
		Search(context.Background(), "QQQ", nil)
	require.NoError(t, err)
	assert.Empty(t, resp.Records)
	assert.Nil(t, resp.Stats)
	assert.Empty(t, resp.Timeline)
	assert.Equal(t, model.VerdictNotActive, resp.Verdict.Status)
}

func TestSearch_RegistryTimeoutKeepsRecords(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, fixtureSource(), timeoutVerifier{timeout: 20 * time.Millisecond})
	resp, err := svc.Search(context.Background(), "ABC", nil)
	require.NoError(t, err)

	assert.Equal(t, model.VerdictNotActive, resp.Verdict.Status)
	assert.Equal(t, "registry lookup timed out", resp.Verdict.Detail)
	assert.Len(t, resp.Records, 2)
}

func TestSearch_EmptyQuery(t *testing.T) {
	t.Parallel()

	v := &fixedVerifier{status: model.VerdictActive}
	_, err := newTestService(t, fixtureSource(), v).Search(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Zero(t, v.calls.Load())
}

func TestSearch_SourceUnavailable(t *testing.T) {
	t.Parallel()

	src := &source.Static{Err: source.Unavailable("list", errors.New("no credentials"))}
	v := &fixedVerifier{status: model.VerdictActive}
	resp, err := newTestService(t, src, v).Search(context.Background(), "ABC", nil)
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, source.ErrSourceUnavailable)
	// the lookup still ran to completion
	assert.Equal(t, int32(1), v.calls.Load())
}

func TestSearch_Metrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	svc := NewService(NewAggregator(fixtureSource(), WithMetrics(m)), &fixedVerifier{status: model.VerdictActive}, nil, m)
	_, err = svc.Search(context.Background(), "ABC", nil)
	require.NoError(t, err)
	_, err = svc.Search(context.Background(), "QQQ", nil)
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "rrv_searches_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "found and empty series")

	count, err = testutil.GatherAndCount(reg, "rrv_worksheets_scanned_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "searched and skipped series")
}

func TestStream_DeliversProgressThenResult(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, fixtureSource(), &fixedVerifier{status: model.VerdictActive})

	var events []StreamEvent
	for ev := range svc.Stream(context.Background(), "ABC") {
		events = append(events, ev)
	}
	require.NotEmpty(t, events)

	last := events[len(events)-1]
	assert.Equal(t, "result", last.Type)
	require.NotNil(t, last.Result)
	assert.Len(t, last.Result.Records, 2)

	for _, ev := range events[:len(events)-1] {
		assert.Equal(t, "progress", ev.Type)
		assert.NotNil(t, ev.Progress)
	}
	assert.Equal(t, "start", events[0].Progress.Type)
}

func TestStream_Error(t *testing.T) {
	t.Parallel()

	src := &source.Static{Err: source.Unavailable("list", errors.New("boom"))}
	svc := newTestService(t, src, &fixedVerifier{status: model.VerdictActive})

	var last StreamEvent
	for ev := range svc.Stream(context.Background(), "ABC") {
		last = ev
	}
	assert.Equal(t, "error", last.Type)
	assert.Contains(t, last.Error, "boom")
}

// rendezvous lets the worksheet read and the registry lookup each wait for the
// other to start. Run one after the other, both sides give up after wait.
type rendezvous struct {
	scanStarted   chan struct{}
	lookupStarted chan struct{}
	wait          time.Duration
}

func newRendezvous() *rendezvous {
	return &rendezvous{
		scanStarted:   make(chan struct{}),
		lookupStarted: make(chan struct{}),
		wait:          2 * time.Second,
	}
}

func (r *rendezvous) Kind() string { return "rendezvous" }

func (r *rendezvous) ListSpreadsheets(ctx context.Context) ([]source.Spreadsheet, error) {
	return []source.Spreadsheet{rendezvousSpreadsheet{r}}, nil
}

type rendezvousSpreadsheet struct{ r *rendezvous }

func (s rendezvousSpreadsheet) Name() string { return "RRV 2024" }

func (s rendezvousSpreadsheet) Worksheets(ctx context.Context) ([]source.Worksheet, error) {
	return []source.Worksheet{rendezvousWorksheet{s.r}}, nil
}

type rendezvousWorksheet struct{ r *rendezvous }

func (w rendezvousWorksheet) Title() string { return "Enero" }

func (w rendezvousWorksheet) ReadAllValues(ctx context.Context) ([][]string, error) {
	close(w.r.scanStarted)
	select {
	case <-w.r.lookupStarted:
	case <-time.After(w.r.wait):
		return nil, errors.New("lookup never started")
	}
	return [][]string{
		{"FECHA", "PLACA", "EMPRESA"},
		{"15/01/2024", "ABC-123", "ACME"},
	}, nil
}

func (r *rendezvous) Lookup(ctx context.Context, plate string) model.Verdict {
	close(r.lookupStarted)
	select {
	case <-r.scanStarted:
	case <-time.After(r.wait):
		return model.Verdict{Status: model.VerdictNotActive, Plate: plate, Detail: "scan never started"}
	}
	return model.Verdict{Status: model.VerdictActive, Plate: plate}
}

func TestSearch_ScanAndLookupOverlap(t *testing.T) {
	t.Parallel()

	r := newRendezvous()
	resp, err := newTestService(t, r, r).Search(context.Background(), "ABC", nil)
	require.NoError(t, err)

	assert.Equal(t, model.VerdictActive, resp.Verdict.Status, resp.Verdict.Detail)
	require.Len(t, resp.Records, 1)
	require.Len(t, resp.Sheets, 1)
	assert.Equal(t, model.SheetSearched, resp.Sheets[0].Status)
}

// slowWorksheet and slowVerifier each take delay; run together the search costs
// about one delay, not two.
type slowWorksheet struct{ delay time.Duration }

func (w slowWorksheet) Kind() string { return "slow" }

func (w slowWorksheet) ListSpreadsheets(ctx context.Context) ([]source.Spreadsheet, error) {
	return []source.Spreadsheet{slowSpreadsheet{w}}, nil
}

type slowSpreadsheet struct{ w slowWorksheet }

func (s slowSpreadsheet) Name() string { return "RRV 2024" }

func (s slowSpreadsheet) Worksheets(ctx context.Context) ([]source.Worksheet, error) {
	return []source.Worksheet{s.w}, nil
}

func (w slowWorksheet) Title() string { return "Enero" }

func (w slowWorksheet) ReadAllValues(ctx context.Context) ([][]string, error) {
	time.Sleep(w.delay)
	return [][]string{{"PLACA"}, {"ABC-123"}}, nil
}

type slowVerifier struct{ delay time.Duration }

func (v slowVerifier) Lookup(ctx context.Context, plate string) model.Verdict {
	time.Sleep(v.delay)
	return model.Verdict{Status: model.VerdictActive, Plate: plate}
}

func TestSearch_LatencyIsTheSlowerTask(t *testing.T) {
	t.Parallel()

	const delay = 200 * time.Millisecond
	svc := newTestService(t, slowWorksheet{delay: delay}, slowVerifier{delay: delay})

	start := time.Now()
	resp, err := svc.Search(context.Background(), "ABC", nil)
	elapsed := time.Since(start)
	require.NoError(t, err)

	assert.Len(t, resp.Records, 1)
	assert.GreaterOrEqual(t, elapsed, delay)
	assert.Less(t, elapsed, 2*delay-50*time.Millisecond)
}
