package usecase

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"AtlasQuant/internal/domain/models"
	drepo "AtlasQuant/internal/domain/repository"
	"AtlasQuant/internal/services/analytics"
)

// trendBars builds n daily bars drifting upward with mild noise, enough to
// survive the 60-row indicator warm-up.
func trendBars(n int) []models.Bar {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, n)
	px := 100.0
	for i := 0; i < n; i++ {
		px *= 1 + 0.001 + 0.002*math.Sin(float64(i)/3)
		bars[i] = models.Bar{
			Time:     base.AddDate(0, 0, i),
			Open:     px * 0.999,
			High:     px * 1.004,
			Low:      px * 0.996,
			Close:    px,
			AdjClose: px,
			Volume:   1_000_000,
		}
	}
	return bars
}

type fakeSource struct {
	bars []models.Bar
	err  error
}

func (f *fakeSource) FetchDaily(context.Context, string) ([]models.Bar, models.FetchMeta, error) {
	meta := models.FetchMeta{Used: "2y", Attempts: []models.FetchAttempt{{Source: "chart", Lookback: "2y", OK: f.err == nil, Rows: len(f.bars)}}}
	return f.bars, meta, f.err
}

type countMetrics struct {
	mu       sync.Mutex
	analyses map[string]int
	denials  map[string]int
	errs     map[string]int
}

func newCountMetrics() *countMetrics {
	return &countMetrics{analyses: map[string]int{}, denials: map[string]int{}, errs: map[string]int{}}
}

func (m *countMetrics) RecordAnalysis(_, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyses[status]++
}

func (m *countMetrics) RecordSafetyDenial(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.denials[reason]++
}

func (m *countMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[kind]++
}

func (m *countMetrics) RecordLastPrice(string, float64) {}
func (m *countMetrics) RecordLatency(string, float64)   {}

type capturePublisher struct {
	reports []*models.AnalysisReport
	intents []*models.OrderIntent
	fail    bool
}

func (p *capturePublisher) PublishReport(_ context.Context, r *models.AnalysisReport) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.reports = append(p.reports, r)
	return nil
}

func (p *capturePublisher) PublishIntent(_ context.Context, i *models.OrderIntent) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.intents = append(p.intents, i)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func newTestAnalyzer(t *testing.T, source drepo.BarSource, pub drepo.DecisionPublisher, m drepo.Metrics) *Analyzer {
	t.Helper()
	scores, err := analytics.NewScoreEngine(analytics.DefaultWeights())
	if err != nil {
		t.Fatalf("score engine: %v", err)
	}
	a, err := NewAnalyzer(source, scores, analytics.NewRuinSimulator(rand.NewSource(7)), nil, 0, pub, m, nil)
	if err != nil {
		t.Fatalf("analyzer: %v", err)
	}
	return a
}

func analyzeReq(ticker string) *models.AnalyzeRequest {
	return &models.AnalyzeRequest{
		Ticker:      ticker,
		SpreadBps:   5,
		SlippageBps: 5,
		FeeBps:      2,
		Profile:     "Trend",
		WinRate:     0.52,
		Payoff:      2.0,
		RiskPct:     2.0,
	}
}

func TestAnalyzeFullPipeline(t *testing.T) {
	pub := &capturePublisher{}
	metrics := newCountMetrics()
	a := newTestAnalyzer(t, &fakeSource{bars: trendBars(130)}, pub, metrics)

	report, err := a.Analyze(context.Background(), analyzeReq("PETR4.SA"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Insufficient {
		t.Fatalf("130 bars should be sufficient: %+v", report)
	}
	if report.Bars != 70 {
		t.Fatalf("bars = %d, want 70 rows after warm-up", report.Bars)
	}
	if report.LastPrice <= 0 || report.ATR14 <= 0 {
		t.Fatalf("last price/atr not populated: %+v", report)
	}
	if report.Verdict.Status == "" || len(report.Verdict.Reasons) == 0 {
		t.Fatalf("verdict missing: %+v", report.Verdict)
	}
	if report.Cost.TotalBps != 12 {
		t.Fatalf("cost total = %d, want 12", report.Cost.TotalBps)
	}
	if len(pub.reports) != 1 {
		t.Fatalf("published %d reports, want 1", len(pub.reports))
	}
	if metrics.analyses[report.Verdict.Status] != 1 {
		t.Fatalf("analysis metric not recorded for %s", report.Verdict.Status)
	}
}

func TestAnalyzeInsufficientHistoryIsFlaggedNotError(t *testing.T) {
	metrics := newCountMetrics()
	a := newTestAnalyzer(t, &fakeSource{bars: trendBars(40)}, nil, metrics)

	report, err := a.Analyze(context.Background(), analyzeReq("THIN.SA"))
	if err != nil {
		t.Fatalf("insufficient history must not error: %v", err)
	}
	if !report.Insufficient {
		t.Fatalf("report should be flagged insufficient: %+v", report)
	}
	if metrics.analyses["INSUFFICIENT"] != 1 {
		t.Fatalf("insufficient analysis not counted")
	}
}

func TestAnalyzeFetchDataErrorIsFlagged(t *testing.T) {
	a := newTestAnalyzer(t, &fakeSource{err: analytics.NewDataError("fetch_daily", "no rows")}, nil, newCountMetrics())

	report, err := a.Analyze(context.Background(), analyzeReq("GONE.SA"))
	if err != nil {
		t.Fatalf("fetch DataError must flag, not fail: %v", err)
	}
	if !report.Insufficient {
		t.Fatalf("report should be flagged insufficient")
	}
}

func TestAnalyzeTransportErrorPropagates(t *testing.T) {
	a := newTestAnalyzer(t, &fakeSource{err: errors.New("connection refused")}, nil, newCountMetrics())
	if _, err := a.Analyze(context.Background(), analyzeReq("PETR4.SA")); err == nil {
		t.Fatalf("transport error must propagate")
	}
}

func TestAnalyzeUnknownProfile(t *testing.T) {
	a := newTestAnalyzer(t, &fakeSource{bars: trendBars(130)}, nil, newCountMetrics())
	req := analyzeReq("PETR4.SA")
	req.Profile = "YOLO"
	var ce *analytics.ConfigError
	if _, err := a.Analyze(context.Background(), req); !errors.As(err, &ce) {
		t.Fatalf("unknown profile should be ConfigError, got %v", err)
	}
}

func TestAnalyzePublishFailureIsBestEffort(t *testing.T) {
	metrics := newCountMetrics()
	a := newTestAnalyzer(t, &fakeSource{bars: trendBars(130)}, &capturePublisher{fail: true}, metrics)

	report, err := a.Analyze(context.Background(), analyzeReq("PETR4.SA"))
	if err != nil {
		t.Fatalf("publish failure must not fail analysis: %v", err)
	}
	if report.Insufficient {
		t.Fatalf("unexpected insufficient flag")
	}
	if metrics.errs["publish_report"] != 1 {
		t.Fatalf("publish failure not counted")
	}
}
