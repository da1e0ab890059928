package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"AtlasQuant/internal/domain/models"
	drepo "AtlasQuant/internal/domain/repository"
	"AtlasQuant/internal/services/analytics"
	"AtlasQuant/pkg/logger"
)

// Analyzer runs the full decision pipeline for one instrument: acquire
// bars, derive indicators, assess cost and regime, score, simulate ruin and
// decide. Insufficient history is a flagged report, never an error.
type Analyzer struct {
	source     drepo.BarSource
	indicators *analytics.IndicatorEngine
	costs      *analytics.CostModel
	regimes    *analytics.RegimeClassifier
	scores     *analytics.ScoreEngine
	sim        *analytics.RuinSimulator

	profiles map[string]analytics.Profile
	verdicts map[string]*analytics.VerdictEngine

	publisher drepo.DecisionPublisher
	metrics   drepo.Metrics
	log       *logger.Logger
	now       func() time.Time
}

// NewAnalyzer validates the profile set up front and builds one verdict
// engine per profile. The publisher may be nil; publishing is best-effort.
func NewAnalyzer(
	source drepo.BarSource,
	scores *analytics.ScoreEngine,
	sim *analytics.RuinSimulator,
	profiles map[string]analytics.Profile,
	ruinThresholdPct float64,
	publisher drepo.DecisionPublisher,
	metrics drepo.Metrics,
	log *logger.Logger,
) (*Analyzer, error) {
	if len(profiles) == 0 {
		profiles = analytics.DefaultProfiles()
	}
	if ruinThresholdPct <= 0 {
		ruinThresholdPct = analytics.DefaultRuinThresholdPct
	}

	verdicts := make(map[string]*analytics.VerdictEngine, len(profiles))
	for name, p := range profiles {
		if err := p.Validate(name); err != nil {
			return nil, err
		}
		engine, err := analytics.NewVerdictEngine(analytics.Policy{
			StrictVol:        p.StrictVol,
			StrictDDPct:      p.StrictDDPct,
			RuinThresholdPct: ruinThresholdPct,
		})
		if err != nil {
			return nil, err
		}
		verdicts[name] = engine
	}

	return &Analyzer{
		source:     source,
		indicators: analytics.NewIndicatorEngine(),
		costs:      analytics.NewCostModel(),
		regimes:    analytics.NewRegimeClassifier(),
		scores:     scores,
		sim:        sim,
		profiles:   profiles,
		verdicts:   verdicts,
		publisher:  publisher,
		metrics:    metrics,
		log:        log,
		now:        time.Now,
	}, nil
}

// Profile returns the named profile for callers that size orders.
func (a *Analyzer) Profile(name string) (analytics.Profile, bool) {
	p, ok := a.profiles[name]
	return p, ok
}

// Analyze runs the pipeline for one request.
func (a *Analyzer) Analyze(ctx context.Context, req *models.AnalyzeRequest) (*models.AnalysisReport, error) {
	profile, ok := a.profiles[req.Profile]
	if !ok {
		return nil, analytics.NewConfigError("profile", fmt.Sprintf("unknown profile %q", req.Profile))
	}
	start := a.now()

	bars, meta, err := a.source.FetchDaily(ctx, req.Ticker)
	if err != nil {
		var de *analytics.DataError
		if errors.As(err, &de) {
			return a.insufficient(req.Ticker, 0, meta), nil
		}
		a.metrics.RecordError("fetch")
		return nil, fmt.Errorf("fetch %s: %w", req.Ticker, err)
	}

	rows, err := a.indicators.Compute(bars)
	if err != nil {
		a.metrics.RecordError("indicators")
		return nil, fmt.Errorf("indicators %s: %w", req.Ticker, err)
	}
	if len(rows) == 0 {
		return a.insufficient(req.Ticker, len(bars), meta), nil
	}

	cost, err := a.costs.Compute(req.SpreadBps, req.SlippageBps, req.FeeBps, profile.MaxCostBlockBps)
	if err != nil {
		return nil, err
	}

	regime, err := a.regimes.Assess(rows, cost.TotalBps)
	if err != nil {
		var de *analytics.DataError
		if errors.As(err, &de) {
			return a.insufficient(req.Ticker, len(bars), meta), nil
		}
		return nil, err
	}

	score, err := a.scores.Multi(rows, cost.TotalBps, regime.Label)
	if err != nil {
		return nil, err
	}

	ruin := a.sim.Estimate(analytics.RuinParams{
		WinRate:      req.WinRate,
		Payoff:       req.Payoff,
		RiskPerTrade: req.RiskPct / 100.0,
	})

	verdict := a.verdicts[req.Profile].Decide(regime, cost, ruin.RuinPct, score)

	last := rows[len(rows)-1]
	changePct := 0.0
	if len(rows) > 1 && rows[len(rows)-2].Close != 0 {
		changePct = (last.Close/rows[len(rows)-2].Close - 1) * 100
	}

	report := &models.AnalysisReport{
		Ticker:    req.Ticker,
		Timestamp: a.now().UTC().Format(time.RFC3339),
		Bars:      len(rows),
		LastPrice: last.Close,
		ChangePct: changePct,
		Regime:    regime,
		Score:     score,
		Cost:      cost,
		RuinPct:   ruin.RuinPct,
		Verdict:   verdict,
		ATR14:     last.ATR14,
		ZScore:    last.ZScore,
		RSI14:     last.RSI14,
		VolAnn:    last.VolAnn,
		Drawdown:  last.Drawdown,
		VaR95:     last.VaR95,
		CVaR95:    last.CVaR95,
		Fetch:     meta,
	}

	a.publishReport(ctx, report)
	a.metrics.RecordAnalysis(req.Ticker, verdict.Status)
	a.metrics.RecordLastPrice(req.Ticker, last.Close)
	a.metrics.RecordLatency("analyze", time.Since(start).Seconds())
	return report, nil
}

func (a *Analyzer) insufficient(ticker string, bars int, meta models.FetchMeta) *models.AnalysisReport {
	a.metrics.RecordAnalysis(ticker, "INSUFFICIENT")
	if a.log != nil {
		a.log.Warn("insufficient history",
			logger.String("ticker", ticker),
			logger.Int("bars", bars))
	}
	return &models.AnalysisReport{
		Ticker:       ticker,
		Timestamp:    a.now().UTC().Format(time.RFC3339),
		Insufficient: true,
		Bars:         bars,
		Fetch:        meta,
	}
}

func (a *Analyzer) publishReport(ctx context.Context, report *models.AnalysisReport) {
	if a.publisher == nil {
		return
	}
	if err := a.publisher.PublishReport(ctx, report); err != nil {
		a.metrics.RecordError("publish_report")
		if a.log != nil {
			a.log.Warn("report publish failed",
				logger.String("ticker", report.Ticker),
				logger.Error(err))
		}
	}
}
