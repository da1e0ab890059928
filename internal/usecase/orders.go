package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"AtlasQuant/internal/domain/models"
	drepo "AtlasQuant/internal/domain/repository"
	"AtlasQuant/internal/services/analytics"
	"AtlasQuant/internal/services/execution"
	"AtlasQuant/pkg/logger"
)

// OrderResult is the outcome of an order submission. A safety denial or a
// blocked verdict is carried in Decision as data; Intent is only logged and
// published when the decision passed.
type OrderResult struct {
	Decision models.SafetyDecision  `json:"decision"`
	Intent   *models.OrderIntent    `json:"intent,omitempty"`
	Report   *models.AnalysisReport `json:"report,omitempty"`
}

// OrderService builds order intents from a fresh analysis plus ATR sizing
// and submits them through the safety gate into the ledger.
type OrderService struct {
	analyzer  *Analyzer
	gate      *execution.SafetyGate
	ledger    drepo.LedgerStore
	publisher drepo.DecisionPublisher
	metrics   drepo.Metrics
	log       *logger.Logger
	now       func() time.Time
}

// NewOrderService creates the order flow. The publisher may be nil.
func NewOrderService(
	analyzer *Analyzer,
	gate *execution.SafetyGate,
	ledger drepo.LedgerStore,
	publisher drepo.DecisionPublisher,
	metrics drepo.Metrics,
	log *logger.Logger,
) *OrderService {
	return &OrderService{
		analyzer:  analyzer,
		gate:      gate,
		ledger:    ledger,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
		now:       time.Now,
	}
}

// Submit analyzes the instrument, sizes the position, runs the safety gate
// and on pass logs and publishes the intent.
func (s *OrderService) Submit(ctx context.Context, req *models.OrderRequest) (*OrderResult, error) {
	report, err := s.analyzer.Analyze(ctx, &req.AnalyzeRequest)
	if err != nil {
		return nil, err
	}
	if report.Insufficient {
		return &OrderResult{
			Decision: models.SafetyDecision{OK: false, Reason: "INSUFFICIENT_DATA"},
			Report:   report,
		}, nil
	}
	if report.Verdict.Status == models.StatusBlocked {
		s.metrics.RecordSafetyDenial("VERDICT_BLOCKED")
		return &OrderResult{
			Decision: models.SafetyDecision{OK: false, Reason: "VERDICT_BLOCKED"},
			Report:   report,
		}, nil
	}

	intent, err := s.buildIntent(req, report)
	if err != nil {
		return nil, err
	}

	decision, err := s.gate.Validate(ctx, intent, req.Capital)
	if err != nil {
		return nil, fmt.Errorf("safety gate: %w", err)
	}
	if !decision.OK {
		s.metrics.RecordSafetyDenial(decision.Reason)
		if s.log != nil {
			s.log.Warn("order denied",
				logger.String("ticker", intent.Ticker),
				logger.String("reason", decision.Reason))
		}
		return &OrderResult{Decision: decision, Report: report}, nil
	}

	intent.Status = "LOGGED"
	if err := s.ledger.LogOrder(ctx, intent); err != nil {
		s.metrics.RecordError("ledger_write")
		return nil, fmt.Errorf("log order: %w", err)
	}
	s.publishIntent(ctx, intent)
	if s.log != nil {
		s.log.Info("order logged",
			logger.String("ticker", intent.Ticker),
			logger.String("side", intent.Side),
			logger.Int64("qty", intent.Qty))
	}
	return &OrderResult{Decision: decision, Intent: intent, Report: report}, nil
}

// buildIntent derives sizing and stop/target geometry by side. The effective
// risk is the requested risk capped by the profile.
func (s *OrderService) buildIntent(req *models.OrderRequest, report *models.AnalysisReport) (*models.OrderIntent, error) {
	profile, ok := s.analyzer.Profile(req.Profile)
	if !ok {
		return nil, analytics.NewConfigError("profile", fmt.Sprintf("unknown profile %q", req.Profile))
	}

	stopATR := req.StopATR
	if stopATR <= 0 {
		stopATR = profile.StopATR
	}
	targetR := req.TargetR
	if targetR <= 0 {
		targetR = profile.TargetR
	}
	effRisk := math.Min(req.RiskPct, profile.RiskCapPct)

	px := report.LastPrice
	sizing := analytics.SizeByATR(px, report.ATR14, req.Capital, effRisk, stopATR)
	if sizing.Qty <= 0 {
		return nil, analytics.NewDataError("sizing",
			fmt.Sprintf("qty sized to zero for %s at risk %.2f%%", req.Ticker, effRisk))
	}

	var stop, target float64
	switch req.Side {
	case models.SideBuy:
		stop = px - sizing.StopDist
		target = px + targetR*math.Abs(px-stop)
	case models.SideSell:
		stop = px + sizing.StopDist
		target = px - targetR*math.Abs(px-stop)
	default:
		return nil, analytics.NewConfigError("side", fmt.Sprintf("unknown side %q", req.Side))
	}

	intent := &models.OrderIntent{
		TimestampUTC: s.now().UTC().Format(time.RFC3339),
		Ticker:       req.Ticker,
		Side:         req.Side,
		OrderType:    req.OrderType,
		TIF:          req.TIF,
		Qty:          sizing.Qty,
		Notional:     float64(sizing.Qty) * px,
		PriceRef:     px,
		Stop:         &stop,
		Target:       &target,
		RiskPct:      effRisk,
		Regime:       report.Regime.Label,
		Score:        report.Score.FinalScore,
		CostBps:      report.Cost.TotalBps,
		Status:       "PENDING",
		Tags:         req.Tags,
	}
	if req.OrderType == models.OrderTypeLimit {
		limit := px
		intent.LimitPrice = &limit
	}
	return intent, nil
}

func (s *OrderService) publishIntent(ctx context.Context, intent *models.OrderIntent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishIntent(ctx, intent); err != nil {
		s.metrics.RecordError("publish_intent")
		if s.log != nil {
			s.log.Warn("intent publish failed",
				logger.String("ticker", intent.Ticker),
				logger.Error(err))
		}
	}
}
