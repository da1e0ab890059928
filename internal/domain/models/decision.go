package models

// CostBreakdown is the pure derivation of total trading cost from its three
// components, in basis points.
type CostBreakdown struct {
	SpreadBps    int     `json:"spread_bps"`
	SlippageBps  int     `json:"slippage_bps"`
	FeeBps       int     `json:"fee_bps"`
	TotalBps     int     `json:"total_bps"`
	MaxBlockBps  int     `json:"max_block_bps"`
	Blocked      bool    `json:"blocked"`
	BreakEvenPct float64 `json:"break_even_pct"`
}

// Regime labels. EXT/DISC suffixes are appended to the base label when the
// z-score is stretched, so callers match with strings.Contains.
const (
	RegimeStress     = "STRESS"
	RegimeVol        = "VOL"
	RegimeUptrend    = "UPTREND"
	RegimeDowntrend  = "DOWNTREND"
	RegimeTransition = "TRANSITION"
)

// RegimeAssessment labels the current market state and scores operability.
type RegimeAssessment struct {
	Label       string  `json:"label"`
	ZScore      float64 `json:"z"`
	VolAnn      float64 `json:"vol"`
	Drawdown    float64 `json:"drawdown"`
	Slope       float64 `json:"slope"`
	Operability int     `json:"operability"`
}

// ScoreBreakdown holds the multi-factor score and its components, each on a
// 0-100 scale rounded to one decimal.
type ScoreBreakdown struct {
	TrendScore   float64 `json:"trend_score"`
	MeanRevScore float64 `json:"meanrev_score"`
	RiskScore    float64 `json:"risk_score"`
	FinalScore   float64 `json:"final_score"`
}

// RuinEstimate is the Monte Carlo ruin probability together with the
// (clamped) parameters that produced it.
type RuinEstimate struct {
	RuinPct      float64 `json:"ruin_pct"`
	WinRate      float64 `json:"win_rate"`
	Payoff       float64 `json:"payoff"`
	RiskPerTrade float64 `json:"risk_per_trade"`
	Sims         int     `json:"sims"`
	Trades       int     `json:"trades"`
}

// Verdict statuses, in escalation order.
const (
	StatusAuthorized = "AUTHORIZED"
	StatusDefensive  = "DEFENSIVE"
	StatusBlocked    = "BLOCKED"
)

// Commands derived 1:1 from the status.
const (
	CommandReady     = "READY"
	CommandDefensive = "DEFENSIVE"
	CommandBlocked   = "BLOCKED"
)

// Verdict is the final authorization decision. Reasons is never empty; when
// no rule triggers it holds the single code "OK".
type Verdict struct {
	Status  string   `json:"status"`
	Command string   `json:"command"`
	Reasons []string `json:"reasons"`
}

// SafetyDecision is the pre-submission gate outcome. A denial is an expected
// control result, not an error; Reason always carries a specific code.
type SafetyDecision struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason"`
}

// AnalysisReport is the structured payload handed to the narrative/reporting
// collaborator. Field names form a stable schema contract.
type AnalysisReport struct {
	Ticker       string           `json:"ticker"`
	Timestamp    string           `json:"timestamp_utc"`
	Insufficient bool             `json:"insufficient"`
	Bars         int              `json:"bars"`
	LastPrice    float64          `json:"last_price"`
	ChangePct    float64          `json:"change_pct"`
	Regime       RegimeAssessment `json:"regime"`
	Score        ScoreBreakdown   `json:"score"`
	Cost         CostBreakdown    `json:"cost"`
	RuinPct      float64          `json:"ruin_pct"`
	Verdict      Verdict          `json:"verdict"`
	ATR14        float64          `json:"atr14"`
	ZScore       float64          `json:"zscore"`
	RSI14        float64          `json:"rsi14"`
	VolAnn       float64          `json:"vol_ann"`
	Drawdown     float64          `json:"drawdown"`
	VaR95        float64          `json:"var95"`
	CVaR95       float64          `json:"cvar95"`
	Fetch        FetchMeta        `json:"fetch"`
}

// ScreenerRow is one screener result line.
type ScreenerRow struct {
	Ticker string  `json:"ticker"`
	Price  float64 `json:"px"`
	ZScore float64 `json:"z"`
	RSI14  float64 `json:"rsi"`
	VolAnn float64 `json:"vol"`
}
