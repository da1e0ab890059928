package analytics

import "AtlasQuant/internal/domain/models"

// CostModel converts the three cost components into a total-cost verdict.
// Pure function: no state, monotonic non-decreasing in each component.
type CostModel struct{}

// NewCostModel creates a CostModel.
func NewCostModel() *CostModel { return &CostModel{} }

// Compute derives the cost breakdown. The blocking boundary is inclusive:
// total_bps == max_block_bps already blocks. Negative components and a
// non-positive block threshold are rejected as ConfigError.
func (m *CostModel) Compute(spreadBps, slippageBps, feeBps, maxBlockBps int) (models.CostBreakdown, error) {
	if spreadBps < 0 || slippageBps < 0 || feeBps < 0 {
		return models.CostBreakdown{}, NewConfigError("cost_bps", "cost components must be non-negative")
	}
	if maxBlockBps <= 0 {
		return models.CostBreakdown{}, NewConfigError("max_block_bps", "block threshold must be positive")
	}

	total := spreadBps + slippageBps + feeBps
	return models.CostBreakdown{
		SpreadBps:    spreadBps,
		SlippageBps:  slippageBps,
		FeeBps:       feeBps,
		TotalBps:     total,
		MaxBlockBps:  maxBlockBps,
		Blocked:      total >= maxBlockBps,
		BreakEvenPct: float64(total) / 10000.0,
	}, nil
}
