package repository

// Lookback is a history window requested from the bar source.
type Lookback string

const (
	Lookback2Y  Lookback = "2y"
	Lookback1Y  Lookback = "1y"
	Lookback6Mo Lookback = "6mo"
)

// FallbackLookbacks is the retry ladder: longest history first, shrinking
// until a source yields enough rows.
func FallbackLookbacks() []Lookback {
	return []Lookback{Lookback2Y, Lookback1Y, Lookback6Mo}
}

// Days returns the approximate calendar span of the lookback.
func (l Lookback) Days() int {
	switch l {
	case Lookback2Y:
		return 730
	case Lookback1Y:
		return 365
	case Lookback6Mo:
		return 182
	default:
		return 365
	}
}

// IsValidLookback reports whether l is part of the retry ladder.
func IsValidLookback(l Lookback) bool {
	switch l {
	case Lookback2Y, Lookback1Y, Lookback6Mo:
		return true
	default:
		return false
	}
}
