package models

// Instrument is one tradable catalog entry. Discovery is out of scope; the
// store only persists and serves rows seeded by an operator.
type Instrument struct {
	Name           string `json:"name"`
	Category       string `json:"category"`
	Ticker         string `json:"ticker"`
	CurrencyCode   string `json:"currency_code"`
	Base           string `json:"base"`
	Country        string `json:"country"`
	Exchange       string `json:"exchange"`
	PrioritySource string `json:"priority_source"`
	BridgeKey      string `json:"bridge_key"`
	IsActive       bool   `json:"is_active"`
}
