package model

// Market is reference metadata for a tradable symbol.
type Market struct {
	ID       string `json:"id"`
	Symbol   string `json:"symbol"`
	Currency string `json:"currency"` // base
	Pair     string `json:"pair"`     // quote
	Status   bool   `json:"status"`
	Label    string `json:"label,omitempty"`
}

// Slashed returns BASE/QUOTE, or "" when the market lacks either side.
func (m Market) Slashed() string {
	if m.Currency == "" || m.Pair == "" {
		return ""
	}
	return m.Currency + "/" + m.Pair
}

// Joined returns BASEQUOTE.
func (m Market) Joined() string {
	return m.Currency + m.Pair
}
