package settlement

import "errors"

// Report summarises one settlement pass.
type Report struct {
	Scanned   int `json:"scanned"`
	Accruing  int `json:"accruing"`
	Settled   int `json:"settled"`
	Skipped   int `json:"skipped"`
	Recovered int `json:"recovered"`
	Failed    int `json:"failed"`
}

// errSkip aborts a settlement tx without counting as a failure: another
// pass already settled the investment, or it left the open state.
var errSkip = errors.New("settlement: skipped")
