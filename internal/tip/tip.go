package tip

import (
	"encoding/json"
	"time"
)

// Result is the settled outcome of a tip.
type Result string

const (
	ResultWon     Result = "won"
	ResultLost    Result = "lost"
	ResultVoid    Result = "void"
	ResultPending Result = "pending"
)

// ResultFromCode maps the site's numeric result codes to a Result.
// The upstream payloads are not consistent about codes; the canonical
// mapping here is the one used by the completed-tips feed:
// 1 is a win, 0 is a loss, anything else is treated as void.
func ResultFromCode(code int) Result {
	switch code {
	case 1:
		return ResultWon
	case 0:
		return ResultLost
	default:
		return ResultVoid
	}
}

// Tip is one normalized betting-prediction record. A Tip is built once by
// the extraction pipeline and never mutated afterwards.
type Tip struct {
	AddedDate     *time.Time
	MatchDateTime *time.Time
	Event         string
	Prediction    string
	AdvisedOdds   *float64
	Stake         *Money
	Result        Result
	Profit        *Money
	League        string
	SourceID      string
}

// wireTip is the JSON shape served by the API. Stake and profit travel as
// their formatted strings so the response matches what the site renders.
type wireTip struct {
	AddedDate     *time.Time `json:"addedDate"`
	MatchDateTime *time.Time `json:"matchDateTime"`
	Event         string     `json:"event"`
	Prediction    string     `json:"prediction,omitempty"`
	AdvisedOdds   *float64   `json:"advisedOdds"`
	Stake         *string    `json:"stake"`
	Result        Result     `json:"result"`
	Profit        *string    `json:"profit"`
	League        string     `json:"league,omitempty"`
	SourceID      string     `json:"sourceId,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (t Tip) MarshalJSON() ([]byte, error) {
	w := wireTip{
		AddedDate:     t.AddedDate,
		MatchDateTime: t.MatchDateTime,
		Event:         t.Event,
		Prediction:    t.Prediction,
		AdvisedOdds:   t.AdvisedOdds,
		Result:        t.Result,
		League:        t.League,
		SourceID:      t.SourceID,
	}
	if t.Stake != nil {
		s := t.Stake.String()
		w.Stake = &s
	}
	if t.Profit != nil {
		p := t.Profit.Signed()
		w.Profit = &p
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler. Round-trips every field
// produced by MarshalJSON.
func (t *Tip) UnmarshalJSON(data []byte) error {
	var w wireTip
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	t.AddedDate = w.AddedDate
	t.MatchDateTime = w.MatchDateTime
	t.Event = w.Event
	t.Prediction = w.Prediction
	t.AdvisedOdds = w.AdvisedOdds
	t.Result = w.Result
	t.League = w.League
	t.SourceID = w.SourceID
	t.Stake = nil
	t.Profit = nil
	if w.Stake != nil {
		if m, ok := ParseMoney(*w.Stake); ok {
			t.Stake = &m
		}
	}
	if w.Profit != nil {
		if m, ok := ParseMoney(*w.Profit); ok {
			t.Profit = &m
		}
	}
	return nil
}

// Consistent reports whether the profit sign agrees with the result.
// The extractor never enforces this; it exists so callers can flag
// suspicious records.
func (t Tip) Consistent() bool {
	if t.Profit == nil {
		return true
	}
	switch t.Result {
	case ResultWon:
		return t.Profit.Amount >= 0
	case ResultLost:
		return t.Profit.Amount <= 0
	default:
		return true
	}
}
