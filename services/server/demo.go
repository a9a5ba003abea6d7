package server

import (
	"time"

	"github.com/dvoryanov/tipscraper/internal/tip"
)

// demoBatch returns a small fixed batch served when the cache is empty
// and no refresh succeeded, so the UI never renders an empty table.
func demoBatch() []tip.Tip {
	date := func(y int, m time.Month, d int) *time.Time {
		t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &t
	}
	odds := func(v float64) *float64 { return &v }
	money := func(v float64) *tip.Money {
		m := tip.Pounds(v)
		return &m
	}

	return []tip.Tip{
		{
			AddedDate:   date(2023, time.October, 15),
			Event:       "Manchester United v Liverpool",
			Prediction:  "Match winner • Manchester United",
			AdvisedOdds: odds(2.10),
			Result:      tip.ResultWon,
			Profit:      money(1.10),
		},
		{
			AddedDate:   date(2023, time.October, 14),
			Event:       "Real Madrid v Barcelona",
			Prediction:  "Total goals • Under 2.5",
			AdvisedOdds: odds(1.85),
			Result:      tip.ResultLost,
			Profit:      money(-1.00),
		},
		{
			AddedDate:   date(2023, time.October, 13),
			Event:       "Bayern Munich v Dortmund",
			Prediction:  "Handicap • Bayern Munich -1",
			AdvisedOdds: odds(1.95),
			Result:      tip.ResultWon,
			Profit:      money(0.95),
		},
	}
}
