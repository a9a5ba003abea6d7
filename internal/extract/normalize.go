package extract

import (
	"strings"
	"time"

	"github.com/dvoryanov/tipscraper/internal/tip"
)

// fields is the partial field map produced by running the extractors
// against one candidate container.
type fields struct {
	added      *time.Time
	matchAt    *time.Time
	event      string
	prediction string
	odds       *float64
	stake      *tip.Money
	result     tip.Result
	profit     *tip.Money
	league     string
	sourceID   string
}

// placeholderEvents is the teaser text the site renders in place of locked
// content. A container whose event matches one of these holds no real tip.
var placeholderEvents = []string{
	"unlock this free",
	"sign up to see",
	"subscribe to view",
	"locked content",
}

func isPlaceholderEvent(event string) bool {
	lower := strings.ToLower(event)
	for _, placeholder := range placeholderEvents {
		if strings.Contains(lower, placeholder) {
			return true
		}
	}
	return false
}

// normalizer assembles extracted fields into a Tip and applies the validity
// gate. It performs no parsing or I/O of its own.
type normalizer struct {
	defaultStake *tip.Money
}

// assemble turns a field map into a Tip, or rejects the container outright.
// Rejection discards the whole container; there are no partial records.
func (n *normalizer) assemble(f fields) (tip.Tip, bool) {
	event := strings.TrimSpace(f.event)
	if event == "" || isPlaceholderEvent(event) {
		return tip.Tip{}, false
	}

	result := f.result
	if result == "" {
		result = tip.ResultPending
	}

	stake := f.stake
	if stake == nil && n.defaultStake != nil {
		s := *n.defaultStake
		stake = &s
	}

	return tip.Tip{
		AddedDate:     f.added,
		MatchDateTime: f.matchAt,
		Event:         event,
		Prediction:    strings.TrimSpace(f.prediction),
		AdvisedOdds:   f.odds,
		Stake:         stake,
		Result:        result,
		Profit:        f.profit,
		League:        strings.TrimSpace(f.league),
		SourceID:      f.sourceID,
	}, true
}
