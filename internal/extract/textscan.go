package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dvoryanov/tipscraper/internal/tip"
	"github.com/dvoryanov/tipscraper/logger"
)

// textScanAdapter is the last resort: flatten the whole page to text and
// scan it line by line for event/date/odds/result patterns. It only ever
// runs after both structured adapters came up empty.
type textScanAdapter struct {
	norm *normalizer
	log  *logger.Logger
}

func newTextScanAdapter(norm *normalizer) *textScanAdapter {
	return &textScanAdapter{
		norm: norm,
		log:  logger.ForExtractor("text-scan"),
	}
}

func (a *textScanAdapter) Name() string {
	return "text-scan"
}

// A line shorter than this cannot hold a fixture plus any signal worth
// keeping, and skipping it bounds the regex work on noisy pages.
const minScanLineLen = 8

func (a *textScanAdapter) Extract(payload string, maxCount int) []tip.Tip {
	text := payload
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(payload)); err == nil {
		if body := doc.Find("body").Text(); strings.TrimSpace(body) != "" {
			text = body
		}
	}

	var tips []tip.Tip
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < minScanLineLen {
			continue
		}

		event := eventFromText(line)
		if event == "" {
			continue
		}

		f := fields{
			event:  event,
			added:  parseDateText(line),
			odds:   oddsFromText(line),
			profit: profitFromText(line),
		}
		if r, ok := resultFromText(line); ok {
			f.result = r
		}

		if t, valid := a.norm.assemble(f); valid {
			tips = append(tips, t)
			if len(tips) >= maxCount {
				break
			}
		}
	}

	return tips
}
