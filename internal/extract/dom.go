package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dvoryanov/tipscraper/internal/tip"
	"github.com/dvoryanov/tipscraper/logger"
)

// Container selectors, most to least specific. The site's markup churns;
// the specific card classes break first, the generic card shapes last.
var containerSelectors = []string{
	"article.flex.w-full.flex-col",
	`[class*="feed-card"]`,
	".bg-white.rounded-lg.shadow-lg",
	"article",
}

// A selection of containers is only trusted when its text actually reads
// like a tip card and not page chrome.
var containerMarkers = []string{"stake", "odds"}

const minContainerTextLen = 40

// domAdapter extracts tips from the rendered page structure.
type domAdapter struct {
	norm *normalizer
	log  *logger.Logger
}

func newDOMAdapter(norm *normalizer) *domAdapter {
	return &domAdapter{
		norm: norm,
		log:  logger.ForExtractor("dom"),
	}
}

func (a *domAdapter) Name() string {
	return "dom"
}

// Extract tries each container selector in order and processes all matches
// of the first selector that yields at least one validated container.
func (a *domAdapter) Extract(payload string, maxCount int) []tip.Tip {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(payload))
	if err != nil {
		a.log.Debug().Err(err).Msg("payload does not parse as HTML")
		return nil
	}

	for _, selector := range containerSelectors {
		sel := doc.Find(selector)
		if sel.Length() == 0 {
			continue
		}
		if !a.validateContainers(sel) {
			continue
		}

		tips := a.processContainers(sel, maxCount)
		if len(tips) > 0 {
			return tips
		}
	}

	return nil
}

// validateContainers accepts a selection when at least one container's text
// carries every marker substring and is long enough to hold a real tip.
func (a *domAdapter) validateContainers(sel *goquery.Selection) bool {
	valid := false
	sel.EachWithBreak(func(i int, s *goquery.Selection) bool {
		text := strings.ToLower(s.Text())
		if len(strings.TrimSpace(text)) < minContainerTextLen {
			return true
		}
		for _, marker := range containerMarkers {
			if !strings.Contains(text, marker) {
				return true
			}
		}
		valid = true
		return false
	})
	return valid
}

func (a *domAdapter) processContainers(sel *goquery.Selection, maxCount int) []tip.Tip {
	var tips []tip.Tip
	sel.EachWithBreak(func(i int, s *goquery.Selection) bool {
		t, valid := a.processContainer(s)
		if !valid {
			return true
		}
		tips = append(tips, t)
		return len(tips) < maxCount
	})
	return tips
}

// processContainer runs every field extractor against one container and
// hands the result to the normalizer.
func (a *domAdapter) processContainer(s *goquery.Selection) (tip.Tip, bool) {
	f := fields{
		added:      extractDate(s),
		event:      extractEvent(s),
		prediction: extractPrediction(s),
		odds:       extractOdds(s),
		stake:      extractStake(s),
		result:     extractResult(s),
		profit:     extractProfit(s),
		league:     extractLeague(s),
	}

	t, valid := a.norm.assemble(f)
	if !valid && a.log.IsDebugEnabled() {
		a.log.Debug().Str("event", f.event).Msg("dropping invalid container")
	}
	return t, valid
}
