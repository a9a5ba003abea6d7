package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dvoryanov/tipscraper/internal/tip"
)

// Field extractors. Each one takes a candidate container (a parsed DOM
// subtree) or a raw text blob, tries its strategies in order, and returns
// the field value or its "not found" zero. None of them ever panic; a
// container that defeats every strategy simply yields nothing.

var monthNumbers = map[string]time.Month{
	"january":   time.January,
	"february":  time.February,
	"march":     time.March,
	"april":     time.April,
	"may":       time.May,
	"june":      time.June,
	"july":      time.July,
	"august":    time.August,
	"september": time.September,
	"october":   time.October,
	"november":  time.November,
	"december":  time.December,
}

var (
	// "19th December 2025 at 15:20", ordinal suffix and time optional
	humanDateRe = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{4})(?:\s+at\s+(\d{1,2}):(\d{2}))?`)
	isoDateRe   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)

	// "Team A v Team B", also accepts vs, vs. and v. separators
	eventRe = regexp.MustCompile(`(?i)\b([A-Za-z0-9][A-Za-z0-9.'&\- ]{0,40}?)\s+v(?:s\.?|\.)?\s+([A-Za-z0-9][A-Za-z0-9.'&\- ]{0,40})`)

	oddsRe   = regexp.MustCompile(`\b\d+\.\d{2}\b`)
	stakeRe  = regexp.MustCompile(`(?i)£?\s*(\d+(?:\.\d{2})?)\s*stake`)
	profitRe = regexp.MustCompile(`[+-]£\d+\.\d{2}`)
	resultRe = regexp.MustCompile(`(?i)\b(won|lost|void)\b`)
)

// machine-readable layouts accepted on a <time datetime="..."> attribute
var machineDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseMachineDate(v string) *time.Time {
	v = strings.TrimSpace(v)
	for _, layout := range machineDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}

// parseDateText finds a date inside free text: first a human-readable
// "D Month YYYY [at HH:MM]" form, then a bare ISO YYYY-MM-DD substring.
func parseDateText(text string) *time.Time {
	if m := humanDateRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, ok := monthNumbers[strings.ToLower(m[2])]
		year, _ := strconv.Atoi(m[3])
		if ok && day >= 1 && day <= 31 {
			hour, minute := 0, 0
			if m[4] != "" {
				hour, _ = strconv.Atoi(m[4])
				minute, _ = strconv.Atoi(m[5])
			}
			t := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
			return &t
		}
	}

	if m := isoDateRe.FindString(text); m != "" {
		if t, err := time.Parse("2006-01-02", m); err == nil {
			return &t
		}
	}

	return nil
}

// extractDate pulls the tip date from a container: a machine-readable
// attribute on the <time> node wins, then the node's title/text, then any
// date-looking substring in the container.
func extractDate(s *goquery.Selection) *time.Time {
	timeSel := s.Find("time").First()
	if timeSel.Length() > 0 {
		if v, ok := timeSel.Attr("datetime"); ok {
			if t := parseMachineDate(v); t != nil {
				return t
			}
		}
		if v, ok := timeSel.Attr("title"); ok {
			if t := parseDateText(v); t != nil {
				return t
			}
		}
		if t := parseDateText(timeSel.Text()); t != nil {
			return t
		}
	}
	return parseDateText(s.Text())
}

// extractEvent pulls the fixture name, preferring the fixture link text
// over a free-text "Team A v Team B" match.
func extractEvent(s *goquery.Selection) string {
	linkSel := s.Find(`a[href*="/fixture/"]`).First()
	if linkSel.Length() > 0 {
		if event := strings.TrimSpace(linkSel.Text()); event != "" {
			return event
		}
	}
	return eventFromText(s.Text())
}

func eventFromText(text string) string {
	if m := eventRe.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}
	return ""
}

// extractPrediction pulls the market/selection label, e.g.
// "Match winner • Al-Batin".
func extractPrediction(s *goquery.Selection) string {
	predSel := s.Find("dt.text-xl.font-bold").First()
	if predSel.Length() == 0 {
		predSel = s.Find("dt").First()
	}
	return strings.TrimSpace(predSel.Text())
}

// extractOdds pulls the advised decimal odds. Absence is nil, never zero.
func extractOdds(s *goquery.Selection) *float64 {
	oddsSel := s.Find("[data-odds]").First()
	if oddsSel.Length() > 0 {
		if v, ok := oddsSel.Attr("data-odds"); ok {
			if odds, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return &odds
			}
		}
	}
	return oddsFromText(s.Text())
}

func oddsFromText(text string) *float64 {
	if m := oddsRe.FindString(text); m != "" {
		if odds, err := strconv.ParseFloat(m, 64); err == nil {
			return &odds
		}
	}
	return nil
}

// extractStake pulls the stake amount. It never invents a stake; defaulting
// is the normalizer's job.
func extractStake(s *goquery.Selection) *tip.Money {
	stakeSel := s.Find("stake").First()
	if stakeSel.Length() > 0 {
		text := strings.TrimSpace(stakeSel.Text())
		text = regexp.MustCompile(`(?i)stake`).ReplaceAllString(text, "")
		if m, ok := tip.ParseMoney(text); ok {
			return &m
		}
	}

	if m := stakeRe.FindStringSubmatch(s.Text()); m != nil {
		if amount, err := strconv.ParseFloat(m[1], 64); err == nil {
			stake := tip.Pounds(amount)
			return &stake
		}
	}

	return nil
}

// extractResult maps outcome signals to a Result. No signal means the tip
// is still pending.
func extractResult(s *goquery.Selection) tip.Result {
	ddSel := s.Find("dl.bg-grey-light-3 dd").First()
	if ddSel.Length() > 0 {
		if r, ok := resultFromWord(ddSel.Text()); ok {
			return r
		}
	}

	// a success status block marks a winner even when the text is iconized
	if s.Find(".bg-success, .status-success").Length() > 0 {
		return tip.ResultWon
	}

	if r, ok := resultFromText(s.Text()); ok {
		return r
	}

	return tip.ResultPending
}

func resultFromWord(text string) (tip.Result, bool) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "won":
		return tip.ResultWon, true
	case "lost":
		return tip.ResultLost, true
	case "void":
		return tip.ResultVoid, true
	}
	return tip.ResultPending, false
}

func resultFromText(text string) (tip.Result, bool) {
	if m := resultRe.FindString(text); m != "" {
		return resultFromWord(m)
	}
	return tip.ResultPending, false
}

// extractProfit pulls the signed profit figure.
func extractProfit(s *goquery.Selection) *tip.Money {
	profitSel := s.Find("profit").First()
	if profitSel.Length() > 0 {
		if m, ok := tip.ParseMoney(strings.TrimSpace(profitSel.Text())); ok {
			return &m
		}
	}
	return profitFromText(s.Text())
}

func profitFromText(text string) *tip.Money {
	if match := profitRe.FindString(text); match != "" {
		if m, ok := tip.ParseMoney(match); ok {
			return &m
		}
	}
	return nil
}

// extractLeague pulls the competition name when the container carries one.
func extractLeague(s *goquery.Selection) string {
	leagueSel := s.Find(`a[href*="/competition/"]`).First()
	if leagueSel.Length() == 0 {
		leagueSel = s.Find(".competition, .league").First()
	}
	return strings.TrimSpace(leagueSel.Text())
}
