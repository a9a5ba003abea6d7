package extract

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dvoryanov/tipscraper/helpers"
	"github.com/dvoryanov/tipscraper/internal/tip"
	"github.com/dvoryanov/tipscraper/logger"
)

// The site ships its client state as a script-embedded JSON assignment.
// The object is followed by arbitrary script text, so the blob has to be
// cut out with a balanced-brace scan rather than handed to the decoder
// wholesale.
const stateMarker = "window.__INITIAL_STATE__"

const (
	cachedCollection    = "PORTFOLIO_TIP_CACHED"
	completedCollection = "PORTFOLIO_TIP_COMPLETED"
)

// stateJSONAdapter extracts tips from the embedded state blob. It is the
// highest-priority adapter: when the state survives a page redesign it is
// far more reliable than scraping the rendered DOM.
type stateJSONAdapter struct {
	norm *normalizer
	log  *logger.Logger
}

func newStateJSONAdapter(norm *normalizer) *stateJSONAdapter {
	return &stateJSONAdapter{
		norm: norm,
		log:  logger.ForExtractor("state-json"),
	}
}

func (a *stateJSONAdapter) Name() string {
	return "state-json"
}

// Extract locates the state object, resolves the completed-tip references
// into the tip cache and normalizes each resolved object. A malformed blob
// yields an empty result, never an error.
func (a *stateJSONAdapter) Extract(payload string, maxCount int) []tip.Tip {
	blob, ok := locateStateObject(payload)
	if !ok {
		return nil
	}

	var state map[string]json.RawMessage
	if err := json.Unmarshal([]byte(blob), &state); err != nil {
		a.log.Debug().Err(err).Msg("state blob does not decode")
		return nil
	}

	cached := decodeObjectMap(state[cachedCollection])
	completed := decodeObjectMap(state[completedCollection])
	if len(cached) == 0 {
		return nil
	}

	var tips []tip.Tip
	used := make(map[string]bool, len(cached))

	// Completed references first: they carry the feed ordering. Each one
	// points into the cache by composite portfolioRef_tipRef key.
	for _, key := range sortedKeys(completed) {
		ref := completed[key]
		portfolioRef := probeString(ref, "portfolioRef", "portfolio")
		tipRef := probeString(ref, "tipRef", "tip")

		cacheKey := portfolioRef + "_" + tipRef
		if portfolioRef == "" || tipRef == "" {
			// older payloads key the reference itself by the composite key
			cacheKey = key
		}

		obj, found := cached[cacheKey]
		if !found || used[cacheKey] {
			continue
		}
		used[cacheKey] = true

		if t, valid := a.normalizeObject(obj, cacheKey); valid {
			tips = append(tips, t)
			if len(tips) >= maxCount {
				return tips
			}
		}
	}

	// Then whatever else sits in the cache.
	for _, key := range sortedKeys(cached) {
		if used[key] {
			continue
		}
		if t, valid := a.normalizeObject(cached[key], key); valid {
			tips = append(tips, t)
			if len(tips) >= maxCount {
				return tips
			}
		}
	}

	return tips
}

func (a *stateJSONAdapter) normalizeObject(obj map[string]interface{}, cacheKey string) (tip.Tip, bool) {
	f := tipFieldsFromJSON(obj)
	if f.sourceID == "" {
		// the second half of the composite key is the upstream tip key
		if ref, err := helpers.GetSplitPart(cacheKey, "_", 1); err == nil {
			f.sourceID = ref
		}
	}

	t, valid := a.norm.assemble(f)
	if !valid {
		a.log.Debug().Str("key", cacheKey).Msg("dropping invalid cached tip")
	}
	return t, valid
}

// locateStateObject finds the JSON object assigned to the state marker. It
// also accepts a payload that is itself a bare state object, which the
// upstream API returns for some endpoints.
func locateStateObject(payload string) (string, bool) {
	start := -1
	if idx := strings.Index(payload, stateMarker); idx >= 0 {
		brace := strings.IndexByte(payload[idx:], '{')
		if brace < 0 {
			return "", false
		}
		start = idx + brace
	} else if trimmed := strings.TrimSpace(payload); strings.HasPrefix(trimmed, "{") &&
		strings.Contains(trimmed, cachedCollection) {
		start = strings.IndexByte(payload, '{')
	}

	if start < 0 {
		return "", false
	}
	return scanBalancedObject(payload, start)
}

// scanBalancedObject returns the substring from start to the brace that
// closes the object opened there, skipping braces inside JSON strings.
func scanBalancedObject(s string, start int) (string, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	// ran off the end without closing: malformed payload
	return "", false
}

func decodeObjectMap(raw json.RawMessage) map[string]map[string]interface{} {
	if raw == nil {
		return nil
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}

	objects := make(map[string]map[string]interface{}, len(entries))
	for key, entry := range entries {
		var obj map[string]interface{}
		if err := json.Unmarshal(entry, &obj); err != nil {
			continue
		}
		objects[key] = obj
	}
	return objects
}

func sortedKeys(m map[string]map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// tipFieldsFromJSON probes a raw tip object for each field using an ordered
// key list per field, mirroring the several shapes the upstream has shipped.
func tipFieldsFromJSON(obj map[string]interface{}) fields {
	f := fields{
		added:    probeDate(obj, "dateAdded", "tipDate", "createdAt"),
		matchAt:  probeDate(obj, "matchDate", "eventDate", "fixtureDate"),
		event:    probeString(obj, "title", "event", "fixture", "match"),
		league:   probeString(obj, "competition", "league", "competitionName"),
		sourceID: probeString(obj, "id", "_id", "reference"),
	}

	f.prediction = predictionFromJSON(obj)

	if odds, ok := probeNumber(obj, "odds", "finalOdds", "advisedOdds"); ok {
		f.odds = &odds
	} else if item := firstBetItem(obj); item != nil {
		if odds, ok := probeNumber(item, "finalOdds", "createdOdds"); ok {
			f.odds = &odds
		}
	}

	if amount, ok := probeNumber(obj, "totalStake", "stake", "stakeAmount"); ok {
		stake := tip.Pounds(amount)
		f.stake = &stake
	}

	f.result = resultFromJSON(obj)

	if amount, ok := probeNumber(obj, "profit"); ok {
		profit := tip.Pounds(amount)
		f.profit = &profit
	}

	return f
}

func predictionFromJSON(obj map[string]interface{}) string {
	if item := firstBetItem(obj); item != nil {
		market := probeString(item, "marketText")
		bet := probeString(item, "betText")
		switch {
		case market != "" && bet != "":
			return market + " • " + bet
		case market != "":
			return market
		case bet != "":
			return bet
		}
	}

	market := probeString(obj, "market")
	bet := probeString(obj, "betType")
	if market != "" || bet != "" {
		return strings.TrimSpace(strings.TrimSuffix(market+" • "+bet, " • "))
	}

	return probeString(obj, "prediction")
}

func resultFromJSON(obj map[string]interface{}) tip.Result {
	if raw, exists := obj["result"]; exists {
		switch v := raw.(type) {
		case float64:
			return tip.ResultFromCode(int(v))
		case string:
			if r, ok := resultFromWord(v); ok {
				return r
			}
		}
	}
	if status := probeString(obj, "status"); status != "" {
		if r, ok := resultFromWord(status); ok {
			return r
		}
	}
	return tip.ResultPending
}

func firstBetItem(obj map[string]interface{}) map[string]interface{} {
	items, ok := obj["tipBetItem"].([]interface{})
	if !ok || len(items) == 0 {
		return nil
	}
	item, ok := items[0].(map[string]interface{})
	if !ok {
		return nil
	}
	return item
}

// probeString returns the first key that holds a non-empty string. Numeric
// values are formatted, since upstream ids arrive both quoted and bare.
func probeString(obj map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		switch v := obj[key].(type) {
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		case float64:
			if v == float64(int64(v)) {
				return fmt.Sprintf("%d", int64(v))
			}
			return fmt.Sprintf("%g", v)
		}
	}
	return ""
}

// probeNumber returns the first key that parses as a number. Quoted numbers
// count; the upstream is not consistent about that either.
func probeNumber(obj map[string]interface{}, keys ...string) (float64, bool) {
	for _, key := range keys {
		switch v := obj[key].(type) {
		case float64:
			return v, true
		case string:
			var parsed float64
			if _, err := fmt.Sscanf(strings.TrimSpace(v), "%g", &parsed); err == nil {
				return parsed, true
			}
		}
	}
	return 0, false
}

// probeDate returns the first key that parses as a date. Numbers are taken
// as unix milliseconds.
func probeDate(obj map[string]interface{}, keys ...string) *time.Time {
	for _, key := range keys {
		switch v := obj[key].(type) {
		case string:
			if t := parseMachineDate(v); t != nil {
				return t
			}
			if t := parseDateText(v); t != nil {
				return t
			}
		case float64:
			t := time.UnixMilli(int64(v)).UTC()
			return &t
		}
	}
	return nil
}
