package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dvoryanov/tipscraper/internal/tip"
)

type stubAdapter struct {
	name  string
	tips  []tip.Tip
	calls int
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Extract(payload string, maxCount int) []tip.Tip {
	s.calls++
	if len(s.tips) > maxCount {
		return s.tips[:maxCount]
	}
	return s.tips
}

type panicAdapter struct{}

func (panicAdapter) Name() string { return "panic" }

func (panicAdapter) Extract(payload string, maxCount int) []tip.Tip {
	panic("slice bounds out of range")
}

func TestPipelineFirstSuccessWins(t *testing.T) {
	first := &stubAdapter{name: "first", tips: []tip.Tip{{Event: "A v B"}}}
	second := &stubAdapter{name: "second", tips: []tip.Tip{{Event: "C v D"}}}

	tips := newPipeline(first, second).ExtractTips("payload", 10)
	assert.Len(t, tips, 1)
	assert.Equal(t, "A v B", tips[0].Event)
	assert.Equal(t, 1, first.calls)
	assert.Zero(t, second.calls)
}

func TestPipelineFallsThroughEmptyAdapters(t *testing.T) {
	first := &stubAdapter{name: "first"}
	second := &stubAdapter{name: "second", tips: []tip.Tip{{Event: "C v D"}}}

	tips := newPipeline(first, second).ExtractTips("payload", 10)
	assert.Len(t, tips, 1)
	assert.Equal(t, "C v D", tips[0].Event)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestPipelineExhausted(t *testing.T) {
	first := &stubAdapter{name: "first"}
	second := &stubAdapter{name: "second"}

	tips := newPipeline(first, second).ExtractTips("payload", 10)
	assert.NotNil(t, tips)
	assert.Empty(t, tips)
}

func TestPipelineRecoversFromAdapterPanic(t *testing.T) {
	good := &stubAdapter{name: "good", tips: []tip.Tip{{Event: "A v B"}}}

	tips := newPipeline(panicAdapter{}, good).ExtractTips("payload", 10)
	assert.Len(t, tips, 1)
	assert.Equal(t, "A v B", tips[0].Event)
}

func TestPipelineEmptyPayload(t *testing.T) {
	first := &stubAdapter{name: "first", tips: []tip.Tip{{Event: "A v B"}}}
	p := newPipeline(first)

	assert.Empty(t, p.ExtractTips("", 10))
	assert.Empty(t, p.ExtractTips("payload", 0))
	assert.Empty(t, p.ExtractTips("payload", -1))
	assert.Zero(t, first.calls)
}

func TestPipelineStateJSONBeatsDOM(t *testing.T) {
	// the embedded state and the rendered markup disagree on purpose; the
	// state adapter runs first so its event wins and the DOM is never used
	payload := `<html><head><script>
		window.__INITIAL_STATE__={"PORTFOLIO_TIP_CACHED":{"k1":{"title":"A v B","result":1}}};
	</script></head><body>` + tipCard("Arsenal v Chelsea") + `</body></html>`

	tips := New(Options{}).ExtractTips(payload, 10)
	assert.Len(t, tips, 1)
	assert.Equal(t, "A v B", tips[0].Event)
}

func TestPipelineDefaultStakeApplied(t *testing.T) {
	stake := tip.Pounds(10)
	payload := `window.__INITIAL_STATE__={"PORTFOLIO_TIP_CACHED":{"k1":{"title":"A v B"}}};`

	tips := New(Options{DefaultStake: &stake}).ExtractTips(payload, 10)
	assert.Len(t, tips, 1)
	assert.NotNil(t, tips[0].Stake)
	assert.Equal(t, "£10.00", tips[0].Stake.String())
}

func TestPipelineIdempotent(t *testing.T) {
	payload := "<html><body>" + tipCard("Arsenal v Chelsea") + tipCard("Leeds v Derby") + "</body></html>"
	p := New(Options{})

	first := p.ExtractTips(payload, 10)
	second := p.ExtractTips(payload, 10)
	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
}
