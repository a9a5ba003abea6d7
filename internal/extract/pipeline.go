package extract

import (
	"github.com/dvoryanov/tipscraper/internal/tip"
	"github.com/dvoryanov/tipscraper/logger"
)

// Adapter locates candidate tip containers in one payload shape and turns
// them into normalized tips. Adapters never return errors: a payload an
// adapter cannot read yields an empty result and the orchestrator moves on.
type Adapter interface {
	Name() string
	Extract(payload string, maxCount int) []tip.Tip
}

// Options configures a Pipeline.
type Options struct {
	// DefaultStake is applied by the normalizer when a container carries
	// no stake. Nil means extracted tips keep a nil stake.
	DefaultStake *tip.Money
}

// Pipeline runs the source adapters in fixed priority order: embedded
// state JSON, then DOM containers, then the free-text scan. The first
// adapter that yields at least one valid tip wins outright; results are
// never merged across adapters.
type Pipeline struct {
	adapters []Adapter
	log      *logger.Logger
}

// New builds the standard pipeline.
func New(opts Options) *Pipeline {
	norm := &normalizer{defaultStake: opts.DefaultStake}
	return newPipeline(
		newStateJSONAdapter(norm),
		newDOMAdapter(norm),
		newTextScanAdapter(norm),
	)
}

func newPipeline(adapters ...Adapter) *Pipeline {
	return &Pipeline{
		adapters: adapters,
		log:      logger.ForExtractor("pipeline"),
	}
}

// ExtractTips extracts up to maxCount tips from one raw payload. It is
// deterministic and side-effect-free; every internal failure degrades to
// fewer tips, never to an error or a panic.
func (p *Pipeline) ExtractTips(rawPayload string, maxCount int) []tip.Tip {
	if rawPayload == "" || maxCount <= 0 {
		return []tip.Tip{}
	}

	for _, adapter := range p.adapters {
		tips := p.runAdapter(adapter, rawPayload, maxCount)
		if len(tips) > 0 {
			p.log.Debug().
				Str("adapter", adapter.Name()).
				Int("tips", len(tips)).
				Msg("adapter produced tips")
			return tips
		}
	}

	// exhausted: the caller decides whether to fall back to cache or demo data
	return []tip.Tip{}
}

// runAdapter shields the orchestrator from a misbehaving adapter. The
// upstream markup is uncontrolled; one pathological page must not take the
// whole pass down.
func (p *Pipeline) runAdapter(adapter Adapter, payload string, maxCount int) (tips []tip.Tip) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Warn().
				Str("adapter", adapter.Name()).
				Interface("panic", r).
				Msg("adapter panicked, treating as empty result")
			tips = nil
		}
	}()
	return adapter.Extract(payload, maxCount)
}
