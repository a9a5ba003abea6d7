package publisher

import (
	"github.com/dvoryanov/tipscraper/internal/tip"
)

// Publisher pushes freshly extracted tip batches to downstream consumers.
type Publisher interface {
	// PublishBatch publishes every tip of one extraction batch
	PublishBatch(tips []tip.Tip) error

	// Close releases the underlying connection
	Close() error
}
