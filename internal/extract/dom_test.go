package extract

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dvoryanov/tipscraper/internal/tip"
)

func domTestAdapter() *domAdapter {
	return newDOMAdapter(&normalizer{})
}

func tipCard(event string) string {
	return fmt.Sprintf(`<article class="flex w-full flex-col">
		<time datetime="2025-12-19T15:20:00Z">19th December 2025</time>
		<a href="/fixture/123">%s</a>
		<dt class="text-xl font-bold">Match winner • Arsenal</dt>
		<span data-odds="2.10">2.10 odds</span>
		<stake>£10 stake</stake>
		<dl class="bg-grey-light-3"><dd>Won</dd></dl>
		<profit><span>+£11.00</span></profit>
	</article>`, event)
}

func TestDOMExtractFullCard(t *testing.T) {
	payload := "<html><body>" + tipCard("Arsenal v Chelsea") + "</body></html>"

	tips := domTestAdapter().Extract(payload, 10)
	assert.Len(t, tips, 1)

	got := tips[0]
	assert.Equal(t, "Arsenal v Chelsea", got.Event)
	assert.Equal(t, "Match winner • Arsenal", got.Prediction)
	assert.Equal(t, "2025-12-19", got.AddedDate.Format("2006-01-02"))
	assert.Equal(t, 2.10, *got.AdvisedOdds)
	assert.Equal(t, "£10.00", got.Stake.String())
	assert.Equal(t, tip.ResultWon, got.Result)
	assert.Equal(t, "+£11.00", got.Profit.Signed())
}

func TestDOMSelectorPriority(t *testing.T) {
	// a generic shadow card sits next to the specific article card; the
	// specific selector matches first and the generic card is never visited
	payload := `<html><body>` + tipCard("Arsenal v Chelsea") + `
		<div class="bg-white rounded-lg shadow-lg">
			<a href="/fixture/999">Leeds v Derby</a>
			<span>2.50 odds and a £5 stake</span>
		</div>
	</body></html>`

	tips := domTestAdapter().Extract(payload, 10)
	assert.Len(t, tips, 1)
	assert.Equal(t, "Arsenal v Chelsea", tips[0].Event)
}

func TestDOMFeedCardFallback(t *testing.T) {
	payload := `<html><body>
		<div class="feed-card-item">
			<a href="/fixture/123">Arsenal v Chelsea</a>
			<span data-odds="1.95">1.95 odds</span>
			<stake>£10 stake</stake>
		</div>
	</body></html>`

	tips := domTestAdapter().Extract(payload, 10)
	assert.Len(t, tips, 1)
	assert.Equal(t, "Arsenal v Chelsea", tips[0].Event)
	assert.Equal(t, 1.95, *tips[0].AdvisedOdds)
	assert.Equal(t, tip.ResultPending, tips[0].Result)
}

func TestDOMRejectsPageChrome(t *testing.T) {
	// articles exist but none of them reads like a tip card
	payload := `<html><body>
		<article>Navigation links and a cookie banner without the magic words</article>
		<article>About us, careers, contact, privacy policy and more footer text</article>
	</body></html>`

	assert.Empty(t, domTestAdapter().Extract(payload, 10))
}

func TestDOMRejectsShortContainers(t *testing.T) {
	payload := `<html><body><article>stake odds</article></body></html>`
	assert.Empty(t, domTestAdapter().Extract(payload, 10))
}

func TestDOMMaxCount(t *testing.T) {
	payload := "<html><body>" +
		tipCard("Arsenal v Chelsea") +
		tipCard("Leeds v Derby") +
		tipCard("Fulham v Brentford") +
		"</body></html>"

	tips := domTestAdapter().Extract(payload, 2)
	assert.Len(t, tips, 2)
}

func TestDOMSkipsPlaceholderCards(t *testing.T) {
	payload := "<html><body>" +
		tipCard("Unlock this free tip now") +
		tipCard("Arsenal v Chelsea") +
		"</body></html>"

	tips := domTestAdapter().Extract(payload, 10)
	assert.Len(t, tips, 1)
	assert.Equal(t, "Arsenal v Chelsea", tips[0].Event)
}

func TestDOMNotHTML(t *testing.T) {
	// goquery parses almost anything, so this degrades to no containers
	assert.Empty(t, domTestAdapter().Extract("just some plain text", 10))
}
