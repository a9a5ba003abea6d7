package tip

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is a currency-tagged amount. The source site quotes everything in
// GBP, so extractors only ever produce "£", but the symbol is carried
// explicitly rather than assumed at formatting time.
type Money struct {
	Currency string
	Amount   float64
}

// Pounds builds a GBP amount.
func Pounds(amount float64) Money {
	return Money{Currency: "£", Amount: amount}
}

// String formats the amount without a leading plus, e.g. "£10.00" or
// "-£10.00".
func (m Money) String() string {
	if m.Amount < 0 {
		return fmt.Sprintf("-%s%.2f", m.Currency, math.Abs(m.Amount))
	}
	return fmt.Sprintf("%s%.2f", m.Currency, m.Amount)
}

// Signed formats the amount the way the site renders profit:
// "+£6.32", "-£10.00", "£0.00".
func (m Money) Signed() string {
	switch {
	case m.Amount > 0:
		return fmt.Sprintf("+%s%.2f", m.Currency, m.Amount)
	case m.Amount < 0:
		return fmt.Sprintf("-%s%.2f", m.Currency, math.Abs(m.Amount))
	default:
		return fmt.Sprintf("%s0.00", m.Currency)
	}
}

// ParseMoney parses strings of the form "£10", "+£6.32" or "-£10.00".
func ParseMoney(s string) (Money, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, false
	}

	negative := false
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		negative = true
		s = s[1:]
	}

	currency := "£"
	if strings.HasPrefix(s, "£") {
		s = strings.TrimPrefix(s, "£")
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Money{}, false
	}
	if negative {
		amount = -amount
	}
	return Money{Currency: currency, Amount: amount}, true
}
