package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetSplitPart(t *testing.T) {
	part, err := GetSplitPart("portfolio_tip", "_", 1)
	assert.NoError(t, err)
	assert.Equal(t, "tip", part)

	part, err = GetSplitPart("portfolio_tip", "_", 0)
	assert.NoError(t, err)
	assert.Equal(t, "portfolio", part)

	_, err = GetSplitPart("portfolio_tip", "_", 2)
	assert.Error(t, err)

	// no separator: the whole string is part zero
	part, err = GetSplitPart("plain", "_", 0)
	assert.NoError(t, err)
	assert.Equal(t, "plain", part)
}
