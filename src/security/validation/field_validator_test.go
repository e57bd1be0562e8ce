package validation

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateStringNotEmpty(t *testing.T) {
	assert.NoError(t, ValidateStringNotEmpty("RELIANCE", "stock"))
	assert.ErrorIs(t, ValidateStringNotEmpty("", "stock"), ErrValidationFailed)
	assert.ErrorIs(t, ValidateStringNotEmpty("   ", "stock"), ErrValidationFailed)
}

func TestValidateStringMaxLength(t *testing.T) {
	assert.NoError(t, ValidateStringMaxLength("abc", 3, "field"))
	assert.ErrorIs(t, ValidateStringMaxLength("abcd", 3, "field"), ErrValidationFailed)
	assert.NoError(t, ValidateStringMaxLength(strings.Repeat("é", 3), 3, "field"))
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"user@example.com", "first.last+tag@sub.domain.co"}
	for _, e := range valid {
		assert.NoError(t, ValidateEmail(e), e)
	}

	invalid := []string{"", "not-an-email", "user@", "@example.com", "user@example"}
	for _, e := range invalid {
		assert.ErrorIs(t, ValidateEmail(e), ErrValidationFailed, e)
	}
}

func TestValidatePositiveFloat(t *testing.T) {
	assert.NoError(t, ValidatePositiveFloat(101.25, "entryPrice"))

	for _, v := range []float64{0, -1.5, math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.ErrorIs(t, ValidatePositiveFloat(v, "entryPrice"), ErrValidationFailed)
	}
}

func TestValidatePositiveInt(t *testing.T) {
	assert.NoError(t, ValidatePositiveInt(50, "quantity"))
	assert.ErrorIs(t, ValidatePositiveInt(0, "quantity"), ErrValidationFailed)
	assert.ErrorIs(t, ValidatePositiveInt(-50, "quantity"), ErrValidationFailed)
}

func TestValidateTradeType(t *testing.T) {
	assert.NoError(t, ValidateTradeType("BUY"))
	assert.NoError(t, ValidateTradeType("SELL"))

	for _, s := range []string{"", "buy", "sell", "HOLD", "Buy"} {
		assert.ErrorIs(t, ValidateTradeType(s), ErrValidationFailed, s)
	}
}
