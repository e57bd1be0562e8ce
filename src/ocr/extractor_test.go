package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/tradejournal/backend/src/stats"
)

func TestExtractTradeFields(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected TradeCandidate
	}{
		{
			name: "negative quantity infers sell",
			text: "-50 shares avg 101.25 ltp 99.00 RELIANCE",
			expected: TradeCandidate{
				Symbol: "RELIANCE",
				Qty:    50,
				Entry:  101.25,
				Exit:   99.00,
				Side:   stats.SideSell,
			},
		},
		{
			name: "positive quantity rising price is a buy",
			text: "100 shares TATASTEEL avg 120.50 ltp 125.00",
			expected: TradeCandidate{
				Symbol: "TATASTEEL",
				Qty:    100,
				Entry:  120.50,
				Exit:   125.00,
				Side:   stats.SideBuy,
			},
		},
		{
			name: "positive quantity falling price falls back to sell",
			text: "75 shares INFY avg 1540.00 ltp 1498.25",
			expected: TradeCandidate{
				Symbol: "INFY",
				Qty:    75,
				Entry:  1540.00,
				Exit:   1498.25,
				Side:   stats.SideSell,
			},
		},
		{
			name: "comma grouped numbers",
			text: "1,500 shares HDFCBANK avg 1,642.80 ltp 1,655.10",
			expected: TradeCandidate{
				Symbol: "HDFCBANK",
				Qty:    1500,
				Entry:  1642.80,
				Exit:   1655.10,
				Side:   stats.SideBuy,
			},
		},
		{
			name: "misread ltp label 17P",
			text: "10 shares WIPRO avg 410.00 17P 415.50",
			expected: TradeCandidate{
				Symbol: "WIPRO",
				Qty:    10,
				Entry:  410.00,
				Exit:   415.50,
				Side:   stats.SideBuy,
			},
		},
		{
			name: "misread ltp label with spacing",
			text: "10 shares WIPRO avg 410.00 l7 p 415.50",
			expected: TradeCandidate{
				Symbol: "WIPRO",
				Qty:    10,
				Entry:  410.00,
				Exit:   415.50,
				Side:   stats.SideBuy,
			},
		},
		{
			name: "negative quantity with space after sign",
			text: "- 25 shares SBIN avg 612.40 ltp 618.00",
			expected: TradeCandidate{
				Symbol: "SBIN",
				Qty:    25,
				Entry:  612.40,
				Exit:   618.00,
				Side:   stats.SideSell,
			},
		},
		{
			name: "collapses noisy whitespace",
			text: "  40   shares\n\tITC   avg  402.15\n ltp  405.60 ",
			expected: TradeCandidate{
				Symbol: "ITC",
				Qty:    40,
				Entry:  402.15,
				Exit:   405.60,
				Side:   stats.SideBuy,
			},
		},
		{
			name: "symbol found before the quantity token",
			text: "RELIANCE regular 50 shares avg 101.25 ltp 103.00",
			expected: TradeCandidate{
				Symbol: "RELIANCE",
				Qty:    50,
				Entry:  101.25,
				Exit:   103.00,
				Side:   stats.SideBuy,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractTradeFields(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.expected.Symbol, got.Symbol)
			assert.InDelta(t, tt.expected.Qty, got.Qty, 1e-9)
			assert.InDelta(t, tt.expected.Entry, got.Entry, 1e-9)
			assert.InDelta(t, tt.expected.Exit, got.Exit, 1e-9)
			assert.Equal(t, tt.expected.Side, got.Side)
			assert.False(t, got.Timestamp.IsZero())
		})
	}
}

func TestExtractTradeFieldsFailures(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty input", text: ""},
		{name: "missing entry price", text: "50 shares RELIANCE ltp 99.00"},
		{name: "missing exit price", text: "50 shares RELIANCE avg 101.25"},
		{name: "missing quantity", text: "RELIANCE avg 101.25 ltp 99.00"},
		{name: "missing symbol", text: "50 shares avg 101.25 ltp 99.00"},
		{name: "zero entry price treated as unresolved", text: "50 shares RELIANCE avg 0.00 ltp 99.00"},
		{name: "zero exit price treated as unresolved", text: "50 shares RELIANCE avg 101.25 ltp 0.00"},
		{name: "unrelated text", text: "quarterly results beat estimates"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractTradeFields(tt.text)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrExtraction)
			assert.Nil(t, got)
		})
	}
}

func TestExtractTradeFieldsSkipsReservedIndexNames(t *testing.T) {
	// NIFTY is an index, not a tradable symbol; the token scan must skip it
	// and settle on the real symbol further along.
	got, err := ExtractTradeFields("NIFTY TCS 50 shares avg 101.25 ltp 103.00")
	require.NoError(t, err)
	assert.Equal(t, "TCS", got.Symbol)
}
