package ocr

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/username/tradejournal/backend/src/stats"
)

// ErrExtraction marks any failure to resolve a complete trade candidate
// from recognized text. Handlers surface it with UserFacingMessage and
// never return a partial result.
var ErrExtraction = errors.New("trade extraction failed")

// UserFacingMessage is the single message shown for every extraction failure.
const UserFacingMessage = "Failed to extract trade details. Please upload a clear screenshot."

// TradeCandidate is a pre-filled trade parsed from a brokerage screenshot.
// Qty is always the unsigned magnitude; any sign in the source text only
// feeds side inference.
type TradeCandidate struct {
	Symbol    string     `json:"symbol"`
	Qty       float64    `json:"qty"`
	Entry     float64    `json:"entry"`
	Exit      float64    `json:"exit"`
	Side      stats.Side `json:"side"`
	Timestamp time.Time  `json:"timestamp"`
}

var (
	// Optionally negative, optionally comma-grouped number directly before
	// the word SHARES.
	qtyRe = regexp.MustCompile(`(?i)(-\s*\d+(?:,\d{3})*\.?\d*|\d+(?:,\d{3})*\.?\d*)\s*SHARES`)

	// Average (entry) price label.
	avgRe = regexp.MustCompile(`(?i)AVG\s*([\d,]+\.\d+)`)

	// Last-traded (exit) price label. OCR frequently misreads LTP: L can
	// come back as 1, I or 7, and T as 7, so "17P" and "L 7 P" style
	// variants are accepted.
	exitRe = regexp.MustCompile(`(?i)([L1I7][T7]\s*P|LTP|17P)\s*([\d,]+\.\d+)`)

	// Symbols are runs of 3+ uppercase letters. Deliberately case-sensitive.
	symbolRe = regexp.MustCompile(`[A-Z]{3,}`)
	upperRe  = regexp.MustCompile(`^[A-Z]+$`)
)

// reservedSymbols are index names that must not be mistaken for a stock symbol.
var reservedSymbols = map[string]bool{
	"NIFTY":     true,
	"BANKNIFTY": true,
}

func parseGroupedNumber(s string) (float64, error) {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", "")
	return strconv.ParseFloat(s, 64)
}

// ExtractTradeFields parses raw OCR output into a trade candidate. It is a
// heuristic over noisy text: every field is searched independently and the
// whole extraction fails unless symbol, quantity, entry and exit all
// resolve. A zero entry or exit counts as unresolved.
func ExtractTradeFields(rawText string) (*TradeCandidate, error) {
	cleanText := strings.Join(strings.Fields(rawText), " ")

	// Quantity. The sign is split off immediately: magnitude fills the
	// candidate, the sign only informs side inference below.
	var (
		qty         float64
		qtyResolved bool
		qtyNegative bool
		qtyEnd      int
	)
	if loc := qtyRe.FindStringSubmatchIndex(cleanText); loc != nil {
		raw := cleanText[loc[2]:loc[3]]
		if v, err := parseGroupedNumber(raw); err == nil {
			qtyResolved = true
			qtyNegative = v < 0
			if qtyNegative {
				v = -v
			}
			qty = v
			qtyEnd = loc[1]
		}
	}

	// Entry price (AVG label).
	var entry float64
	if m := avgRe.FindStringSubmatch(cleanText); m != nil {
		entry, _ = parseGroupedNumber(m[1])
	}

	// Exit price (fuzzy LTP label).
	var exit float64
	if m := exitRe.FindStringSubmatch(cleanText); m != nil {
		exit, _ = parseGroupedNumber(m[2])
	}

	// Symbol: prefer the first uppercase run right after the quantity
	// token, then fall back to scanning every token.
	var symbol string
	if qtyResolved {
		afterQty := strings.TrimSpace(cleanText[qtyEnd:])
		symbol = symbolRe.FindString(afterQty)
	}
	if symbol == "" {
		for _, word := range strings.Fields(cleanText) {
			if len(word) >= 3 && upperRe.MatchString(word) && !reservedSymbols[word] {
				symbol = word
				break
			}
		}
	}

	// Side inference. Approximate: a negative share count means a sell,
	// and a falling price with a positive share count is assumed to be a
	// short position close-out.
	side := stats.SideBuy
	if qtyResolved && qtyNegative {
		side = stats.SideSell
	} else if qtyResolved && qty > 0 && entry != 0 && exit != 0 && exit < entry {
		side = stats.SideSell
	}

	if symbol == "" || !qtyResolved || entry == 0 || exit == 0 {
		return nil, fmt.Errorf("%w: missing critical fields: symbol, qty, entry, exit", ErrExtraction)
	}

	return &TradeCandidate{
		Symbol:    symbol,
		Qty:       qty,
		Entry:     entry,
		Exit:      exit,
		Side:      side,
		Timestamp: time.Now().UTC(),
	}, nil
}
