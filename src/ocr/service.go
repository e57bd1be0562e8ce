package ocr

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/tradejournal/backend/src/logger"
)

// ExtractionService runs recognition plus field extraction, memoizing
// results per image digest so a re-submitted screenshot does not hit the
// OCR engine twice. Only extraction inputs are cached; aggregation output
// elsewhere is always recomputed.
type ExtractionService struct {
	recognizer Recognizer
	results    *cache.Cache
}

func NewExtractionService(recognizer Recognizer, ttl time.Duration) *ExtractionService {
	return &ExtractionService{
		recognizer: recognizer,
		results:    cache.New(ttl, 2*ttl),
	}
}

// ExtractFromImage recognizes text in a screenshot and parses it into a
// trade candidate. Any failure, from the engine or from field resolution,
// is reported as ErrExtraction; no partial candidate is ever returned.
func (s *ExtractionService) ExtractFromImage(ctx context.Context, image []byte) (*TradeCandidate, error) {
	digest := sha256.Sum256(image)
	key := hex.EncodeToString(digest[:])

	if cached, found := s.results.Get(key); found {
		logger.L.Debug("OCR extraction cache hit", "digest", key[:12])
		candidate := cached.(TradeCandidate)
		return &candidate, nil
	}

	rawText, err := s.recognizer.Recognize(ctx, image)
	if err != nil {
		logger.L.Warn("OCR recognition failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	candidate, err := ExtractTradeFields(rawText)
	if err != nil {
		return nil, err
	}

	s.results.Set(key, *candidate, cache.DefaultExpiration)
	return candidate, nil
}
