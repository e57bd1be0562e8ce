package ocr

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/tradejournal/backend/src/stats"
)

type stubRecognizer struct {
	text  string
	err   error
	calls int
}

func (s *stubRecognizer) Recognize(ctx context.Context, image []byte) (string, error) {
	s.calls++
	return s.text, s.err
}

func TestExtractFromImageSuccess(t *testing.T) {
	rec := &stubRecognizer{text: "-50 shares avg 101.25 ltp 99.00 RELIANCE"}
	svc := NewExtractionService(rec, time.Minute)

	got, err := svc.ExtractFromImage(context.Background(), []byte("fake-png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "RELIANCE", got.Symbol)
	assert.InDelta(t, 50, got.Qty, 1e-9)
	assert.Equal(t, stats.SideSell, got.Side)
}

func TestExtractFromImageCachesByDigest(t *testing.T) {
	rec := &stubRecognizer{text: "100 shares INFY avg 1500.00 ltp 1510.00"}
	svc := NewExtractionService(rec, time.Minute)

	image := []byte("same-screenshot")
	first, err := svc.ExtractFromImage(context.Background(), image)
	require.NoError(t, err)
	second, err := svc.ExtractFromImage(context.Background(), image)
	require.NoError(t, err)

	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, first.Symbol, second.Symbol)
	assert.NotSame(t, first, second)
}

func TestExtractFromImageWrapsRecognizerFailure(t *testing.T) {
	rec := &stubRecognizer{err: errors.New("engine exploded")}
	svc := NewExtractionService(rec, time.Minute)

	got, err := svc.ExtractFromImage(context.Background(), []byte("img"))
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestExtractFromImageUnparseableTextFails(t *testing.T) {
	rec := &stubRecognizer{text: "nothing tradeable here"}
	svc := NewExtractionService(rec, time.Minute)

	got, err := svc.ExtractFromImage(context.Background(), []byte("img"))
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrExtraction)

	// Failures are never cached; a retry hits the engine again.
	_, _ = svc.ExtractFromImage(context.Background(), []byte("img"))
	assert.Equal(t, 2, rec.calls)
}
