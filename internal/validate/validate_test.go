package validate

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftvault/voucher-service/internal/model"
)

var testNow = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func TestValidate_GoodResultUntouched(t *testing.T) {
	text := "Fox voucher ₪200 code FOX-999 valid until 31.12.2026"
	var res model.ExtractionResult
	res.Store.Set("Fox", model.ConfidenceHigh, model.Evidence{Start: 0, End: 3, SourceText: "Fox"})
	res.Amount.Set(model.AmountValue{Value: 200, Currency: "ILS"}, model.ConfidenceHigh)
	res.ExpiryDate.Set("2026-12-31", model.ConfidenceHigh)
	res.RecomputeSummary()

	out := ValidateAt(&res, text, testNow)

	assert.Equal(t, model.ConfidenceHigh, out.Store.Confidence)
	assert.Equal(t, model.ConfidenceHigh, out.Amount.Confidence)
	assert.Equal(t, model.ConfidenceHigh, out.ExpiryDate.Confidence)
	assert.Empty(t, out.Summary.Issues)
}

func TestValidate_InputNeverMutated(t *testing.T) {
	var res model.ExtractionResult
	res.Store.Set("Fox", model.ConfidenceHigh, model.Evidence{Start: 0, End: 3, SourceText: "XXX"})
	res.RecomputeSummary()

	_ = ValidateAt(&res, "Fox voucher", testNow)

	assert.Equal(t, model.ConfidenceHigh, res.Store.Confidence)
	assert.Empty(t, res.Store.Issues)
}

func TestValidate_EvidenceTextMismatch(t *testing.T) {
	text := "Fox voucher"
	var res model.ExtractionResult
	res.Store.Set("Fox", model.ConfidenceHigh, model.Evidence{Start: 0, End: 3, SourceText: "Zara"})
	res.RecomputeSummary()

	out := ValidateAt(&res, text, testNow)

	assert.Equal(t, model.ConfidenceLow, out.Store.Confidence)
	assert.Contains(t, out.Store.Issues, IssueEvidenceTextMismatch)
	require.True(t, out.Store.Present(), "value kept, only trust is withdrawn")
}

func TestValidate_EvidenceSpanOutOfBoundsAndInverted(t *testing.T) {
	text := "short"
	var res model.ExtractionResult
	res.Code.Set("AB1234", model.ConfidenceHigh, model.Evidence{Start: 2, End: 99})
	res.Title.Set("Voucher", model.ConfidenceHigh, model.Evidence{Start: 4, End: 2})
	res.RecomputeSummary()

	out := ValidateAt(&res, text, testNow)

	assert.Contains(t, out.Code.Issues, IssueEvidenceSpanOutOfBounds)
	assert.Equal(t, model.ConfidenceLow, out.Code.Confidence)
	assert.Contains(t, out.Title.Issues, IssueEvidenceSpanInverted)
	assert.Equal(t, model.ConfidenceLow, out.Title.Confidence)
}

func TestValidate_MalformedDateRejected(t *testing.T) {
	var res model.ExtractionResult
	res.ExpiryDate.Set("31/12/2026", model.ConfidenceHigh)
	res.RecomputeSummary()

	out := ValidateAt(&res, "", testNow)

	assert.False(t, out.ExpiryDate.Present())
	assert.Contains(t, out.ExpiryDate.Issues, IssueDateMalformed)
	assert.Equal(t, model.ConfidenceLow, out.ExpiryDate.Confidence)
	assert.Equal(t, 1, out.Summary.MissingFieldCount)
}

func TestValidate_ImpossibleDateRejected(t *testing.T) {
	var res model.ExtractionResult
	res.ExpiryDate.Set("2026-02-30", model.ConfidenceHigh)
	res.RecomputeSummary()

	out := ValidateAt(&res, "", testNow)

	assert.False(t, out.ExpiryDate.Present())
	assert.Contains(t, out.ExpiryDate.Issues, IssueDateImpossible)
}

func TestValidate_LongPastDateFlaggedNotRejected(t *testing.T) {
	var res model.ExtractionResult
	res.ExpiryDate.Set("2020-01-01", model.ConfidenceHigh)
	res.RecomputeSummary()

	out := ValidateAt(&res, "", testNow)

	require.True(t, out.ExpiryDate.Present(), "expired voucher data is still data")
	assert.Contains(t, out.ExpiryDate.Issues, IssueDateLongPast)
}

func TestValidate_AmountChecks(t *testing.T) {
	t.Run("negative rejected", func(t *testing.T) {
		var res model.ExtractionResult
		res.Amount.Set(model.AmountValue{Value: -50, Currency: "ILS"}, model.ConfidenceHigh)
		out := ValidateAt(&res, "", testNow)
		assert.False(t, out.Amount.Present())
		assert.Contains(t, out.Amount.Issues, IssueAmountNotPositive)
	})

	t.Run("NaN rejected", func(t *testing.T) {
		var res model.ExtractionResult
		res.Amount.Set(model.AmountValue{Value: math.NaN()}, model.ConfidenceHigh)
		out := ValidateAt(&res, "", testNow)
		assert.False(t, out.Amount.Present())
		assert.Contains(t, out.Amount.Issues, IssueAmountNotFinite)
	})

	t.Run("implausibly large flagged", func(t *testing.T) {
		var res model.ExtractionResult
		res.Amount.Set(model.AmountValue{Value: 2_000_000, Currency: "ILS"}, model.ConfidenceHigh)
		out := ValidateAt(&res, "", testNow)
		require.True(t, out.Amount.Present())
		assert.Contains(t, out.Amount.Issues, IssueAmountImplausiblyLarge)
		assert.Equal(t, model.ConfidenceLow, out.Amount.Confidence)
	})

	t.Run("unsupported currency flagged", func(t *testing.T) {
		var res model.ExtractionResult
		res.Amount.Set(model.AmountValue{Value: 100, Currency: "JPY"}, model.ConfidenceHigh)
		out := ValidateAt(&res, "", testNow)
		require.True(t, out.Amount.Present())
		assert.Contains(t, out.Amount.Issues, IssueCurrencyNotAllowed)
		assert.NotContains(t, out.Amount.Issues, IssueCurrencyMalformed,
			"JPY is a real ISO code, just outside the allow-list")
		assert.Equal(t, model.ConfidenceLow, out.Amount.Confidence)
	})

	t.Run("malformed currency flagged", func(t *testing.T) {
		var res model.ExtractionResult
		res.Amount.Set(model.AmountValue{Value: 100, Currency: "N1S"}, model.ConfidenceHigh)
		out := ValidateAt(&res, "", testNow)
		require.True(t, out.Amount.Present())
		assert.Contains(t, out.Amount.Issues, IssueCurrencyMalformed)
		assert.NotContains(t, out.Amount.Issues, IssueCurrencyNotAllowed)
		assert.Equal(t, model.ConfidenceLow, out.Amount.Confidence)
	})

	t.Run("empty currency accepted", func(t *testing.T) {
		var res model.ExtractionResult
		res.Amount.Set(model.AmountValue{Value: 100}, model.ConfidenceMedium)
		out := ValidateAt(&res, "", testNow)
		assert.NotContains(t, out.Amount.Issues, IssueCurrencyNotAllowed)
		assert.Equal(t, model.ConfidenceMedium, out.Amount.Confidence)
	})
}

func TestValidate_Idempotent(t *testing.T) {
	text := "Fox voucher"
	var res model.ExtractionResult
	res.Store.Set("Fox", model.ConfidenceHigh, model.Evidence{Start: 0, End: 3, SourceText: "Zara"})
	res.ExpiryDate.Set("31/12/2026", model.ConfidenceMedium)
	res.Amount.Set(model.AmountValue{Value: -1}, model.ConfidenceHigh)
	res.RecomputeSummary()

	once := ValidateAt(&res, text, testNow)
	twice := ValidateAt(once, text, testNow)

	assert.Equal(t, once, twice)
}
