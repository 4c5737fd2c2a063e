package offline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftvault/voucher-service/internal/model"
)

func extractDateFrom(t *testing.T, text string) model.FieldResult[string] {
	t.Helper()
	var f model.FieldResult[string]
	extractExpiryDate(text, &f)
	return f
}

func TestExtractExpiryDate_HebrewValidUntil(t *testing.T) {
	f := extractDateFrom(t, "בתוקף עד 31.12.2026")
	require.True(t, f.Present())
	assert.Equal(t, "2026-12-31", *f.Value)
	assert.Equal(t, model.ConfidenceHigh, f.Confidence)
	assert.Empty(t, f.Issues)
}

func TestExtractExpiryDate_EnglishPhraseTwoDigitYear(t *testing.T) {
	f := extractDateFrom(t, "valid until 31/12/26")
	require.True(t, f.Present())
	assert.Equal(t, "2026-12-31", *f.Value)
	assert.Equal(t, model.ConfidenceHigh, f.Confidence)
}

func TestExtractExpiryDate_BareTokenDayFirst(t *testing.T) {
	f := extractDateFrom(t, "שובר מתנה 05.07.2026 מחכה לך")
	require.True(t, f.Present())
	assert.Equal(t, "2026-07-05", *f.Value, "ambiguous tokens read day-first")
	assert.Equal(t, model.ConfidenceMedium, f.Confidence)
	assert.Contains(t, f.Issues, IssueDateFormatAssumed+": D/M/Y")
}

func TestExtractExpiryDate_YearFirstToken(t *testing.T) {
	f := extractDateFrom(t, "expiry 2026-12-31")
	require.True(t, f.Present())
	assert.Equal(t, "2026-12-31", *f.Value)
}

func TestExtractExpiryDate_LatestOfSeveralWins(t *testing.T) {
	f := extractDateFrom(t, "המבצע מ 1.1.2026 ועד 31.12.2026")
	require.True(t, f.Present())
	assert.Equal(t, "2026-12-31", *f.Value)
	assert.Equal(t, model.ConfidenceMedium, f.Confidence)
	assert.Contains(t, f.Issues, IssueMultipleDatesFound)
}

func TestExtractExpiryDate_ImpossibleDateRejected(t *testing.T) {
	assert.False(t, extractDateFrom(t, "valid until 30.02.2026").Present(),
		"February 30th does not exist")
	assert.False(t, extractDateFrom(t, "valid until 32.01.2026").Present())
}

func TestExtractExpiryDate_PhoneNumberNotADate(t *testing.T) {
	assert.False(t, extractDateFrom(t, "התקשרו 054-1234567").Present())
}

func TestExtractExpiryDate_CardCodeNotADate(t *testing.T) {
	assert.False(t, extractDateFrom(t, "1234-5678-9012-3456").Present(),
		"grouped card digits must not be chopped into a date")
}

func TestExtractExpiryDate_NoSignal(t *testing.T) {
	assert.False(t, extractDateFrom(t, "נתראה מחר").Present())
}
