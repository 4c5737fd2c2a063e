package offline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftvault/voucher-service/internal/model"
)

func extractCodeFrom(t *testing.T, text string) model.FieldResult[string] {
	t.Helper()
	var f model.FieldResult[string]
	extractCode(text, &f)
	return f
}

func TestExtractCode_KeywordToken(t *testing.T) {
	f := extractCodeFrom(t, "קוד שובר: FOX-999 לרשת פוקס")
	require.True(t, f.Present())
	assert.Equal(t, "FOX-999", *f.Value)
	assert.Equal(t, model.ConfidenceHigh, f.Confidence)
	assert.Empty(t, f.Issues)
}

func TestExtractCode_VoucherCodePhrase(t *testing.T) {
	// "voucher" matches first with "code" as its token; the scan must land
	// on the actual code after the inner keyword.
	f := extractCodeFrom(t, "Your voucher code: SAVE20 is ready")
	require.True(t, f.Present())
	assert.Equal(t, "SAVE20", *f.Value)
	assert.Equal(t, model.ConfidenceHigh, f.Confidence)
}

func TestExtractCode_KeywordTokenNoDigits(t *testing.T) {
	f := extractCodeFrom(t, "Use coupon: WELCOME at checkout")
	require.True(t, f.Present())
	assert.Equal(t, "WELCOME", *f.Value)
	assert.Equal(t, model.ConfidenceLow, f.Confidence)
	assert.Contains(t, f.Issues, IssueCodeNoDigits+": WELCOME")
}

func TestExtractCode_KeywordDigitGroupAcrossNewline(t *testing.T) {
	f := extractCodeFrom(t, "קוד:\n1234 5678 9012 3456")
	require.True(t, f.Present())
	assert.Equal(t, "1234 5678 9012 3456", *f.Value)
	assert.Equal(t, model.ConfidenceHigh, f.Confidence)
}

func TestExtractCode_IsolatedDigitGroup(t *testing.T) {
	f := extractCodeFrom(t, "החיוב בוצע. 1234-5678-9012-3456 שמור את ההודעה")
	require.True(t, f.Present())
	assert.Equal(t, "1234-5678-9012-3456", *f.Value)
	assert.Equal(t, model.ConfidenceHigh, f.Confidence)
}

func TestExtractCode_IsolatedToken(t *testing.T) {
	f := extractCodeFrom(t, "מחכה לך XZ-1234-9A באפליקציה")
	require.True(t, f.Present())
	assert.Equal(t, "XZ-1234-9A", *f.Value)
	assert.Equal(t, model.ConfidenceMedium, f.Confidence)
	assert.Contains(t, f.Issues, IssueCodeGuessedFromToken+": XZ-1234-9A")
}

func TestExtractCode_PhoneNumberExcluded(t *testing.T) {
	f := extractCodeFrom(t, "לפרטים התקשרו 054-1234567")
	assert.False(t, f.Present(), "all-digit dashed token is phone-shaped")
}

func TestExtractCode_PhoneMessageWithPlainWords(t *testing.T) {
	f := extractCodeFrom(t, "my number is 054-1234567, call me.")
	assert.False(t, f.Present(), "unanchored dictionary words are not codes")
}

func TestExtractCode_DateShapedTokenExcluded(t *testing.T) {
	f := extractCodeFrom(t, "המבצע נגמר 31-12-2026 אל תפספסו")
	assert.False(t, f.Present())
}

func TestExtractCode_NoSignal(t *testing.T) {
	assert.False(t, extractCodeFrom(t, "נתראה מחר בערב").Present())
}
