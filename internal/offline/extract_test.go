package offline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftvault/voucher-service/internal/model"
)

func TestExtract_HebrewVoucherMessage(t *testing.T) {
	text := `שובר מתנה לרשת פוקס על סך 200 ₪ קוד: FOX-999 בתוקף עד 31.12.2026`
	res := Extract(text, "sms")

	assert.Equal(t, model.UsedOffline, res.RoutingMeta.Used)

	require.True(t, res.Store.Present())
	assert.Equal(t, "Fox", *res.Store.Value)
	require.True(t, res.Title.Present())
	assert.Equal(t, "Fox Voucher", *res.Title.Value)

	require.True(t, res.Amount.Present())
	assert.Equal(t, 200.0, res.Amount.Value.Value)
	assert.Equal(t, "ILS", res.Amount.Value.Currency)
	assert.Equal(t, model.ConfidenceHigh, res.Amount.Confidence)

	require.True(t, res.Code.Present())
	assert.Equal(t, "FOX-999", *res.Code.Value)
	assert.Equal(t, model.ConfidenceHigh, res.Code.Confidence)

	require.True(t, res.ExpiryDate.Present())
	assert.Equal(t, "2026-12-31", *res.ExpiryDate.Value)
	assert.Equal(t, model.ConfidenceHigh, res.ExpiryDate.Confidence)

	assert.Equal(t, 0, res.Summary.MissingFieldCount)
}

func TestExtract_PartialEnglishMessage(t *testing.T) {
	res := Extract("Your voucher: XZ-1234-9A", "chat")

	require.True(t, res.Code.Present())
	assert.Equal(t, "XZ-1234-9A", *res.Code.Value)
	assert.Equal(t, model.ConfidenceHigh, res.Code.Confidence)

	assert.False(t, res.Store.Present())
	assert.False(t, res.Title.Present())
	assert.False(t, res.Amount.Present())
	assert.False(t, res.ExpiryDate.Present())
	assert.Equal(t, 3, res.Summary.MissingFieldCount)
}

func TestExtract_NonVoucherMessage(t *testing.T) {
	res := Extract("לפרטים נוספים התקשרו 054-1234567", "sms")

	assert.False(t, res.Code.Present(), "phone number is not a code")
	assert.False(t, res.Amount.Present())
	assert.False(t, res.ExpiryDate.Present())
	assert.Equal(t, 4, res.Summary.MissingFieldCount)
}

func TestExtract_EvidenceSpansVerifiable(t *testing.T) {
	text := `שובר מתנה לרשת פוקס על סך 200 ₪ קוד: FOX-999 בתוקף עד 31.12.2026`
	res := Extract(text, "sms")

	for _, field := range []struct {
		name string
		evs  []model.Evidence
	}{
		{"title", res.Title.Evidence},
		{"store", res.Store.Evidence},
		{"amount", res.Amount.Evidence},
		{"code", res.Code.Evidence},
		{"expiryDate", res.ExpiryDate.Evidence},
	} {
		for _, ev := range field.evs {
			assert.Equal(t, ev.SourceText, text[ev.Start:ev.End],
				"field %s span must slice back to its snippet", field.name)
			assert.Equal(t, model.OriginOffline, ev.Origin)
		}
	}
}

func TestExtract_DeterministicAcrossRuns(t *testing.T) {
	text := `שובר מתנה לרשת פוקס על סך 200 ₪ קוד: FOX-999 בתוקף עד 31.12.2026`
	first := Extract(text, "sms")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Extract(text, "sms"))
	}
}
