package provider

import (
	"fmt"
	"strings"
)

// systemText constrains the model to one flat JSON object in the evidence
// shape, with an explicit voucher/non-voucher verdict. Evidence must be a
// literal snippet so it can be verified against the source text.
const systemText = `You extract gift card and voucher details from short messages (SMS, chat).

Return exactly one JSON object, no markdown, matching this schema:
{
  "is_voucher": <true|false>,
  "title": {"value": <string|null>, "evidence": <string|null>},
  "store": {"value": <string|null>, "evidence": <string|null>},
  "amount": {"value": <number|null>, "currency": <string|null>, "evidence": <string|null>},
  "code": {"value": <string|null>, "evidence": <string|null>},
  "expiry_date": {"value": <string|null>, "evidence": <string|null>}
}

Rules:
- Set is_voucher to false if the message is not a gift card or voucher (e.g. OTP, marketing, personal chat); leave all fields null in that case.
- Every evidence value must be an exact, verbatim substring of the message. Never paraphrase evidence.
- currency must be an ISO 4217 code (ILS, USD, EUR, GBP). Use ILS for ₪ and ש"ח.
- expiry_date must be formatted YYYY-MM-DD.
- Use null for anything not present in the message. Never invent values.`

// buildPrompt wraps the raw message for extraction.
func buildPrompt(text, sourceType string) string {
	var b strings.Builder
	if sourceType != "" {
		fmt.Fprintf(&b, "Message source: %s\n", sourceType)
	}
	b.WriteString("Message:\n")
	b.WriteString(text)
	return b.String()
}

// cleanJSON attempts to extract a JSON object from text that may contain
// markdown code fences or other wrapping.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
