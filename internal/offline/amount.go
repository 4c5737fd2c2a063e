package offline

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/giftvault/voucher-service/internal/model"
)

// LocalCurrency is assumed when only a local-language marker is present.
const LocalCurrency = "ILS"

const numberPattern = `\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|\d+(?:\.\d{1,2})?`

var (
	// Marker immediately before the digits: ₪200, $ 49.90, EUR 100.
	amountMarkerBefore = regexp.MustCompile(`(₪|\$|€|£|NIS|ILS|USD|EUR|GBP)\s?(` + numberPattern + `)`)

	// Marker immediately after the digits: 200 ₪, 200 ש"ח, 49.90 USD.
	amountMarkerAfter = regexp.MustCompile(`(` + numberPattern + `)\s?(₪|ש"ח|ש״ח|שח|NIS|ILS|USD|EUR|GBP|\$|€|£)(?:$|[^\pL])`)

	// Closed set of common round voucher denominations, used only when no
	// currency-marked number exists.
	roundAmountPattern = regexp.MustCompile(`(?:^|[^\d.,])(1000|500|400|300|250|200|150|100|50)(?:$|[^\d.,])`)
)

// currencyForMarker maps a matched marker token to an ISO code and reports
// whether the marker is a local-language token (currency inferred, not stated).
func currencyForMarker(marker string) (code string, local bool) {
	switch marker {
	case "₪", "NIS", "ILS":
		return LocalCurrency, false
	case `ש"ח`, "ש״ח", "שח":
		return LocalCurrency, true
	case "$", "USD":
		return "USD", false
	case "€", "EUR":
		return "EUR", false
	case "£", "GBP":
		return "GBP", false
	default:
		return "", false
	}
}

type amountCandidate struct {
	start, end  int
	value       float64
	currency    string
	localMarker bool
}

// extractAmount fills the amount field. Currency-marked numbers win; among
// several the leftmost is used and the ambiguity is surfaced as an issue.
// Without a marker, a bare common round denomination is accepted at medium
// confidence.
func extractAmount(text string, out *model.FieldResult[model.AmountValue]) {
	candidates := markedAmountCandidates(text)
	if len(candidates) > 0 {
		best := candidates[0]
		out.Set(model.AmountValue{Value: best.value, Currency: best.currency},
			model.ConfidenceHigh,
			model.Evidence{
				Start:      best.start,
				End:        best.end,
				SourceText: text[best.start:best.end],
				Origin:     model.OriginOffline,
				Rule:       "amount_currency_marker",
			})
		if best.localMarker {
			out.AddIssue(IssueCurrencyInferredLocalMarker)
		}
		if len(candidates) > 1 {
			out.AddIssue(IssueMultipleAmountsFound)
		}
		return
	}

	loc := roundAmountPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return
	}
	start, end := loc[2], loc[3]
	value, err := strconv.ParseFloat(text[start:end], 64)
	if err != nil {
		return
	}
	// No marker means no currency claim; the issue code records that the
	// number alone drove the inference.
	out.Set(model.AmountValue{Value: value},
		model.ConfidenceMedium,
		model.Evidence{
			Start:      start,
			End:        end,
			SourceText: text[start:end],
			Origin:     model.OriginOffline,
			Rule:       "amount_round_denomination",
		})
	out.AddIssue(IssueAmountInferredNoCurrency)
}

// markedAmountCandidates collects all currency-marked numbers sorted by
// position, span covering marker and digits together.
func markedAmountCandidates(text string) []amountCandidate {
	var out []amountCandidate

	for _, loc := range amountMarkerBefore.FindAllStringSubmatchIndex(text, -1) {
		marker := text[loc[2]:loc[3]]
		value, err := parseAmountNumber(text[loc[4]:loc[5]])
		if err != nil {
			continue
		}
		code, local := currencyForMarker(marker)
		out = append(out, amountCandidate{
			start: loc[2], end: loc[5],
			value: value, currency: code, localMarker: local,
		})
	}

	for _, loc := range amountMarkerAfter.FindAllStringSubmatchIndex(text, -1) {
		marker := text[loc[4]:loc[5]]
		value, err := parseAmountNumber(text[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		code, local := currencyForMarker(marker)
		out = append(out, amountCandidate{
			start: loc[2], end: loc[5],
			value: value, currency: code, localMarker: local,
		})
	}

	// Deduplicate overlapping before/after matches and order leftmost-first.
	// Insertion sort: candidate counts are tiny.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].start < out[j-1].start; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	deduped := out[:0]
	lastEnd := -1
	for _, c := range out {
		if c.start < lastEnd {
			continue
		}
		deduped = append(deduped, c)
		lastEnd = c.end
	}
	return deduped
}

func parseAmountNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}
