// Package offline implements the deterministic, regex-driven voucher field
// extractor. It is pure, does no I/O, and never fails: absence of a signal
// yields an absent field, ambiguity yields issue codes on the field.
package offline

import (
	"github.com/giftvault/voucher-service/internal/model"
)

// Issue codes attached by the offline extractor.
const (
	IssueAmountInferredNoCurrency    = "amount_inferred_no_currency"
	IssueMultipleAmountsFound        = "multiple_amounts_found"
	IssueCurrencyInferredLocalMarker = "currency_inferred_from_local_marker"
	IssueCodeNoDigits                = "code_no_digits"
	IssueCodeGuessedFromToken        = "code_guessed_from_isolated_token"
	IssueMultipleDatesFound          = "multiple_dates_found"
	IssueDateFormatAssumed           = "date_format_assumed"
)

// Extractor runs the per-field recognizers against raw message text.
type Extractor struct {
	gaz *Gazetteer
}

// New returns an Extractor using the given gazetteer, or the built-in
// vocabulary when gaz is nil.
func New(gaz *Gazetteer) *Extractor {
	if gaz == nil {
		gaz = DefaultGazetteer()
	}
	return &Extractor{gaz: gaz}
}

// Extract runs all field recognizers over text and returns an evidence-backed
// result tagged as offline-produced. Deterministic and bounded: recognizers
// are fixed regexes over the input.
func (e *Extractor) Extract(text, sourceType string) model.ExtractionResult {
	_ = sourceType // reserved for source-specific heuristics

	var res model.ExtractionResult
	res.RoutingMeta.Used = model.UsedOffline

	extractAmount(text, &res.Amount)
	e.extractStoreAndTitle(text, &res)
	extractCode(text, &res.Code)
	extractExpiryDate(text, &res.ExpiryDate)

	res.RecomputeSummary()
	return res
}

// Extract runs the default extractor. Convenience for callers that do not
// carry a custom gazetteer.
func Extract(text, sourceType string) model.ExtractionResult {
	return defaultExtractor.Extract(text, sourceType)
}

var defaultExtractor = New(nil)

// extractStoreAndTitle matches the merchant gazetteer and synthesizes the
// title as "<Store> Voucher", sharing the store's evidence span and
// confidence. No gazetteer match leaves both fields absent.
func (e *Extractor) extractStoreAndTitle(text string, res *model.ExtractionResult) {
	name, start, end, ok := e.gaz.Match(text)
	if !ok {
		return
	}
	ev := model.Evidence{
		Start:      start,
		End:        end,
		SourceText: text[start:end],
		Origin:     model.OriginOffline,
		Rule:       "store_gazetteer",
	}
	res.Store.Set(name, model.ConfidenceHigh, ev)
	res.Title.Set(name+" Voucher", model.ConfidenceHigh, ev)
}
