// Package validate implements the trust pass over extraction results: span
// integrity and value plausibility checks that only ever downgrade
// confidence. It is the same gate for offline and provider output, which is
// what makes provider evidence trustworthy at all.
package validate

import (
	"math"
	"regexp"
	"time"

	"golang.org/x/text/currency"

	"github.com/giftvault/voucher-service/internal/model"
)

// Issue codes attached by the validator.
const (
	IssueEvidenceSpanOutOfBounds = "evidence_span_out_of_bounds"
	IssueEvidenceSpanInverted    = "evidence_span_inverted"
	IssueEvidenceTextMismatch    = "evidence_text_mismatch"
	IssueDateMalformed           = "expiry_date_malformed"
	IssueDateImpossible          = "expiry_date_impossible"
	IssueDateLongPast            = "expiry_date_long_past"
	IssueAmountNotFinite         = "amount_not_finite"
	IssueAmountNotPositive       = "amount_not_positive"
	IssueAmountImplausiblyLarge  = "amount_implausibly_large"
	IssueCurrencyMalformed       = "currency_malformed"
	IssueCurrencyNotAllowed      = "currency_not_allowed"
)

// implausibleAmount is the sanity ceiling for a voucher amount in the local
// currency.
const implausibleAmount = 100_000

// allowedCurrencies is the local currency plus three majors.
var allowedCurrencies = map[string]bool{
	"ILS": true,
	"USD": true,
	"EUR": true,
	"GBP": true,
}

var calendarShape = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Validate checks res against the original text and returns a fully
// reconstructed result with recomputed summary counts. The input is never
// mutated. Validation is idempotent: a second pass over valid output is a
// no-op.
func Validate(res *model.ExtractionResult, originalText string) *model.ExtractionResult {
	return ValidateAt(res, originalText, time.Now())
}

// ValidateAt is Validate with an injectable clock for the stale-expiry check.
func ValidateAt(res *model.ExtractionResult, originalText string, now time.Time) *model.ExtractionResult {
	out := res.Clone()

	checkEvidence(&out.Title, originalText)
	checkEvidence(&out.Store, originalText)
	checkEvidence(&out.Amount, originalText)
	checkEvidence(&out.Code, originalText)
	checkEvidence(&out.ExpiryDate, originalText)

	checkExpiryDate(&out.ExpiryDate, now)
	checkAmount(&out.Amount)

	out.RecomputeSummary()
	return out
}

// checkEvidence verifies every span on the field against the live text. Any
// failure appends the specific issue and forces the field to low confidence:
// a value whose stated provenance does not hold cannot be trusted, whoever
// produced it.
func checkEvidence[T any](f *model.FieldResult[T], text string) {
	bad := false
	for _, ev := range f.Evidence {
		switch {
		case ev.Start < 0 || ev.End > len(text):
			addIssueOnce(f, IssueEvidenceSpanOutOfBounds)
			bad = true
		case ev.Start >= ev.End:
			addIssueOnce(f, IssueEvidenceSpanInverted)
			bad = true
		case ev.SourceText != "" && ev.SourceText != text[ev.Start:ev.End]:
			addIssueOnce(f, IssueEvidenceTextMismatch)
			bad = true
		}
	}
	if bad {
		f.Downgrade(model.ConfidenceLow)
	}
}

// checkExpiryDate rejects values that are not real YYYY-MM-DD calendar dates
// and flags (without rejecting) expiries more than a year in the past; an
// expired voucher is still valid data, just low urgency.
func checkExpiryDate(f *model.FieldResult[string], now time.Time) {
	if !f.Present() {
		return
	}
	v := *f.Value

	if !calendarShape.MatchString(v) {
		f.Value = nil
		addIssueOnce(f, IssueDateMalformed)
		f.Downgrade(model.ConfidenceLow)
		return
	}

	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		f.Value = nil
		addIssueOnce(f, IssueDateImpossible)
		f.Downgrade(model.ConfidenceLow)
		return
	}

	if t.Before(now.AddDate(-1, 0, 0)) {
		addIssueOnce(f, IssueDateLongPast)
	}
}

// checkAmount rejects non-finite or non-positive values and flags implausibly
// large amounts and unknown currencies. Any flag forces low confidence: a
// failed sanity check on a financial field is treated conservatively.
func checkAmount(f *model.FieldResult[model.AmountValue]) {
	if !f.Present() {
		return
	}
	v := f.Value.Value

	if math.IsNaN(v) || math.IsInf(v, 0) {
		f.Value = nil
		addIssueOnce(f, IssueAmountNotFinite)
		f.Downgrade(model.ConfidenceLow)
		return
	}
	if v <= 0 {
		f.Value = nil
		addIssueOnce(f, IssueAmountNotPositive)
		f.Downgrade(model.ConfidenceLow)
		return
	}

	flagged := false
	if v > implausibleAmount {
		addIssueOnce(f, IssueAmountImplausiblyLarge)
		flagged = true
	}
	if code := f.Value.Currency; code != "" {
		if _, err := currency.ParseISO(code); err != nil {
			addIssueOnce(f, IssueCurrencyMalformed)
			flagged = true
		} else if !allowedCurrencies[code] {
			addIssueOnce(f, IssueCurrencyNotAllowed)
			flagged = true
		}
	}
	if flagged {
		f.Downgrade(model.ConfidenceLow)
	}
}

// addIssueOnce appends an issue code only if the field does not already carry
// it, keeping validation idempotent.
func addIssueOnce[T any](f *model.FieldResult[T], code string) {
	for _, existing := range f.Issues {
		if existing == code {
			return
		}
	}
	f.AddIssue(code)
}
