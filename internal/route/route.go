// Package route decides whether an offline extraction justifies the paid
// provider pass.
package route

import (
	"regexp"

	"github.com/giftvault/voucher-service/internal/model"
)

// otpPattern matches authentication/OTP-style messages. These are
// categorically not vouchers and must never be sent to a third-party
// provider, for cost and for privacy.
var otpPattern = regexp.MustCompile(`(?i)password|סיסמה|סיסמא|verification code|קוד אימות|קוד האימות|one[- ]time (?:code|password)|\bOTP\b|\b2FA\b|two[- ]factor`)

// ShouldEscalate reports whether the provider pass is justified for this
// text given the validated offline result. A nil result always escalates;
// an OTP-style message never does, regardless of field completeness.
func ShouldEscalate(sourceText string, validated *model.ExtractionResult) bool {
	if validated == nil {
		return true
	}
	if otpPattern.MatchString(sourceText) {
		return false
	}

	if validated.Summary.MissingFieldCount > 0 {
		return true
	}
	if validated.Summary.NeedsReviewFieldCount > 1 {
		return true
	}

	// A low-confidence value on a critical field is worth a second opinion
	// even when everything else looks fine.
	if presentWithLow(validated.Amount) || presentWithLow(validated.Code) || presentWithLow(validated.ExpiryDate) {
		return true
	}

	return false
}

func presentWithLow[T any](f model.FieldResult[T]) bool {
	return f.Present() && f.Confidence == model.ConfidenceLow
}
