package offline

import (
	"regexp"
	"strings"

	"github.com/giftvault/voucher-service/internal/model"
)

var (
	// Keyword followed by a 4-4-4-4 digit group, possibly across a line break.
	codeKeywordDigitGroup = regexp.MustCompile(`(?i)(?:code|coupon|voucher|קוד|קופון|שובר)[^\S\n]*[:\-]?[^\S\n]*\n?[^\S\n]*(\d{4}[- ]\d{4}[- ]\d{4}[- ]\d{4})`)

	// Keyword followed on the same line by an alphanumeric token.
	codeKeywordToken = regexp.MustCompile(`(?i)(?:code|coupon|voucher|קוד|קופון|שובר)[^\S\n]*[:\-]?[^\S\n]*([A-Za-z0-9][A-Za-z0-9\-]{2,23}[A-Za-z0-9])`)

	// Isolated dash-grouped all-digit token in the 4-4-4-4 shape.
	codeIsolatedDigitGroup = regexp.MustCompile(`(?:^|[^\w-])(\d{4}-\d{4}-\d{4}-\d{4})(?:$|[^\w-])`)

	// Any other isolated dash/alphanumeric token of 6+ characters.
	codeIsolatedToken = regexp.MustCompile(`(?:^|[^\w-])([A-Za-z0-9][A-Za-z0-9\-]{4,30}[A-Za-z0-9])(?:$|[^\w-])`)

	dateShapedToken = regexp.MustCompile(`^\d{1,4}[./\-]\d{1,2}[./\-]\d{1,4}$`)
	anyDigit        = regexp.MustCompile(`\d`)
)

// extractCode fills the redemption-code field using tiered precedence:
// keyword-anchored matches first, then isolated tokens. Isolated tokens that
// look like dates or phone numbers are skipped entirely.
func extractCode(text string, out *model.FieldResult[string]) {
	if loc := codeKeywordDigitGroup.FindStringSubmatchIndex(text); loc != nil {
		setCode(text, out, loc[2], loc[3], model.ConfidenceHigh, "code_keyword_digit_group")
		return
	}

	// "voucher code: X" matches the keyword "voucher" with "code" as the
	// token; when that happens, rescan from the captured word so the inner
	// keyword anchors the real code.
	for off := 0; off < len(text); {
		loc := codeKeywordToken.FindStringSubmatchIndex(text[off:])
		if loc == nil {
			break
		}
		start, end := off+loc[2], off+loc[3]
		token := text[start:end]
		if isCodeKeyword(token) {
			off = start
			continue
		}
		conf := model.ConfidenceHigh
		if !anyDigit.MatchString(token) {
			conf = model.ConfidenceLow
		}
		setCode(text, out, start, end, conf, "code_keyword_token")
		if conf == model.ConfidenceLow {
			out.AddIssue(IssueCodeNoDigits + ": " + token)
		}
		return
	}

	if loc := codeIsolatedDigitGroup.FindStringSubmatchIndex(text); loc != nil {
		setCode(text, out, loc[2], loc[3], model.ConfidenceHigh, "code_isolated_digit_group")
		return
	}

	for _, loc := range codeIsolatedToken.FindAllStringSubmatchIndex(text, -1) {
		token := text[loc[2]:loc[3]]
		if excludeIsolatedToken(token) {
			continue
		}
		// Without a keyword anchor a digit-free token is just a word, not
		// a code candidate.
		if !anyDigit.MatchString(token) {
			continue
		}
		setCode(text, out, loc[2], loc[3], model.ConfidenceMedium, "code_isolated_token")
		out.AddIssue(IssueCodeGuessedFromToken + ": " + token)
		return
	}
}

func setCode(text string, out *model.FieldResult[string], start, end int, conf model.Confidence, rule string) {
	out.Set(text[start:end], conf, model.Evidence{
		Start:      start,
		End:        end,
		SourceText: text[start:end],
		Origin:     model.OriginOffline,
		Rule:       rule,
	})
}

func isCodeKeyword(token string) bool {
	switch strings.ToLower(token) {
	case "code", "coupon", "voucher":
		return true
	}
	return false
}

// excludeIsolatedToken rejects tokens that are date-shaped or phone-shaped.
// A token whose alphanumeric content is all digits and not in the 4-4-4-4
// grouping is treated as phone-shaped (the grouped case is handled earlier).
func excludeIsolatedToken(token string) bool {
	if dateShapedToken.MatchString(token) {
		return true
	}
	stripped := strings.ReplaceAll(token, "-", "")
	if anyDigit.MatchString(stripped) && !strings.ContainsAny(stripped, "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz") {
		// All digits once dashes are removed.
		return true
	}
	return false
}
