package offline

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/giftvault/voucher-service/internal/model"
)

var (
	// Local-language "valid until" phrase immediately followed by a date.
	validUntilPhrase = regexp.MustCompile(`(?i)(?:בתוקף עד|תוקף עד|בתוקף|valid until|valid through|expires on|expires|expiry)[^\S\n]*:?[^\S\n]*(\d{1,4}[./\-]\d{1,2}[./\-]\d{1,4})`)

	// Any D/M/Y or Y/M/D shaped token.
	dateToken = regexp.MustCompile(`(?:^|[^\d./\-])(\d{1,4}[./\-]\d{1,2}[./\-]\d{1,4})(?:$|[^\d./\-])`)
)

// extractExpiryDate fills the expiry field. A contextual "valid until" phrase
// wins at high confidence. Otherwise every date-shaped token is parsed
// day-first and the latest valid date is used at medium confidence, since
// vouchers trend toward stating the expiry as the most future date.
func extractExpiryDate(text string, out *model.FieldResult[string]) {
	rawTokens := dateToken.FindAllStringSubmatchIndex(text, -1)

	if loc := validUntilPhrase.FindStringSubmatchIndex(text); loc != nil {
		token := text[loc[2]:loc[3]]
		parsed, _, ok := parseDateToken(token)
		if ok {
			out.Set(parsed.Format("2006-01-02"), model.ConfidenceHigh, model.Evidence{
				Start:      loc[2],
				End:        loc[3],
				SourceText: token,
				Origin:     model.OriginOffline,
				Rule:       "expiry_valid_until_phrase",
			})
			if len(rawTokens) > 1 {
				out.AddIssue(IssueMultipleDatesFound)
			}
			return
		}
	}

	type dateCandidate struct {
		start, end int
		parsed     time.Time
		layout     string
	}
	var candidates []dateCandidate
	for _, loc := range rawTokens {
		token := text[loc[2]:loc[3]]
		parsed, layout, ok := parseDateToken(token)
		if !ok {
			continue
		}
		candidates = append(candidates, dateCandidate{start: loc[2], end: loc[3], parsed: parsed, layout: layout})
	}
	if len(candidates) == 0 {
		return
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.parsed.After(best.parsed) {
			best = c
		}
	}

	out.Set(best.parsed.Format("2006-01-02"), model.ConfidenceMedium, model.Evidence{
		Start:      best.start,
		End:        best.end,
		SourceText: text[best.start:best.end],
		Origin:     model.OriginOffline,
		Rule:       "expiry_date_scan",
	})
	out.AddIssue(IssueDateFormatAssumed + ": " + best.layout)
	if len(rawTokens) > 1 {
		out.AddIssue(IssueMultipleDatesFound)
	}
}

// parseDateToken parses a date-shaped token. Tokens starting with a 4-digit
// part are read Y/M/D; everything else is read day-first, with 2-digit years
// normalized to the 2000s. Dates that do not round-trip (Feb 30) are rejected.
func parseDateToken(token string) (time.Time, string, bool) {
	parts := strings.FieldsFunc(token, func(r rune) bool {
		return r == '/' || r == '.' || r == '-'
	})
	if len(parts) != 3 {
		return time.Time{}, "", false
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, "", false
		}
		nums[i] = n
	}

	var year, month, day int
	var layout string
	if len(parts[0]) == 4 {
		year, month, day = nums[0], nums[1], nums[2]
		layout = "Y/M/D"
	} else {
		day, month, year = nums[0], nums[1], nums[2]
		layout = "D/M/Y"
		if len(parts[2]) <= 2 {
			year += 2000
		}
	}

	if month < 1 || month > 12 || day < 1 || day > 31 || year < 2000 || year > 2100 {
		return time.Time{}, "", false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes impossible dates (Feb 30 -> Mar 2); a changed
	// component means the original date did not exist.
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, "", false
	}
	return t, layout, true
}
