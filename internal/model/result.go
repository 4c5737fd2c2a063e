// Package model defines the evidence-tracked extraction types shared by the
// offline extractor, the validator, the provider client, and the service.
package model

// Origin identifies which pass produced a piece of evidence.
type Origin string

const (
	OriginOffline Origin = "offline"
	OriginLLM     Origin = "llm"
)

// Confidence is the closed three-tier trust level assigned by the producing
// extractor. It is only ever downgraded after the fact, never upgraded.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// rank orders tiers so downgrade-only rules can compare them.
func (c Confidence) rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// Score maps a tier onto the numeric scale used by the Draft projection.
func (c Confidence) Score() float64 {
	switch c {
	case ConfidenceHigh:
		return 1.0
	case ConfidenceMedium:
		return 0.6
	case ConfidenceLow:
		return 0.3
	default:
		return 0
	}
}

// MinConfidence returns the lower of two tiers.
func MinConfidence(a, b Confidence) Confidence {
	if b.rank() < a.rank() {
		return b
	}
	return a
}

// Evidence is a verifiable span of the original input supporting an extracted
// value. Start and End are byte offsets into the UTF-8 source text, End
// exclusive. When SourceText is attached it must equal text[Start:End]
// exactly; the validator treats any mismatch as grounds to distrust the value.
type Evidence struct {
	Start      int    `json:"start"`
	End        int    `json:"end"`
	SourceText string `json:"source_text,omitempty"`
	Origin     Origin `json:"origin"`
	Rule       string `json:"rule,omitempty"`
}

// FieldResult carries a value-or-absent together with the confidence tier,
// provenance evidence, and any issue codes accumulated along the way.
type FieldResult[T any] struct {
	Value      *T         `json:"value,omitempty"`
	Confidence Confidence `json:"confidence"`
	Evidence   []Evidence `json:"evidence,omitempty"`
	Issues     []string   `json:"issues,omitempty"`
}

// Present reports whether a value was extracted.
func (f FieldResult[T]) Present() bool {
	return f.Value != nil
}

// NeedsReview reports whether the field should be surfaced to a human:
// present but below high confidence, or carrying at least one issue.
func (f FieldResult[T]) NeedsReview() bool {
	if len(f.Issues) > 0 {
		return true
	}
	return f.Value != nil && f.Confidence != ConfidenceHigh
}

// Clone returns a deep copy.
func (f FieldResult[T]) Clone() FieldResult[T] {
	out := FieldResult[T]{Confidence: f.Confidence}
	if f.Value != nil {
		v := *f.Value
		out.Value = &v
	}
	if len(f.Evidence) > 0 {
		out.Evidence = append([]Evidence(nil), f.Evidence...)
	}
	if len(f.Issues) > 0 {
		out.Issues = append([]string(nil), f.Issues...)
	}
	return out
}

// Set assigns a value with its confidence and evidence.
func (f *FieldResult[T]) Set(value T, conf Confidence, ev ...Evidence) {
	f.Value = &value
	f.Confidence = conf
	f.Evidence = append(f.Evidence, ev...)
}

// Downgrade lowers the confidence tier to at most max. It never raises it.
func (f *FieldResult[T]) Downgrade(max Confidence) {
	f.Confidence = MinConfidence(f.Confidence, max)
}

// AddIssue appends an issue code to the field.
func (f *FieldResult[T]) AddIssue(code string) {
	f.Issues = append(f.Issues, code)
}

// AmountValue is a monetary value with an optional ISO 4217 currency code.
type AmountValue struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency,omitempty"`
}

// Values for RoutingMeta.Used.
const (
	UsedOffline = "offline"
	UsedLLM     = "llm"
	UsedHybrid  = "hybrid"
)

// RoutingMeta records which path produced the final result.
type RoutingMeta struct {
	Used      string `json:"used"`
	Model     string `json:"model,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
	CacheHit  bool   `json:"cache_hit,omitempty"`
}

// Summary holds counts derived from the field state. It is recomputed
// whenever fields change and never hand-maintained.
type Summary struct {
	MissingFieldCount     int      `json:"missing_field_count"`
	NeedsReviewFieldCount int      `json:"needs_review_field_count"`
	Issues                []string `json:"issues,omitempty"`
}

// ExtractionResult is the aggregate internal result for one input text.
type ExtractionResult struct {
	Title      FieldResult[string]      `json:"title"`
	Store      FieldResult[string]      `json:"store"`
	Amount     FieldResult[AmountValue] `json:"amount"`
	Code       FieldResult[string]      `json:"code"`
	ExpiryDate FieldResult[string]      `json:"expiry_date"`

	Summary     Summary     `json:"summary"`
	RoutingMeta RoutingMeta `json:"routing_meta"`
}

// RequiredFields lists the required field names in contract order. Store is
// optional and deliberately not in this list.
var RequiredFields = []string{"title", "amount", "code", "expiryDate"}

// MissingRequiredFields returns the names of required fields with no value.
func (r *ExtractionResult) MissingRequiredFields() []string {
	var missing []string
	if !r.Title.Present() {
		missing = append(missing, "title")
	}
	if !r.Amount.Present() {
		missing = append(missing, "amount")
	}
	if !r.Code.Present() {
		missing = append(missing, "code")
	}
	if !r.ExpiryDate.Present() {
		missing = append(missing, "expiryDate")
	}
	return missing
}

// RecomputeSummary rederives the summary counts and aggregated issue list
// from the current field state.
func (r *ExtractionResult) RecomputeSummary() {
	s := Summary{MissingFieldCount: len(r.MissingRequiredFields())}

	if r.Title.NeedsReview() {
		s.NeedsReviewFieldCount++
	}
	if r.Store.NeedsReview() {
		s.NeedsReviewFieldCount++
	}
	if r.Amount.NeedsReview() {
		s.NeedsReviewFieldCount++
	}
	if r.Code.NeedsReview() {
		s.NeedsReviewFieldCount++
	}
	if r.ExpiryDate.NeedsReview() {
		s.NeedsReviewFieldCount++
	}

	for _, iss := range r.Title.Issues {
		s.Issues = append(s.Issues, "title: "+iss)
	}
	for _, iss := range r.Store.Issues {
		s.Issues = append(s.Issues, "store: "+iss)
	}
	for _, iss := range r.Amount.Issues {
		s.Issues = append(s.Issues, "amount: "+iss)
	}
	for _, iss := range r.Code.Issues {
		s.Issues = append(s.Issues, "code: "+iss)
	}
	for _, iss := range r.ExpiryDate.Issues {
		s.Issues = append(s.Issues, "expiryDate: "+iss)
	}

	r.Summary = s
}

// Clone returns a deep copy of the result.
func (r *ExtractionResult) Clone() *ExtractionResult {
	out := &ExtractionResult{
		Title:       r.Title.Clone(),
		Store:       r.Store.Clone(),
		Amount:      r.Amount.Clone(),
		Code:        r.Code.Clone(),
		ExpiryDate:  r.ExpiryDate.Clone(),
		RoutingMeta: r.RoutingMeta,
	}
	out.Summary = Summary{
		MissingFieldCount:     r.Summary.MissingFieldCount,
		NeedsReviewFieldCount: r.Summary.NeedsReviewFieldCount,
	}
	if len(r.Summary.Issues) > 0 {
		out.Summary.Issues = append([]string(nil), r.Summary.Issues...)
	}
	return out
}
