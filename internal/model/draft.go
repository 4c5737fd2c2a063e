package model

import "math"

// Draft is the flattened, caller-facing projection of an ExtractionResult.
// It is the only shape ever returned across the service boundary; the
// evidence-tracked internal result stays internal. Field names follow the
// existing client contract.
type Draft struct {
	Title                 string   `json:"title,omitempty"`
	Store                 string   `json:"store,omitempty"`
	Amount                *float64 `json:"amount,omitempty"`
	Currency              string   `json:"currency,omitempty"`
	Code                  string   `json:"code,omitempty"`
	ExpiryDate            string   `json:"expiryDate,omitempty"`
	Assumptions           []string `json:"assumptions,omitempty"`
	MissingRequiredFields []string `json:"missingRequiredFields,omitempty"`
	Confidence            float64  `json:"confidence"`
	Source                string   `json:"source,omitempty"`
}

// ToDraft flattens the result into the caller-facing shape. The headline
// confidence is the arithmetic mean of the five per-field confidence scores
// (absent fields score zero), rounded to two decimals.
func (r *ExtractionResult) ToDraft() *Draft {
	d := &Draft{
		MissingRequiredFields: r.MissingRequiredFields(),
		Source:                r.RoutingMeta.Used,
	}

	if r.Title.Present() {
		d.Title = *r.Title.Value
	}
	if r.Store.Present() {
		d.Store = *r.Store.Value
	}
	if r.Amount.Present() {
		v := r.Amount.Value.Value
		d.Amount = &v
		d.Currency = r.Amount.Value.Currency
	}
	if r.Code.Present() {
		d.Code = *r.Code.Value
	}
	if r.ExpiryDate.Present() {
		d.ExpiryDate = *r.ExpiryDate.Value
	}

	if len(r.Summary.Issues) > 0 {
		d.Assumptions = append([]string(nil), r.Summary.Issues...)
	}

	var sum float64
	for _, score := range []float64{
		fieldScore(r.Title),
		fieldScore(r.Store),
		fieldScore(r.Amount),
		fieldScore(r.Code),
		fieldScore(r.ExpiryDate),
	} {
		sum += score
	}
	d.Confidence = math.Round(sum/5*100) / 100

	return d
}

func fieldScore[T any](f FieldResult[T]) float64 {
	if !f.Present() {
		return 0
	}
	return f.Confidence.Score()
}
