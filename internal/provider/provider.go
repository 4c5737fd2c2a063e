// Package provider calls the paid language-model pass: a schema-constrained
// prompt, a bounded timeout, a single sequential retry, and verbatim
// snippet-to-offset mapping so the response earns trust the same way the
// offline pass does.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/giftvault/voucher-service/internal/model"
	"github.com/giftvault/voucher-service/internal/validate"
	"github.com/giftvault/voucher-service/pkg/anthropic"
)

// Issue codes attached by the provider client.
const (
	IssueSnippetNotFound = "llm_snippet_not_found"
)

// Status tags a provider call outcome so the service can pattern-match on it
// without exception-style branching.
type Status int

const (
	// StatusOK means the provider returned a usable, validated extraction.
	StatusOK Status = iota
	// StatusNotVoucher is a confident negative, not a failure.
	StatusNotVoucher
	// StatusTimeout means both attempts were abandoned at the deadline or
	// failed in transit.
	StatusTimeout
	// StatusMalformed means the response could not be parsed into the schema.
	StatusMalformed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotVoucher:
		return "not_voucher"
	case StatusTimeout:
		return "timeout"
	case StatusMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// CallResult is the tagged outcome of one Extract call.
type CallResult struct {
	Status     Status
	Extraction *model.ExtractionResult // set when Status == StatusOK
	Err        error                   // set on timeout/malformed
}

// Config controls the provider call budget.
type Config struct {
	// Model is the model ID sent with every request.
	Model string
	// Timeout bounds each individual attempt. Default: 20s.
	Timeout time.Duration
	// MaxAttempts is the total number of attempts including the first.
	// Default: 2 (one retry).
	MaxAttempts int
	// RequestsPerSecond rate-limits outbound calls. Zero disables limiting.
	RequestsPerSecond float64
}

// temperature is fixed low: extraction wants determinism, not creativity.
const temperature = 0.1

const maxResponseTokens = 1024

// Client runs the provider extraction pass.
type Client struct {
	ai           anthropic.Client
	cfg          Config
	limiter      *rate.Limiter
	systemBlocks []anthropic.SystemBlock
}

// New creates a provider client over the given API client.
func New(ai anthropic.Client, cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 2
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &Client{
		ai:           ai,
		cfg:          cfg,
		limiter:      limiter,
		systemBlocks: anthropic.BuildCachedSystemBlocks(systemText),
	}
}

// Extract asks the provider for a structured extraction of text. Attempts are
// sequential: the retry starts only after the first attempt fully resolves or
// times out. The returned extraction has already been through the validator.
func (c *Client) Extract(ctx context.Context, text, sourceType string) CallResult {
	var last CallResult
	for attempt := 0; attempt < c.cfg.MaxAttempts; attempt++ {
		last = c.attempt(ctx, text, sourceType)
		switch last.Status {
		case StatusOK, StatusNotVoucher:
			return last
		}
		// Timeout or malformed: retry once, unless the caller is gone.
		if ctx.Err() != nil {
			return last
		}
		if attempt < c.cfg.MaxAttempts-1 {
			zap.L().Warn("provider: attempt failed, retrying",
				zap.String("status", last.Status.String()),
				zap.Error(last.Err),
			)
		}
	}
	return last
}

func (c *Client) attempt(ctx context.Context, text, sourceType string) CallResult {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(attemptCtx); err != nil {
			return CallResult{Status: StatusTimeout, Err: eris.Wrap(err, "provider: rate limit wait")}
		}
	}

	temp := temperature
	start := time.Now()
	resp, err := c.ai.CreateMessage(attemptCtx, anthropic.MessageRequest{
		Model:       c.cfg.Model,
		MaxTokens:   maxResponseTokens,
		System:      c.systemBlocks,
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: "user", Content: buildPrompt(text, sourceType)},
		},
	})
	latency := time.Since(start).Milliseconds()
	if err != nil {
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return CallResult{Status: StatusTimeout, Err: eris.Wrap(err, "provider: attempt timed out")}
		}
		return CallResult{Status: StatusTimeout, Err: eris.Wrap(err, "provider: create message")}
	}
	resp.Usage.LogCost(c.cfg.Model, "extract")

	var p payload
	if err := json.Unmarshal([]byte(cleanJSON(resp.Text())), &p); err != nil {
		return CallResult{Status: StatusMalformed, Err: eris.Wrap(err, "provider: parse response")}
	}

	if !p.IsVoucher {
		return CallResult{Status: StatusNotVoucher}
	}

	res := p.toResult(text)
	res.RoutingMeta = model.RoutingMeta{
		Used:      model.UsedLLM,
		Model:     c.cfg.Model,
		LatencyMs: latency,
	}
	validated := validate.Validate(&res, text)
	validated.RoutingMeta = res.RoutingMeta
	return CallResult{Status: StatusOK, Extraction: validated}
}

// payload is the flat response schema the system prompt demands.
type payload struct {
	IsVoucher  bool          `json:"is_voucher"`
	Title      fieldPayload  `json:"title"`
	Store      fieldPayload  `json:"store"`
	Amount     amountPayload `json:"amount"`
	Code       fieldPayload  `json:"code"`
	ExpiryDate fieldPayload  `json:"expiry_date"`
}

type fieldPayload struct {
	Value    *string `json:"value"`
	Evidence *string `json:"evidence"`
}

type amountPayload struct {
	Value    *float64 `json:"value"`
	Currency *string  `json:"currency"`
	Evidence *string  `json:"evidence"`
}

// toResult maps the payload onto the internal model, locating every evidence
// snippet verbatim in the source text. A snippet that cannot be found was
// hallucinated: the evidence is dropped and the field marked, so the
// validator and reviewers see a value with no provenance.
func (p payload) toResult(text string) model.ExtractionResult {
	var res model.ExtractionResult

	setField(&res.Title, p.Title.Value, p.Title.Evidence, text)
	setField(&res.Store, p.Store.Value, p.Store.Evidence, text)
	setField(&res.Code, p.Code.Value, p.Code.Evidence, text)
	setField(&res.ExpiryDate, p.ExpiryDate.Value, p.ExpiryDate.Evidence, text)

	if p.Amount.Value != nil {
		av := model.AmountValue{Value: *p.Amount.Value}
		if p.Amount.Currency != nil {
			av.Currency = strings.ToUpper(strings.TrimSpace(*p.Amount.Currency))
		}
		conf, ev, ok := locateSnippet(p.Amount.Evidence, text)
		res.Amount.Set(av, conf)
		if ok {
			res.Amount.Evidence = append(res.Amount.Evidence, ev)
		} else {
			res.Amount.AddIssue(IssueSnippetNotFound)
		}
	}

	res.RecomputeSummary()
	return res
}

func setField(f *model.FieldResult[string], value, evidence *string, text string) {
	if value == nil || *value == "" {
		return
	}
	conf, ev, ok := locateSnippet(evidence, text)
	f.Set(*value, conf)
	if ok {
		f.Evidence = append(f.Evidence, ev)
	} else {
		f.AddIssue(IssueSnippetNotFound)
	}
}

// locateSnippet finds the literal snippet in text. A verbatim match yields a
// high-confidence span; a missing or unfindable snippet yields low
// confidence and no evidence.
func locateSnippet(snippet *string, text string) (model.Confidence, model.Evidence, bool) {
	if snippet == nil || *snippet == "" {
		return model.ConfidenceLow, model.Evidence{}, false
	}
	idx := strings.Index(text, *snippet)
	if idx < 0 {
		return model.ConfidenceLow, model.Evidence{}, false
	}
	return model.ConfidenceHigh, model.Evidence{
		Start:      idx,
		End:        idx + len(*snippet),
		SourceText: *snippet,
		Origin:     model.OriginLLM,
		Rule:       "llm_snippet",
	}, true
}
