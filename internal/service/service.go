// Package service is the single request entry point: offline extraction,
// validation, escalation routing, and the guarded provider pass, all
// converging on the caller-facing Draft contract.
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/giftvault/voucher-service/internal/guard"
	"github.com/giftvault/voucher-service/internal/model"
	"github.com/giftvault/voucher-service/internal/offline"
	"github.com/giftvault/voucher-service/internal/provider"
	"github.com/giftvault/voucher-service/internal/route"
	"github.com/giftvault/voucher-service/internal/validate"
)

// AssumptionProviderFallback marks a result where the provider failed and the
// offline answer was substituted. Callers must be able to tell this apart
// from a provider success.
const AssumptionProviderFallback = "provider_unavailable_used_offline_result"

// Request is one extraction request.
type Request struct {
	SourceText string
	SourceType string
}

// ProviderClient is the provider pass as the service consumes it.
type ProviderClient interface {
	Extract(ctx context.Context, text, sourceType string) provider.CallResult
}

// Service combines the offline extractor, the validator, the routing
// heuristic, and the guarded provider client.
type Service struct {
	extractor *offline.Extractor
	provider  ProviderClient
	guard     *guard.Guard
}

// New creates the service. A nil providerClient puts the service in
// offline-only mode for the process lifetime; this is logged once here, not
// per request.
func New(extractor *offline.Extractor, providerClient ProviderClient, g *guard.Guard) *Service {
	if extractor == nil {
		extractor = offline.New(nil)
	}
	if g == nil {
		g = guard.New(guard.Config{})
	}
	if providerClient == nil {
		zap.L().Warn("no provider configured, running offline-only for this process lifetime")
	}
	return &Service{
		extractor: extractor,
		provider:  providerClient,
		guard:     g,
	}
}

// Extract runs the full pipeline for one request. A nil Draft with a nil
// error is a confident non-voucher. Every path returns the same Draft
// contract regardless of which stage produced the final result.
func (s *Service) Extract(ctx context.Context, req Request) (*model.Draft, error) {
	res := s.extractor.Extract(req.SourceText, req.SourceType)
	validated := validate.Validate(&res, req.SourceText)

	if !route.ShouldEscalate(req.SourceText, validated) {
		return validated.ToDraft(), nil
	}
	if s.provider == nil || s.guard.IsTripped() {
		return validated.ToDraft(), nil
	}

	key := guard.CacheKey(req.SourceText, req.SourceType)
	if cached, ok := s.guard.CacheGet(key); ok {
		cached.RoutingMeta.CacheHit = true
		zap.L().Debug("provider cache hit", zap.String("key", key[:12]))
		return cached.ToDraft(), nil
	}

	if !s.guard.TryAdmit() {
		zap.L().Debug("provider admission saturated, using offline result")
		return validated.ToDraft(), nil
	}
	defer s.guard.Release()

	call := s.provider.Extract(ctx, req.SourceText, req.SourceType)
	switch call.Status {
	case provider.StatusOK:
		s.guard.RecordOutcome(guard.OutcomeSuccess)
		s.guard.CachePut(key, call.Extraction)
		return call.Extraction.ToDraft(), nil

	case provider.StatusNotVoucher:
		s.guard.RecordOutcome(guard.OutcomeSuccess)
		return nil, nil

	case provider.StatusMalformed:
		s.guard.RecordOutcome(guard.OutcomeInvalidJSON)
	default:
		s.guard.RecordOutcome(guard.OutcomeFallback)
	}

	zap.L().Warn("provider pass failed, falling back to offline result",
		zap.String("status", call.Status.String()),
		zap.Error(call.Err),
	)

	fallback := validated.Clone()
	fallback.RoutingMeta.Used = model.UsedHybrid
	d := fallback.ToDraft()
	d.Assumptions = append(d.Assumptions, AssumptionProviderFallback)
	return d, nil
}
