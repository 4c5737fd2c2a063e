package main

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/giftvault/voucher-service/internal/guard"
	"github.com/giftvault/voucher-service/internal/offline"
	"github.com/giftvault/voucher-service/internal/provider"
	"github.com/giftvault/voucher-service/internal/service"
	"github.com/giftvault/voucher-service/pkg/anthropic"
)

// buildService wires the extraction pipeline from config. With no API key the
// service runs offline-only.
func buildService() (*service.Service, error) {
	gaz := offline.DefaultGazetteer()
	if cfg.Extract.GazetteerPath != "" {
		g, err := offline.LoadGazetteer(cfg.Extract.GazetteerPath)
		if err != nil {
			return nil, eris.Wrap(err, "load gazetteer")
		}
		gaz = g
	}

	var providerClient service.ProviderClient
	if cfg.Anthropic.Key != "" {
		ai := anthropic.NewClient(cfg.Anthropic.Key)
		providerClient = provider.New(ai, provider.Config{
			Model:             cfg.Anthropic.Model,
			Timeout:           time.Duration(cfg.Anthropic.TimeoutSecs) * time.Second,
			MaxAttempts:       cfg.Anthropic.MaxAttempts,
			RequestsPerSecond: cfg.Anthropic.RequestsPerSecond,
		})
		zap.L().Info("provider enabled", zap.String("model", cfg.Anthropic.Model))
	}

	g := guard.New(guard.Config{
		CacheTTL:         time.Duration(cfg.Extract.CacheTTLHours) * time.Hour,
		CacheCapacity:    cfg.Extract.CacheCapacity,
		MaxInFlight:      int64(cfg.Extract.MaxProviderCalls),
		WindowSize:       cfg.Extract.WindowSize,
		WindowMinSamples: cfg.Extract.WindowMinSamples,
		TripThreshold:    cfg.Extract.TripThreshold,
	})

	return service.New(offline.New(gaz), providerClient, g), nil
}
