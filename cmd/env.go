package main

import (
	"net/http"
	"time"

	"github.com/richslow/vnmarket/internal/benchmark"
	"github.com/richslow/vnmarket/internal/config"
	"github.com/richslow/vnmarket/internal/dashboard"
	"github.com/richslow/vnmarket/internal/mapper"
	"github.com/richslow/vnmarket/internal/model"
	"github.com/richslow/vnmarket/internal/normalize"
	"github.com/richslow/vnmarket/internal/peers"
	"github.com/richslow/vnmarket/internal/provider"
	"github.com/richslow/vnmarket/internal/resilience"
	"github.com/richslow/vnmarket/pkg/tcbs"
	"github.com/richslow/vnmarket/pkg/vci"
)

// appEnv holds the wired services the commands share.
type appEnv struct {
	Tables       *mapper.Tables
	Statements   *normalize.Service
	Company      *provider.Company
	Reporter     *benchmark.Reporter
	Orchestrator *dashboard.Orchestrator
}

func providerHTTP(pc config.ProviderConfig) *http.Client {
	timeout := time.Duration(pc.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// initApp builds the provider clients and every service on top of them.
func initApp(mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	tables, err := mapper.LoadTables(cfg.Mapper.TablesPath)
	if err != nil {
		return nil, err
	}

	vciClient := provider.GuardVCI(vci.NewClient(
		vci.WithBaseURL(cfg.VCI.BaseURL),
		vci.WithRateLimit(cfg.VCI.RatePerSecond, cfg.VCI.RateBurst),
		vci.WithHTTPClient(providerHTTP(cfg.VCI)),
	), provider.NewBreaker("vci", resilience.FromCircuitConfig(cfg.VCI.BreakerThreshold, cfg.VCI.BreakerResetSecs)))
	tcbsClient := provider.GuardTCBS(tcbs.NewClient(
		tcbs.WithBaseURL(cfg.TCBS.BaseURL),
		tcbs.WithRateLimit(cfg.TCBS.RatePerSecond, cfg.TCBS.RateBurst),
		tcbs.WithHTTPClient(providerHTTP(cfg.TCBS)),
	), provider.NewBreaker("tcbs", resilience.FromCircuitConfig(cfg.TCBS.BreakerThreshold, cfg.TCBS.BreakerResetSecs)))

	var normOpts []normalize.Option
	if cfg.TCBS.PrimarySource && !cfg.VCI.PrimarySource {
		for _, kind := range model.Kinds {
			normOpts = append(normOpts, normalize.WithPrimary(kind, normalize.SourceTCBS))
		}
	}
	norm := normalize.New(tables, normOpts...)

	statements := normalize.NewService(norm, provider.NewTCBSStatements(tcbsClient), provider.NewVCIStatements(vciClient))

	lookback := time.Duration(cfg.Fetch.PriceLookbackDays) * 24 * time.Hour
	company := provider.NewCompany(tcbsClient, lookback)
	listing := provider.NewListing(vciClient)

	resolver := peers.NewResolver(company, listing, cfg.Benchmark.MaxPeers)
	engine := benchmark.NewEngine(statements, benchmark.Config{
		MinSamples:  cfg.Benchmark.MinSamples,
		Concurrency: cfg.Benchmark.Concurrency,
		PeerTimeout: time.Duration(cfg.Benchmark.PeerTimeoutSecs) * time.Second,
	})
	reporter := benchmark.NewReporter(resolver, engine, nil)

	orchestrator := dashboard.New(statements, company, reporter, dashboard.Config{
		CallTimeout:     time.Duration(cfg.Fetch.CallTimeoutSecs) * time.Second,
		TierConcurrency: cfg.Fetch.TierConcurrency,
	})

	return &appEnv{
		Tables:       tables,
		Statements:   statements,
		Company:      company,
		Reporter:     reporter,
		Orchestrator: orchestrator,
	}, nil
}
