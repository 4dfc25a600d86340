package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/karthik/placementhub/internal/applications"
	"github.com/karthik/placementhub/internal/browser"
	"github.com/karthik/placementhub/internal/config"
	"github.com/karthik/placementhub/internal/crawl"
	"github.com/karthik/placementhub/internal/dashboard"
	"github.com/karthik/placementhub/internal/discovery"
	"github.com/karthik/placementhub/internal/identity"
	"github.com/karthik/placementhub/internal/orchestrator"
	"github.com/karthik/placementhub/internal/portal"
	"github.com/karthik/placementhub/internal/throttle"
)

// defaultPortalURL is used when neither config, flag, nor PORTAL_URL names
// the portal API.
const defaultPortalURL = "http://localhost:8000"

// app bundles the wired collaborators one CLI invocation works with.
type app struct {
	cfg      config.Config
	client   *portal.Client
	sessions *identity.FileStore
	orch     *orchestrator.Orchestrator

	alumni     *dashboard.AlumniLoader
	management *dashboard.ManagementLoader
	events     *dashboard.EventManagerLoader
	aggregator *discovery.Aggregator

	appStore *applications.Store
	pipeline *applications.Pipeline
}

// buildApp loads configuration (file, then env fallbacks, then defaults) and
// wires the full collaborator graph.
func buildApp(configPath string) (*app, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	if cfg.PortalURL == "" {
		cfg.PortalURL = os.Getenv("PORTAL_URL")
	}
	if cfg.StateDir == "" {
		cfg.StateDir = os.Getenv("PLACEMENTHUB_STATE_DIR")
	}
	if cfg.CatalogPath == "" {
		cfg.CatalogPath = os.Getenv("PLACEMENTHUB_CATALOG")
	}

	defaults := config.Config{
		PortalURL: defaultPortalURL,
		StateDir:  defaultStateDir(),
	}
	cfg = cfg.MergeWithDefaults(defaults)
	if cfg.ApplicationsDB == "" {
		cfg.ApplicationsDB = filepath.Join(cfg.StateDir, "applications.db")
	}

	client := portal.New(cfg.PortalURL)
	sessions := identity.NewFileStore(cfg.StateDir)
	if token, err := sessions.LoadToken(); err == nil && token != "" {
		client.SetToken(token)
	}

	crawler := crawl.NewSourceCrawler(cfg.CrawlSources, newHTTPFetcher(cfg))
	if cfg.UseBrowser {
		crawler.WithBrowserFallback(crawl.NewBrowserFetcher())
	}
	aggregator := discovery.NewAggregator(crawler)

	ctrl := throttle.NewController(throttle.NewFileMarker(cfg.StateDir))

	alumni := dashboard.NewAlumniLoader(client)
	management := dashboard.NewManagementLoader(client)
	events := dashboard.NewEventManagerLoader(client)

	if err := os.MkdirAll(cfg.StateDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	appStore, err := applications.OpenStore(cfg.ApplicationsDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open application ledger: %w", err)
	}

	a := &app{
		cfg:        cfg,
		client:     client,
		sessions:   sessions,
		alumni:     alumni,
		management: management,
		events:     events,
		aggregator: aggregator,
		appStore:   appStore,
		pipeline:   applications.NewPipeline(appStore, client, browser.Open),
	}
	a.orch = orchestrator.New(client, sessions, ctrl, aggregator, alumni, management, events)
	return a, nil
}

// pipelineWithoutBrowser is the same pipeline with browser navigation
// disabled. Used by apply --no-browser.
func (a *app) pipelineWithoutBrowser() *applications.Pipeline {
	return applications.NewPipeline(a.appStore, a.client, nil)
}

// Close releases held resources and waits for pending side effects.
func (a *app) Close() {
	a.pipeline.Flush()
	a.orch.Flush()
	_ = a.appStore.Close()
}

func newHTTPFetcher(cfg config.Config) *crawl.HTTPFetcher {
	f := crawl.NewHTTPFetcher()
	if cfg.CrawlTimeout > 0 {
		f.Timeout = time.Duration(cfg.CrawlTimeout) * time.Second
	}
	return f
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".placementhub"
	}
	return filepath.Join(home, ".placementhub")
}
