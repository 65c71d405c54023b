package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/SoyJotaGS/buscador-rrv-web/internal/config"
	"github.com/SoyJotaGS/buscador-rrv-web/internal/logging"
	"github.com/SoyJotaGS/buscador-rrv-web/internal/metrics"
	"github.com/SoyJotaGS/buscador-rrv-web/internal/parser"
	"github.com/SoyJotaGS/buscador-rrv-web/internal/registry"
	"github.com/SoyJotaGS/buscador-rrv-web/internal/search"
	"github.com/SoyJotaGS/buscador-rrv-web/internal/source"
	"github.com/SoyJotaGS/buscador-rrv-web/internal/source/gsheets"
	"github.com/SoyJotaGS/buscador-rrv-web/internal/source/xlsx"
)

// app state shared by every subcommand, filled in by the root PersistentPreRunE
type app struct {
	configPath string
	verbose    bool

	cfg    *config.AppConfig
	info   config.LoadConfigInfo
	logger *zap.Logger
}

func (a *app) load() error {
	cfg, info, err := config.LoadConfigWithInfo(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		return err
	}

	a.cfg, a.info, a.logger = cfg, info, logger
	a.logger.Debug("config loaded",
		zap.String("path", info.Path),
		zap.Bool("file_found", info.FileFound),
		zap.Bool("env_file", info.EnvFile))
	return nil
}

// wiring everything a search needs
type wiring struct {
	service  *search.Service
	source   source.Source
	registry *prometheus.Registry
}

func (a *app) wire(ctx context.Context) (*wiring, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		return nil, err
	}

	src, err := a.openSource(ctx)
	if err != nil {
		return nil, err
	}

	classifier, err := a.classifier()
	if err != nil {
		return nil, err
	}

	verifier, err := a.verifier()
	if err != nil {
		return nil, err
	}

	agg := search.NewAggregator(src,
		search.WithClassifier(classifier),
		search.WithMarker(a.cfg.Source.Marker),
		search.WithLogger(a.logger),
		search.WithMetrics(m))

	return &wiring{
		service:  search.NewService(agg, verifier, a.logger, m),
		source:   src,
		registry: reg,
	}, nil
}

func (a *app) openSource(ctx context.Context) (source.Source, error) {
	switch a.cfg.Source.Kind {
	case config.SourceGSheets:
		wd, err := os.Getwd()
		if err != nil {
			wd = "."
		}
		creds, err := a.cfg.ResolveCredentialsFile(wd)
		if err != nil {
			return nil, source.Unavailable("credentials", err)
		}
		src, err := gsheets.New(ctx, gsheets.Config{CredentialsFile: creds}, a.logger)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return xlsx.New(a.cfg.Source.Dir, a.logger), nil
	}
}

func (a *app) classifier() (*parser.Classifier, error) {
	extra := make(map[parser.Role][]string, len(a.cfg.Classifier.Keywords))
	for name, kws := range a.cfg.Classifier.Keywords {
		role, ok := parser.ParseRole(name)
		if !ok {
			return nil, fmt.Errorf("classifier.keywords: unknown role %q", name)
		}
		extra[role] = append(extra[role], kws...)
	}
	return parser.NewClassifier(parser.DefaultRoleTable().WithKeywords(extra)), nil
}

func (a *app) verifier() (search.Verifier, error) {
	rc := a.cfg.Registry
	if !rc.Enabled {
		return registry.Disabled{}, nil
	}
	client, err := registry.NewClient(registry.Config{
		BaseURL:    rc.BaseURL,
		PlateParam: rc.PlateParam,
		APIKey:     rc.APIKey,
		AuthHeader: rc.AuthHeader,
		AuthScheme: rc.AuthScheme,
		Timeout:    rc.Timeout.Duration,
	}, registry.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	return client, nil
}
