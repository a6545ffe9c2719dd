// Command wpilogdump loads WPILib DataLog files and dumps entry
// listings, sample ranges, and decode warnings as JSON or YAML. With
// -watch it re-indexes a single file whenever it changes on disk and
// can expose load metrics over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/frcviz/wpilog/internal/config"
	"github.com/frcviz/wpilog/internal/export"
	"github.com/frcviz/wpilog/internal/loader"
	"github.com/frcviz/wpilog/internal/logging"
	"github.com/frcviz/wpilog/internal/metrics"
	"github.com/frcviz/wpilog/internal/server"
	"github.com/frcviz/wpilog/internal/watcher"
	"github.com/frcviz/wpilog/pkg/wpilog"
)

var (
	configFile  = flag.String("config", "", "Path to YAML configuration file")
	outputPath  = flag.String("output", "", "Write the dump to this file instead of stdout")
	format      = flag.String("format", "", "Dump format: json or yaml")
	compression = flag.String("compress", "", "Dump compression: none, gzip or snappy")
	entries     = flag.String("entries", "", "Comma-separated entry names to include samples for")
	from        = flag.Int64("from", 0, "Range start in microseconds since log start")
	to          = flag.Int64("to", 0, "Range end in microseconds; 0 means end of log")
	warnings    = flag.Bool("warnings", false, "Include decode warnings in the dump")
	watch       = flag.Bool("watch", false, "Reload the file whenever it changes on disk")
	metricsAddr = flag.String("metrics", "", "Serve Prometheus metrics on this address in watch mode")
	logLevel    = flag.String("log-level", "", "Log level: debug, info, warn or error")

	version = "0.1.0"
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	logger.Info().Str("version", version).Msg("wpilogdump starting")

	if cfg.Watch.Enabled {
		return runWatch(cfg, logger)
	}
	if len(cfg.Files) == 0 {
		return fmt.Errorf("no input files; pass .wpilog paths or a -config file")
	}

	p := loader.New(len(cfg.Files), wpilog.WithLogger(logger.Logger))
	defer p.Close()
	results, err := p.LoadAll(context.Background(), cfg.Files)
	if err != nil {
		return err
	}
	for _, r := range results {
		if r.Index == nil {
			return fmt.Errorf("failed to load %s: %w", r.Path, r.Err)
		}
		if r.Err != nil {
			// Truncated: report it and dump what survived.
			logger.Warn().Err(r.Err).Str("path", r.Path).Msg("Log is truncated; dumping partial index")
		}
		if err := writeDump(cfg, r.Path, r.Index); err != nil {
			return err
		}
	}
	return nil
}

// loadConfig merges the optional config file with command-line flags;
// flags win.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	cfg.Files = append(cfg.Files, flag.Args()...)
	if *outputPath != "" {
		cfg.Output.Path = *outputPath
	}
	if *format != "" {
		cfg.Output.Format = *format
	}
	if *compression != "" {
		cfg.Output.Compression = *compression
	}
	if *entries != "" {
		cfg.Dump.Entries = strings.Split(*entries, ",")
	}
	if *from != 0 {
		cfg.Dump.From = *from
	}
	if *to != 0 {
		cfg.Dump.To = *to
	}
	if *warnings {
		cfg.Dump.Warnings = true
	}
	if *watch {
		cfg.Watch.Enabled = true
	}
	if *metricsAddr != "" {
		cfg.Watch.MetricsAddress = *metricsAddr
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func writeDump(cfg *config.Config, path string, idx *wpilog.LogIndex) error {
	d := export.NewDump(path, idx)
	if !cfg.Dump.Warnings {
		d.Warnings = nil
	}
	for _, name := range cfg.Dump.Entries {
		end := cfg.Dump.To
		if end == 0 {
			end = idx.LastTimestamp()
		}
		samples := idx.SamplesInRange(name, wpilog.LatestGeneration, cfg.Dump.From, end)
		d.AddSeries(name, idx.Generations(name)-1, samples)
	}

	out := os.Stdout
	if cfg.Output.Path != "" {
		f, err := os.Create(cfg.Output.Path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	return d.Write(out, export.Format(cfg.Output.Format), export.Compression(cfg.Output.Compression))
}

func runWatch(cfg *config.Config, logger *logging.Logger) error {
	path := cfg.Files[0]

	w, err := watcher.New(path, cfg.Watch.ReloadInterval, logger, wpilog.WithLogger(logger.Logger))
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	var srv *server.Server
	if cfg.Watch.MetricsAddress != "" {
		srv = server.New(server.Config{
			Address:  cfg.Watch.MetricsAddress,
			Registry: metrics.Default().Registry(),
			Logger:   logger,
		})
		srv.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Stop(ctx)
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case r, ok := <-w.Results():
			if !ok {
				return nil
			}
			if r.Index == nil {
				logger.Warn().Err(r.Err).Msg("Reload produced no index")
				continue
			}
			if r.Err != nil && !errors.Is(r.Err, wpilog.ErrTruncatedInput) {
				logger.Warn().Err(r.Err).Msg("Reload failed")
				continue
			}
			logger.Info().
				Int("records", r.Index.RecordCount()).
				Int("samples", r.Index.SampleCount()).
				Int("warnings", len(r.Index.Warnings())).
				Msg("Index refreshed")
			if cfg.Output.Path != "" {
				if err := writeDump(cfg, path, r.Index); err != nil {
					logger.Error().Err(err).Msg("Failed to write dump")
				}
			}
		case <-sigCh:
			logger.Info().Msg("Shutdown signal received")
			return nil
		}
	}
}
