package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/magefree/mage-rules-core/internal/config"
	"github.com/magefree/mage-rules-core/internal/game/projection"
	"github.com/magefree/mage-rules-core/internal/scenario"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

var (
	configPath = flag.String("config", "", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

type result struct {
	name       string
	views      []*projection.GameObjectView
	mismatches []scenario.Mismatch
	stats      projection.Stats
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config file] scenario.yaml...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Debug("starting projector",
		zap.String("version", version),
		zap.Int("scenarios", flag.NArg()),
		zap.Int("workers", cfg.Simulation.Workers),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := run(ctx, cfg, flag.Args(), logger)
	if err != nil {
		logger.Error("projection failed", zap.Error(err))
		os.Exit(1)
	}

	failed := false
	for _, r := range results {
		report(os.Stdout, r)
		if len(r.mismatches) > 0 {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

// run projects each scenario on its own engine, at most cfg.Simulation.Workers at a time.
// Results keep the order of paths.
func run(ctx context.Context, cfg *config.Config, paths []string, logger *zap.Logger) ([]result, error) {
	results := make([]result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Simulation.Workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := scenario.Load(path)
			if err != nil {
				return err
			}
			eng, err := s.NewEngine(cfg.Projection.CacheSize, logger.With(zap.String("scenario", s.Name)))
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = result{
				name:       s.Name,
				views:      eng.Battlefield(),
				mismatches: s.Check(eng),
				stats:      eng.CacheStats(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func report(w io.Writer, r result) {
	fmt.Fprintf(w, "== %s\n", r.name)
	for _, v := range r.views {
		pt := ""
		if v.HasPT {
			pt = fmt.Sprintf(" %d/%d", v.Power, v.Toughness)
		}
		fmt.Fprintf(w, "%-12s %-20s %-8s%s [%s]", v.ID, v.Name, v.ControllerID, pt, join(v.Types))
		if len(v.Subtypes) > 0 {
			fmt.Fprintf(w, " - %s", join(v.Subtypes))
		}
		if len(v.Keywords) > 0 {
			fmt.Fprintf(w, " {%s}", join(v.Keywords))
		}
		fmt.Fprintln(w)
	}
	for _, m := range r.mismatches {
		fmt.Fprintf(w, "FAIL %s\n", m)
	}
	if len(r.mismatches) == 0 {
		fmt.Fprintf(w, "ok (cache hits=%d misses=%d)\n", r.stats.Hits, r.stats.Misses)
	}
}

func join[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, " ")
}

func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	// Reports go to stdout; keep logs off it.
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
