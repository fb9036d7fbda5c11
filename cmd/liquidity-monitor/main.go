// Command liquidity-monitor runs the liquidity risk pipeline for the
// tracked London Stock Exchange securities: fetch daily bars, derive
// rolling liquidity features, score them, classify the alert band and
// render the recommendation.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"lserisk/internal/config"
	"lserisk/internal/infrastructure"
	"lserisk/internal/marketdata"
	"lserisk/internal/report"
	"lserisk/internal/risk"
	"lserisk/internal/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML config file (optional)")
	outputDir := flag.String("out", "", "output directory for reports (defaults to config report_dir)")
	windowSize := flag.Int("window", 0, "rolling window in trading days (overrides config)")
	live := flag.Bool("live", false, "fetch live market data instead of the simulated source")
	noDashboard := flag.Bool("no-dashboard", false, "suppress the text dashboard")
	noColor := flag.Bool("no-color", false, "disable ANSI colours in terminal output")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	replay := flag.Bool("replay", false, "rescore features already stored in the database instead of fetching")
	watch := flag.Bool("watch", false, "after the report, keep monitoring with simulated market drift")
	flag.Parse()

	// A .env file is a convenience for local runs; absence is not an error
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Flag overrides on top of config
	if *live {
		cfg.Mode.Simulated = false
	}
	if *noDashboard {
		cfg.Mode.ShowDashboard = false
	}
	if *verbose {
		cfg.Mode.Verbose = true
	}
	if *windowSize > 0 {
		cfg.Risk.WindowDays = *windowSize
	}
	if *outputDir != "" {
		cfg.Output.ReportDir = *outputDir
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration after flag overrides", "error", err)
		os.Exit(1)
	}

	logger, cleanup, err := infrastructure.NewLogger(cfg.Logging, cfg.Mode.Verbose)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer cleanup()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, logger, *replay, *watch, !*noColor); err != nil {
		logger.Error("Pipeline failed", "error", err)
		os.Exit(1)
	}
}

// run executes one full pipeline pass and, when requested, the monitoring
// loop afterwards
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, replay, watch, colors bool) error {
	renderer := report.NewTerminalRenderer(os.Stdout, colors, cfg.Mode.ShowDashboard)
	renderer.RenderStartupBanner()

	db, err := store.Open(cfg.Output.DatabasePath)
	if err != nil {
		return fmt.Errorf("open feature store: %w", err)
	}
	defer db.Close()

	logger.InfoContext(ctx, "phase 1: assembling market data",
		"simulated", cfg.Mode.Simulated,
		"replay", replay,
		"window_days", cfg.Risk.WindowDays,
	)

	features, market, err := assembleFeatures(ctx, cfg, logger, db, replay)
	if err != nil {
		return err
	}
	renderer.SetMarketContext(market)

	logger.InfoContext(ctx, "phase 2: scoring liquidity conditions")

	var (
		allScored  []risk.ScoredFeature
		pairScores []float64
		crisisDays int
	)
	for _, symbol := range cfg.Symbols() {
		rows := features[symbol]
		if len(rows) == 0 {
			return fmt.Errorf("insufficient history for %s: need at least %d trading days",
				symbol, cfg.Risk.WindowDays)
		}

		baseline := risk.ComputeBaseline(rows)
		scorer := risk.NewScorer(baseline, logger)
		scored := scorer.ScoreSeries(rows)

		latest := scored[len(scored)-1]
		pairScores = append(pairScores, latest.Score)
		allScored = append(allScored, scored...)
		for _, row := range rows {
			if row.Crisis {
				crisisDays++
			}
		}

		logger.InfoContext(ctx, "scored security",
			"symbol", symbol,
			"rows", len(scored),
			"baseline_ratio", baseline.LiquidityRatio,
			"baseline_volatility", baseline.Volatility,
			"latest_score", latest.Score,
		)
	}

	logger.InfoContext(ctx, "analyzed liquidity conditions",
		"trading_days", len(allScored),
		"crisis_days", crisisDays,
	)

	logger.InfoContext(ctx, "phase 3: generating liquidity recommendation")

	now := time.Now().UTC()
	combined := risk.ScorePair(pairScores[0], pairScores[1])
	assessment := risk.Classify(combined, cfg.PairSecurity(), now)

	assessments := []risk.RiskAssessment{assessment}
	for i, symbol := range cfg.Symbols() {
		assessments = append(assessments, risk.Classify(pairScores[i], symbol, now))
	}

	renderer.Render(allScored, assessment)

	if err := writeReports(cfg, logger, allScored, assessments, now); err != nil {
		return err
	}

	if watch {
		if !cfg.Mode.Simulated {
			return fmt.Errorf("watch mode requires simulated mode")
		}
		watchLoop(ctx, cfg, logger, renderer, combined)
	}

	return nil
}

// assembleFeatures produces the per-symbol feature history, either by
// fetching bars and recomputing or by replaying stored features
func assembleFeatures(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *store.Store, replay bool) (map[string][]risk.FeatureRow, risk.MarketContext, error) {
	features := make(map[string][]risk.FeatureRow)
	var market risk.MarketContext

	if replay {
		for _, symbol := range cfg.Symbols() {
			rows, err := db.LoadFeatures(ctx, symbol)
			if err != nil {
				return nil, market, fmt.Errorf("replay features: %w", err)
			}
			features[symbol] = rows
		}
		// Market context needs fresh index bars; replay runs go without it
		return features, market, nil
	}

	var source marketdata.Source
	if cfg.Mode.Simulated {
		source = marketdata.NewSimulatedSource(cfg.Market.Seed, logger)
	} else {
		source = marketdata.NewYahooSource(logger)
	}

	start, end := cfg.HistoryRange(time.Now())

	for _, symbol := range cfg.Symbols() {
		bars, err := source.Fetch(ctx, symbol, start, end)
		if err != nil {
			return nil, market, fmt.Errorf("fetch market data: %w", err)
		}

		if err := db.SaveBars(ctx, bars); err != nil {
			return nil, market, err
		}

		// Raw bar snapshot alongside the reports, for offline inspection
		snapshot := filepath.Join(cfg.Output.ReportDir,
			fmt.Sprintf("bars_%s.csv", strings.ReplaceAll(symbol, ".", "_")))
		if err := marketdata.SaveBars(bars, snapshot); err != nil {
			return nil, market, fmt.Errorf("save bar snapshot: %w", err)
		}

		rows := risk.ComputeFeatures(bars, cfg.Risk.WindowDays, logger)
		if err := db.SaveFeatures(ctx, rows); err != nil {
			return nil, market, err
		}
		features[symbol] = rows
	}

	indexBars, err := source.Fetch(ctx, cfg.Market.Index, start, end)
	if err != nil {
		// Index data is context only; a failed fetch degrades, not aborts
		logger.WarnContext(ctx, "failed to fetch index data, continuing without market context",
			"symbol", cfg.Market.Index,
			"error", err,
		)
	} else {
		market = risk.ComputeMarketContext(indexBars, logger)
	}

	return features, market, nil
}

// writeReports persists the CSV and Excel outputs for the run
func writeReports(cfg *config.Config, logger *slog.Logger, scored []risk.ScoredFeature, assessments []risk.RiskAssessment, now time.Time) error {
	stamp := now.Format("20060102")

	featuresPath := filepath.Join(cfg.Output.ReportDir, fmt.Sprintf("liquidity_features_%s.csv", stamp))
	if err := report.SaveFeaturesCSV(scored, featuresPath); err != nil {
		return fmt.Errorf("save features report: %w", err)
	}

	assessmentsPath := filepath.Join(cfg.Output.ReportDir, fmt.Sprintf("risk_assessments_%s.csv", stamp))
	if err := report.SaveAssessmentsCSV(assessments, assessmentsPath); err != nil {
		return fmt.Errorf("save assessments report: %w", err)
	}

	workbookPath := filepath.Join(cfg.Output.ReportDir, fmt.Sprintf("liquidity_report_%s.xlsx", stamp))
	if err := report.SaveWorkbook(scored, assessments, workbookPath); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	logger.Info("reports written",
		"features", featuresPath,
		"assessments", assessmentsPath,
		"workbook", workbookPath,
	)
	return nil
}

// watchLoop simulates real-time monitoring: the risk score drifts with
// occasional stress spikes and each change is re-classified and rendered.
// Runs until the context is cancelled (Ctrl+C).
func watchLoop(ctx context.Context, cfg *config.Config, logger *slog.Logger, renderer *report.TerminalRenderer, score float64) {
	logger.Info("entering monitoring simulation, press Ctrl+C to exit")

	rng := rand.New(rand.NewSource(cfg.Market.Seed))
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("monitoring stopped")
			return
		case <-ticker.C:
			// Gradual drift with occasional stress spikes
			score += rng.Float64()*15 - 5
			if rng.Float64() < 0.2 {
				score += 25
			}
			if score < 10 {
				score = 10
			}
			if score > 95 {
				score = 95
			}

			assessment := risk.Classify(score, cfg.PairSecurity(), time.Now().UTC())
			renderer.RenderAlert(assessment)
		}
	}
}
