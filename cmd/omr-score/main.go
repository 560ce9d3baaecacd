package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mayankjhn/omr-systemm/internal/batch"
	"github.com/mayankjhn/omr-systemm/internal/config"
	"github.com/mayankjhn/omr-systemm/internal/enhance"
	"github.com/mayankjhn/omr-systemm/internal/export"
	"github.com/mayankjhn/omr-systemm/internal/logging"
	"github.com/mayankjhn/omr-systemm/internal/store"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("omr-score %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "omr-score: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		imagesDir   = flag.String("images", "", "directory of sheet images to score (required)")
		keyPath     = flag.String("key", "", "answer key JSON file (required)")
		layoutPath  = flag.String("layout", "", "sheet layout JSON file (default: 100 questions, 4 options)")
		paramsPath  = flag.String("params", "", "recognition parameters JSON file")
		subjectPath = flag.String("subjects", "", "subject ranges JSON file for per-subject subtotals")
		outPath     = flag.String("out", "", "output file (default: stdout)")
		format      = flag.String("format", "text", "output format: text, csv, csv-detailed, json, html")
		overlayDir  = flag.String("overlays", "", "write annotated debug images to this directory")
		enhanceScan = flag.Bool("enhance", false, "clean up scans (deskew, denoise, contrast) before recognition")
		workers     = flag.Int("workers", 0, "concurrent workers (default: from OMR_WORKERS or 4)")
		envFile     = flag.String("env", "", "environment file to load (default: .env when present)")
		save        = flag.Bool("save", false, "persist results to the database (requires DATABASE_URL)")
		sheetVer    = flag.String("sheet-version", "", "exam variant label stored with persisted results")
	)
	flag.Parse()

	if *imagesDir == "" || *keyPath == "" {
		flag.Usage()
		return fmt.Errorf("both -images and -key are required")
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		return err
	}
	log := logging.NewLogger(cfg.LogLevel)

	log.WithFields(logrus.Fields{
		"version": Version,
		"env":     cfg.AppEnv,
	}).Debug("Starting omr-score")

	layout, err := config.LoadLayout(*layoutPath)
	if err != nil {
		return err
	}
	key, err := config.LoadAnswerKey(*keyPath, layout)
	if err != nil {
		return err
	}
	params, err := config.LoadParams(*paramsPath)
	if err != nil {
		return err
	}
	subjects, err := config.LoadSubjects(*subjectPath)
	if err != nil {
		return err
	}

	poolSize := cfg.Workers
	if *workers > 0 {
		poolSize = *workers
	}

	runner := &batch.Runner{
		Workers:        poolSize,
		Layout:         layout,
		Params:         params,
		Key:            key,
		Subjects:       subjects,
		RenderOverlays: *overlayDir != "",
		Log:            log,
		Progress: func(done, total int, filename string) {
			fmt.Fprintf(os.Stderr, "\r[%d/%d] %s", done, total, filename)
			if done == total {
				fmt.Fprintln(os.Stderr)
			}
		},
	}
	if *enhanceScan {
		opts := enhance.DefaultOptions()
		runner.Enhance = &opts
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := runner.ProcessDir(ctx, *imagesDir)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("no sheet images found in %s", *imagesDir)
	}

	if *overlayDir != "" {
		if err := writeOverlays(*overlayDir, results); err != nil {
			return err
		}
	}

	entries := make([]export.Entry, 0, len(results))
	failures := 0
	for _, res := range results {
		if res.Err != nil {
			failures++
			continue
		}
		entries = append(entries, export.Entry{
			Filename:    res.Filename,
			Report:      res.Report,
			ProcessedAt: time.Now().UTC(),
		})
	}

	if *save && cfg.DatabaseURL != "" {
		if err := persist(ctx, cfg.DatabaseURL, *sheetVer, log, entries); err != nil {
			return err
		}
	}

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := writeOutput(out, *format, entries); err != nil {
		return err
	}

	if failures > 0 {
		for _, res := range results {
			if res.Err != nil {
				fmt.Fprintf(os.Stderr, "failed: %s: %v\n", res.Filename, res.Err)
			}
		}
		return fmt.Errorf("%d of %d sheet(s) failed", failures, len(results))
	}
	return nil
}

func writeOutput(out *os.File, format string, entries []export.Entry) error {
	switch format {
	case "text":
		batchReport := export.NewBatchReport(entries)
		for _, e := range entries {
			fmt.Fprint(out, export.Summary(e))
		}
		fmt.Fprintf(out, "\nBatch: %d sheet(s), mean %.2f%%, median %.2f%%, trend %s\n",
			batchReport.Sheets, batchReport.Mean, batchReport.Median, batchReport.Trend)
		return nil
	case "csv":
		return export.WriteCSV(out, entries)
	case "csv-detailed":
		return export.WriteDetailedCSV(out, entries)
	case "json":
		return export.WriteJSON(out, entries)
	case "html":
		return export.WriteHTML(out, entries)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeOverlays(dir string, results []batch.Result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create overlay directory: %w", err)
	}

	for _, res := range results {
		if res.Overlay == nil {
			continue
		}
		base := strings.TrimSuffix(res.Filename, filepath.Ext(res.Filename))
		f, err := os.Create(filepath.Join(dir, base+"_overlay.png"))
		if err != nil {
			return fmt.Errorf("failed to create overlay file: %w", err)
		}
		if err := png.Encode(f, res.Overlay); err != nil {
			f.Close()
			return fmt.Errorf("failed to encode overlay for %s: %w", res.Filename, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

func persist(ctx context.Context, dsn, sheetVersion string, log *logrus.Logger, entries []export.Entry) error {
	db, err := store.Open(ctx, dsn, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}

	for _, e := range entries {
		id, err := db.SaveResult(ctx, e.Filename, sheetVersion, e.Report)
		if err != nil {
			return fmt.Errorf("failed to save result for %s: %w", e.Filename, err)
		}
		log.WithFields(logrus.Fields{
			"file": e.Filename,
			"id":   id,
		}).Debug("Result saved")
	}
	return nil
}
