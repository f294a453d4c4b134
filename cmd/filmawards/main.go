package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"filmawards/internal"
	"filmawards/internal/catalog"
	"filmawards/internal/config"
	"filmawards/internal/logging"
	"filmawards/internal/pipeline"
	"filmawards/internal/source"
	"filmawards/internal/storage"
	"filmawards/internal/watcher"
)

func main() {
	cfg, err := config.Load()
	must(err)
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	if cmd == "awards:parse" {
		parseFile(cfg, log, os.Args[2:])
		return
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch cmd {
	case "awards:scrape":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		year := fs.Int("year", 0, "single ceremony year")
		start := fs.Int("start", 0, "first ceremony year")
		end := fs.Int("end", 0, "last ceremony year")
		_ = fs.Parse(os.Args[2:])
		processor := pipeline.NewProcessingService(db, cfg, makeFetcher(cfg, log), log)
		if *year != 0 {
			res, err := processor.ScrapeYear(ctx, *year)
			must(err)
			fmt.Printf("scraped year=%d ceremony=%d strategy=%s awards=%d won=%d linked=%d\n",
				res.Year, res.Number, res.Strategy, res.Awards, res.Won, res.Linked)
			return
		}
		if *start == 0 || *end == 0 {
			must(fmt.Errorf("--year or --start and --end are required"))
		}
		report, err := processor.ScrapeRange(ctx, *start, *end)
		must(err)
		for _, f := range report.Failed {
			fmt.Printf("failed year=%d error=%v\n", f.Year, f.Err)
		}
		fmt.Printf("scrape done run=%s years=%d failed=%d awards=%d\n",
			report.RunID, len(report.Years), len(report.Failed), report.TotalAwards())
	case "awards:reparse":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 100, "max stored pages")
		_ = fs.Parse(os.Args[2:])
		processor := pipeline.NewProcessingService(db, cfg, makeFetcher(cfg, log), log)
		n, err := processor.ParseStored(*limit)
		must(err)
		fmt.Printf("reparsed pages=%d\n", n)
	case "awards:enrich":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		year := fs.Int("year", 0, "ceremony year (0 = all)")
		_ = fs.Parse(os.Args[2:])
		processor := pipeline.NewProcessingService(db, cfg, makeFetcher(cfg, log), log)
		changed, err := processor.EnrichStored(*year)
		must(err)
		fmt.Printf("enrich done relinked=%d\n", changed)
	case "awards:summary":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		year := fs.Int("year", 0, "ceremony year (0 = all)")
		_ = fs.Parse(os.Args[2:])
		counts, err := db.CategoryCounts(cfg.AwardName, *year)
		must(err)
		if len(counts) == 0 {
			fmt.Println("no awards stored")
			return
		}
		fmt.Println(renderSummary(counts))
	case "catalog:sync":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		start := fs.Int("start", 0, "first release year")
		end := fs.Int("end", 0, "last release year")
		_ = fs.Parse(os.Args[2:])
		if *start == 0 {
			must(fmt.Errorf("--start is required"))
		}
		if *end == 0 {
			*end = *start
		}
		count, err := catalog.NewSyncService(db, cfg, log).SyncYears(ctx, *start, *end)
		must(err)
		fmt.Printf("catalog sync complete: %d films\n", count)
	case "catalog:resolve":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		year := fs.Int("year", 0, "ceremony year (0 = all)")
		_ = fs.Parse(os.Args[2:])
		processor := pipeline.NewProcessingService(db, cfg, makeFetcher(cfg, log), log)
		missing, err := processor.UnlinkedTitles(*year)
		must(err)
		resolved, err := catalog.NewSyncService(db, cfg, log).ResolveMissing(ctx, missing)
		must(err)
		changed, err := processor.EnrichStored(*year)
		must(err)
		fmt.Printf("catalog resolve done unlinked=%d resolved=%d relinked=%d\n", len(missing), resolved, changed)
	case "export:xlsx", "export:json":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		year := fs.Int("year", 0, "ceremony year (0 = all)")
		wonOnly := fs.Bool("won", false, "winners only")
		out := fs.String("out", "", "output path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			ext := strings.TrimPrefix(cmd, "export:")
			*out = filepath.Join(cfg.OutputDir, "awards."+ext)
		}
		stored, err := db.ListAwards(storage.AwardFilter{AwardName: cfg.AwardName, CeremonyYear: *year, WonOnly: *wonOnly})
		must(err)
		rows := pipeline.EnrichedRows(stored)
		if cmd == "export:json" {
			must(pipeline.ExportAwardsToJSON(rows, *out))
		} else {
			must(pipeline.ExportAwardsToXLSX(rows, *out))
		}
		fmt.Printf("exported %d rows to %s\n", len(rows), *out)
	case "watch":
		var resolver watcher.Resolver
		if strings.TrimSpace(cfg.TMDBAPIKey) != "" {
			resolver = catalog.NewSyncService(db, cfg, log)
		}
		must(watcher.NewService(db, cfg, makeFetcher(cfg, log), resolver, log).Run(ctx))
	default:
		usage()
		os.Exit(1)
	}
}

func parseFile(cfg config.Config, log *slog.Logger, args []string) {
	fs := flag.NewFlagSet("awards:parse", flag.ExitOnError)
	input := fs.String("input", "", "saved page (.html or .mhtml)")
	year := fs.Int("year", 0, "ceremony year")
	category := fs.String("category", "", "read as the history page of this category")
	output := fs.String("output", "", "output path (.xlsx or .json)")
	_ = fs.Parse(args)
	if *input == "" || *output == "" {
		must(fmt.Errorf("--input and --output are required"))
	}

	res, err := pipeline.ParseFile(cfg, *input, *year, *category, log)
	must(err)
	rows := pipeline.EnrichAwards(res.Awards, storedFilms(cfg), cfg.MatchThreshold)
	if strings.EqualFold(filepath.Ext(*output), ".json") {
		must(pipeline.ExportAwardsToJSON(rows, *output))
	} else {
		must(pipeline.ExportAwardsToXLSX(rows, *output))
	}
	fmt.Printf("parse done strategy=%s awards=%d output=%s\n", res.Strategy, len(rows), *output)
}

// storedFilms reads the catalog when a database already exists, so a one-off
// parse can still link films without creating one.
func storedFilms(cfg config.Config) []internal.Film {
	if _, err := os.Stat(cfg.DBPath); err != nil {
		return nil
	}
	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()
	films, err := db.ListFilms()
	must(err)
	return films
}

func makeFetcher(cfg config.Config, log *slog.Logger) source.Fetcher {
	if strings.TrimSpace(cfg.SnapshotDir) != "" {
		return source.NewSnapshotFetcher(cfg.SnapshotDir)
	}
	return source.NewWebFetcher(cfg, log)
}

func usage() {
	fmt.Println("usage: filmawards <command>")
	fmt.Println("commands:")
	fmt.Println("  awards:scrape --year=2024 | --start=1929 --end=2024")
	fmt.Println("  awards:reparse [--limit=100]")
	fmt.Println("  awards:parse --input=page.html --output=out.xlsx [--year=2024] [--category=\"Best Actor\"]")
	fmt.Println("  awards:enrich [--year=2024]")
	fmt.Println("  awards:summary [--year=2024]")
	fmt.Println("  catalog:sync --start=2023 [--end=2024]")
	fmt.Println("  catalog:resolve [--year=2024]")
	fmt.Println("  export:xlsx [--year=2024] [--won] [--out=./out/awards.xlsx]")
	fmt.Println("  export:json [--year=2024] [--won] [--out=./out/awards.json]")
	fmt.Println("  watch")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
