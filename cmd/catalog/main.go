package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/sposusu/eat-aware-scheduler/internal/catalog"
	"github.com/sposusu/eat-aware-scheduler/internal/logging"
	"github.com/sposusu/eat-aware-scheduler/internal/valuation"
)

// catalog loads a menu sheet export and prints what the service would see.
//
//	catalog -url https://docs.google.com/.../pub?output=csv
//	catalog -file menu.csv -guide -mode hotel -sort price_desc
func main() {
	_ = godotenv.Load()
	logging.Setup(os.Getenv("LOG_LEVEL"), true)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Error().Err(err).Msg("catalog check failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("catalog", flag.ContinueOnError)

	url := fs.String("url", os.Getenv("CATALOG_URL"), "published CSV url")
	file := fs.String("file", "", "local CSV file (overrides -url)")
	guide := fs.Bool("guide", false, "print the valued guide instead of raw entries")
	mode := fs.String("mode", "market", "price mode: market or hotel")
	sort := fs.String("sort", string(valuation.SortCPDesc), "guide order: cp_desc, price_desc, cal_asc")
	category := fs.String("category", valuation.AllCategories, "guide category filter")
	ranking := fs.Bool("ranking", false, "guide ranking view (drops free and zero calorie items)")
	timeout := fs.Duration("timeout", 15*time.Second, "fetch timeout")

	if err := fs.Parse(args); err != nil {
		return err
	}

	entries, err := load(ctx, *file, *url, *timeout)
	if err != nil {
		return err
	}

	log.Info().Int("entries", len(entries)).Msg("catalog parsed")

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if !*guide {
		return enc.Encode(entries)
	}

	m, err := valuation.ParseMode(*mode)
	if err != nil {
		return err
	}

	return enc.Encode(valuation.Guide(entries, m, valuation.GuideOptions{
		Category:          *category,
		Sort:              valuation.SortOrder(*sort),
		Ranking:           *ranking,
		ExcludeLowCalorie: true,
	}))
}

func load(ctx context.Context, file, url string, timeout time.Duration) ([]catalog.MenuEntry, error) {
	if file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		entries := catalog.Parse(string(raw))
		if len(entries) == 0 {
			return nil, catalog.ErrEmptyCatalog
		}
		return entries, nil
	}

	if url == "" {
		return nil, errors.New("one of -file or -url is required")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return catalog.NewLoader(url, nil).Fetch(ctx)
}
