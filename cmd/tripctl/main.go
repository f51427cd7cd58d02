// Command tripctl lists, exports and imports trips in the configured store.
// It talks to the store directly and must not run against a store the
// server is writing to.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/NomadCrew/nomad-crew-planner/config"
	"github.com/NomadCrew/nomad-crew-planner/internal/store"
	"github.com/NomadCrew/nomad-crew-planner/internal/store/backend"
	"github.com/NomadCrew/nomad-crew-planner/models/itinerary"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: tripctl [flags] list|export|import\n")
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "", "Optional YAML config file (environment is used otherwise)")
	file := flag.String("file", "", "Export destination or import source (stdout/stdin when empty)")
	formatName := flag.String("format", "json", "Export format: json or yaml")
	dryRun := flag.Bool("dry-run", false, "Parse the import without writing")
	concurrency := flag.Int("concurrency", 4, "Number of parallel writes during import")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	_ = godotenv.Load()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadConfigFromFile(*configPath)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	s, err := backend.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	switch flag.Arg(0) {
	case "list":
		err = list(ctx, s)
	case "export":
		var f format
		f, err = parseFormat(*formatName)
		if err == nil {
			err = export(ctx, s, *file, f)
		}
	case "import":
		err = importTrips(ctx, s, *file, *dryRun, *concurrency)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", flag.Arg(0), err)
	}
}

func list(ctx context.Context, s store.TripStore) error {
	trips, err := s.GetAll(ctx)
	if err != nil {
		return err
	}
	for _, t := range trips {
		fmt.Printf("%s\t%s\t%s\t%d activities\n",
			t.ID, t.Destination, t.StartDate.Format("2006-01-02"), len(t.Itinerary))
	}
	log.Printf("%d trips", len(trips))
	return nil
}

func export(ctx context.Context, s store.TripStore, path string, f format) error {
	trips, err := s.GetAll(ctx)
	if err != nil {
		return err
	}
	data, err := encodeTrips(trips, f)
	if err != nil {
		return err
	}
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	log.Printf("Exported %d trips to %s", len(trips), path)
	return nil
}

func importTrips(ctx context.Context, s store.TripStore, path string, dryRun bool, concurrency int) error {
	var (
		data []byte
		err  error
	)
	if path == "" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return err
	}

	trips, f, err := decodeTrips(data)
	if err != nil {
		return err
	}
	log.Printf("Read %d trips (%s)", len(trips), f)

	for _, t := range trips {
		if !itinerary.IsSorted(t.Itinerary) {
			itinerary.Sort(t.Itinerary)
		}
	}

	if dryRun {
		for _, t := range trips {
			fmt.Printf("%s\t%s\t%d activities\n", t.ID, t.Destination, len(t.Itinerary))
		}
		return nil
	}

	if concurrency < 1 {
		concurrency = 1
	}
	var saved int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, t := range trips {
		t := t
		g.Go(func() error {
			id, err := s.Save(gctx, t)
			if err != nil {
				return fmt.Errorf("save %s: %w", t.Destination, err)
			}
			atomic.AddInt64(&saved, 1)
			log.Printf("Imported %s (%s)", id, t.Destination)
			return nil
		})
	}
	err = g.Wait()
	log.Printf("Imported %d/%d trips", atomic.LoadInt64(&saved), len(trips))
	return err
}
