package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/cataloglab/miscat/internal/catalog"
	"github.com/cataloglab/miscat/pkg/miscat"
	"github.com/cataloglab/miscat/pkg/miscat/audit"
	"github.com/cataloglab/miscat/pkg/miscat/config"
	"github.com/cataloglab/miscat/pkg/miscat/store"
	"github.com/cataloglab/miscat/pkg/miscat/store/memstore"
	"github.com/cataloglab/miscat/pkg/miscat/store/sqlite"
)

func main() {
	var (
		dbPath       = flag.String("db", "", "SQLite catalog database")
		inputPath    = flag.String("input", "", "Catalog JSONL file (alternative to --db)")
		keywordsPath = flag.String("keywords", "", "Curated keywords YAML")
		trainPath    = flag.String("train", "", "Labeled catalog JSONL to train on (alternative to --keywords)")
		paramsPath   = flag.String("params", "", "Threshold params YAML (optional)")
		workers      = flag.Int("workers", audit.DefaultWorkers, "Judging parallelism")
		keep         = flag.Int("keep", 0, "Retain only the newest N reports after the run (0 keeps all)")
	)
	flag.Parse()

	if (*dbPath == "") == (*inputPath == "") {
		log.Fatal("exactly one of --db or --input required")
	}
	if (*keywordsPath == "") == (*trainPath == "") {
		log.Fatal("exactly one of --keywords or --train required")
	}

	ctx := context.Background()

	cfg := miscat.DefaultConfig()
	if *paramsPath != "" {
		params, err := config.LoadParams(*paramsPath)
		if err != nil {
			log.Fatalf("load params: %v", err)
		}
		cfg = params.Config()
	}

	model, err := buildModel(cfg, *keywordsPath, *trainPath)
	if err != nil {
		log.Fatalf("build model: %v", err)
	}

	st, err := openStore(ctx, *dbPath, *inputPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	auditor, err := audit.New(audit.Options{Store: st, Model: model, Workers: *workers})
	if err != nil {
		log.Fatalf("init auditor: %v", err)
	}

	rep, err := auditor.Run(ctx)
	if err != nil {
		log.Fatalf("audit: %v", err)
	}
	log.Printf("Audited %d listings, skipped %d, flagged %d (report %s)",
		rep.Audited, rep.Skipped, rep.Flagged, rep.ID)

	if *keep > 0 {
		pruned, err := st.PruneReports(ctx, *keep)
		if err != nil {
			log.Fatalf("prune reports: %v", err)
		}
		if pruned > 0 {
			log.Printf("Pruned %d old reports", pruned)
		}
	}

	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		log.Fatalf("marshal report: %v", err)
	}
	fmt.Println(string(out))
}

func buildModel(cfg miscat.Config, keywordsPath, trainPath string) (*miscat.Model[string], error) {
	if keywordsPath != "" {
		keywords, err := config.LoadKeywords(keywordsPath)
		if err != nil {
			return nil, err
		}
		return miscat.NewFromKeywords(cfg, keywords), nil
	}

	listings, err := catalog.LoadFromJSONL(trainPath)
	if err != nil {
		return nil, err
	}
	log.Printf("Training on %d listings from %s", len(listings), trainPath)

	corpus := make([]string, len(listings))
	labels := make([]string, len(listings))
	for i, l := range listings {
		corpus[i] = audit.ListingText(store.Listing{Title: l.Title, Description: l.Description})
		labels[i] = l.Category
	}

	model := miscat.New[string](cfg)
	if err := model.Fit(corpus, labels); err != nil {
		return nil, err
	}
	return model, nil
}

func openStore(ctx context.Context, dbPath, inputPath string) (store.Store, error) {
	if dbPath != "" {
		return sqlite.Open(ctx, dbPath)
	}

	listings, err := catalog.LoadFromJSONL(inputPath)
	if err != nil {
		return nil, err
	}
	log.Printf("Loaded %d listings from %s", len(listings), inputPath)

	st := memstore.New()
	for _, l := range listings {
		err := st.UpsertListing(ctx, store.Listing{
			SKU:         l.SKU,
			Title:       l.Title,
			Description: l.Description,
			Category:    l.Category,
		})
		if err != nil {
			return nil, err
		}
	}
	return st, nil
}
