package main

import (
	"flag"
	"io"
	"log"
	"os"

	"github.com/cataloglab/miscat/internal/catalog"
	"github.com/cataloglab/miscat/pkg/miscat"
	"github.com/cataloglab/miscat/pkg/miscat/audit"
	"github.com/cataloglab/miscat/pkg/miscat/config"
	"github.com/cataloglab/miscat/pkg/miscat/store"
)

func main() {
	var (
		inputPath  = flag.String("input", "", "Labeled catalog JSONL file (required)")
		paramsPath = flag.String("params", "", "Threshold params YAML (optional)")
		outputPath = flag.String("output", "", "Keywords YAML destination (default stdout)")
	)
	flag.Parse()

	if *inputPath == "" {
		log.Fatal("--input required")
	}

	cfg := miscat.DefaultConfig()
	if *paramsPath != "" {
		params, err := config.LoadParams(*paramsPath)
		if err != nil {
			log.Fatalf("load params: %v", err)
		}
		cfg = params.Config()
	}

	listings, err := catalog.LoadFromJSONL(*inputPath)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}
	log.Printf("Loaded %d listings from %s", len(listings), *inputPath)

	corpus := make([]string, len(listings))
	labels := make([]string, len(listings))
	for i, l := range listings {
		corpus[i] = audit.ListingText(store.Listing{Title: l.Title, Description: l.Description})
		labels[i] = l.Category
	}

	model := miscat.New[string](cfg)
	if err := model.Fit(corpus, labels); err != nil {
		log.Fatalf("fit: %v", err)
	}

	keywords := make(map[string]miscat.Keywords)
	for _, label := range model.Labels() {
		kw, _ := model.Keywords(label)
		keywords[label] = kw
	}
	log.Printf("Learned keywords for %d categories", len(keywords))

	var out io.Writer = os.Stdout
	if *outputPath != "" {
		f, err := os.Create(*outputPath)
		if err != nil {
			log.Fatalf("create output: %v", err)
		}
		defer f.Close()
		out = f
	}

	if err := config.WriteKeywords(out, keywords); err != nil {
		log.Fatalf("write keywords: %v", err)
	}
}
