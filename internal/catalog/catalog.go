package catalog

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
)

// Listing is the wire form of a catalog row in a JSONL export.
type Listing struct {
	SKU         string `json:"sku"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// LoadFromJSONL loads listings from a JSONL file with proper error handling
func LoadFromJSONL(path string) ([]Listing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	var listings []Listing
	lines := strings.Split(string(data), "\n")

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var l Listing
		if err := json.Unmarshal([]byte(line), &l); err != nil {
			log.Printf("Warning: skipping malformed JSON at line %d in %s: %v", i+1, path, err)
			continue
		}
		if l.SKU == "" {
			log.Printf("Warning: skipping listing without sku at line %d in %s", i+1, path)
			continue
		}
		listings = append(listings, l)
	}

	if len(listings) == 0 {
		return nil, fmt.Errorf("no valid listings found in %s", path)
	}

	return listings, nil
}
