// Package config loads model tuning and curated keyword files from YAML.
package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cataloglab/miscat/pkg/miscat"
)

// Params is the on-disk form of miscat.Config. Omitted or zero fields fall
// back to the defaults, so a file only needs the values it overrides.
type Params struct {
	RelevantDominance  float64 `yaml:"relevant_dominance"`
	RelevantTF         float64 `yaml:"relevant_tf"`
	ClashDominance     float64 `yaml:"clash_dominance"`
	ClashTF            float64 `yaml:"clash_tf"`
	MaxClashInRelevant float64 `yaml:"max_clash_in_relevant"`
	TopRelevant        int     `yaml:"top_relevant"`
	TopClash           int     `yaml:"top_clash"`
}

// Config resolves the parameters against miscat.DefaultConfig.
func (p Params) Config() miscat.Config {
	cfg := miscat.DefaultConfig()
	if p.RelevantDominance != 0 {
		cfg.RelevantDominance = p.RelevantDominance
	}
	if p.RelevantTF != 0 {
		cfg.RelevantTF = p.RelevantTF
	}
	if p.ClashDominance != 0 {
		cfg.ClashDominance = p.ClashDominance
	}
	if p.ClashTF != 0 {
		cfg.ClashTF = p.ClashTF
	}
	if p.MaxClashInRelevant != 0 {
		cfg.MaxClashInRelevant = p.MaxClashInRelevant
	}
	if p.TopRelevant != 0 {
		cfg.TopRelevant = p.TopRelevant
	}
	if p.TopClash != 0 {
		cfg.TopClash = p.TopClash
	}
	return cfg
}

// LoadParams reads a params YAML file.
func LoadParams(path string) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("load params: %w", err)
	}

	var p Params
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Params{}, fmt.Errorf("load params: %w", err)
	}
	return p, nil
}

// KeywordEntry is one label's keyword lists as stored on disk.
type KeywordEntry struct {
	Relevant []string `yaml:"relevant"`
	Clash    []string `yaml:"clash"`
}

// KeywordsFile maps category labels to curated keyword lists. It is the
// format miscat-train writes and miscat-audit reads.
type KeywordsFile map[string]KeywordEntry

// LoadKeywords reads a keywords YAML file into the form the model accepts.
func LoadKeywords(path string) (map[string]miscat.Keywords, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load keywords: %w", err)
	}

	var file KeywordsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("load keywords: %w", err)
	}

	keywords := make(map[string]miscat.Keywords, len(file))
	for label, entry := range file {
		keywords[label] = miscat.Keywords{
			Relevant: entry.Relevant,
			Clash:    entry.Clash,
		}
	}
	return keywords, nil
}

// WriteKeywords encodes keyword lists as YAML. Labels marshal in sorted
// order, so the output is deterministic.
func WriteKeywords(w io.Writer, keywords map[string]miscat.Keywords) error {
	file := make(KeywordsFile, len(keywords))
	for label, kw := range keywords {
		file[label] = KeywordEntry{Relevant: kw.Relevant, Clash: kw.Clash}
	}

	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("write keywords: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write keywords: %w", err)
	}
	return nil
}
