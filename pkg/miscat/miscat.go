// Package miscat flags likely miscategorized product listings using
// per-category lexical statistics. A model learns, for every category, the
// tokens that characterize it (relevant keywords) and the tokens that signal
// text from other categories (clash keywords). Judging a listing against its
// assigned category reports the clash keywords it contains, unless a
// relevant keyword vouches for the listing first.
package miscat

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cataloglab/miscat/pkg/miscat/ingest"
)

// Keywords holds one label's keyword lists, each ordered strongest first.
// Relevant keywords match by containment against document tokens; clash
// keywords match by exact token equality.
type Keywords struct {
	Relevant []string
	Clash    []string
}

func (k Keywords) clone() Keywords {
	var out Keywords
	if k.Relevant != nil {
		out.Relevant = append([]string(nil), k.Relevant...)
	}
	if k.Clash != nil {
		out.Clash = append([]string(nil), k.Clash...)
	}
	return out
}

// Model detects miscategorized documents for a fixed label vocabulary.
// The label type L is opaque to the model; any comparable type works.
//
// A trained Model is safe for concurrent Judge calls. Fit replaces the
// model's state and must not run concurrently with any other call.
type Model[L comparable] struct {
	cfg      Config
	keywords map[L]Keywords
	trained  bool
}

// New returns an untrained model. Judge fails with ErrUntrained until Fit
// has run.
func New[L comparable](cfg Config) *Model[L] {
	return &Model[L]{cfg: cfg}
}

// NewFromKeywords returns a model trained directly from curated keyword
// lists, bypassing Fit. The label vocabulary is exactly the map's keys. The
// lists are copied and used verbatim: no case folding, no dedup, no
// validation.
func NewFromKeywords[L comparable](cfg Config, keywords map[L]Keywords) *Model[L] {
	copied := make(map[L]Keywords, len(keywords))
	for label, kw := range keywords {
		copied[label] = kw.clone()
	}
	return &Model[L]{cfg: cfg, keywords: copied, trained: true}
}

// Trained reports whether the model can judge.
func (m *Model[L]) Trained() bool {
	return m.trained
}

// Labels returns the label vocabulary in unspecified order.
func (m *Model[L]) Labels() []L {
	labels := make([]L, 0, len(m.keywords))
	for label := range m.keywords {
		labels = append(labels, label)
	}
	return labels
}

// Keywords returns a copy of the stored keyword lists for label. The second
// return is false when the label is outside the vocabulary.
func (m *Model[L]) Keywords(label L) (Keywords, bool) {
	kw, ok := m.keywords[label]
	if !ok {
		return Keywords{}, false
	}
	return kw.clone(), true
}

// Judge checks each document against its assigned label and returns, per
// document, the clash keywords found in it, in lexical order. A nil entry
// means the document was not flagged. All inputs are validated before any
// document is judged; on error no partial results are returned.
func (m *Model[L]) Judge(corpus []string, labels []L) ([][]string, error) {
	if !m.trained {
		return nil, fmt.Errorf("judge: %w", ErrUntrained)
	}
	if len(corpus) != len(labels) {
		return nil, fmt.Errorf("judge: %d documents, %d labels: %w", len(corpus), len(labels), ErrLengthMismatch)
	}
	if err := m.checkLabels(labels); err != nil {
		return nil, err
	}

	results := make([][]string, len(corpus))
	for i, doc := range corpus {
		results[i] = m.judgeOne(doc, labels[i])
	}
	return results, nil
}

// checkLabels rejects labels outside the vocabulary, reporting each distinct
// offender once in first-appearance order.
func (m *Model[L]) checkLabels(labels []L) error {
	var unknown []L
	seen := make(map[L]struct{})
	for _, label := range labels {
		if _, ok := m.keywords[label]; ok {
			continue
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		unknown = append(unknown, label)
	}
	if len(unknown) > 0 {
		return fmt.Errorf("judge: labels %v: %w", unknown, ErrUnknownLabel)
	}
	return nil
}

func (m *Model[L]) judgeOne(doc string, label L) []string {
	kw := m.keywords[label]
	tokens := ingest.Tokenize(doc)

	// A relevant keyword matches any token containing it, so learned stems
	// still cover inflected and compounded forms.
	for _, keyword := range kw.Relevant {
		for _, tok := range tokens {
			if strings.Contains(tok, keyword) {
				return nil
			}
		}
	}

	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}

	var flagged []string
	reported := make(map[string]struct{}, len(kw.Clash))
	for _, keyword := range kw.Clash {
		if _, dup := reported[keyword]; dup {
			continue
		}
		if _, ok := set[keyword]; ok {
			reported[keyword] = struct{}{}
			flagged = append(flagged, keyword)
		}
	}
	sort.Strings(flagged)
	return flagged
}
