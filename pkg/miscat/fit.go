package miscat

import (
	"fmt"
	"math"
	"sort"

	"github.com/cataloglab/miscat/pkg/miscat/ingest"
)

// Fit learns per-label keyword lists from a labeled corpus. Frequencies are
// document frequencies: a token counts at most once per document. The
// complement of a label pools every document outside it, derived from
// corpus-wide totals in the same pass. Fit replaces the whole keyword store,
// so labels from earlier fits do not survive a refit.
func (m *Model[L]) Fit(corpus []string, labels []L) error {
	if len(corpus) != len(labels) {
		return fmt.Errorf("fit: %d documents, %d labels: %w", len(corpus), len(labels), ErrLengthMismatch)
	}

	totalDocs := len(corpus)
	labelDocs := make(map[L]int)
	labelCounts := make(map[L]map[string]int)
	totalCounts := make(map[string]int)

	for i, doc := range corpus {
		label := labels[i]
		labelDocs[label]++

		seen := make(map[string]struct{})
		for _, tok := range ingest.Tokenize(doc) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			totalCounts[tok]++
			counts := labelCounts[label]
			if counts == nil {
				counts = make(map[string]int)
				labelCounts[label] = counts
			}
			counts[tok]++
		}
	}

	keywords := make(map[L]Keywords, len(labelDocs))
	for label, nIn := range labelDocs {
		keywords[label] = m.selectKeywords(labelCounts[label], totalCounts, nIn, totalDocs-nIn)
	}

	m.keywords = keywords
	m.trained = true
	return nil
}

type candidate struct {
	token string
	score float64
}

// selectKeywords applies the relevant and clash rules to every token in the
// corpus vocabulary. The rules are evaluated independently: permissive
// thresholds may put the same token in both lists.
func (m *Model[L]) selectKeywords(inCounts map[string]int, totalCounts map[string]int, nIn, nOut int) Keywords {
	var relevant, clash []candidate

	for tok, total := range totalCounts {
		in := inCounts[tok]
		out := total - in

		tfIn := float64(in) / float64(nIn)
		var tfOut float64
		if nOut > 0 {
			tfOut = float64(out) / float64(nOut)
		}

		if tfIn >= m.cfg.RelevantTF && (tfOut == 0 || tfIn/tfOut >= m.cfg.RelevantDominance) {
			relevant = append(relevant, candidate{token: tok, score: tfIn})
		}

		if tfOut >= m.cfg.ClashTF && tfIn <= m.cfg.MaxClashInRelevant {
			ratio := math.Inf(1)
			if tfIn > 0 {
				ratio = tfOut / tfIn
			}
			if tfIn == 0 || ratio >= m.cfg.ClashDominance {
				clash = append(clash, candidate{token: tok, score: ratio})
			}
		}
	}

	return Keywords{
		Relevant: rankTokens(relevant, m.cfg.TopRelevant),
		Clash:    rankTokens(clash, m.cfg.TopClash),
	}
}

// rankTokens orders candidates by score descending, breaking ties lexically
// so repeated fits over the same corpus produce identical lists.
func rankTokens(cands []candidate, limit int) []string {
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].score == cands[j].score {
			return cands[i].token < cands[j].token
		}
		return cands[i].score > cands[j].score
	})

	if limit < 0 {
		limit = 0
	}
	if len(cands) > limit {
		cands = cands[:limit]
	}
	if len(cands) == 0 {
		return nil
	}

	tokens := make([]string, len(cands))
	for i, c := range cands {
		tokens[i] = c.token
	}
	return tokens
}
