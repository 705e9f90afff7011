package rag

import (
	"sort"
	"strings"

	"metodiky-ai/internal/bank"
)

// AuditCoverage reports banks that a literal substring scan of the corpus
// associates with the query but that are absent from the retrieved set.
// The result is sorted and purely diagnostic; retrieval output is never
// modified based on it.
func AuditCoverage(corpus, retrieved []Passage, query string) []string {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil
	}

	fulltext := make(map[string]struct{})
	for _, p := range corpus {
		if !strings.Contains(strings.ToLower(p.Content), needle) {
			continue
		}
		fulltext[auditBank(p)] = struct{}{}
	}

	seen := make(map[string]struct{}, len(retrieved))
	for _, p := range retrieved {
		seen[auditBank(p)] = struct{}{}
	}

	var gaps []string
	for b := range fulltext {
		if _, ok := seen[b]; !ok {
			gaps = append(gaps, b)
		}
	}
	sort.Strings(gaps)
	return gaps
}

// HasDocument reports whether any passage originates from the named
// document.
func HasDocument(passages []Passage, doc string) bool {
	if doc == "" {
		return false
	}
	for _, p := range passages {
		if strings.Contains(documentSource(p.Meta), doc) {
			return true
		}
	}
	return false
}

// Backfill guarantees that a passage from the expected document appears in
// the retrieved set. When none does, the first matching candidate is
// appended; with no matching candidate the set is returned unchanged.
func Backfill(retrieved []Passage, expectedDoc string, candidates []Passage) []Passage {
	if expectedDoc == "" || HasDocument(retrieved, expectedDoc) {
		return retrieved
	}
	for _, p := range candidates {
		if strings.Contains(documentSource(p.Meta), expectedDoc) {
			return append(retrieved, p)
		}
	}
	return retrieved
}

// auditBank resolves a passage's bank for set comparison, preferring the
// metadata label and falling back to the document filename.
func auditBank(p Passage) string {
	if label, ok := p.Meta["banka"].(string); ok && strings.TrimSpace(label) != "" {
		return bank.Resolve(label)
	}
	return bank.ResolveFromFilename(documentSource(p.Meta))
}
