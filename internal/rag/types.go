package rag

import (
	"fmt"

	"metodiky-ai/internal/vectorstore"
)

// placeholder substitutes for metadata fields missing on a passage.
const placeholder = "?"

// Passage is a retrieved text span with its index metadata.
type Passage struct {
	Content string
	Meta    map[string]any
}

// Citation is a structured reference to a passage's source location.
// Document is always present; Page and Chapter fall back to a placeholder.
type Citation struct {
	Document string `json:"dokument"`
	Page     string `json:"strana"`
	Chapter  string `json:"kapitola"`
}

// NewCitation derives a citation from passage metadata.
func NewCitation(meta map[string]any) Citation {
	return Citation{
		Document: documentSource(meta),
		Page:     metaString(meta, "strana"),
		Chapter:  metaString(meta, "kapitola"),
	}
}

// String renders the citation in the fixed textual format the synthesizer
// and the citation linker both rely on.
func (c Citation) String() string {
	return fmt.Sprintf("(dokument: %s, strana: %s, kapitola: %s)", c.Document, c.Page, c.Chapter)
}

// BankGroup collects the passages and citations attributed to one bank
// for one query, in retrieval order.
type BankGroup struct {
	Bank      string
	Passages  []string
	Citations []Citation
}

// AskRequest represents a pipeline query.
type AskRequest struct {
	// Question is the user's question to answer.
	Question string `json:"question"`
	// K optionally overrides the retrieval depth.
	K int `json:"k,omitempty"`
}

// AskResponse represents the result of a pipeline query.
type AskResponse struct {
	// Question echoes the original query so callers can log feedback.
	Question string `json:"question"`
	// Answer is the merged, citation-linked markdown answer.
	Answer string `json:"answer"`
	// References are the citations of all passages grouped into the answer.
	References []Citation `json:"references"`
	// CoverageGaps lists banks found by full-text scan but missed by
	// nearest-neighbor retrieval. Diagnostic only.
	CoverageGaps []string `json:"coverage_gaps,omitempty"`
}

// documentSource reads the document identifier from metadata, accepting
// both the current and the legacy field name.
func documentSource(meta map[string]any) string {
	for _, key := range []string{"document_source", "dokument"} {
		if v, ok := meta[key]; ok {
			if s := fmt.Sprint(v); s != "" {
				return s
			}
		}
	}
	return placeholder
}

// metaString reads a stringly-typed metadata field, substituting the
// placeholder when the field is absent or empty.
func metaString(meta map[string]any, key string) string {
	v, ok := meta[key]
	if !ok || v == nil {
		return placeholder
	}
	s := fmt.Sprint(v)
	if s == "" {
		return placeholder
	}
	return s
}

// fromItems converts vector store items to pipeline passages.
func fromItems(items []vectorstore.Item) []Passage {
	passages := make([]Passage, 0, len(items))
	for _, item := range items {
		passages = append(passages, Passage{Content: item.Content, Meta: item.Meta})
	}
	return passages
}
