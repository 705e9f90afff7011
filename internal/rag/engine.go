package rag

import (
	"context"
	"fmt"
	"strings"

	"metodiky-ai/internal/bank"
	"metodiky-ai/internal/contextutil"
	"metodiky-ai/internal/vectorstore"
)

const (
	defaultK = 15
	maxK     = 30
)

// noAnswerMessage is returned when retrieval yields nothing to ground an
// answer in.
const noAnswerMessage = "V dostupných metodikách jsem k tomuto dotazu nenašel žádné relevantní informace."

// Engine answers questions over the indexed policy corpus.
type Engine interface {
	Ask(ctx context.Context, req AskRequest) (AskResponse, error)
}

// Embedder is the slice of the embeddings client the engine needs.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

type ragEngine struct {
	embedder   Embedder
	store      vectorstore.VectorStore
	collection string
	synth      Synthesizer
}

// NewEngine creates the question-answering engine.
func NewEngine(embedder Embedder, store vectorstore.VectorStore, collection string, synth Synthesizer) Engine {
	return &ragEngine{
		embedder:   embedder,
		store:      store,
		collection: collection,
		synth:      synth,
	}
}

// Ask runs the full pipeline: retrieval, coverage audit and backfill for
// queries naming a bank, bank-partitioned two-call synthesis, block merge
// and citation linking. Failures of the embedder, the vector store or the
// model abort the request; a coverage gap does not.
func (e *ragEngine) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return AskResponse{}, fmt.Errorf("question must not be empty")
	}

	k := req.K
	if k <= 0 {
		k = defaultK
	}
	if k > maxK {
		k = maxK
	}

	vector, err := e.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return AskResponse{}, fmt.Errorf("failed to embed question: %w", err)
	}

	items, err := e.store.Query(ctx, e.collection, vector, k)
	if err != nil {
		return AskResponse{}, fmt.Errorf("vector store query failed: %w", err)
	}
	passages := fromItems(items)

	var gaps []string
	if detection, ok := bank.DetectInQuery(question); ok {
		corpusItems, err := e.store.ScanAll(ctx, e.collection)
		if err != nil {
			return AskResponse{}, fmt.Errorf("vector store scan failed: %w", err)
		}
		corpus := fromItems(corpusItems)

		gaps = AuditCoverage(corpus, passages, question)
		if len(gaps) > 0 {
			logger.WarnContext(ctx, "retrieval missed banks found by full-text scan",
				"banks", gaps, "question", question)
		}

		if !HasDocument(passages, detection.Document) {
			candidates, err := e.store.GetWhere(ctx, e.collection, "dokument", detection.Document)
			if err != nil {
				return AskResponse{}, fmt.Errorf("vector store lookup failed: %w", err)
			}
			passages = Backfill(passages, detection.Document, fromItems(candidates))
		}
	}

	groups := Partition(passages)
	if len(groups) == 0 {
		logger.InfoContext(ctx, "no passages retrieved", "question", question)
		return AskResponse{
			Question:     question,
			Answer:       noAnswerMessage,
			CoverageGaps: gaps,
		}, nil
	}

	var blocks []string
	var references []Citation
	answered := make(map[string]struct{}, len(groups))

	for _, group := range groups {
		if _, done := answered[group.Bank]; done {
			continue
		}
		answered[group.Bank] = struct{}{}

		selection, err := e.synth.SelectMostRelevant(ctx, question, group)
		if err != nil {
			return AskResponse{}, err
		}
		block, err := e.synth.SynthesizeAnswerBlock(ctx, question, selection, group.Bank)
		if err != nil {
			return AskResponse{}, err
		}

		blocks = append(blocks, block)
		references = append(references, group.Citations...)
	}

	merged := MergeAnswerBlocks(strings.Join(blocks, "\n\n"))
	answer := LinkifyCitations(merged)

	logger.InfoContext(ctx, "question answered",
		"question", question, "banks", len(groups), "passages", len(passages))

	return AskResponse{
		Question:     question,
		Answer:       answer,
		References:   references,
		CoverageGaps: gaps,
	}, nil
}
