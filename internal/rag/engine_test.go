package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"metodiky-ai/internal/vectorstore"
	"metodiky-ai/internal/vectorstore/mocks"
)

const testCollection = "metodiky"

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeSynthesizer struct {
	selectCalls int
	synthCalls  int
	banks       []string
	selectErr   error
	synthErr    error
}

func (f *fakeSynthesizer) SelectMostRelevant(_ context.Context, _ string, group BankGroup) (string, error) {
	f.selectCalls++
	if f.selectErr != nil {
		return "", f.selectErr
	}
	return group.Passages[0] + "\n" + group.Citations[0].String(), nil
}

func (f *fakeSynthesizer) SynthesizeAnswerBlock(_ context.Context, _, selection, bankName string) (string, error) {
	f.synthCalls++
	if f.synthErr != nil {
		return "", f.synthErr
	}
	f.banks = append(f.banks, bankName)
	citation := selection[strings.Index(selection, "(dokument:"):]
	return fmt.Sprintf("### %s\n- **Podmínky:** shrnutí\n%s", bankName, citation), nil
}

func item(content, doc, banka, strana string) vectorstore.Item {
	return vectorstore.Item{
		Content: content,
		Meta: map[string]any{
			"dokument": doc,
			"banka":    banka,
			"strana":   strana,
			"kapitola": "2",
			"content":  content,
		},
	}
}

func TestEngineAskMultipleBanks(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockVectorStore(ctrl)

	items := []vectorstore.Item{
		item("KB vyžaduje obrat za 12 měsíců", "Hypoteky_KB.pdf", "Komerční banka", "3"),
		item("CS akceptuje daňové přiznání", "Hypoteky_CS.pdf", "Česká spořitelna", "7"),
		item("KB počítá 50 % z obratu", "Hypoteky_KB.pdf", "Komerční banka", "5"),
	}
	// No bank named in the query, so no full scan happens.
	store.EXPECT().Query(gomock.Any(), testCollection, gomock.Any(), defaultK).Return(items, nil)

	synth := &fakeSynthesizer{}
	engine := NewEngine(&fakeEmbedder{}, store, testCollection, synth)

	resp, err := engine.Ask(context.Background(), AskRequest{Question: "Které banky akceptují obrat živnostníka?"})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	if !strings.Contains(resp.Answer, "### Komerční banka") || !strings.Contains(resp.Answer, "### Česká spořitelna") {
		t.Errorf("answer missing a bank heading:\n%s", resp.Answer)
	}
	// Two generative calls per distinct bank, no more.
	if synth.selectCalls != 2 || synth.synthCalls != 2 {
		t.Errorf("calls = %d select / %d synth, want 2 / 2", synth.selectCalls, synth.synthCalls)
	}
	if len(resp.References) != 3 {
		t.Errorf("references = %d, want 3", len(resp.References))
	}
	if len(resp.CoverageGaps) != 0 {
		t.Errorf("unexpected coverage gaps: %v", resp.CoverageGaps)
	}
}

func TestEngineAskNamedBankBackfill(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockVectorStore(ctrl)

	retrieved := []vectorstore.Item{
		item("CS akceptuje daňové přiznání", "Hypoteky_CS.pdf", "Česká spořitelna", "7"),
	}
	corpus := []vectorstore.Item{
		item("doložení kb obrat ročního výpisu", "Hypoteky_KB.pdf", "Komerční banka", "3"),
		item("CS akceptuje daňové přiznání", "Hypoteky_CS.pdf", "Česká spořitelna", "7"),
	}
	store.EXPECT().Query(gomock.Any(), testCollection, gomock.Any(), defaultK).Return(retrieved, nil)
	store.EXPECT().ScanAll(gomock.Any(), testCollection).Return(corpus, nil)
	store.EXPECT().GetWhere(gomock.Any(), testCollection, "dokument", "Hypoteky_KB.pdf").Return(corpus[:1], nil)

	synth := &fakeSynthesizer{}
	engine := NewEngine(&fakeEmbedder{}, store, testCollection, synth)

	resp, err := engine.Ask(context.Background(), AskRequest{Question: "kb obrat"})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	// The missed bank is reported and its document backfilled into the answer.
	if len(resp.CoverageGaps) != 1 || resp.CoverageGaps[0] != "Komerční banka" {
		t.Errorf("CoverageGaps = %v, want [Komerční banka]", resp.CoverageGaps)
	}
	if !strings.Contains(resp.Answer, "### Komerční banka") {
		t.Errorf("backfilled bank missing from answer:\n%s", resp.Answer)
	}
	if synth.selectCalls != 2 || synth.synthCalls != 2 {
		t.Errorf("calls = %d select / %d synth, want 2 / 2", synth.selectCalls, synth.synthCalls)
	}
}

func TestEngineAskLinkifiesCitations(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockVectorStore(ctrl)

	items := []vectorstore.Item{
		item("KB vyžaduje obrat", "Hypoteky_KB.pdf", "Komerční banka", "3"),
	}
	store.EXPECT().Query(gomock.Any(), testCollection, gomock.Any(), defaultK).Return(items, nil)

	engine := NewEngine(&fakeEmbedder{}, store, testCollection, &fakeSynthesizer{})

	resp, err := engine.Ask(context.Background(), AskRequest{Question: "Jaké jsou podmínky doložení obratu?"})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if !strings.Contains(resp.Answer, "href='/metodiky/Hypoteky_KB.pdf#page=3'") {
		t.Errorf("citation not linkified:\n%s", resp.Answer)
	}
}

func TestEngineAskNoResults(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockVectorStore(ctrl)
	store.EXPECT().Query(gomock.Any(), testCollection, gomock.Any(), defaultK).Return(nil, nil)

	synth := &fakeSynthesizer{}
	engine := NewEngine(&fakeEmbedder{}, store, testCollection, synth)

	resp, err := engine.Ask(context.Background(), AskRequest{Question: "Něco úplně mimo podklady?"})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if resp.Answer != noAnswerMessage {
		t.Errorf("Answer = %q, want no-answer message", resp.Answer)
	}
	if synth.selectCalls != 0 || synth.synthCalls != 0 {
		t.Errorf("synthesizer called despite empty retrieval")
	}
}

func TestEngineAskEmptyQuestion(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockVectorStore(ctrl)

	engine := NewEngine(&fakeEmbedder{}, store, testCollection, &fakeSynthesizer{})
	if _, err := engine.Ask(context.Background(), AskRequest{Question: "   "}); err == nil {
		t.Error("Ask() with blank question should return error")
	}
}

func TestEngineAskKOverride(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockVectorStore(ctrl)
	store.EXPECT().Query(gomock.Any(), testCollection, gomock.Any(), 5).Return(nil, nil)

	engine := NewEngine(&fakeEmbedder{}, store, testCollection, &fakeSynthesizer{})
	if _, err := engine.Ask(context.Background(), AskRequest{Question: "dotaz", K: 5}); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	store.EXPECT().Query(gomock.Any(), testCollection, gomock.Any(), maxK).Return(nil, nil)
	if _, err := engine.Ask(context.Background(), AskRequest{Question: "dotaz", K: 500}); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
}

func TestEngineAskFailures(t *testing.T) {
	queryErr := errors.New("connection refused")
	llmErr := errors.New("model overloaded")

	tests := []struct {
		name  string
		setup func(store *mocks.MockVectorStore) (Embedder, Synthesizer)
		want  error
	}{
		{
			name: "embedder failure",
			setup: func(_ *mocks.MockVectorStore) (Embedder, Synthesizer) {
				return &fakeEmbedder{err: errors.New("embedding server down")}, &fakeSynthesizer{}
			},
		},
		{
			name: "vector store failure",
			setup: func(store *mocks.MockVectorStore) (Embedder, Synthesizer) {
				store.EXPECT().Query(gomock.Any(), testCollection, gomock.Any(), defaultK).Return(nil, queryErr)
				return &fakeEmbedder{}, &fakeSynthesizer{}
			},
			want: queryErr,
		},
		{
			name: "selection failure",
			setup: func(store *mocks.MockVectorStore) (Embedder, Synthesizer) {
				items := []vectorstore.Item{item("x", "Hypoteky_KB.pdf", "Komerční banka", "3")}
				store.EXPECT().Query(gomock.Any(), testCollection, gomock.Any(), defaultK).Return(items, nil)
				return &fakeEmbedder{}, &fakeSynthesizer{selectErr: llmErr}
			},
			want: llmErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := mocks.NewMockVectorStore(ctrl)
			embedder, synth := tt.setup(store)

			engine := NewEngine(embedder, store, testCollection, synth)
			_, err := engine.Ask(context.Background(), AskRequest{Question: "dotaz"})
			if err == nil {
				t.Fatal("Ask() should propagate the failure")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want wrapped %v", err, tt.want)
			}
		})
	}
}
