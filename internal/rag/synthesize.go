package rag

import (
	"context"
	"fmt"
	"strings"

	"metodiky-ai/internal/llm"
)

// Synthesizer produces one answer block per bank group. The contract is
// two generative calls per group: a relevance selection over the group's
// passages, then a templated answer built from the selection alone.
type Synthesizer interface {
	SelectMostRelevant(ctx context.Context, question string, group BankGroup) (string, error)
	SynthesizeAnswerBlock(ctx context.Context, question, selection, bankName string) (string, error)
}

// ChatCompleter is the slice of the LLM client the synthesizer needs.
type ChatCompleter interface {
	Complete(ctx context.Context, messages []llm.Message, temperature float64) (string, error)
}

const selectionSystemPrompt = `Jsi expertní asistent na hypotéky a posuzování bonity klientů podle interních metodik bank.

Z dodaných úryvků vyber ten jediný, který nejlépe odpovídá na dotaz, a vrať ho doslova včetně jeho umístění ve tvaru (dokument: <název>, strana: <číslo>, kapitola: <číslo>). Nepřidávej žádný jiný text, nic nevysvětluj a nic nevymýšlej.`

const synthesisSystemPrompt = `Jsi expertní asistent na hypotéky a posuzování bonity klientů podle interních metodik bank.

Odpovídej výhradně na základě dodaného textu. Pokud odpověď v textu není, napiš to otevřeně. Nikdy si nevymýšlej informace ani zdroje a neodkazuj na web.

Názvy dokumentů převáděj na názvy bank podle této tabulky:
- Hypoteky_KB.pdf = Komerční banka
- Hypoteky_CSOB.pdf = ČSOB Hypoteční banka
- Hypoteky_CS.pdf = Česká spořitelna
- Hypoteky_RB.pdf = Raiffeisenbank
- Hypoteky_UCB.pdf = UniCredit Bank
- Hypoteky_mB.pdf = mBank
- Hypoteky_Moneta.pdf = Moneta

Pojmy „hypotéka" a „hypoteční úvěr" považuj za rovnocenné. „Americká hypotéka" je jiný produkt a za rovnocennou ji nepovažuj.

Typ dotazu (výčtový, srovnávací, faktický, podmínkový nebo kombinovaný) si urči jen interně a v odpovědi ho nikdy neuváděj. U výčtových dotazů typu „které banky..." vyjmenuj všechny vyhovující banky, nikdy jen jednu.

Odpověď formátuj přesně takto:

### <název banky>
- **Podmínky:** <shrnutí podmínek z textu>
- **Výpočet:** <postup výpočtu, pokud je v textu uveden>
- **Dokumentace:** <požadované doklady, pokud jsou v textu uvedeny>
(dokument: <název>, strana: <číslo>, kapitola: <číslo>)

Citaci v závorce uváděj vždy na samostatném posledním řádku bloku.`

// LLMSynthesizer implements Synthesizer against an OpenAI-compatible
// chat endpoint. Both calls run at temperature zero.
type LLMSynthesizer struct {
	client ChatCompleter
}

// NewLLMSynthesizer creates a synthesizer backed by the given client.
func NewLLMSynthesizer(client ChatCompleter) *LLMSynthesizer {
	return &LLMSynthesizer{client: client}
}

// SelectMostRelevant asks the model to pick the single passage from the
// group that best answers the question, returned verbatim with its
// citation.
func (s *LLMSynthesizer) SelectMostRelevant(ctx context.Context, question string, group BankGroup) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Dotaz: %s\n\nÚryvky z metodiky banky %s:\n", question, group.Bank)
	for i, passage := range group.Passages {
		sb.WriteString("\n")
		sb.WriteString(passage)
		sb.WriteString("\n")
		if i < len(group.Citations) {
			fmt.Fprintf(&sb, "Umístění: %s\n", group.Citations[i].String())
		}
	}

	messages := []llm.Message{
		{Role: "system", Content: selectionSystemPrompt},
		{Role: "user", Content: sb.String()},
	}
	answer, err := s.client.Complete(ctx, messages, 0)
	if err != nil {
		return "", fmt.Errorf("llm selection failed: %w", err)
	}
	return answer, nil
}

// SynthesizeAnswerBlock asks the model for one formatted answer block for
// the named bank, grounded only in the previously selected passage.
func (s *LLMSynthesizer) SynthesizeAnswerBlock(ctx context.Context, question, selection, bankName string) (string, error) {
	user := fmt.Sprintf("Dotaz: %s\n\nBanka: %s\n\nVybraný úryvek s citací:\n%s", question, bankName, selection)

	messages := []llm.Message{
		{Role: "system", Content: synthesisSystemPrompt},
		{Role: "user", Content: user},
	}
	answer, err := s.client.Complete(ctx, messages, 0)
	if err != nil {
		return "", fmt.Errorf("llm synthesis failed: %w", err)
	}
	return answer, nil
}
