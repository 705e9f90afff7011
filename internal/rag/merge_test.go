package rag

import (
	"strings"
	"testing"
)

func TestMergeAnswerBlocksFoldsDuplicateHeadings(t *testing.T) {
	raw := `### Komerční banka
- **Podmínky:** doloží obrat za 12 měsíců
(dokument: Hypoteky_KB.pdf, strana: 3, kapitola: 2)

### Česká spořitelna
- **Podmínky:** akceptuje daňové přiznání
(dokument: Hypoteky_CS.pdf, strana: 7, kapitola: 4)

### Komerční banka
- **Výpočet:** 50 % z obratu
(dokument: Hypoteky_KB.pdf, strana: 3, kapitola: 2)
`

	got := MergeAnswerBlocks(raw)

	if strings.Count(got, "### Komerční banka") != 1 {
		t.Errorf("duplicate heading not folded:\n%s", got)
	}
	if strings.Count(got, "(dokument: Hypoteky_KB.pdf, strana: 3, kapitola: 2)") != 1 {
		t.Errorf("duplicate citation not deduplicated:\n%s", got)
	}
	if !strings.Contains(got, "- **Výpočet:** 50 % z obratu") {
		t.Errorf("condition from second block lost:\n%s", got)
	}

	// Citation lines sink below conditions within their block.
	kbBlock := got[:strings.Index(got, "### Česká spořitelna")]
	citIdx := strings.Index(kbBlock, "(dokument:")
	calcIdx := strings.Index(kbBlock, "- **Výpočet:**")
	if citIdx < calcIdx {
		t.Errorf("citation appears before merged condition:\n%s", kbBlock)
	}
}

func TestMergeAnswerBlocksIdempotent(t *testing.T) {
	raw := `### Raiffeisenbank
- **Podmínky:** minimální obrat 1 mil. Kč
(dokument: Hypoteky_RB.pdf, strana: 8, kapitola: 3)

### Raiffeisenbank
- **Podmínky:** minimální obrat 1 mil. Kč
- **Dokumentace:** daňové přiznání
(dokument: Hypoteky_RB.pdf, strana: 8, kapitola: 3)
`

	once := MergeAnswerBlocks(raw)
	twice := MergeAnswerBlocks(once)
	if once != twice {
		t.Errorf("merge is not idempotent:\nonce:\n%s\ntwice:\n%s", once, twice)
	}
}

func TestMergeAnswerBlocksPreservesHeadingOrder(t *testing.T) {
	raw := "### UniCredit Bank\ntext\n\n### mBank\ntext\n\n### UniCredit Bank\ndalší text\n"

	got := MergeAnswerBlocks(raw)
	ucb := strings.Index(got, "### UniCredit Bank")
	mb := strings.Index(got, "### mBank")
	if ucb < 0 || mb < 0 || ucb > mb {
		t.Errorf("first-occurrence order not preserved:\n%s", got)
	}
}

func TestMergeAnswerBlocksDropsTextBeforeFirstHeading(t *testing.T) {
	raw := "Omlouvám se, v textu jsem nenašel odpověď.\n\n### ČSOB Hypoteční banka\n- **Podmínky:** x\n(dokument: Hypoteky_CSOB.pdf, strana: 2, kapitola: 1)\n"

	got := MergeAnswerBlocks(raw)
	if strings.Contains(got, "Omlouvám se") {
		t.Errorf("preamble not dropped:\n%s", got)
	}
	if !strings.HasPrefix(got, "### ČSOB Hypoteční banka") {
		t.Errorf("output does not start with heading:\n%s", got)
	}
}

func TestMergeAnswerBlocksMalformedInput(t *testing.T) {
	if got := MergeAnswerBlocks("volný text bez nadpisu\nna dvou řádcích"); got != "" {
		t.Errorf("malformed input should merge to empty string, got %q", got)
	}
	if got := MergeAnswerBlocks(""); got != "" {
		t.Errorf("empty input should merge to empty string, got %q", got)
	}
}

func TestMergeAnswerBlocksBulletedCitation(t *testing.T) {
	raw := "### Oberbank\n- **Podmínky:** x\n- (dokument: Hypoteky_Oberbank.pdf, strana: 4, kapitola: 2)\ndodatek\n"

	got := MergeAnswerBlocks(raw)
	citIdx := strings.Index(got, "(dokument:")
	addIdx := strings.Index(got, "dodatek")
	if addIdx < 0 || citIdx < addIdx {
		t.Errorf("bulleted citation did not sink to the bottom:\n%s", got)
	}
}
