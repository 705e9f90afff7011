package rag

import (
	"reflect"
	"testing"
)

func passage(content, doc, banka, strana string) Passage {
	meta := map[string]any{
		"dokument": doc,
		"strana":   strana,
		"kapitola": "2",
		"content":  content,
	}
	if banka != "" {
		meta["banka"] = banka
	}
	return Passage{Content: content, Meta: meta}
}

func TestPartitionEmpty(t *testing.T) {
	if groups := Partition(nil); len(groups) != 0 {
		t.Errorf("Partition(nil) = %d groups, want 0", len(groups))
	}
}

func TestPartitionGroupsByCanonicalBank(t *testing.T) {
	passages := []Passage{
		passage("úryvek 1", "Hypoteky_KB.pdf", "Komerční banka", "3"),
		passage("úryvek 2", "Hypoteky_CS.pdf", "Česká spořitelna", "7"),
		passage("úryvek 3", "Hypoteky_KB.pdf", "kb", "5"),
	}

	groups := Partition(passages)
	if len(groups) != 2 {
		t.Fatalf("Partition() = %d groups, want 2", len(groups))
	}

	// First-occurrence order is preserved.
	if groups[0].Bank != "Komerční banka" || groups[1].Bank != "Česká spořitelna" {
		t.Errorf("group order = [%s, %s], want [Komerční banka, Česká spořitelna]",
			groups[0].Bank, groups[1].Bank)
	}

	wantKB := []string{"úryvek 1", "úryvek 3"}
	if !reflect.DeepEqual(groups[0].Passages, wantKB) {
		t.Errorf("KB passages = %v, want %v", groups[0].Passages, wantKB)
	}
	if len(groups[0].Citations) != 2 {
		t.Fatalf("KB citations = %d, want 2", len(groups[0].Citations))
	}
	if groups[0].Citations[1].Page != "5" {
		t.Errorf("second KB citation page = %s, want 5", groups[0].Citations[1].Page)
	}
}

func TestPartitionMissingBankLabel(t *testing.T) {
	passages := []Passage{
		// Filename clearly identifies the bank, but partitioning trusts
		// metadata only.
		passage("bez označení", "Hypoteky_RB.pdf", "", "1"),
	}

	groups := Partition(passages)
	if len(groups) != 1 {
		t.Fatalf("Partition() = %d groups, want 1", len(groups))
	}
	if groups[0].Bank != "Neznámá banka" {
		t.Errorf("bank = %s, want Neznámá banka", groups[0].Bank)
	}
}

func TestPartitionCitationDefaults(t *testing.T) {
	groups := Partition([]Passage{
		{Content: "x", Meta: map[string]any{"banka": "mBank", "dokument": "Hypoteky_mB.pdf"}},
	})
	if len(groups) != 1 {
		t.Fatalf("Partition() = %d groups, want 1", len(groups))
	}
	c := groups[0].Citations[0]
	want := "(dokument: Hypoteky_mB.pdf, strana: ?, kapitola: ?)"
	if c.String() != want {
		t.Errorf("citation = %s, want %s", c.String(), want)
	}
}
