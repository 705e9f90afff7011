package rag

import "metodiky-ai/internal/bank"

// Partition groups passages by bank identity in first-occurrence order.
// Identity comes solely from the banka metadata field run through the
// canonical resolver; passages with no usable label land in the unknown
// group rather than being dropped.
func Partition(passages []Passage) []BankGroup {
	index := make(map[string]int)
	var groups []BankGroup

	for _, p := range passages {
		label, _ := p.Meta["banka"].(string)
		identity := bank.Resolve(label)

		i, ok := index[identity]
		if !ok {
			groups = append(groups, BankGroup{Bank: identity})
			i = len(groups) - 1
			index[identity] = i
		}
		groups[i].Passages = append(groups[i].Passages, p.Content)
		groups[i].Citations = append(groups[i].Citations, NewCitation(p.Meta))
	}

	return groups
}
