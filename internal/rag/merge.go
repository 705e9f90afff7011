package rag

import "strings"

const (
	headingPrefix  = "### "
	citationMarker = "(dokument:"
)

type answerBlock struct {
	heading    string
	conditions []string
	citations  []string
	condSeen   map[string]struct{}
	citSeen    map[string]struct{}
}

func newAnswerBlock(heading string) *answerBlock {
	return &answerBlock{
		heading:  heading,
		condSeen: make(map[string]struct{}),
		citSeen:  make(map[string]struct{}),
	}
}

func (b *answerBlock) addCondition(line string) {
	if _, ok := b.condSeen[line]; ok {
		return
	}
	b.condSeen[line] = struct{}{}
	b.conditions = append(b.conditions, line)
}

func (b *answerBlock) addCitation(line string) {
	if _, ok := b.citSeen[line]; ok {
		return
	}
	b.citSeen[line] = struct{}{}
	b.citations = append(b.citations, line)
}

// MergeAnswerBlocks normalizes concatenated per-bank answer blocks into one
// document: blocks sharing a heading are folded together, duplicate lines
// are dropped keeping first occurrence, and citation lines always sink to
// the bottom of their block. Text before the first heading is discarded,
// so an entirely malformed input merges to the empty string. The operation
// is idempotent.
func MergeAnswerBlocks(raw string) string {
	var order []string
	blocks := make(map[string]*answerBlock)
	var current *answerBlock

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, headingPrefix) {
			b, ok := blocks[trimmed]
			if !ok {
				b = newAnswerBlock(trimmed)
				blocks[trimmed] = b
				order = append(order, trimmed)
			}
			current = b
			continue
		}
		if current == nil || trimmed == "" {
			continue
		}
		if isCitationLine(trimmed) {
			current.addCitation(trimmed)
		} else {
			current.addCondition(trimmed)
		}
	}

	var sb strings.Builder
	for i, heading := range order {
		if i > 0 {
			sb.WriteString("\n")
		}
		b := blocks[heading]
		sb.WriteString(b.heading)
		sb.WriteString("\n")
		for _, line := range b.conditions {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		for _, line := range b.citations {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// isCitationLine recognizes a citation line, tolerating a leading list
// bullet in front of the marker.
func isCitationLine(trimmed string) bool {
	return strings.HasPrefix(strings.TrimLeft(trimmed, "-* "), citationMarker)
}
