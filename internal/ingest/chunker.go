package ingest

import (
	"regexp"
	"strings"
)

const (
	// Chunk sizing targets the embedding model's context window.
	defaultChunkSize    = 1200
	defaultChunkOverlap = 150
)

// chapterPattern matches a numbered section heading such as "3.2 Doložení
// příjmů" at the start of a line.
var chapterPattern = regexp.MustCompile(`^([1-9][0-9]*(?:\.[0-9]+)+)`)

// SplitText cuts text into overlapping rune-sized windows. Overlap keeps
// sentences split at a boundary visible in both neighbors. Blank windows
// are dropped.
func SplitText(text string, size, overlap int) []string {
	if size <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	runes := []rune(text)
	step := size - overlap

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}

	return chunks
}

// DetectChapter returns the number of the first section heading found in
// the chunk, or "?" when the chunk carries no recognizable heading.
func DetectChapter(chunk string) string {
	for _, line := range strings.Split(chunk, "\n") {
		if match := chapterPattern.FindStringSubmatch(strings.TrimSpace(line)); match != nil {
			return match[1]
		}
	}
	return "?"
}
