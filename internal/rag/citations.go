package rag

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	citationPattern = regexp.MustCompile(`\(dokument: [^,)]+(?:, strana: [^,)]+)?(?:, kapitola: [^)]+)?\)`)
	docPattern      = regexp.MustCompile(`dokument: ([^,)]+)`)
	pagePattern     = regexp.MustCompile(`strana: (\d+)`)
)

// LinkifyCitations replaces every textual citation in the answer with an
// HTML anchor to the served document. PDF links carry a page fragment so
// viewers open at the cited page; the page defaults to 1 when the citation
// has no usable number. Text without citations passes through unchanged.
func LinkifyCitations(answer string) string {
	return citationPattern.ReplaceAllStringFunc(answer, func(citation string) string {
		docMatch := docPattern.FindStringSubmatch(citation)
		if docMatch == nil {
			return citation
		}
		doc := strings.TrimSpace(docMatch[1])

		page := "1"
		if pageMatch := pagePattern.FindStringSubmatch(citation); pageMatch != nil {
			page = pageMatch[1]
		}

		href := "/metodiky/" + url.PathEscape(doc)
		if strings.HasSuffix(strings.ToLower(doc), ".pdf") {
			href += "#page=" + page
		}
		return fmt.Sprintf("<a href='%s' target='_blank' class='citation'>%s</a>", href, citation)
	})
}
