// Package bank resolves free-form bank labels, document filenames, and
// query mentions to canonical bank display names.
package bank

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Unknown is the sentinel identity for inputs no heuristic can place.
const Unknown = "Neznámá banka"

// Canonical display names for the banks present in the corpus.
const (
	CSOB            = "ČSOB Hypoteční banka"
	CeskaSporitelna = "Česká spořitelna"
	KomercniBanka   = "Komerční banka"
	Raiffeisenbank  = "Raiffeisenbank"
	UniCredit       = "UniCredit Bank"
	MBank           = "mBank"
	Oberbank        = "Oberbank"
	Moneta          = "Moneta"
)

// canonicalByKey maps normalized labels (lower-cased, diacritics and
// internal spaces stripped) to canonical display names.
var canonicalByKey = map[string]string{
	"kb":                 KomercniBanka,
	"komercnibanka":      KomercniBanka,
	"csob":               CSOB,
	"csobhypotecnibanka": CSOB,
	"hypotecnibanka":     CSOB,
	"cs":                 CeskaSporitelna,
	"ceskasporitelna":    CeskaSporitelna,
	"rb":                 Raiffeisenbank,
	"raiffeisenbank":     Raiffeisenbank,
	"ucb":                UniCredit,
	"unicredit":          UniCredit,
	"unicreditbank":      UniCredit,
	"mbank":              MBank,
	"oberbank":           Oberbank,
}

// stripMarks removes combining marks after Unicode decomposition, so
// "Komerční" and "Komercni" normalize to the same key.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeKey lowers the input, strips diacritics, and removes internal
// spaces, producing a lookup key for canonicalByKey.
func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	stripped, _, err := transform.String(stripMarks, lowered)
	if err != nil {
		stripped = lowered
	}
	return strings.ReplaceAll(stripped, " ", "")
}

// Resolve maps a free-form bank label (metadata field or free text) to a
// canonical display name. Empty input and inputs carrying the unknown-bank
// marker resolve to the Unknown sentinel. Labels missing from the lookup
// table are returned verbatim (trimmed) rather than as Unknown: callers
// get a best-effort label, not a guaranteed canonical one.
func Resolve(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Unknown
	}
	if strings.Contains(strings.ToLower(trimmed), strings.ToLower(Unknown)) {
		return Unknown
	}
	if canonical, ok := canonicalByKey[normalizeKey(trimmed)]; ok {
		return canonical
	}
	return trimmed
}

// filenamePattern is one ordered substring test applied to a lower-cased
// document filename.
type filenamePattern struct {
	substr string
	bank   string
}

// filenamePatterns are checked in priority order; the first hit wins.
// ČSOB precedes the savings-bank patterns so "_csob" never trips "_cs".
var filenamePatterns = []filenamePattern{
	{"csob", CSOB},
	{"sporitelna", CeskaSporitelna},
	{"_cs", CeskaSporitelna},
	{"komercni", KomercniBanka},
	{"_kb", KomercniBanka},
	{"raiffeisen", Raiffeisenbank},
	{"_rb", Raiffeisenbank},
	{"unicredit", UniCredit},
	{"_ucb", UniCredit},
	{"mbank", MBank},
	{"_mb", MBank},
	{"oberbank", Oberbank},
}

// ResolveFromFilename maps a document filename to a canonical bank name
// using filename conventions. It is intentionally independent of Resolve:
// one resolves a people-facing label, the other a filename convention.
// Returns the Unknown sentinel when no pattern matches.
func ResolveFromFilename(name string) string {
	lowered := strings.ToLower(name)
	for _, p := range filenamePatterns {
		if strings.Contains(lowered, p.substr) {
			return p.bank
		}
	}
	return Unknown
}

// Detection names a bank a query explicitly mentions and the corpus
// document expected to cover it.
type Detection struct {
	Bank     string
	Document string
}

// queryDetector matches short codes and name fragments against query
// tokens. This detector deliberately covers a different bank set than the
// canonical-name table (Moneta appears only here).
type queryDetector struct {
	keywords  []string
	detection Detection
}

var queryDetectors = []queryDetector{
	{[]string{"csob", "čsob"}, Detection{CSOB, "Hypoteky_CSOB.pdf"}},
	{[]string{"cs", "sporitelna", "spořitelna"}, Detection{CeskaSporitelna, "Hypoteky_CS.pdf"}},
	{[]string{"kb", "komercni", "komerční"}, Detection{KomercniBanka, "Hypoteky_KB.pdf"}},
	{[]string{"rb", "raiffeisen", "raiffeisenbank"}, Detection{Raiffeisenbank, "Hypoteky_RB.pdf"}},
	{[]string{"ucb", "unicredit"}, Detection{UniCredit, "Hypoteky_UCB.pdf"}},
	{[]string{"mb", "mbank"}, Detection{MBank, "Hypoteky_mB.pdf"}},
	{[]string{"moneta"}, Detection{Moneta, "Hypoteky_Moneta.pdf"}},
}

// DetectInQuery reports whether the raw query textually names a specific
// bank. Short codes ("kb", "rb") must appear as whole words so that e.g.
// "kolik" does not trigger the KB detector.
func DetectInQuery(query string) (Detection, bool) {
	tokens := tokenizeQuery(query)
	if len(tokens) == 0 {
		return Detection{}, false
	}
	for _, d := range queryDetectors {
		for _, kw := range d.keywords {
			if _, ok := tokens[kw]; ok {
				return d.detection, true
			}
		}
	}
	return Detection{}, false
}

func tokenizeQuery(query string) map[string]struct{} {
	var builder strings.Builder
	builder.Grow(len(query))
	for _, r := range strings.ToLower(query) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
		} else {
			builder.WriteRune(' ')
		}
	}
	fields := strings.Fields(builder.String())
	if len(fields) == 0 {
		return nil
	}
	tokens := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		tokens[f] = struct{}{}
	}
	return tokens
}

// contentPatterns drive ingestion-time detection against document text
// when the filename alone is inconclusive.
var contentPatterns = []filenamePattern{
	{"čsob", CSOB},
	{"česká spořitelna", CeskaSporitelna},
	{"komerční banka", KomercniBanka},
	{"moneta", Moneta},
	{"raiffeisen", Raiffeisenbank},
	{"unicredit", UniCredit},
	{"mbank", MBank},
	{"hypoteční banka", CSOB},
}

// Detect determines a document's bank at ingestion time, preferring the
// filename convention and falling back to a content scan.
func Detect(filename, text string) string {
	if b := ResolveFromFilename(filename); b != Unknown {
		return b
	}
	lowered := strings.ToLower(text)
	for _, p := range contentPatterns {
		if strings.Contains(lowered, p.substr) {
			return p.bank
		}
	}
	return Unknown
}
