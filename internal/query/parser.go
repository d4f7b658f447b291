package query

import "strings"

// Parse turns raw message text into a Command. Any text that is not exactly
// two whitespace-separated tokens of the form CASES|DEATHS followed by TOTAL
// or a 2-character country code yields KindInvalid. Matching is
// case-sensitive: only uppercase tokens are recognised.
func Parse(text string) Command {
	// strings.Fields also covers the single-token (no whitespace) case:
	// len(tokens) < 2, so the second token is never touched.
	tokens := strings.Fields(text)
	if len(tokens) != 2 {
		return Command{Kind: KindInvalid, Raw: text}
	}

	value, source := tokens[0], tokens[1]
	if value != "CASES" && value != "DEATHS" {
		return Command{Kind: KindInvalid, Raw: text}
	}

	// TOTAL must be checked before the country-code branch: it is a literal
	// keyword, not a 5-character code.
	if source == "TOTAL" {
		kind := KindCasesTotal
		if value == "DEATHS" {
			kind = KindDeathsTotal
		}
		return Command{Kind: kind, Value: value, Source: source}
	}

	if len(source) != 2 {
		return Command{Kind: KindInvalid, Raw: text}
	}

	kind := KindCasesByCountry
	if value == "DEATHS" {
		kind = KindDeathsByCountry
	}
	return Command{Kind: kind, ISO2: source, Value: value, Source: source}
}
