// Package query turns inbound message text into typed commands and computes
// reply text from the COVID data source.
package query

// Kind discriminates the supported command variants.
type Kind int

const (
	// KindInvalid marks text that does not match the query grammar.
	KindInvalid Kind = iota
	// KindCasesTotal is "CASES TOTAL" — world active cases.
	KindCasesTotal
	// KindDeathsTotal is "DEATHS TOTAL" — world deaths.
	KindDeathsTotal
	// KindCasesByCountry is "CASES <ISO2>" — active cases in one country.
	KindCasesByCountry
	// KindDeathsByCountry is "DEATHS <ISO2>" — deaths in one country.
	KindDeathsByCountry
)

// Command is a parsed inbound query. It lives for the duration of one
// webhook invocation.
type Command struct {
	Kind Kind

	// ISO2 is the two-letter country code for the by-country kinds.
	ISO2 string

	// Value and Source are the raw grammar tokens, kept for the
	// compatibility fallback reply (see Calculator).
	Value  string
	Source string

	// Raw is the original message text, set on invalid commands.
	Raw string
}

// HelpText is the fixed reply for any message that fails to parse.
const HelpText = `Please choose following valid COVID queries:
1. CASES <ISO2 Country Code> => Active cases in given country
2. DEATHS <ISO2 Country Code> => Deaths in given country
3. CASES TOTAL => Total active cases in the world
4. DEATHS TOTAL => Total deaths in the world`
