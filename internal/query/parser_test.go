package query

import "testing"

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want Command
	}{
		{
			name: "cases total",
			text: "CASES TOTAL",
			want: Command{Kind: KindCasesTotal, Value: "CASES", Source: "TOTAL"},
		},
		{
			name: "deaths total",
			text: "DEATHS TOTAL",
			want: Command{Kind: KindDeathsTotal, Value: "DEATHS", Source: "TOTAL"},
		},
		{
			name: "cases by country",
			text: "CASES US",
			want: Command{Kind: KindCasesByCountry, ISO2: "US", Value: "CASES", Source: "US"},
		},
		{
			name: "deaths by country",
			text: "DEATHS IN",
			want: Command{Kind: KindDeathsByCountry, ISO2: "IN", Value: "DEATHS", Source: "IN"},
		},
		{
			name: "single token",
			text: "CASES",
			want: Command{Kind: KindInvalid, Raw: "CASES"},
		},
		{
			name: "empty text",
			text: "",
			want: Command{Kind: KindInvalid, Raw: ""},
		},
		{
			name: "unknown value",
			text: "RECOVERED US",
			want: Command{Kind: KindInvalid, Raw: "RECOVERED US"},
		},
		{
			name: "lowercase value rejected",
			text: "cases TOTAL",
			want: Command{Kind: KindInvalid, Raw: "cases TOTAL"},
		},
		{
			name: "source too long",
			text: "CASES USA",
			want: Command{Kind: KindInvalid, Raw: "CASES USA"},
		},
		{
			name: "source too short",
			text: "DEATHS U",
			want: Command{Kind: KindInvalid, Raw: "DEATHS U"},
		},
		{
			name: "three tokens",
			text: "CASES US TOTAL",
			want: Command{Kind: KindInvalid, Raw: "CASES US TOTAL"},
		},
		{
			name: "leading and trailing whitespace tolerated",
			text: "  CASES US  ",
			want: Command{Kind: KindCasesByCountry, ISO2: "US", Value: "CASES", Source: "US"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Parse(tt.text); got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

// TOTAL must win over the country-code branch even though the by-country
// grammar would otherwise apply to a 2-character source.
func TestParse_TotalNeverHitsCountryPath(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"CASES TOTAL", "DEATHS TOTAL"} {
		cmd := Parse(text)
		if cmd.ISO2 != "" {
			t.Errorf("Parse(%q).ISO2 = %q, want empty", text, cmd.ISO2)
		}
		if cmd.Kind == KindCasesByCountry || cmd.Kind == KindDeathsByCountry {
			t.Errorf("Parse(%q) routed to country path", text)
		}
	}
}
