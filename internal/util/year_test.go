package util

import "testing"

func TestParseYearToken(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		year     int
		ceremony int
	}{
		{name: "split season with ordinal", input: "1927/28 (1st)", year: 1927, ceremony: 1},
		{name: "plain year", input: "2023", year: 2023},
		{name: "year with ordinal", input: "2023\n(96th)", year: 2023, ceremony: 96},
		{name: "ordinal only", input: "(12th)", ceremony: 12},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parsed := ParseYearToken(tc.input)
			if !parsed.Valid() {
				t.Fatalf("not valid: %+v", parsed)
			}
			if tc.year != 0 && (parsed.Year == nil || *parsed.Year != tc.year) {
				t.Fatalf("year=%v want %d", parsed.Year, tc.year)
			}
			if tc.ceremony != 0 && (parsed.Ceremony == nil || *parsed.Ceremony != tc.ceremony) {
				t.Fatalf("ceremony=%v want %d", parsed.Ceremony, tc.ceremony)
			}
		})
	}
}

func TestParseYearTokenMalformed(t *testing.T) {
	for _, input := range []string{"", "Winner", "12345", "n/a"} {
		if ParseYearToken(input).Valid() {
			t.Fatalf("%q should not parse", input)
		}
	}
}

func TestParseCeremonyDate(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{input: "March 10, 2024 (2024-03-10)", want: "2024-03-10"},
		{input: "10 March 2024", want: "2024-03-10"},
		{input: "May 16, 1929", want: "1929-05-16"},
		{input: "2022-03-27", want: "2022-03-27"},
	}
	for _, tc := range cases {
		got := ParseCeremonyDate(tc.input)
		if got == nil || *got != tc.want {
			t.Fatalf("ParseCeremonyDate(%q)=%v want %s", tc.input, got, tc.want)
		}
	}
	if ParseCeremonyDate("Dolby Theatre") != nil {
		t.Fatal("expected nil for non-date")
	}
}
