package util

import "testing"

func TestCleanText(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "citation", input: "Oppenheimer[12]", want: "Oppenheimer"},
		{name: "letter note", input: "Past Lives[a]  ", want: "Past Lives"},
		{name: "edit marker", input: "Best Picture[edit]", want: "Best Picture"},
		{name: "nbsp and newlines", input: "Killers of the\nFlower Moon", want: "Killers of the Flower Moon"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanText(tc.input); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestOrdinal(t *testing.T) {
	cases := map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 11: "11th", 12: "12th", 13: "13th", 21: "21st", 92: "92nd", 96: "96th", 101: "101st", 111: "111th"}
	for n, want := range cases {
		if got := Ordinal(n); got != want {
			t.Fatalf("Ordinal(%d)=%q want %q", n, got, want)
		}
	}
}

func TestContainsFold(t *testing.T) {
	if !ContainsFold("Best SUPPORTING Actress", []string{"supporting"}) {
		t.Fatal("expected match")
	}
	if ContainsFold("Best Picture", []string{"", "  "}) {
		t.Fatal("blank needles must not match")
	}
}
