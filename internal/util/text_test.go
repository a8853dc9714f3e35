package util

import "testing"

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "accents", input: "José Á.", want: "JOSE A"},
		{name: "punctuation and edges", input: "  ana-maria!!  ", want: "ANA MARIA"},
		{name: "digits dropped", input: "LOPEZ 12345 GARCIA", want: "LOPEZ GARCIA"},
		{name: "already canonical", input: "MARIA LOPEZ", want: "MARIA LOPEZ"},
		{name: "empty", input: "", want: ""},
		{name: "no alphabetic content", input: "12/34 --- 56", want: ""},
		{name: "mixed case collapse", input: "PÉREZ\tgómez\n", want: "PEREZ GOMEZ"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeName(tc.input)
			if got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestNormalizeNameIdempotent(t *testing.T) {
	inputs := []string{"José Á.", "  ana-maria!!  ", "ÑOÑO NÚÑEZ", "", "x"}
	for _, in := range inputs {
		once := NormalizeName(in)
		twice := NormalizeName(once)
		if once != twice {
			t.Fatalf("not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestDiceCoefficient(t *testing.T) {
	if got := DiceCoefficient("MARIA LOPEZ", "MARIA LOPEZ"); got != 1 {
		t.Fatalf("identical strings: got %v", got)
	}
	if got := DiceCoefficient("MARIA", ""); got != 0 {
		t.Fatalf("empty side: got %v", got)
	}
	close := DiceCoefficient("MARIA LOPEZ", "MARIA LOPES")
	far := DiceCoefficient("MARIA LOPEZ", "JUAN PEREZ")
	if close <= far {
		t.Fatalf("expected close > far, got %v <= %v", close, far)
	}
}
