package model

import "testing"

func TestDifficultyPoints(t *testing.T) {
	cases := map[Difficulty]int{
		DifficultyUnmarked:  10,
		DifficultyEasy:      5,
		DifficultyMedium:    10,
		DifficultyHard:      15,
		Difficulty("WEIRD"): 10,
	}
	for d, want := range cases {
		if got := d.Points(); got != want {
			t.Errorf("%s.Points() = %d, want %d", d, got, want)
		}
	}
}

func TestParseDifficulty(t *testing.T) {
	cases := map[string]Difficulty{
		"Easy":     DifficultyEasy,
		" medium ": DifficultyMedium,
		"HARD":     DifficultyHard,
		"Unmarked": DifficultyUnmarked,
		"":         DifficultyUnmarked,
		"brutal":   DifficultyUnmarked,
	}
	for in, want := range cases {
		if got := ParseDifficulty(in); got != want {
			t.Errorf("ParseDifficulty(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestParseAction(t *testing.T) {
	for _, name := range []string{"solve", "unsolve", "save", "unsave"} {
		a, ok := ParseAction(name)
		if !ok {
			t.Fatalf("ParseAction(%q) rejected", name)
		}
		if a.String() != name {
			t.Fatalf("round trip %q -> %q", name, a.String())
		}
	}
	for _, bad := range []string{"", "Solve", "delete", "solve "} {
		if _, ok := ParseAction(bad); ok {
			t.Errorf("ParseAction(%q) accepted", bad)
		}
	}
}
