package similarity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "main library 2nd floor", Normalize("  Main-Library, 2nd FLOOR! "))
	assert.Equal(t, Normalize("STRASSE"), Normalize("Stra\u00dfe"))
	// Composed and decomposed forms normalise to the same string.
	assert.Equal(t, Normalize("caf\u00e9"), Normalize("cafe\u0301"))
	assert.Equal(t, "", Normalize("!!! ..."))
}

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"keys", "keys", 100},
		{"Keys", "KEYS!", 100},
		{"abcd", "abce", 75},
		{"abc", "xyz", 0},
		{"", "keys", 0},
		{"", "", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Ratio(tt.a, tt.b), "Ratio(%q, %q)", tt.a, tt.b)
	}
}

func TestPartialRatio(t *testing.T) {
	assert.Equal(t, 100, PartialRatio("Library", "Main Library"))
	assert.Equal(t, 100, PartialRatio("main library, 2nd floor", "LIBRARY"))
	assert.Equal(t, 0, PartialRatio("", "Library"))
	assert.Less(t, PartialRatio("Gym", "Library"), 80)
}

func TestTokenSetRatio(t *testing.T) {
	assert.Equal(t, 100, TokenSetRatio("blue keys", "keys blue"))
	assert.Equal(t, 100, TokenSetRatio("blue keys", "Blue keys on a red ring"))
	assert.Equal(t, 100, TokenSetRatio("keys keys blue", "blue keys"))
	assert.Equal(t, 0, TokenSetRatio("", "blue keys"))
	assert.Less(t, TokenSetRatio("black umbrella", "silver laptop"), 40)
}

func genText() *rapid.Generator[string] {
	words := []string{"blue", "keys", "Red", "wallet", "phone", "library", "café", "ring", "2nd", "!"}
	return rapid.Custom(func(t *rapid.T) string {
		ws := rapid.SliceOfN(rapid.SampledFrom(words), 0, 6).Draw(t, "words")
		return strings.Join(ws, " ")
	})
}

func TestScorersProperties(t *testing.T) {
	scorers := map[string]func(a, b string) int{
		"Ratio":         Ratio,
		"PartialRatio":  PartialRatio,
		"TokenSetRatio": TokenSetRatio,
	}
	for name, score := range scorers {
		t.Run(name, func(t *testing.T) {
			rapid.Check(t, func(t *rapid.T) {
				a := genText().Draw(t, "a")
				b := genText().Draw(t, "b")

				s := score(a, b)
				if s < 0 || s > 100 {
					t.Fatalf("score %d out of range", s)
				}
				if s != score(b, a) {
					t.Fatalf("asymmetric: %d vs %d", s, score(b, a))
				}
				if Normalize(a) == "" && s != 0 {
					t.Fatalf("empty input scored %d", s)
				}
				if Normalize(a) != "" && score(a, a) != 100 {
					t.Fatalf("identical input scored %d", score(a, a))
				}
				if score(strings.ToUpper(a), b) != s {
					t.Fatalf("case sensitive")
				}
			})
		})
	}
}

func TestTokenSetRatioOrderInsensitive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		words := rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,6}`), 1, 5).Draw(t, "words")
		other := genText().Draw(t, "other")
		perm := rapid.Permutation(words).Draw(t, "perm")

		if TokenSetRatio(strings.Join(words, " "), other) != TokenSetRatio(strings.Join(perm, " "), other) {
			t.Fatalf("word order changed the score")
		}
	})
}
