package llm

import (
	"testing"

	"github.com/hyperjump/bunsho/internal/models"
)

func TestDetectLanguageHeuristic(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"english", "The quick brown fox jumps over the lazy dog.", models.LangEnglish},
		{"arabic", "مرحبا بكم في هذا المستند الطويل نسبيا", models.LangArabic},
		{"mixed", "النص العربي هنا الآن mixed with English words", models.LangMixed},
		{"empty", "", models.LangUnknown},
		{"digits only", "12345 67890 !!!", models.LangUnknown},
	}
	for _, c := range cases {
		if got := DetectLanguageHeuristic(c.text); got != c.want {
			t.Errorf("%s: got %q, want %q", c.name, got, c.want)
		}
	}
}

func TestDetectLanguageHeuristic_DominantArabic(t *testing.T) {
	// A couple of Latin letters in mostly Arabic text stays Arabic.
	text := "هذا نص عربي طويل يحتوي على كلمات كثيرة ab"
	if got := DetectLanguageHeuristic(text); got != models.LangArabic {
		t.Errorf("got %q", got)
	}
}
