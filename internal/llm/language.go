package llm

import (
	"unicode"

	"github.com/hyperjump/bunsho/internal/models"
)

// DetectLanguageHeuristic classifies text by script composition: mostly
// Arabic letters means Arabic, mostly Latin means English, a substantial
// share of both means mixed. It is the offline fallback when no model is
// reachable.
func DetectLanguageHeuristic(text string) string {
	var arabic, latin, total int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		total++
		switch {
		case unicode.Is(unicode.Arabic, r):
			arabic++
		case unicode.Is(unicode.Latin, r):
			latin++
		}
	}
	if total == 0 {
		return models.LangUnknown
	}

	arabicRatio := float64(arabic) / float64(total)
	latinRatio := float64(latin) / float64(total)
	switch {
	case arabicRatio >= 0.3 && latinRatio >= 0.3:
		return models.LangMixed
	case arabicRatio > latinRatio && arabicRatio >= 0.5:
		return models.LangArabic
	case latinRatio >= 0.5:
		return models.LangEnglish
	default:
		return models.LangUnknown
	}
}
