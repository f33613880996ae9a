// Package classify assigns a complexity tier to extracted content and
// recommends a chunking strategy, without invoking any external model.
package classify

import (
	"github.com/hyperjump/bunsho/internal/models"
	"github.com/hyperjump/bunsho/pkg/utils"
)

// Complexity is a document complexity tier.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"   // plain text, uniform structure
	ComplexityModerate Complexity = "moderate" // some structure, mixed content
	ComplexityComplex  Complexity = "complex"  // rich structure, tables, images
)

// Strategy is a recommended chunking strategy.
type Strategy string

const (
	StrategyFixed   Strategy = "fixed"
	StrategyDynamic Strategy = "dynamic"
	StrategyHybrid  Strategy = "hybrid"
)

// Classification is the result of classifying one document.
type Classification struct {
	Complexity          Complexity             `json:"complexity"`
	HasTables           bool                   `json:"has_tables"`
	HasStructure        bool                   `json:"has_structure"`
	HasImages           bool                   `json:"has_images"`
	Language            string                 `json:"language"`
	RecommendedStrategy Strategy               `json:"recommended_strategy"`
	Confidence          float64                `json:"confidence"`
	Metadata            map[string]interface{} `json:"metadata,omitempty"`
}

// Classifier scores document complexity from extraction signals.
type Classifier struct{}

// NewClassifier returns a document classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify analyzes content features and recommends a chunking strategy.
func (c *Classifier) Classify(content *models.ExtractedContent) *Classification {
	complexity := analyzeComplexity(content)
	hasTables := len(content.ExtractedTables) > 0
	hasStructure := hasStructuralElements(content)
	hasImages := content.ImageCount > 0

	return &Classification{
		Complexity:          complexity,
		HasTables:           hasTables,
		HasStructure:        hasStructure,
		HasImages:           hasImages,
		Language:            content.Language,
		RecommendedStrategy: recommendStrategy(complexity, hasTables, hasStructure, content.PageCount),
		Confidence:          confidence(content),
		Metadata: map[string]interface{}{
			"page_count":            content.PageCount,
			"table_count":           len(content.ExtractedTables),
			"image_count":           content.ImageCount,
			"text_length":           len(content.CleanedText),
			"extraction_confidence": content.Confidence,
		},
	}
}

// analyzeComplexity accumulates points for tables, images, page count, and
// structure hints, then buckets the score.
func analyzeComplexity(content *models.ExtractedContent) Complexity {
	score := 0
	if len(content.ExtractedTables) > 0 {
		score += 2
		if len(content.ExtractedTables) > 3 {
			score++
		}
	}
	if content.ImageCount > 0 {
		score++
	}
	if content.PageCount > 10 {
		score++
	}
	if content.PageCount > 50 {
		score++
	}
	if content.StructuredData != nil {
		if _, ok := content.StructuredData["headings"]; ok {
			score++
		}
		if _, ok := content.StructuredData["sections"]; ok {
			score++
		}
	}

	switch {
	case score <= 2:
		return ComplexitySimple
	case score <= 4:
		return ComplexityModerate
	default:
		return ComplexityComplex
	}
}

func hasStructuralElements(content *models.ExtractedContent) bool {
	if content.StructuredData == nil {
		return false
	}
	for _, key := range []string{"headings", "sections", "paragraphs_with_styles"} {
		if v, ok := content.StructuredData[key]; ok && v != nil {
			return true
		}
	}
	return false
}

// recommendStrategy applies the rule table in fixed order; first match wins.
func recommendStrategy(complexity Complexity, hasTables, hasStructure bool, pageCount int) Strategy {
	switch {
	case complexity == ComplexityComplex && hasStructure:
		return StrategyDynamic
	case hasTables && complexity == ComplexitySimple:
		return StrategyHybrid
	case pageCount > 20 && hasStructure:
		return StrategyDynamic
	case complexity == ComplexitySimple && pageCount < 10:
		return StrategyFixed
	case complexity == ComplexityModerate:
		return StrategyHybrid
	default:
		return StrategyDynamic
	}
}

// confidence is the unweighted mean of four factors: extraction confidence,
// a text-length bucket, a language-known bonus, and metadata richness.
func confidence(content *models.ExtractedContent) float64 {
	factors := []float64{content.Confidence}

	textLen := len(content.CleanedText)
	switch {
	case textLen > 1000:
		factors = append(factors, 0.9)
	case textLen > 500:
		factors = append(factors, 0.7)
	default:
		factors = append(factors, 0.5)
	}

	if content.Language != "" && content.Language != models.LangUnknown {
		factors = append(factors, 0.8)
	} else {
		factors = append(factors, 0.5)
	}

	if len(content.Metadata) > 0 {
		factors = append(factors, utils.Clamp01(float64(len(content.Metadata))/10.0))
	} else {
		factors = append(factors, 0.3)
	}

	return utils.Mean(factors)
}
