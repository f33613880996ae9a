// Package structure recovers a heading hierarchy (Section tree) from
// extractor-supplied heading hints or, absent those, from pattern scanning
// over the text itself.
package structure

import (
	"regexp"
	"strings"

	"github.com/hyperjump/bunsho/internal/models"
)

// Heading patterns checked per line in priority order; first match wins.
var (
	markdownPattern = regexp.MustCompile(`^#{1,6}\s+(.+)$`)
	capsPattern     = regexp.MustCompile(`^([A-Z][A-Z\s]{2,})$`)
	numberedPattern = regexp.MustCompile(`^(\d+\.)+\s*(.+)$`)
	chapterPattern  = regexp.MustCompile(`^(Chapter|Section|Part)\s+\d+[:\s]+(.+)$`)
)

// Extractor builds Section trees from extracted content.
type Extractor struct{}

// NewExtractor returns a structural extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the document structure for content. Extractor-supplied
// heading metadata takes priority; otherwise the cleaned text is scanned for
// heading patterns.
func (e *Extractor) Extract(content *models.ExtractedContent) *models.DocumentStructure {
	var flat []*models.Section
	if headings := structuredHeadings(content); len(headings) > 0 {
		flat = buildFromHeadings(headings, len(content.CleanedText))
	} else {
		flat = scanText(content.CleanedText)
	}

	roots := BuildHierarchy(flat)
	return &models.DocumentStructure{
		Sections:     roots,
		HasHierarchy: len(roots) > 0,
		MaxDepth:     maxDepth(roots),
		Outline:      outline(roots),
	}
}

// structuredHeadings pulls extractor-supplied heading hints out of the
// structured-data map, tolerating both the typed and the decoded-JSON shape.
func structuredHeadings(content *models.ExtractedContent) []models.Heading {
	if content.StructuredData == nil {
		return nil
	}
	switch hs := content.StructuredData["headings"].(type) {
	case []models.Heading:
		return hs
	case []interface{}:
		var out []models.Heading
		for _, h := range hs {
			m, ok := h.(map[string]interface{})
			if !ok {
				continue
			}
			heading := models.Heading{Level: 1}
			if lv, ok := m["level"].(float64); ok {
				heading.Level = int(lv)
			}
			if t, ok := m["text"].(string); ok {
				heading.Text = t
			}
			if p, ok := m["start_pos"].(float64); ok {
				heading.StartPos = int(p)
			}
			out = append(out, heading)
		}
		return out
	default:
		return nil
	}
}

// buildFromHeadings converts heading hints to flat sections. Each section
// spans from its heading to the next heading (or end of text).
func buildFromHeadings(headings []models.Heading, textLen int) []*models.Section {
	sections := make([]*models.Section, 0, len(headings))
	for i, h := range headings {
		end := textLen
		if i+1 < len(headings) {
			end = headings[i+1].StartPos
		}
		level := h.Level
		if level < 1 {
			level = 1
		} else if level > 6 {
			level = 6
		}
		sections = append(sections, &models.Section{
			Level:    level,
			Title:    h.Text,
			StartPos: h.StartPos,
			EndPos:   end,
		})
	}
	return sections
}

// scanText identifies heading lines in plain text and returns flat sections
// whose spans run from each heading to the next.
func scanText(text string) []*models.Section {
	var sections []*models.Section
	pos := 0
	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line != "" {
			if level, title, ok := matchHeading(line); ok {
				sections = append(sections, &models.Section{
					Level:    level,
					Title:    title,
					StartPos: pos,
					EndPos:   pos,
				})
			}
		}
		pos += len(rawLine) + 1
	}
	for i := 0; i < len(sections)-1; i++ {
		sections[i].EndPos = sections[i+1].StartPos
	}
	if len(sections) > 0 {
		sections[len(sections)-1].EndPos = len(text)
	}
	return sections
}

// matchHeading checks the fixed pattern priority: markdown, ALL-CAPS,
// dotted-numeric, chapter markers.
func matchHeading(line string) (level int, title string, ok bool) {
	if markdownPattern.MatchString(line) {
		level = len(line) - len(strings.TrimLeft(line, "#"))
		return level, strings.TrimSpace(strings.TrimLeft(line, "#")), true
	}
	if m := capsPattern.FindStringSubmatch(line); m != nil {
		return 2, strings.TrimSpace(m[1]), true
	}
	if numberedPattern.MatchString(line) {
		fields := strings.SplitN(line, " ", 2)
		dots := strings.Count(fields[0], ".")
		if dots > 6 {
			dots = 6
		}
		title := line
		if len(fields) > 1 {
			title = strings.TrimSpace(fields[1])
		}
		return dots, title, true
	}
	if m := chapterPattern.FindStringSubmatch(line); m != nil {
		return 1, strings.TrimSpace(m[2]), true
	}
	return 0, "", false
}

// BuildHierarchy assembles a section forest from a flat, document-ordered
// list. A stack of open sections is maintained: each new heading pops
// entries with level >= its own, then attaches to the remaining top (or the
// root list). Children therefore always have strictly greater levels than
// their parents.
func BuildHierarchy(flat []*models.Section) []*models.Section {
	var roots []*models.Section
	var stack []*models.Section
	for _, s := range flat {
		for len(stack) > 0 && stack[len(stack)-1].Level >= s.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, s)
		} else {
			top := stack[len(stack)-1]
			top.Subsections = append(top.Subsections, s)
		}
		stack = append(stack, s)
	}
	return roots
}

func maxDepth(sections []*models.Section) int {
	max := 0
	var walk func(s *models.Section, depth int)
	walk = func(s *models.Section, depth int) {
		if depth > max {
			max = depth
		}
		for _, sub := range s.Subsections {
			walk(sub, depth+1)
		}
	}
	for _, s := range sections {
		walk(s, 1)
	}
	return max
}

func outline(sections []*models.Section) []string {
	var lines []string
	var walk func(s *models.Section, indent int)
	walk = func(s *models.Section, indent int) {
		lines = append(lines, strings.Repeat("  ", indent)+"- "+s.Title)
		for _, sub := range s.Subsections {
			walk(sub, indent+1)
		}
	}
	for _, s := range sections {
		walk(s, 0)
	}
	return lines
}
