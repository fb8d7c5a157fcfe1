package scaffold

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cmap-scaffold/backend/internal/cmap"
	"github.com/cmap-scaffold/backend/pkg/logger"
)

var specificPlaceholders = []string{"{concept}", "{another_concept}", "{node_count}", "{edge_count}"}

// PromptEngine picks one template from the library for a category and
// intensity, scores candidates against the current map diagnostics, fills
// the placeholders, and records the choice so the session does not repeat
// itself. It always returns non-empty text.
type PromptEngine struct {
	library *Library
	memory  *UsageMemory
}

func NewPromptEngine(library *Library) *PromptEngine {
	return &PromptEngine{
		library: library,
		memory:  NewUsageMemory(),
	}
}

// Select returns the filled prompt for the bucket. The turn counter starts
// at zero for the opening prompt of a session.
func (p *PromptEngine) Select(c Category, i Intensity, analysis *cmap.Analysis, m *cmap.Map, turn int) string {
	templates := p.library.Prompts(c, i)
	if len(templates) == 0 {
		logger.Warn("No templates for bucket, using default prompt",
			zap.String("category", c.String()),
			zap.String("intensity", i.String()),
		)
		return p.library.Default(c)
	}

	unused := p.memory.Unused(c, i, len(templates))

	bestIdx := unused[0]
	bestScore := -1
	for _, idx := range unused {
		score := scoreTemplate(templates[idx], analysis, m, turn)
		if score > bestScore || (score == bestScore && idx < bestIdx) {
			bestScore = score
			bestIdx = idx
		}
	}

	p.memory.MarkUsed(c, i, bestIdx)

	filled := fillPlaceholders(templates[bestIdx], analysis, m)
	if strings.TrimSpace(filled) == "" {
		return p.library.Default(c)
	}
	return filled
}

// FollowUp picks a follow-up question for the category.
func (p *PromptEngine) FollowUp(c Category, src Source) string {
	options := p.library.FollowUps(c)
	if len(options) == 0 {
		return "Can you tell me more about that?"
	}
	return options[src.Intn(len(options))]
}

// Conclusion picks a closing statement for the category.
func (p *PromptEngine) Conclusion(c Category, src Source) string {
	options := p.library.Conclusions(c)
	if len(options) == 0 {
		return "Thanks for thinking this through. Keep refining your map."
	}
	return options[src.Intn(len(options))]
}

// scoreTemplate rewards templates whose placeholders the analysis can
// actually fill, and templates whose tone fits the turn: broad language on
// the opening turn, specific language afterwards.
func scoreTemplate(template string, analysis *cmap.Analysis, m *cmap.Map, turn int) int {
	score := 0

	if strings.Contains(template, "{observation}") && observationAvailable(analysis) {
		score += 2
	}
	if strings.Contains(template, "{concept}") && m != nil && len(m.Concepts) > 0 {
		score += 2
	}
	if strings.Contains(template, "{another_concept}") && m != nil && len(m.Concepts) > 1 {
		score += 2
	}
	if (strings.Contains(template, "{node_count}") || strings.Contains(template, "{edge_count}")) && analysis != nil {
		score += 2
	}

	specific := false
	for _, ph := range specificPlaceholders {
		if strings.Contains(template, ph) {
			specific = true
			break
		}
	}
	if turn == 0 && !specific {
		score += 2
	} else if turn > 0 && specific {
		score += 2
	}

	return score
}

func observationAvailable(analysis *cmap.Analysis) bool {
	if analysis == nil {
		return false
	}
	if len(analysis.IsolatedConcepts) > 0 {
		return true
	}
	if analysis.ConnectivityRatio < 1.0 {
		return true
	}
	if analysis.Growth != nil && analysis.Growth.Concepts <= 0 && analysis.Growth.Relationships <= 0 {
		return true
	}
	return false
}

func fillPlaceholders(template string, analysis *cmap.Analysis, m *cmap.Map) string {
	result := template

	if strings.Contains(result, "{observation}") {
		result = strings.ReplaceAll(result, "{observation}", synthesizeObservation(analysis))
	}

	var labels []string
	if m != nil {
		labels = m.ConceptLabels()
	}

	concept := "one of your concepts"
	anotherConcept := "another concept"
	if len(labels) > 0 {
		concept = labels[0]
	}
	if len(labels) > 1 {
		anotherConcept = labels[1]
	}
	result = strings.ReplaceAll(result, "{concept}", concept)
	result = strings.ReplaceAll(result, "{another_concept}", anotherConcept)

	nodeCount, edgeCount := 0, 0
	if analysis != nil {
		nodeCount = analysis.ConceptCount
		edgeCount = analysis.RelationshipCount
	}
	result = strings.ReplaceAll(result, "{node_count}", fmt.Sprintf("%d", nodeCount))
	result = strings.ReplaceAll(result, "{edge_count}", fmt.Sprintf("%d", edgeCount))

	return result
}

// synthesizeObservation turns the analysis into one sentence, preferring
// the most actionable signal: isolated concepts, then weak connectivity,
// then stalled growth.
func synthesizeObservation(analysis *cmap.Analysis) string {
	if analysis == nil {
		return "Looking at your map so far,"
	}
	if len(analysis.IsolatedConcepts) > 0 {
		return fmt.Sprintf("I notice %s is not connected to anything yet.", analysis.IsolatedConcepts[0])
	}
	if analysis.ConnectivityRatio < 1.0 {
		return "I notice your map has more concepts than connections."
	}
	if analysis.Growth != nil && analysis.Growth.Concepts <= 0 && analysis.Growth.Relationships <= 0 {
		return "I notice your map has not grown since the last round."
	}
	return "Looking at your map so far,"
}
