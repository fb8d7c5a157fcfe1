package classify

import (
	"strings"

	prose "github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	"github.com/cmap-scaffold/backend/internal/cmap"
	"github.com/cmap-scaffold/backend/pkg/logger"
)

// Extractor pulls concept mentions and key phrases out of an utterance so
// prompts and pattern responses can echo the learner's own vocabulary.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// MentionedConcepts returns the labels of map concepts the text refers to.
func (e *Extractor) MentionedConcepts(text string, m *cmap.Map) []string {
	mentioned := []string{}
	if m == nil {
		return mentioned
	}
	lower := strings.ToLower(text)
	for _, label := range m.ConceptLabels() {
		if label == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(label)) {
			mentioned = append(mentioned, label)
		}
	}
	return mentioned
}

// KeyPhrases extracts named entities and noun tokens from the text. A
// tagging failure yields an empty list rather than an error; phrases are
// a nicety, not a requirement.
func (e *Extractor) KeyPhrases(text string) []string {
	phrases := []string{}

	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		logger.Warn("Key phrase extraction failed", zap.Error(err))
		return phrases
	}

	seen := make(map[string]bool)
	add := func(p string) {
		key := strings.ToLower(strings.TrimSpace(p))
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		phrases = append(phrases, strings.TrimSpace(p))
	}

	for _, ent := range doc.Entities() {
		add(ent.Text)
	}
	for _, tok := range doc.Tokens() {
		if strings.HasPrefix(tok.Tag, "NN") && len(tok.Text) > 2 {
			add(tok.Text)
		}
	}

	return phrases
}
