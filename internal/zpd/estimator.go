package zpd

import (
	"strings"

	"go.uber.org/zap"

	"github.com/cmap-scaffold/backend/internal/cmap"
	"github.com/cmap-scaffold/backend/internal/scaffold"
	"github.com/cmap-scaffold/backend/pkg/logger"
)

// Estimator applies diagnostic signals to an Estimate. Signals are applied
// in a fixed order so a later, stronger signal overrides an earlier one
// within the same update.
type Estimator struct{}

func NewEstimator() *Estimator {
	return &Estimator{}
}

func (e *Estimator) UpdateFromAnalysis(est *Estimate, analysis *cmap.Analysis) {
	if est == nil || analysis == nil {
		return
	}

	if analysis.ConceptCount < 8 {
		est.Conceptual = scaffold.High
		est.ConceptualUnderstanding = scaffold.Low
	} else if analysis.ConceptCount > 15 {
		est.Conceptual = scaffold.Low
		est.ConceptualUnderstanding = scaffold.High
	}

	if analysis.ConnectivityRatio < 1.0 {
		est.Metacognitive = scaffold.High
		est.MetacognitiveSkills = scaffold.Low
	} else if analysis.ConnectivityRatio > 2.0 {
		est.Metacognitive = scaffold.Low
		est.MetacognitiveSkills = scaffold.High
	}

	// A map with zero relationships has no labels either; both cases mean
	// the learner has not demonstrated the labeling mechanics yet.
	if !analysis.HasRelationLabels {
		est.Procedural = scaffold.High
		est.TechnicalProficiency = scaffold.Low
	}

	if analysis.Growth != nil {
		if analysis.Growth.Concepts > 3 && analysis.Growth.Relationships > 5 {
			for _, c := range scaffold.Categories {
				if est.Need(c) == scaffold.High {
					est.SetNeed(c, scaffold.Medium)
				}
			}
		}
		if analysis.Growth.Concepts < 0 || analysis.Growth.Relationships < 0 {
			est.Strategic = scaffold.High
			est.Metacognitive = scaffold.High
		}
	}

	logger.Debug("ZPD estimate updated from map analysis",
		zap.String("strategic", est.Strategic.String()),
		zap.String("metacognitive", est.Metacognitive.String()),
		zap.String("procedural", est.Procedural.String()),
		zap.String("conceptual", est.Conceptual.String()),
	)
}

// UpdateFromProfile seeds the estimate from free-text learner background
// collected before the first map submission.
func (e *Estimator) UpdateFromProfile(est *Estimate, profile string) {
	if est == nil {
		return
	}
	text := strings.ToLower(profile)
	if text == "" {
		return
	}

	if containsAny(text, "beginner", "new to", "no background", "novice") {
		est.ConceptualUnderstanding = scaffold.Low
		est.Conceptual = scaffold.High
	} else if containsAny(text, "expert", "advanced", "strong background") {
		est.ConceptualUnderstanding = scaffold.High
		est.Conceptual = scaffold.Low
	}

	if containsAny(text, "never", "first time") {
		est.TechnicalProficiency = scaffold.Low
		est.Procedural = scaffold.High
	} else if containsAny(text, "experienced", "many times", "often") {
		est.TechnicalProficiency = scaffold.High
		est.Procedural = scaffold.Low
	}

	if containsAny(text, "step-by-step", "step by step", "detailed guidance") {
		est.Strategic = scaffold.High
	} else if containsAny(text, "open-ended", "open ended", "explore on my own", "figure it out myself") {
		est.Strategic = scaffold.Low
	}
}

// UpdateFromResponse adjusts the estimate from cues in a dialogue reply.
func (e *Estimator) UpdateFromResponse(est *Estimate, response string) {
	if est == nil {
		return
	}
	text := strings.ToLower(response)
	if text == "" {
		return
	}

	if containsAny(text, "struggle", "struggling", "difficult", "hard for me", "stuck") {
		est.Metacognitive = scaffold.High
		est.MetacognitiveSkills = scaffold.Low
	}
	if containsAny(text, "i understand", "makes sense", "that is clear", "that's clear") {
		est.ConceptualUnderstanding = scaffold.High
		est.Conceptual = scaffold.Low
	}
	if containsAny(text, "how do i", "how to", "which button", "where do i") {
		est.Procedural = scaffold.High
	}
}

func containsAny(text string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
