package zpd

import (
	"fmt"
	"strings"

	"github.com/cmap-scaffold/backend/internal/scaffold"
)

// Estimate is the per-session record of how much support the learner needs
// in each scaffolding dimension, plus coarse profile summaries. Created
// with all-medium defaults at session start and only mutated by the
// Estimator.
type Estimate struct {
	Strategic     scaffold.Intensity
	Metacognitive scaffold.Intensity
	Procedural    scaffold.Intensity
	Conceptual    scaffold.Intensity

	ConceptualUnderstanding scaffold.Intensity
	MetacognitiveSkills     scaffold.Intensity
	TechnicalProficiency    scaffold.Intensity
}

func NewEstimate() *Estimate {
	return &Estimate{
		Strategic:               scaffold.Medium,
		Metacognitive:           scaffold.Medium,
		Procedural:              scaffold.Medium,
		Conceptual:              scaffold.Medium,
		ConceptualUnderstanding: scaffold.Medium,
		MetacognitiveSkills:     scaffold.Medium,
		TechnicalProficiency:    scaffold.Medium,
	}
}

func (e *Estimate) Need(c scaffold.Category) scaffold.Intensity {
	switch c {
	case scaffold.Strategic:
		return e.Strategic
	case scaffold.Metacognitive:
		return e.Metacognitive
	case scaffold.Procedural:
		return e.Procedural
	default:
		return e.Conceptual
	}
}

func (e *Estimate) SetNeed(c scaffold.Category, level scaffold.Intensity) {
	switch c {
	case scaffold.Strategic:
		e.Strategic = level
	case scaffold.Metacognitive:
		e.Metacognitive = level
	case scaffold.Procedural:
		e.Procedural = level
	case scaffold.Conceptual:
		e.Conceptual = level
	}
}

func (e *Estimate) Needs() map[scaffold.Category]scaffold.Intensity {
	return map[scaffold.Category]scaffold.Intensity{
		scaffold.Strategic:     e.Strategic,
		scaffold.Metacognitive: e.Metacognitive,
		scaffold.Procedural:    e.Procedural,
		scaffold.Conceptual:    e.Conceptual,
	}
}

// Assessment synthesizes the profile dimensions into a closing summary of
// the learner's session.
func (e *Estimate) Assessment(mapCount int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Over %d map revision(s), the learner showed ", mapCount)

	switch e.ConceptualUnderstanding {
	case scaffold.High:
		b.WriteString("a strong grasp of the domain concepts")
	case scaffold.Low:
		b.WriteString("an early-stage grasp of the domain concepts")
	default:
		b.WriteString("a developing grasp of the domain concepts")
	}

	b.WriteString(" and ")
	switch e.MetacognitiveSkills {
	case scaffold.High:
		b.WriteString("reflected readily on their own thinking. ")
	case scaffold.Low:
		b.WriteString("rarely reflected on their own thinking. ")
	default:
		b.WriteString("some reflection on their own thinking. ")
	}

	switch e.TechnicalProficiency {
	case scaffold.High:
		b.WriteString("The mapping tools posed no difficulty.")
	case scaffold.Low:
		b.WriteString("The mapping tools were still a hurdle and deserve a short walkthrough next session.")
	default:
		b.WriteString("The mapping tools were workable with occasional guidance.")
	}

	return b.String()
}

func (e *Estimate) ToMap() map[string]string {
	return map[string]string{
		"strategic":                e.Strategic.String(),
		"metacognitive":            e.Metacognitive.String(),
		"procedural":               e.Procedural.String(),
		"conceptual":               e.Conceptual.String(),
		"conceptual_understanding": e.ConceptualUnderstanding.String(),
		"metacognitive_skills":     e.MetacognitiveSkills.String(),
		"technical_proficiency":    e.TechnicalProficiency.String(),
	}
}
