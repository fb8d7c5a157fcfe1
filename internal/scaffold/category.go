package scaffold

import "fmt"

// Category is one of the four scaffolding styles.
type Category int

const (
	Strategic Category = iota
	Metacognitive
	Procedural
	Conceptual
)

var Categories = []Category{Strategic, Metacognitive, Procedural, Conceptual}

func (c Category) String() string {
	switch c {
	case Strategic:
		return "strategic"
	case Metacognitive:
		return "metacognitive"
	case Procedural:
		return "procedural"
	case Conceptual:
		return "conceptual"
	default:
		return "unknown"
	}
}

func ParseCategory(s string) (Category, error) {
	switch s {
	case "strategic":
		return Strategic, nil
	case "metacognitive":
		return Metacognitive, nil
	case "procedural":
		return Procedural, nil
	case "conceptual":
		return Conceptual, nil
	default:
		return Strategic, fmt.Errorf("unknown scaffolding category: %q", s)
	}
}

// Intensity is the ordered strength of a scaffolding category. The same
// enumeration expresses ZPD need levels, so ordinal comparison works in
// one place instead of string comparisons scattered around.
type Intensity int

const (
	Low Intensity = iota
	Medium
	High
)

func (i Intensity) String() string {
	switch i {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return "unknown"
	}
}

func ParseIntensity(s string) (Intensity, error) {
	switch s {
	case "low":
		return Low, nil
	case "medium":
		return Medium, nil
	case "high":
		return High, nil
	default:
		return Medium, fmt.Errorf("unknown scaffolding intensity: %q", s)
	}
}

// Value maps an intensity to the numeric need estimate used for weighting.
func (i Intensity) Value() float64 {
	switch i {
	case Low:
		return 0.2
	case High:
		return 0.8
	default:
		return 0.5
	}
}

func (i Intensity) StepDown() Intensity {
	if i > Low {
		return i - 1
	}
	return Low
}

func (i Intensity) StepUp() Intensity {
	if i < High {
		return i + 1
	}
	return High
}

// IntensityForNeed derives an intensity from a numeric ZPD need.
func IntensityForNeed(need float64) Intensity {
	if need > 0.7 {
		return High
	}
	if need < 0.3 {
		return Low
	}
	return Medium
}
