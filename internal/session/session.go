package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/cmap-scaffold/backend/internal/cmap"
	"github.com/cmap-scaffold/backend/internal/scaffold"
	"github.com/cmap-scaffold/backend/internal/zpd"
)

// Interaction is one completed (or in-flight) scaffolding exchange.
type Interaction struct {
	ID            string             `json:"id"`
	Round         int                `json:"round"`
	Category      scaffold.Category  `json:"-"`
	CategoryName  string             `json:"category"`
	Intensity     scaffold.Intensity `json:"-"`
	IntensityName string             `json:"intensity"`
	Justification string             `json:"justification"`
	Prompts       []string           `json:"prompts"`
	Responses     []string           `json:"responses"`
	FollowUps     []string           `json:"follow_ups"`
	Conclusion    string             `json:"conclusion"`
	Analysis      *cmap.Analysis     `json:"map_analysis"`
	StartedAt     time.Time          `json:"started_at"`
	ConcludedAt   time.Time          `json:"concluded_at"`
}

// NewInteraction captures the selection and the map diagnostics it was
// made from, so history entries keep the analysis of their own round even
// after later submissions replace State.Analysis.
func NewInteraction(round int, sel *scaffold.Selection, analysis *cmap.Analysis) *Interaction {
	return &Interaction{
		ID:            uuid.New().String(),
		Round:         round,
		Category:      sel.Category,
		CategoryName:  sel.Category.String(),
		Intensity:     sel.Intensity,
		IntensityName: sel.Intensity.String(),
		Justification: sel.Justification,
		Prompts:       []string{},
		Responses:     []string{},
		FollowUps:     []string{},
		Analysis:      analysis,
		StartedAt:     time.Now(),
	}
}

// AverageResponseLength returns the mean reply length in characters, or
// zero when no replies were collected.
func (i *Interaction) AverageResponseLength() float64 {
	if len(i.Responses) == 0 {
		return 0
	}
	total := 0
	for _, r := range i.Responses {
		total += len(r)
	}
	return float64(total) / float64(len(i.Responses))
}

// State is the per-learner session aggregate. One learner drives one
// session sequentially, so no locking is needed; all mutation goes
// through the dialogue engine.
type State struct {
	ID             string
	CurrentRound   int
	MaxRounds      int
	LearnerProfile string
	ZPD            *zpd.Estimate
	PreviousMaps   []*cmap.Map
	CurrentMap     *cmap.Map
	Analysis       *cmap.Analysis
	History        []*Interaction

	// Fading state: last used intensity per category.
	Intensities map[scaffold.Category]scaffold.Intensity
}

func NewState(maxRounds int) *State {
	return &State{
		ID:          uuid.New().String(),
		MaxRounds:   maxRounds,
		ZPD:         zpd.NewEstimate(),
		History:     []*Interaction{},
		Intensities: make(map[scaffold.Category]scaffold.Intensity),
	}
}

// SubmitMap records a new current map, pushing the old one into history.
func (s *State) SubmitMap(m *cmap.Map) {
	if s.CurrentMap != nil {
		s.PreviousMaps = append(s.PreviousMaps, s.CurrentMap)
	}
	s.CurrentMap = m
}

// PreviousMap returns the most recent prior map, or nil on round one.
func (s *State) PreviousMap() *cmap.Map {
	if len(s.PreviousMaps) == 0 {
		return nil
	}
	return s.PreviousMaps[len(s.PreviousMaps)-1]
}

// RecentCategories lists the categories of the last n concluded
// interactions, oldest first.
func (s *State) RecentCategories(n int) []scaffold.Category {
	start := len(s.History) - n
	if start < 0 {
		start = 0
	}
	categories := make([]scaffold.Category, 0, n)
	for _, interaction := range s.History[start:] {
		categories = append(categories, interaction.Category)
	}
	return categories
}

// AppendInteraction stores a concluded interaction and advances the round.
func (s *State) AppendInteraction(interaction *Interaction) {
	interaction.ConcludedAt = time.Now()
	s.History = append(s.History, interaction)
	s.Intensities[interaction.Category] = interaction.Intensity
	s.CurrentRound++
}
