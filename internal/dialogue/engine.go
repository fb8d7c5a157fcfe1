package dialogue

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/cmap-scaffold/backend/internal/classify"
	"github.com/cmap-scaffold/backend/internal/cmap"
	"github.com/cmap-scaffold/backend/internal/llm"
	"github.com/cmap-scaffold/backend/internal/metrics"
	"github.com/cmap-scaffold/backend/internal/scaffold"
	"github.com/cmap-scaffold/backend/internal/session"
	"github.com/cmap-scaffold/backend/internal/zpd"
	"github.com/cmap-scaffold/backend/pkg/logger"
)

// DialogState is the engine's position in one interaction cycle.
type DialogState int

const (
	StateIdle DialogState = iota
	StatePrompting
	StateAwaitingResponse
	StateFollowUp
	StateConcluding
)

func (s DialogState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePrompting:
		return "prompting"
	case StateAwaitingResponse:
		return "awaiting_response"
	case StateFollowUp:
		return "follow_up"
	case StateConcluding:
		return "concluding"
	default:
		return "unknown"
	}
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Outcome is the uniform payload returned by every engine verb.
type Outcome struct {
	Status        string             `json:"status"`
	Message       string             `json:"message,omitempty"`
	Prompts       []string           `json:"prompts,omitempty"`
	Response      string             `json:"response,omitempty"`
	Pattern       string             `json:"pattern,omitempty"`
	Category      string             `json:"category,omitempty"`
	Intensity     string             `json:"intensity,omitempty"`
	Justification string             `json:"justification,omitempty"`
	Conclusion    string             `json:"conclusion,omitempty"`
	FollowUp      bool               `json:"follow_up,omitempty"`
	Scores        map[string]float64 `json:"scores,omitempty"`
	ModelUsed     string             `json:"model_used,omitempty"`
	Fallback      bool               `json:"fallback_occurred,omitempty"`
}

func errorOutcome(message string) *Outcome {
	return &Outcome{Status: StatusError, Message: message}
}

// Options configures an Engine for one session.
type Options struct {
	EnabledCategories     []scaffold.Category
	BaseWeights           map[scaffold.Category]float64
	PromptsPerInteraction int
	DomainKeywords        []string
	MaxRounds             int
	RandomSeed            int64
}

// Engine drives the scaffolding dialogue for a single session. All calls
// are sequential; one learner owns one engine.
type Engine struct {
	state      *session.State
	analyzer   *cmap.Analyzer
	estimator  *zpd.Estimator
	classifier *classify.Classifier
	selector   *scaffold.Selector
	prompts    *scaffold.PromptEngine
	fading     *scaffold.FadingPolicy
	generator  llm.Generator
	src        scaffold.Source

	dialogState DialogState
	current     *session.Interaction
	promptCount int
}

func NewEngine(generator llm.Generator, opts Options) *Engine {
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = 4
	}
	if opts.PromptsPerInteraction <= 0 {
		opts.PromptsPerInteraction = 3
	}
	if opts.EnabledCategories == nil {
		opts.EnabledCategories = scaffold.Categories
	}
	if generator == nil {
		generator = llm.NewDisabled()
	}

	src := scaffold.NewSource(opts.RandomSeed)

	return &Engine{
		state:       session.NewState(opts.MaxRounds),
		analyzer:    cmap.NewAnalyzer(),
		estimator:   zpd.NewEstimator(),
		classifier:  classify.NewClassifier(opts.DomainKeywords),
		selector:    scaffold.NewSelector(opts.EnabledCategories, opts.BaseWeights, src),
		prompts:     scaffold.NewPromptEngine(scaffold.NewLibrary()),
		fading:      scaffold.NewFadingPolicy(),
		generator:   generator,
		src:         src,
		dialogState: StateIdle,
		promptCount: opts.PromptsPerInteraction,
	}
}

func (e *Engine) State() *session.State {
	return e.state
}

func (e *Engine) DialogState() DialogState {
	return e.dialogState
}

// FinalAssessment summarizes the learner's profile at session close.
func (e *Engine) FinalAssessment() string {
	mapCount := len(e.state.PreviousMaps)
	if e.state.CurrentMap != nil {
		mapCount++
	}
	return e.state.ZPD.Assessment(mapCount)
}

// CurrentInteractionID returns the in-flight interaction's id, or empty
// when the engine is idle.
func (e *Engine) CurrentInteractionID() string {
	if e.current == nil {
		return ""
	}
	return e.current.ID
}

// InteractionByID finds an interaction in flight or in history.
func (e *Engine) InteractionByID(id string) *session.Interaction {
	if e.current != nil && e.current.ID == id {
		return e.current
	}
	for _, interaction := range e.state.History {
		if interaction.ID == id {
			return interaction
		}
	}
	return nil
}

// ConductInteraction opens a new interaction for a map submission: analyze
// the map, update the need estimate, pick a category, and produce prompts.
func (e *Engine) ConductInteraction(ctx context.Context, current, previous, expert *cmap.Map, profile string) *Outcome {
	if current == nil || (len(current.Concepts) == 0 && len(current.Relationships) == 0) {
		logger.Warn("Interaction requested without map data")
		return errorOutcome("no concept map data provided")
	}

	if e.dialogState != StateIdle {
		return errorOutcome("an interaction is already in progress; conclude it first")
	}

	if profile != "" && e.state.LearnerProfile == "" {
		e.state.LearnerProfile = profile
		e.estimator.UpdateFromProfile(e.state.ZPD, profile)
	}

	if previous == nil {
		previous = e.state.PreviousMap()
	}

	e.state.SubmitMap(current)
	analysis := e.analyzer.Analyze(current, previous, expert)
	e.state.Analysis = analysis
	e.estimator.UpdateFromAnalysis(e.state.ZPD, analysis)

	e.dialogState = StatePrompting

	sel, err := e.selector.Select(e.state.ZPD.Needs(), analysis, e.state.RecentCategories(3))
	if err != nil {
		e.dialogState = StateIdle
		return &Outcome{Status: StatusSuccess, Message: "no scaffolding available"}
	}

	if faded, ok := e.state.Intensities[sel.Category]; ok && faded < sel.Intensity {
		sel.Intensity = faded
	}

	e.current = session.NewInteraction(e.state.CurrentRound, sel, analysis)

	turn := e.state.CurrentRound
	for i := 0; i < e.promptCount; i++ {
		prompt := e.prompts.Select(sel.Category, sel.Intensity, analysis, current, turn)
		e.current.Prompts = append(e.current.Prompts, prompt)
	}

	e.dialogState = StateAwaitingResponse

	metrics.InteractionsTotal.WithLabelValues(sel.Category.String(), sel.Intensity.String()).Inc()
	logger.Info("Interaction started",
		zap.String("session_id", e.state.ID),
		zap.Int("round", e.state.CurrentRound),
		zap.String("category", sel.Category.String()),
		zap.String("intensity", sel.Intensity.String()),
	)

	return &Outcome{
		Status:        StatusSuccess,
		Prompts:       e.current.Prompts,
		Category:      sel.Category.String(),
		Intensity:     sel.Intensity.String(),
		Justification: sel.Justification,
	}
}

// ProcessLearnerResponse classifies one reply and routes it. Pattern
// responses answer immediately without advancing the interaction; normal
// replies are recorded and may trigger one follow-up.
func (e *Engine) ProcessLearnerResponse(ctx context.Context, text string) *Outcome {
	if e.current == nil || (e.dialogState != StateAwaitingResponse && e.dialogState != StateFollowUp) {
		return errorOutcome("no active interaction to respond to")
	}

	cls := e.classifier.Classify(text, e.state.CurrentMap)
	metrics.ResponsesTotal.WithLabelValues(string(cls.Tag)).Inc()
	metrics.ResponseLength.Observe(float64(len(text)))

	if cls.RequiresPatternResponse {
		reply := e.patternResponse(cls)
		metrics.PatternResponsesTotal.WithLabelValues(string(cls.Tag)).Inc()
		logger.Debug("Pattern response issued",
			zap.String("pattern", string(cls.Tag)),
			zap.String("category", e.current.Category.String()),
		)
		return &Outcome{
			Status:   StatusSuccess,
			Response: reply,
			Pattern:  string(cls.Tag),
			Category: e.current.Category.String(),
		}
	}

	e.current.Responses = append(e.current.Responses, text)
	e.estimator.UpdateFromResponse(e.state.ZPD, text)

	if len(e.current.FollowUps) == 0 && e.shouldFollowUp(text, cls) {
		e.dialogState = StateFollowUp
		followUp := e.prompts.FollowUp(e.current.Category, e.src)
		e.current.FollowUps = append(e.current.FollowUps, followUp)
		e.dialogState = StateAwaitingResponse

		metrics.FollowUpsTotal.Inc()
		return &Outcome{
			Status:   StatusSuccess,
			Response: followUp,
			FollowUp: true,
			Category: e.current.Category.String(),
		}
	}

	return &Outcome{
		Status:   StatusSuccess,
		Message:  "response recorded",
		Category: e.current.Category.String(),
	}
}

// shouldFollowUp forces a follow-up on questions or confusion, otherwise
// draws against a probability keyed to reply length.
func (e *Engine) shouldFollowUp(text string, cls *classify.Classification) bool {
	if strings.Contains(text, "?") || cls.Confused {
		return true
	}

	switch n := len(text); {
	case n > 200:
		return e.src.Float64() < 0.7
	case n > 100:
		return e.src.Float64() < 0.5
	default:
		return e.src.Float64() < 0.3
	}
}

// ConcludeInteraction closes the current interaction: generate a closing
// statement, append the interaction to history, fade intensity for the
// category's next use, and return to idle.
func (e *Engine) ConcludeInteraction(ctx context.Context) *Outcome {
	if e.current == nil {
		return errorOutcome("no active interaction to conclude")
	}

	e.dialogState = StateConcluding

	conclusion := e.prompts.Conclusion(e.current.Category, e.src)
	outcome := &Outcome{Status: StatusSuccess, Category: e.current.Category.String()}

	if len(e.current.Responses) > 0 {
		if generated := e.personalizedConclusion(ctx, conclusion); generated != nil {
			conclusion = generated.Text
			outcome.ModelUsed = generated.ModelUsed
			outcome.Fallback = generated.FallbackOccurred
		}
	}

	e.current.Conclusion = conclusion
	category := e.current.Category
	previous := e.current.Intensity
	avgLen := e.current.AverageResponseLength()

	e.state.AppendInteraction(e.current)
	e.current = nil
	e.dialogState = StateIdle

	need := e.state.ZPD.Need(category)
	hasNeed := need != scaffold.Medium
	next := e.fading.Next(category, previous, need, hasNeed, e.state.CurrentRound, avgLen)
	e.state.Intensities[category] = next

	if next > previous {
		metrics.IntensityFades.WithLabelValues("up").Inc()
	} else if next < previous {
		metrics.IntensityFades.WithLabelValues("down").Inc()
	}
	metrics.InteractionsConcluded.Inc()

	logger.Info("Interaction concluded",
		zap.String("session_id", e.state.ID),
		zap.Int("round", e.state.CurrentRound),
		zap.String("category", category.String()),
		zap.String("next_intensity", next.String()),
		zap.Float64("avg_response_length", avgLen),
	)

	outcome.Conclusion = conclusion
	return outcome
}

// personalizedConclusion asks the generator to tailor the closing
// statement to the learner's last reply. A disabled or failed generator
// yields nil and the template text stands.
func (e *Engine) personalizedConclusion(ctx context.Context, template string) *llm.Result {
	lastResponse := e.current.Responses[len(e.current.Responses)-1]

	prompt := "The learner just said: \"" + lastResponse + "\".\n" +
		"Rewrite this closing statement so it acknowledges what they said, keeping the same advice: \"" + template + "\""

	result := e.generator.Generate(ctx, prompt, llm.SystemMessageFor(e.current.Category))

	if result.FallbackOccurred {
		metrics.LLMFallbacksTotal.Inc()
	}
	if result.Text == "" {
		return nil
	}
	if result.ModelUsed == "" {
		metrics.LLMRequestsTotal.WithLabelValues("failed").Inc()
	} else {
		metrics.LLMRequestsTotal.WithLabelValues("ok").Inc()
	}
	return &result
}

// EvaluateEffectiveness scores each used category from reply engagement:
// 0.5 base, +0.1 when average reply length exceeds 100 characters, -0.1
// when it falls under 50, clamped to [0, 1].
func (e *Engine) EvaluateEffectiveness() *Outcome {
	scores := make(map[string]float64)

	if len(e.state.History) == 0 {
		return &Outcome{
			Status:  StatusSuccess,
			Message: "no interactions to evaluate",
			Scores:  scores,
		}
	}

	type bucket struct {
		totalLen  float64
		responses int
	}
	buckets := make(map[scaffold.Category]*bucket)

	for _, interaction := range e.state.History {
		b := buckets[interaction.Category]
		if b == nil {
			b = &bucket{}
			buckets[interaction.Category] = b
		}
		for _, r := range interaction.Responses {
			b.totalLen += float64(len(r))
			b.responses++
		}
	}

	overall := 0.0
	for category, b := range buckets {
		score := 0.5
		if b.responses > 0 {
			avg := b.totalLen / float64(b.responses)
			if avg > 100 {
				score += 0.1
			} else if avg < 50 {
				score -= 0.1
			}
		}
		if score > 1 {
			score = 1
		}
		if score < 0 {
			score = 0
		}
		scores[category.String()] = score
		overall += score
	}
	scores["overall"] = overall / float64(len(buckets))

	return &Outcome{Status: StatusSuccess, Scores: scores}
}
