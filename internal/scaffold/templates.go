package scaffold

import (
	"go.uber.org/zap"

	"github.com/cmap-scaffold/backend/internal/metrics"
	"github.com/cmap-scaffold/backend/pkg/logger"
)

// Library holds the static prompt pool: main prompts keyed by category and
// intensity, plus follow-up and conclusion templates keyed by category.
// Placeholders use {name} syntax and are filled by the PromptEngine.
type Library struct {
	prompts     map[Category]map[Intensity][]string
	followUps   map[Category][]string
	conclusions map[Category][]string
	defaults    map[Category]string
}

func NewLibrary() *Library {
	return &Library{
		prompts:     defaultPrompts(),
		followUps:   defaultFollowUps(),
		conclusions: defaultConclusions(),
		defaults:    defaultFallbacks(),
	}
}

func (l *Library) Prompts(c Category, i Intensity) []string {
	byIntensity, ok := l.prompts[c]
	if !ok {
		return nil
	}
	return byIntensity[i]
}

func (l *Library) FollowUps(c Category) []string {
	return l.followUps[c]
}

func (l *Library) Conclusions(c Category) []string {
	return l.conclusions[c]
}

// Default returns the guaranteed non-empty fallback prompt for a category.
func (l *Library) Default(c Category) string {
	if d, ok := l.defaults[c]; ok {
		return d
	}
	return "Tell me more about how you are thinking about your map."
}

// UsageMemory tracks which template indexes have been used per bucket so
// the same phrasing is not repeated within a session. When a bucket is
// exhausted its memory resets and all templates become available again.
type UsageMemory struct {
	used map[string]map[int]bool
}

func NewUsageMemory() *UsageMemory {
	return &UsageMemory{used: make(map[string]map[int]bool)}
}

func bucketKey(c Category, i Intensity) string {
	return c.String() + "/" + i.String()
}

// Unused returns the indexes not yet used for a bucket of the given size.
// Exhaustion resets the bucket before returning.
func (u *UsageMemory) Unused(c Category, i Intensity, size int) []int {
	if size <= 0 {
		return nil
	}
	key := bucketKey(c, i)
	seen := u.used[key]

	unused := make([]int, 0, size)
	for idx := 0; idx < size; idx++ {
		if !seen[idx] {
			unused = append(unused, idx)
		}
	}

	if len(unused) == 0 {
		logger.Info("Template pool exhausted, resetting usage memory",
			zap.String("category", c.String()),
			zap.String("intensity", i.String()),
		)
		metrics.TemplateResetsTotal.WithLabelValues(c.String()).Inc()
		delete(u.used, key)
		for idx := 0; idx < size; idx++ {
			unused = append(unused, idx)
		}
	}
	return unused
}

func (u *UsageMemory) MarkUsed(c Category, i Intensity, index int) {
	key := bucketKey(c, i)
	if u.used[key] == nil {
		u.used[key] = make(map[int]bool)
	}
	u.used[key][index] = true
}

func defaultPrompts() map[Category]map[Intensity][]string {
	return map[Category]map[Intensity][]string{
		Strategic: {
			Low: {
				"What do you plan to work on next in your map?",
				"Is there a part of your map you want to revisit?",
				"{observation} What would you like to tackle first?",
			},
			Medium: {
				"{observation} What approach could help you organize these ideas?",
				"You have {node_count} concepts so far. How are you deciding which ones to connect?",
				"Looking at {concept}, what strategy are you using to decide what relates to it?",
			},
			High: {
				"{observation} A good next step is to pick one concept, such as {concept}, and ask yourself what causes it and what it leads to. Which connection will you draw first?",
				"Try working outward from {concept}: list two things it influences and add them as linked concepts. What would those be?",
				"Your map has {node_count} concepts and {edge_count} links. Focus on linking {concept} and {another_concept} before adding anything new. How are they related?",
			},
		},
		Metacognitive: {
			Low: {
				"How confident are you in your map so far?",
				"Does your map reflect what you currently understand?",
				"{observation} How do you feel about your progress?",
			},
			Medium: {
				"{observation} Which part of your map are you least sure about?",
				"If you explained {concept} to someone else, which link would be hardest to justify?",
				"What is still missing from your map that you know belongs there?",
			},
			High: {
				"{observation} Take a moment to check each link: can you say out loud why {concept} connects the way it does? Which link would you change?",
				"Compare what you know about this topic with what your map shows. Name one idea you understand but have not mapped yet.",
				"Go through your {edge_count} links one by one and mark any you are guessing about. Which one needs the most work?",
			},
		},
		Procedural: {
			Low: {
				"Are the mapping tools working for you?",
				"Do you need anything clarified about how to edit your map?",
				"{observation} Any questions about the mechanics of mapping?",
			},
			Medium: {
				"{observation} Remember you can label each arrow with a linking phrase. Which link would benefit from a label?",
				"Have you tried rephrasing the label between {concept} and {another_concept} so it reads as a sentence?",
				"You can reposition concepts to reduce crossing lines. Would grouping related concepts help?",
			},
			High: {
				"{observation} To label a link, select the arrow and type a verb phrase like 'leads to' or 'depends on'. Try that on the link from {concept}.",
				"Step by step: pick {concept}, draw an arrow to {another_concept}, then write a short phrase on the arrow saying how they relate. What phrase fits?",
				"Each of your {edge_count} arrows should read as a sentence: concept, linking phrase, concept. Pick one arrow and tell me the sentence it makes.",
			},
		},
		Conceptual: {
			Low: {
				"Is there a concept you have been meaning to add?",
				"{observation} Anything important still missing?",
				"Which idea from the material stands out to you most?",
			},
			Medium: {
				"{observation} What other concepts relate to {concept}?",
				"How does {concept} relate to {another_concept} in your map?",
				"You have {node_count} concepts. What causes or consequences of {concept} could you add?",
			},
			High: {
				"{observation} Think about {concept}: what are its causes, its effects, and any examples? Add the one you find most important and tell me why.",
				"A link between {concept} and {another_concept} seems relevant here. What relationship do you see between them?",
				"Your map covers {node_count} concepts, but consider the broader picture: what underlying factor connects {concept} with the rest of your map?",
			},
		},
	}
}

func defaultFollowUps() map[Category][]string {
	return map[Category][]string{
		Strategic: {
			"That sounds like a plan. What will you do after that?",
			"How will you know that approach is working?",
			"Which part of that plan will you start with?",
		},
		Metacognitive: {
			"What makes you say that?",
			"How sure are you about that part?",
			"How does that fit with the rest of your map?",
		},
		Procedural: {
			"Did that work the way you expected?",
			"Is there anything else about the tools you want to check?",
			"Would you like to try that on another part of your map?",
		},
		Conceptual: {
			"Can you say more about how those ideas connect?",
			"What example comes to mind for that?",
			"Does that change any of the links you already have?",
		},
	}
}

func defaultConclusions() map[Category][]string {
	return map[Category][]string{
		Strategic: {
			"Good work thinking through your approach. Carry that plan into your next round of mapping.",
			"You have a clearer strategy now. Apply it as you keep extending your map.",
		},
		Metacognitive: {
			"Nice reflection on what you know and what is still uncertain. Keep checking your links as you go.",
			"You identified where your understanding is solid and where it is not. That awareness will guide your next edits.",
		},
		Procedural: {
			"You have the mechanics down. Keep labeling your links so each one reads as a statement.",
			"Good, the tools should not get in your way now. Focus on the ideas next.",
		},
		Conceptual: {
			"You surfaced some important ideas in this exchange. Work them into your map next.",
			"Good thinking about how these concepts relate. Capture those relationships in your map.",
		},
	}
}

func defaultFallbacks() map[Category]string {
	return map[Category]string{
		Strategic:     "What would you like to work on next in your map?",
		Metacognitive: "How do you feel about your map so far?",
		Procedural:    "Is anything about the mapping tools unclear?",
		Conceptual:    "Which concept in your map would you like to explore further?",
	}
}
