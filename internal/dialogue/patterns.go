package dialogue

import (
	"fmt"

	"github.com/cmap-scaffold/backend/internal/classify"
	"github.com/cmap-scaffold/backend/internal/scaffold"
)

// patternResponse produces the fixed reply for a recognized interaction
// pattern. The reply keeps the current scaffolding category's framing so
// the redirect feels like part of the same conversation.
func (e *Engine) patternResponse(cls *classify.Classification) string {
	category := e.current.Category

	switch cls.Tag {
	case classify.TagEmptyInput:
		return pick(e.src,
			"I didn't catch anything there. "+refocus(category),
			"It looks like your message was empty. "+refocus(category),
		)

	case classify.TagMinimalInput:
		return pick(e.src,
			"Can you say a bit more? "+refocus(category),
			"I'd like to hear more of your thinking. "+refocus(category),
		)

	case classify.TagGibberish:
		return pick(e.src,
			"I couldn't make sense of that. "+refocus(category),
			"That didn't come through as words I recognize. "+refocus(category),
		)

	case classify.TagGreeting:
		return pick(e.src,
			"Hello! Let's look at your concept map together. "+refocus(category),
			"Hi there! "+refocus(category),
		)

	case classify.TagHelpSeeking:
		return helpResponse(category)

	case classify.TagReassuranceSeeking:
		return e.reassuranceResponse()

	case classify.TagDomainQuestion:
		return domainQuestionResponse(e.src, cls)

	case classify.TagSystemQuestion:
		return pick(e.src,
			"To edit your map: drag concepts to move them, draw arrows between them, and click an arrow to type its label. What were you trying to do?",
			"The toolbar lets you add concepts, draw links, and label them. Which step is giving you trouble?",
		)

	case classify.TagDisagreement:
		return disagreementResponse(e.src, cls.DisagreementKind)

	case classify.TagInappropriate:
		return "Let's keep this conversation focused on your learning. " + refocus(category)

	case classify.TagOffTopic:
		return pick(e.src,
			"That's a bit outside what we're working on. "+refocus(category),
			"Let's come back to your concept map. "+refocus(category),
		)

	case classify.TagFrustration:
		return pick(e.src,
			"This kind of task can be frustrating, and that's normal. Let's take it one small step at a time. "+refocus(category),
			"I hear you, this is challenging. Pick just one concept to work on and we'll go from there.",
		)

	case classify.TagPrematureEnding:
		return pick(e.src,
			"Before you wrap up, take one more look at your map: is there a connection you considered but didn't draw?",
			"Almost done! One last check: does every link say how the two concepts relate?",
		)

	case classify.TagIntentionWithoutAction:
		return pick(e.src,
			"That sounds like a good plan. Go ahead and add it to your map, then tell me what changed.",
			"Great intention. Make that change in the map now so we can build on it.",
		)

	case classify.TagConcreteIdea:
		return concreteIdeaResponse(e.src, cls)

	default:
		return refocus(category)
	}
}

// refocus is the category-specific re-engagement tail shared by most
// pattern responses.
func refocus(c scaffold.Category) string {
	switch c {
	case scaffold.Strategic:
		return "What part of your map do you plan to work on next?"
	case scaffold.Metacognitive:
		return "Which part of your map are you most confident about?"
	case scaffold.Procedural:
		return "Is there anything about the mapping tools I can clarify?"
	case scaffold.Conceptual:
		return "Which concept in your map would you like to think more about?"
	default:
		return "Let's get back to your concept map."
	}
}

func helpResponse(c scaffold.Category) string {
	switch c {
	case scaffold.Strategic:
		return "A good way to start: pick the concept you know best and ask what it causes and what causes it. Then draw those links. Which concept will you start with?"
	case scaffold.Metacognitive:
		return "Start by asking yourself what you already know about this topic. Which ideas feel solid? Put those on the map first and build outward."
	case scaffold.Procedural:
		return "Here's the basic loop: add a concept, draw an arrow to a related concept, and label the arrow with how they relate. Try that once and tell me how it goes."
	case scaffold.Conceptual:
		return "Think about the main ideas in the material: what are the key factors, and what do they lead to? Add the most important one you're missing. Which would that be?"
	default:
		return "Let's break the task down. What's the first thing you're unsure about?"
	}
}

// reassuranceResponse grounds encouragement in the actual state of the
// learner's map instead of empty praise.
func (e *Engine) reassuranceResponse() string {
	analysis := e.state.Analysis
	if analysis == nil {
		return "You're making progress. Keep building out your map and we'll review it together."
	}

	if len(analysis.IsolatedConcepts) > 0 {
		return fmt.Sprintf(
			"You're on the right track with %d concepts so far. One thing to look at: %s isn't connected to anything yet. How does it relate to the rest?",
			analysis.ConceptCount, analysis.IsolatedConcepts[0],
		)
	}
	if analysis.ConnectivityRatio >= 1.0 {
		return fmt.Sprintf(
			"Yes, your map is developing well: %d concepts with %d connections between them. What would you add next?",
			analysis.ConceptCount, analysis.RelationshipCount,
		)
	}
	return fmt.Sprintf(
		"You have a good base of %d concepts. The next step is drawing more connections between them, since there are only %d so far. Which two concepts belong together?",
		analysis.ConceptCount, analysis.RelationshipCount,
	)
}

// domainQuestionResponse redirects content questions back to the learner
// rather than answering them outright.
func domainQuestionResponse(src scaffold.Source, cls *classify.Classification) string {
	if len(cls.MentionedConcepts) > 0 {
		concept := cls.MentionedConcepts[0]
		return pick(src,
			fmt.Sprintf("Good question about %s. Instead of me answering, what do you already know about it? Start there and add it to your map.", concept),
			fmt.Sprintf("What's your current understanding of %s? Put your best guess on the map and we can refine it.", concept),
		)
	}
	return pick(src,
		"That's a question worth exploring yourself first. What does the material say about it?",
		"Good question. What's your own best answer, based on what you've read so far?",
	)
}

func disagreementResponse(src scaffold.Source, kind string) string {
	switch kind {
	case classify.DisagreementContent:
		return pick(src,
			"Fair enough, you may see something I don't. What evidence from the material supports your view?",
			"Okay, tell me what you think is actually the case, and how you'd show it in your map.",
		)
	case classify.DisagreementApproach:
		return pick(src,
			"That's fine, there's more than one way to build a map. What approach would work better for you?",
			"Sure, try it your way. What will you do first?",
		)
	default:
		return pick(src,
			"That's okay, you don't have to agree. What would you do differently?",
			"Fair enough. What's your take on it?",
		)
	}
}

func concreteIdeaResponse(src scaffold.Source, cls *classify.Classification) string {
	if len(cls.MentionedConcepts) > 0 {
		return fmt.Sprintf(
			"That's a solid idea involving %s. Add it to your map, and think about what else it might connect to.",
			cls.MentionedConcepts[0],
		)
	}
	return pick(src,
		"That's a concrete idea worth capturing. Put it on the map and see what it connects to.",
		"Good thinking. Add that to your map so we can build on it.",
	)
}

func pick(src scaffold.Source, options ...string) string {
	return options[src.Intn(len(options))]
}
