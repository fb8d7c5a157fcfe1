package classify

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/cmap-scaffold/backend/internal/cmap"
	"github.com/cmap-scaffold/backend/pkg/logger"
)

// Tag is the primary interaction pattern assigned to one utterance.
type Tag string

const (
	TagEmptyInput             Tag = "empty_input"
	TagMinimalInput           Tag = "minimal_input"
	TagGibberish              Tag = "gibberish"
	TagGreeting               Tag = "greeting"
	TagHelpSeeking            Tag = "help_seeking"
	TagReassuranceSeeking     Tag = "reassurance_seeking"
	TagDomainQuestion         Tag = "domain_question"
	TagSystemQuestion         Tag = "system_question"
	TagDisagreement           Tag = "disagreement"
	TagInappropriate          Tag = "inappropriate_language"
	TagOffTopic               Tag = "off_topic"
	TagFrustration            Tag = "frustration"
	TagPrematureEnding        Tag = "premature_ending"
	TagConfusion              Tag = "confusion"
	TagIntentionWithoutAction Tag = "intention_without_action"
	TagConcreteIdea           Tag = "concrete_idea"
	TagQuestion               Tag = "question"
	TagStatement              Tag = "statement"
)

// Disagreement sub-kinds.
const (
	DisagreementContent  = "content"
	DisagreementApproach = "approach"
	DisagreementGeneral  = "general"
)

// Classification is the per-utterance routing record. Computed fresh for
// every turn, never persisted beyond the turn's decision.
type Classification struct {
	Tag                     Tag
	DisagreementKind        string
	Confused                bool
	RequiresPatternResponse bool
	MentionedConcepts       []string
	KeyPhrases              []string
}

var (
	helpSeekingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bwhat (should|do|can) i do\b`),
		regexp.MustCompile(`(?i)\bwhere (is|do i find) the task\b`),
		regexp.MustCompile(`(?i)\bi need help\b`),
		regexp.MustCompile(`(?i)\b(help me|can you help)\b`),
		regexp.MustCompile(`(?i)\bwhat am i supposed to\b`),
		regexp.MustCompile(`(?i)\bi don'?t know (what|where|how) to\b`),
	}

	reassurancePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bhow am i doing\b`),
		regexp.MustCompile(`(?i)\bis (this|that|it) (good|right|ok|okay|correct)\b`),
		regexp.MustCompile(`(?i)\bam i on the right track\b`),
		regexp.MustCompile(`(?i)\bdoes (this|that|my map) look (good|right|ok|okay)\b`),
		regexp.MustCompile(`(?i)\bdid i do (this|that|it) (right|correctly)\b`),
	}

	intentionPattern = regexp.MustCompile(`(?i)\bi (can|could|should|will|would|might) (add|include|connect|link|put|draw|label)\b`)

	concreteIdeaPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(leads to|depends on|results in|is caused by|relates to|connects to|influences|affects)\b`),
		regexp.MustCompile(`(?i)\bbecause\b`),
		regexp.MustCompile(`(?i)\bi (added|connected|linked|labeled)\b`),
		regexp.MustCompile(`(?i)\bthe relationship between\b`),
	}
)

var (
	// Closed list of throwaway acknowledgements, all two runes or fewer.
	minimalInputs = map[string]bool{
		"ok": true, "k": true, "ya": true, "ye": true, "y": true, "n": true,
		"hm": true, "mm": true, "mh": true, "na": true,
	}

	greetingWords = []string{"hi", "hello", "hey", "good morning", "good afternoon", "good evening", "greetings"}

	interfaceKeywords = []string{
		"button", "click", "save", "undo", "redo", "delete", "drag",
		"interface", "tool", "screen", "export", "zoom", "menu", "mouse",
	}

	disagreementKeywords = []string{
		"i disagree", "i don't agree", "i dont agree", "i don't think",
		"i dont think", "that's wrong", "thats wrong", "that's not right",
		"thats not right", "not true", "incorrect",
	}

	contentDisagreementKeywords  = []string{"wrong", "incorrect", "not true", "false", "mistaken"}
	approachDisagreementKeywords = []string{"approach", "method", "way", "strategy", "instead", "rather", "differently"}

	profanity = []string{"fuck", "shit", "bitch", "asshole", "bastard", "dumbass", "stupid idiot"}

	offTopicKeywords = []string{
		"weather", "lunch", "dinner", "movie", "football", "soccer",
		"weekend", "party", "netflix", "instagram", "tiktok", "pizza",
		"video game", "vacation",
	}

	frustrationKeywords = []string{
		"frustrat", "annoying", "annoyed", "sick of", "fed up",
		"waste of time", "hate this", "pointless", "give up", "ugh",
		"this is stupid", "so hard", "impossible",
	}

	endingPhrases = []string{
		"i'm done", "im done", "i am done", "that's all", "thats all",
		"that's it", "thats it", "nothing else", "no more", "finished",
		"i'm finished", "im finished",
	}

	confusionKeywords = []string{
		"confused", "confusing", "don't understand", "dont understand",
		"don't get", "dont get", "unclear", "makes no sense",
		"not sure what you mean", "what do you mean", "lost",
	}

	interrogatives = []string{"what", "why", "how", "when", "where", "who", "which", "is", "are", "do", "does", "can", "could", "should", "would"}
)

// Classifier assigns interaction-pattern tags with a fixed precedence:
// the first rule that matches wins. Domain keywords extend the built-in
// set so topic-specific terms count as on-topic.
type Classifier struct {
	domainKeywords []string
	extractor      *Extractor
}

func NewClassifier(domainKeywords []string) *Classifier {
	base := []string{
		"concept", "relationship", "link", "connection", "map", "node",
		"cause", "effect", "factor", "amg",
	}
	return &Classifier{
		domainKeywords: append(base, domainKeywords...),
		extractor:      NewExtractor(),
	}
}

// Classify tags one utterance. The current map, when present, contributes
// its concept labels both as domain vocabulary and as extraction targets.
func (c *Classifier) Classify(text string, m *cmap.Map) *Classification {
	result := &Classification{
		MentionedConcepts: []string{},
		KeyPhrases:        []string{},
	}

	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	result.Confused = containsAny(lower, confusionKeywords)
	result.Tag = c.classify(trimmed, lower, m)
	if result.Tag == TagDisagreement {
		result.DisagreementKind = disagreementKind(lower)
	}
	result.RequiresPatternResponse = requiresPatternResponse(result.Tag)

	if trimmed != "" && result.Tag != TagGibberish {
		result.MentionedConcepts = c.extractor.MentionedConcepts(trimmed, m)
		result.KeyPhrases = c.extractor.KeyPhrases(trimmed)
	}

	logger.Debug("Learner response classified",
		zap.String("tag", string(result.Tag)),
		zap.Bool("requires_pattern_response", result.RequiresPatternResponse),
		zap.Int("mentioned_concepts", len(result.MentionedConcepts)),
	)

	return result
}

// utterance carries the derived features shared by the rules, computed
// once per classification.
type utterance struct {
	trimmed     string
	lower       string
	hasQuestion bool
	domainHits  int
}

type rule struct {
	tag   Tag
	match func(u *utterance) bool
}

// rules is the precedence order: the first match wins. TagStatement at
// the end is the unconditional catch-all.
var rules = []rule{
	{TagEmptyInput, func(u *utterance) bool {
		return u.trimmed == ""
	}},
	{TagMinimalInput, func(u *utterance) bool {
		return len([]rune(u.lower)) <= 2 && minimalInputs[u.lower]
	}},
	{TagGibberish, func(u *utterance) bool {
		return isGibberish(u.lower)
	}},
	{TagGreeting, func(u *utterance) bool {
		return isGreeting(u.lower)
	}},
	{TagHelpSeeking, func(u *utterance) bool {
		return matchesAny(u.lower, helpSeekingPatterns)
	}},
	{TagReassuranceSeeking, func(u *utterance) bool {
		return matchesAny(u.lower, reassurancePatterns)
	}},
	{TagDomainQuestion, func(u *utterance) bool {
		return u.hasQuestion && u.domainHits > 0
	}},
	{TagSystemQuestion, func(u *utterance) bool {
		return u.hasQuestion && containsAny(u.lower, interfaceKeywords)
	}},
	{TagDisagreement, func(u *utterance) bool {
		return u.lower == "no" || u.lower == "nope" || u.lower == "nah" ||
			strings.HasPrefix(u.lower, "no,") || containsAny(u.lower, disagreementKeywords)
	}},
	{TagInappropriate, func(u *utterance) bool {
		return containsAny(u.lower, profanity)
	}},
	{TagOffTopic, func(u *utterance) bool {
		return countHits(u.lower, offTopicKeywords) > 0 && u.domainHits == 0
	}},
	{TagFrustration, func(u *utterance) bool {
		return containsAny(u.lower, frustrationKeywords)
	}},
	{TagPrematureEnding, func(u *utterance) bool {
		return containsAny(u.lower, endingPhrases) && len(u.trimmed) < 50
	}},
	{TagConfusion, func(u *utterance) bool {
		return containsAny(u.lower, confusionKeywords)
	}},
	{TagIntentionWithoutAction, func(u *utterance) bool {
		return intentionPattern.MatchString(u.trimmed) && len(u.trimmed) < 60
	}},
	{TagConcreteIdea, func(u *utterance) bool {
		return matchesAny(u.lower, concreteIdeaPatterns) && len(u.trimmed) > 20
	}},
	{TagQuestion, func(u *utterance) bool {
		return u.hasQuestion || startsWithInterrogative(u.lower)
	}},
	{TagStatement, func(u *utterance) bool {
		return true
	}},
}

func (c *Classifier) classify(trimmed, lower string, m *cmap.Map) Tag {
	u := &utterance{
		trimmed:     trimmed,
		lower:       lower,
		hasQuestion: strings.Contains(trimmed, "?"),
		domainHits:  c.countDomainHits(lower, m),
	}
	for _, r := range rules {
		if r.match(u) {
			return r.tag
		}
	}
	return TagStatement
}

func (c *Classifier) countDomainHits(lower string, m *cmap.Map) int {
	hits := countHits(lower, c.domainKeywords)
	if m != nil {
		for _, label := range m.ConceptLabels() {
			if label != "" && strings.Contains(lower, strings.ToLower(label)) {
				hits++
			}
		}
	}
	return hits
}

func requiresPatternResponse(tag Tag) bool {
	switch tag {
	case TagStatement, TagQuestion, TagConfusion:
		return false
	default:
		return true
	}
}

func disagreementKind(lower string) string {
	if containsAny(lower, contentDisagreementKeywords) {
		return DisagreementContent
	}
	if containsAny(lower, approachDisagreementKeywords) {
		return DisagreementApproach
	}
	return DisagreementGeneral
}

func isGreeting(lower string) bool {
	if len(lower) > 30 {
		return false
	}
	cleaned := strings.Trim(lower, " !.,")
	for _, g := range greetingWords {
		if cleaned == g || strings.HasPrefix(cleaned, g+" ") || strings.HasPrefix(cleaned, g+",") {
			return true
		}
	}
	return false
}

func startsWithInterrogative(lower string) bool {
	fields := strings.Fields(lower)
	if len(fields) == 0 {
		return false
	}
	first := strings.Trim(fields[0], ",.!?")
	for _, w := range interrogatives {
		if first == w {
			return true
		}
	}
	return false
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func countHits(text string, needles []string) int {
	hits := 0
	for _, n := range needles {
		if strings.Contains(text, n) {
			hits++
		}
	}
	return hits
}

func matchesAny(text string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
