package scaffold

import (
	"go.uber.org/zap"

	"github.com/cmap-scaffold/backend/pkg/logger"
)

// FadingPolicy gradually withdraws support as the session progresses.
// Intensity for a category never rises above what the ZPD estimate calls
// for, and never moves more than one step between rounds.
type FadingPolicy struct{}

func NewFadingPolicy() *FadingPolicy {
	return &FadingPolicy{}
}

// Next computes the intensity for the next use of a category. The round
// counter is the number of concluded interactions. avgReplyLen is the
// average learner reply length, in characters, for the round just
// concluded; zero means no replies were collected.
func (f *FadingPolicy) Next(c Category, current Intensity, need Intensity, hasNeed bool, round int, avgReplyLen float64) Intensity {
	candidate := current

	if hasNeed {
		if candidate > need {
			candidate = candidate.StepDown()
		}
	} else {
		if candidate == High && round >= 2 {
			candidate = Medium
		} else if candidate == Medium && round >= 3 {
			candidate = Low
		}
	}

	if avgReplyLen > 150 {
		candidate = candidate.StepDown()
	} else if avgReplyLen > 0 && avgReplyLen < 50 {
		candidate = candidate.StepUp()
	}

	candidate = clampStep(current, candidate)
	if hasNeed && candidate > need {
		candidate = need
	}

	if candidate != current {
		logger.Debug("Scaffolding intensity faded",
			zap.String("category", c.String()),
			zap.String("from", current.String()),
			zap.String("to", candidate.String()),
			zap.Int("round", round),
			zap.Float64("avg_reply_length", avgReplyLen),
		)
	}

	return candidate
}

// clampStep limits upward movement to one intensity step per round. The
// ZPD ceiling may still pull the result further down afterwards.
func clampStep(current, candidate Intensity) Intensity {
	if candidate > current+1 {
		return current + 1
	}
	return candidate
}
