package classify

import (
	"strings"
	"unicode"
)

var keyboardRows = []string{
	"qwertyuiop",
	"asdfghjkl",
	"zxcvbnm",
}

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// Short keyboard fragments that learners mash in sequence, e.g. qwe+asd+zxc.
var mashFragments = []string{
	"qwer", "asdf", "zxcv", "qwe", "asd", "zxc", "qaz", "wsx", "edc",
	"rfv", "tgb", "yhn", "ujm", "wasd",
}

// Real words that would otherwise trip the vowel-ratio heuristic.
var gibberishAllowList = map[string]bool{
	"why": true, "try": true, "fly": true, "my": true, "by": true,
	"gym": true, "shy": true, "dry": true, "cry": true, "ok": true,
	"no": true, "yes": true, "hi": true, "hey": true, "yo": true,
	"strength": true, "strengths": true, "lengths": true, "months": true,
	"depths": true, "widths": true, "fifths": true, "sixths": true,
	"prompts": true, "scripts": true, "crypts": true, "glyphs": true,
	"rhythm": true, "rhythms": true, "twelfth": true, "sphinx": true,
}

// isGibberish reports whether an utterance is nonsensical input. Several
// independent heuristics are OR'd per token; the utterance counts as
// gibberish only when every token trips at least one of them.
func isGibberish(lower string) bool {
	tokens := strings.Fields(lower)
	if len(tokens) == 0 {
		return false
	}
	for _, tok := range tokens {
		if !gibberishToken(tok) {
			return false
		}
	}
	return true
}

func gibberishToken(tok string) bool {
	if gibberishAllowList[tok] {
		return false
	}

	letters := make([]rune, 0, len(tok))
	hasDigit := false
	for _, r := range tok {
		switch {
		case unicode.IsLetter(r):
			letters = append(letters, r)
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if len(letters) == 0 {
		return true
	}
	if hasDigit {
		return true
	}

	word := string(letters)

	if longestRun(word) >= 4 {
		return true
	}
	if repeatedUnit(word) {
		return true
	}
	if blockRuns(word) {
		return true
	}
	if len(word) >= 3 && onKeyboardRow(word) {
		return true
	}
	if len(word) >= 5 && (strings.Contains(alphabet, word) || strings.Contains(reverse(alphabet), word)) {
		return true
	}
	if len(word) >= 4 && mashSequence(word) {
		return true
	}
	if len(word) >= 4 && vowelRatio(word) < 0.2 {
		return true
	}
	return false
}

func longestRun(word string) int {
	longest, current := 1, 1
	runes := []rune(word)
	for i := 1; i < len(runes); i++ {
		if runes[i] == runes[i-1] {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 1
		}
	}
	return longest
}

// repeatedUnit detects words built from one short unit repeated, like
// asdfasdfasdf or fjfjfjfj.
func repeatedUnit(word string) bool {
	n := len(word)
	for unit := 1; unit <= 4 && unit*2 <= n; unit++ {
		if n%unit != 0 {
			continue
		}
		prefix := word[:unit]
		matched := true
		for i := unit; i < n; i += unit {
			if word[i:i+unit] != prefix {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

// blockRuns detects words made of consecutive same-character blocks, like
// aaabbbccc.
func blockRuns(word string) bool {
	runes := []rune(word)
	if len(runes) < 6 {
		return false
	}
	blocks := 0
	i := 0
	for i < len(runes) {
		j := i
		for j < len(runes) && runes[j] == runes[i] {
			j++
		}
		if j-i < 3 {
			return false
		}
		blocks++
		i = j
	}
	return blocks >= 2
}

func onKeyboardRow(word string) bool {
	for _, row := range keyboardRows {
		if strings.Contains(row, word) || strings.Contains(reverse(row), word) {
			return true
		}
	}
	return false
}

// mashSequence checks whether the word is a concatenation of known
// keyboard fragments, like qweasdzxc or qazwsx.
func mashSequence(word string) bool {
	remaining := word
	for remaining != "" {
		matched := false
		for _, frag := range mashFragments {
			if strings.HasPrefix(remaining, frag) {
				remaining = remaining[len(frag):]
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func vowelRatio(word string) float64 {
	vowels := 0
	for _, r := range word {
		switch r {
		case 'a', 'e', 'i', 'o', 'u', 'y':
			vowels++
		}
	}
	return float64(vowels) / float64(len(word))
}

func reverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
