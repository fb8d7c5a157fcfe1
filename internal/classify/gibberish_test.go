package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsGibberish(t *testing.T) {
	gibberish := []string{
		"asdf",
		"qwerty",
		"zxcvbnm",
		"asdfasdfasdf",
		"qweqweqwe",
		"aaaaa",
		"zzzzzzz",
		"fjfjfjfj",
		"dkdkdkdk",
		"bcdfgh",
		"xyzwrt",
		"qwrtpsdfgh",
		"!@#$%",
		"....",
		"???!!!",
		"a1b2c3d4",
		"1a2b3c4d",
		"123456789",
		"asdlkj123",
		"qwe!@#",
		"zxc123zxc",
		"dfghj",
		"poiuyt",
		"mnbvcx",
		"qazwsx",
		"abcdefg",
		"qweasdzxc",
		"123abc123abc",
		"aaabbbccc",
		"!@#qwe!@#",
		"asdf asdf asdf",
	}

	for _, input := range gibberish {
		assert.True(t, isGibberish(input), "expected gibberish: %q", input)
	}

	valid := []string{
		"why",
		"try",
		"fly",
		"i think amg is important",
		"the concept map shows relationships",
		"ok",
		"no",
		"hello",
		"supply and demand",
		"fed up with this",
		"strength",
		"glyphs",
		"rhythm",
		"months",
		"prompts",
	}

	for _, input := range valid {
		assert.False(t, isGibberish(input), "expected valid input: %q", input)
	}
}
