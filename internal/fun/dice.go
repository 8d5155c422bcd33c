package fun

import (
	"fmt"
	"math/rand"
)

// Roll rolls count dice with the given number of sides and returns the
// individual results. Count and sides are clamped to sane bounds so a
// command argument can never allocate absurdly.
func Roll(rng *rand.Rand, count, sides int) []int {
	if count < 1 {
		count = 1
	}
	if count > 20 {
		count = 20
	}
	if sides < 2 {
		sides = 6
	}
	if sides > 1000 {
		sides = 1000
	}
	out := make([]int, count)
	for i := range out {
		out[i] = rng.Intn(sides) + 1
	}
	return out
}

// Flip returns "heads" or "tails".
func Flip(rng *rand.Rand) string {
	if rng.Intn(2) == 0 {
		return "heads"
	}
	return "tails"
}

var eightBallAnswers = []string{
	"It is certain.",
	"Without a doubt.",
	"Most likely.",
	"Signs point to yes.",
	"Reply hazy, try again.",
	"Ask again later.",
	"Don't count on it.",
	"My sources say no.",
	"Very doubtful.",
	"Outlook not so good.",
}

// EightBall answers a yes/no question with classic magic-8-ball wisdom.
func EightBall(rng *rand.Rand) string {
	return eightBallAnswers[rng.Intn(len(eightBallAnswers))]
}

// Format helpers shared by the command layer.

// FormatRoll renders roll results as "3 + 5 = 8" or a single value.
func FormatRoll(results []int) string {
	if len(results) == 1 {
		return fmt.Sprintf("%d", results[0])
	}
	sum := 0
	s := ""
	for i, r := range results {
		if i > 0 {
			s += " + "
		}
		s += fmt.Sprintf("%d", r)
		sum += r
	}
	return fmt.Sprintf("%s = %d", s, sum)
}
