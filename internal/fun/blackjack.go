// Package fun holds the stateless game helpers behind the lighter
// commands: dice, coin flips, the eight ball, and a one-round blackjack
// hand against a dealer.
package fun

import (
	"fmt"
	"math/rand"
	"strings"
)

// Card ranks. Suits do not matter for hand value.
var ranks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

// HandValue computes the blackjack value of a hand. Aces count 11 until
// the hand would bust, then drop to 1 one at a time.
func HandValue(hand []string) int {
	total := 0
	aces := 0
	for _, r := range hand {
		switch r {
		case "A":
			total += 11
			aces++
		case "J", "Q", "K", "10":
			total += 10
		default:
			// Ranks 2-9; invalid ranks count zero rather than panic,
			// hands only ever come from Draw.
			for v := 2; v <= 9; v++ {
				if r == fmt.Sprint(v) {
					total += v
				}
			}
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// Draw returns n random card ranks from an infinite shoe.
func Draw(rng *rand.Rand, n int) []string {
	hand := make([]string, n)
	for i := range hand {
		hand[i] = ranks[rng.Intn(len(ranks))]
	}
	return hand
}

// Outcome of one blackjack round.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLose Outcome = "lose"
	OutcomePush Outcome = "push"
)

// Round is a finished one-round game: player draws two cards and stands,
// dealer draws to 17.
type Round struct {
	Player      []string
	Dealer      []string
	PlayerValue int
	DealerValue int
	Result      Outcome
}

// Play deals one round. The rng is injected so tests are deterministic.
func Play(rng *rand.Rand) Round {
	player := Draw(rng, 2)
	dealer := Draw(rng, 2)
	for HandValue(dealer) < 17 {
		dealer = append(dealer, Draw(rng, 1)...)
	}

	r := Round{
		Player:      player,
		Dealer:      dealer,
		PlayerValue: HandValue(player),
		DealerValue: HandValue(dealer),
	}
	switch {
	case r.DealerValue > 21 || r.PlayerValue > r.DealerValue:
		r.Result = OutcomeWin
	case r.PlayerValue < r.DealerValue:
		r.Result = OutcomeLose
	default:
		r.Result = OutcomePush
	}
	return r
}

// String renders a round for a chat reply.
func (r Round) String() string {
	return fmt.Sprintf("Your hand: %s (%d) | Dealer: %s (%d) — %s",
		strings.Join(r.Player, " "), r.PlayerValue,
		strings.Join(r.Dealer, " "), r.DealerValue,
		r.Result)
}
