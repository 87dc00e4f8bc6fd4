package game

import (
	"math/rand/v2"
	"sync"
)

// Palette holds the card faces; a card's PairID is its face's position here.
var Palette = [...]string{"🦊", "🐻", "🦁", "🐸", "🦉", "🐙"}

// DeckSize is the number of cards on one board.
const DeckSize = 2 * len(Palette)

// Card is one position on a player's board.
type Card struct {
	Index  int
	Emoji  string
	PairID int
}

// Deck is a player's private board.
type Deck [DeckSize]Card

// Rand is the randomness source used for shuffling. Implementations must be
// safe for concurrent use.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand uses the math/rand/v2 top-level source.
var DefaultRand Rand = globalRand{}

type seededRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (s *seededRand) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}

// NewSeededRand returns a deterministic Rand, mostly useful in tests.
func NewSeededRand(seed uint64) Rand {
	return &seededRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewDeck deals a freshly shuffled board: every palette face twice, each
// card's Index set to its final position.
func NewDeck(r Rand) Deck {
	if r == nil {
		r = DefaultRand
	}
	var deck Deck
	for i, emoji := range Palette {
		deck[2*i] = Card{Emoji: emoji, PairID: i}
		deck[2*i+1] = Card{Emoji: emoji, PairID: i}
	}
	shuffleCards(deck[:], r)
	for i := range deck {
		deck[i].Index = i
	}
	return deck
}

// shuffleCards is a Fisher–Yates shuffle over the whole slice.
func shuffleCards(cards []Card, r Rand) {
	for i := len(cards) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// shuffleUnmatched redistributes the faces of the cards that are not in
// matched among their own positions. Indices and matched cards do not move.
func shuffleUnmatched(deck *Deck, matched map[int]bool, r Rand) {
	positions := make([]int, 0, DeckSize)
	faces := make([]Card, 0, DeckSize)
	for i, card := range deck {
		if matched[i] {
			continue
		}
		positions = append(positions, i)
		faces = append(faces, card)
	}
	shuffleCards(faces, r)
	for k, pos := range positions {
		deck[pos] = Card{Index: pos, Emoji: faces[k].Emoji, PairID: faces[k].PairID}
	}
}
