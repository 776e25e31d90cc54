// Package game runs blackjack rounds over card images. Hand values are
// recomputed by recognizing each card image, never from a stored rank.
package game

import (
	"errors"
	"image"
	"log/slog"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/arcanaland/cardsight/internal/card"
	"github.com/arcanaland/cardsight/internal/match"
)

var (
	ErrDeckExhausted = errors.New("not enough cards left in the pool")
	ErrNoRound       = errors.New("no round in progress")
	ErrNotPlayerTurn = errors.New("player turn is over")
)

// DealerStand is the total at which the dealer stops drawing
const DealerStand = 17

// Status texts shown to the player
const (
	StatusMove       = "Your move: hit or stand"
	StatusBust       = "Bust! Dealer wins."
	StatusDealerBust = "Dealer busts! Player wins."
	StatusPlayerWins = "Player wins!"
	StatusDealerWins = "Dealer wins!"
	StatusPush       = "Push!"
	StatusExhausted  = "No cards left! Restart the game."
)

// Phase is the state of the game
type Phase int

const (
	AwaitingStart Phase = iota
	PlayerTurn
	DealerTurn
	Resolved
)

func (p Phase) String() string {
	switch p {
	case AwaitingStart:
		return "awaiting start"
	case PlayerTurn:
		return "player turn"
	case DealerTurn:
		return "dealer turn"
	case Resolved:
		return "resolved"
	}
	return "unknown"
}

// Result is the outcome of a round from the player's side
type Result int

const (
	Undetermined Result = iota
	Win
	Lose
	Draw
)

func (r Result) String() string {
	switch r {
	case Win:
		return "win"
	case Lose:
		return "lose"
	case Draw:
		return "draw"
	}
	return "undetermined"
}

// Slot indexes a card image in the game's arena
type Slot int

// Hand holds slots in draw order
type Hand []Slot

// Round is one deal-to-resolution cycle
type Round struct {
	ID     string
	Player Hand
	Dealer Hand
	// PlayerDone is set once the player stands or busts.
	PlayerDone bool
	// DealerHidden is set until the dealer's turn reveals the first card.
	DealerHidden bool
	Result       Result
	Status       string
}

// Recognizer identifies a card image
type Recognizer interface {
	Match(img image.Image) (match.Result, bool)
}

// Shuffler permutes n elements through swap, like rand.Shuffle
type Shuffler func(n int, swap func(i, j int))

// Game owns the card arena, the draw pool and the current round
type Game struct {
	cards   []image.Image
	pool    []Slot
	round   *Round
	phase   Phase
	rec     Recognizer
	shuffle Shuffler
	memoize bool
	known   map[Slot]string
	logger  *slog.Logger
}

// Option configures a Game
type Option func(*Game)

// WithShuffler replaces the pool shuffle
func WithShuffler(s Shuffler) Option {
	return func(g *Game) {
		g.shuffle = s
	}
}

// WithMemoize caches each slot's identity after its first successful match
func WithMemoize(enabled bool) Option {
	return func(g *Game) {
		g.memoize = enabled
	}
}

// WithLogger sets the logger used for round events
func WithLogger(l *slog.Logger) Option {
	return func(g *Game) {
		g.logger = l
	}
}

// New creates a game over images. Every image gets its own slot, so
// pixel-identical images remain distinct cards.
func New(images []image.Image, rec Recognizer, opts ...Option) *Game {
	g := &Game{
		cards:   append([]image.Image(nil), images...),
		rec:     rec,
		shuffle: rand.Shuffle,
		known:   make(map[Slot]string),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.pool = make([]Slot, len(g.cards))
	for i := range g.pool {
		g.pool[i] = Slot(i)
	}
	return g
}

// StartRound shuffles the pool and deals two cards each to player and
// dealer, alternating and starting with the player. With fewer than four
// cards left it returns ErrDeckExhausted and changes nothing.
func (g *Game) StartRound() error {
	if len(g.pool) < 4 {
		g.logger.Info("cannot start round", "remaining", len(g.pool))
		return ErrDeckExhausted
	}

	g.shuffle(len(g.pool), func(i, j int) {
		g.pool[i], g.pool[j] = g.pool[j], g.pool[i]
	})

	r := &Round{ID: uuid.NewString(), DealerHidden: true, Status: StatusMove}
	for i := 0; i < 2; i++ {
		r.Player = append(r.Player, g.draw())
		r.Dealer = append(r.Dealer, g.draw())
	}
	g.round = r
	g.phase = PlayerTurn

	g.logger.Info("round started",
		"round", r.ID,
		"player", g.HandValue(r.Player),
		"remaining", len(g.pool))
	return nil
}

// Hit draws a card for the player. alive is false once the player's total
// exceeds 21; the round is then lost and the dealer does not play. alive
// only describes the player's hand when err is nil: after a bust or a
// stand Hit returns ErrNotPlayerTurn and leaves the round untouched.
func (g *Game) Hit() (alive bool, err error) {
	if g.round == nil {
		return false, ErrNoRound
	}
	if g.phase != PlayerTurn {
		return false, ErrNotPlayerTurn
	}
	if len(g.pool) == 0 {
		return true, ErrDeckExhausted
	}

	r := g.round
	r.Player = append(r.Player, g.draw())
	total := g.HandValue(r.Player)
	g.logger.Debug("player hits", "round", r.ID, "total", total)

	if total > card.BlackjackLimit {
		r.PlayerDone = true
		g.resolve(Lose, StatusBust)
		return false, nil
	}
	return true, nil
}

// Stand ends the player's turn and plays the dealer's turn to resolution
func (g *Game) Stand() error {
	if g.round == nil {
		return ErrNoRound
	}
	if g.phase != PlayerTurn {
		return ErrNotPlayerTurn
	}
	g.round.PlayerDone = true
	g.phase = DealerTurn
	g.dealerTurn()
	return nil
}

// dealerTurn reveals the hidden card and draws below 17. An empty pool
// makes the dealer stand on the current total.
func (g *Game) dealerTurn() {
	r := g.round
	r.DealerHidden = false

	for g.HandValue(r.Dealer) < DealerStand {
		if len(g.pool) == 0 {
			g.logger.Warn("pool exhausted during dealer turn", "round", r.ID)
			break
		}
		r.Dealer = append(r.Dealer, g.draw())
		if g.HandValue(r.Dealer) > card.BlackjackLimit {
			g.resolve(Win, StatusDealerBust)
			return
		}
	}
	g.determineWinner()
}

func (g *Game) determineWinner() {
	player := g.HandValue(g.round.Player)
	dealer := g.HandValue(g.round.Dealer)
	switch {
	case player > card.BlackjackLimit:
		g.resolve(Lose, StatusBust)
	case dealer > card.BlackjackLimit:
		g.resolve(Win, StatusDealerBust)
	case player > dealer:
		g.resolve(Win, StatusPlayerWins)
	case player < dealer:
		g.resolve(Lose, StatusDealerWins)
	default:
		g.resolve(Draw, StatusPush)
	}
}

func (g *Game) resolve(res Result, status string) {
	g.round.Result = res
	g.round.Status = status
	g.phase = Resolved
	g.logger.Info("round resolved",
		"round", g.round.ID,
		"result", res.String(),
		"player", g.HandValue(g.round.Player),
		"dealer", g.HandValue(g.round.Dealer))
}

// draw takes the top slot off the pool
func (g *Game) draw() Slot {
	s := g.pool[0]
	g.pool = g.pool[1:]
	return s
}

// HandValue recognizes every card in h and returns the best blackjack
// total. Unrecognized cards count as zero.
func (g *Game) HandValue(h Hand) int {
	values := make([]int, 0, len(h))
	for _, s := range h {
		name, ok := g.identify(s)
		if !ok {
			values = append(values, 0)
			continue
		}
		values = append(values, card.Value(name))
	}
	return card.Total(values)
}

func (g *Game) identify(s Slot) (string, bool) {
	if name, ok := g.known[s]; ok {
		return name, true
	}
	res, ok := g.rec.Match(g.cards[s])
	if !ok {
		g.logger.Debug("no match for hand card", "slot", int(s))
		return "", false
	}
	if g.memoize {
		g.known[s] = res.Name
	}
	return res.Name, true
}

// Status returns the text describing the current round
func (g *Game) Status() string {
	if g.round == nil {
		return ""
	}
	return g.round.Status
}

// Round returns the current round, nil before the first deal. Callers
// must not modify it.
func (g *Game) Round() *Round {
	return g.round
}

// Phase returns the game's state
func (g *Game) Phase() Phase {
	return g.phase
}

// Remaining returns the number of cards left in the pool
func (g *Game) Remaining() int {
	return len(g.pool)
}

// Pool returns a copy of the slots left in the pool, top first
func (g *Game) Pool() []Slot {
	return append([]Slot(nil), g.pool...)
}

// Image returns the card image in slot s
func (g *Game) Image(s Slot) image.Image {
	return g.cards[s]
}

// Images returns the card images of h in draw order
func (g *Game) Images(h Hand) []image.Image {
	out := make([]image.Image, len(h))
	for i, s := range h {
		out[i] = g.cards[s]
	}
	return out
}
