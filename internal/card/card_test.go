package card

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	c := Parse("king_of_hearts")
	assert.Equal(t, "king", c.Rank)
	assert.Equal(t, "hearts", c.Suit)
	assert.Equal(t, 10, c.Value())

	c = Parse("10_of_clubs")
	assert.Equal(t, "10", c.Rank)
	assert.Equal(t, 10, c.Value())

	assert.True(t, Parse("Ace_of_Spades").IsAce())
	assert.Equal(t, 1, Value("ace_of_spades"))
	assert.Equal(t, 7, Value("7_of_diamonds"))
	assert.Equal(t, 10, Value("queen_of_hearts2"))
	assert.Equal(t, 0, Value("red_joker"))
	assert.Equal(t, 0, Value("back"))
}

func TestStandardNames(t *testing.T) {
	names := StandardNames()
	assert.Len(t, names, 52)
	assert.Contains(t, names, "king_of_hearts")
	assert.Contains(t, names, "ace_of_clubs")

	seen := map[string]bool{}
	for _, n := range names {
		assert.False(t, seen[n], n)
		seen[n] = true
	}
}

func TestTotal(t *testing.T) {
	tests := []struct {
		name   string
		values []int
		want   int
	}{
		{"empty", nil, 0},
		{"blackjack", []int{1, 10}, 21},
		{"two aces and nine", []int{1, 1, 9}, 21},
		{"soft seventeen", []int{1, 6}, 17},
		{"hard ace", []int{1, 9, 5}, 15},
		{"four aces", []int{1, 1, 1, 1}, 14},
		{"bust", []int{10, 9, 5}, 24},
		{"unrecognized contributes zero", []int{0, 10, 0}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Total(tt.values))
		})
	}
}

func TestTotalOrderIndependent(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 200; i++ {
		n := 1 + r.IntN(6)
		values := make([]int, n)
		for j := range values {
			values[j] = 1 + r.IntN(10)
		}
		want := Total(values)
		shuffled := append([]int(nil), values...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, Total(shuffled), "%v vs %v", values, shuffled)
	}
}

func TestTotalIsBestSoftTotal(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 200; i++ {
		n := 1 + r.IntN(5)
		values := make([]int, n)
		hard, aces := 0, 0
		for j := range values {
			values[j] = 1 + r.IntN(10)
			hard += values[j]
			if values[j] == 1 {
				aces++
			}
		}
		if hard > BlackjackLimit {
			continue
		}
		best := hard
		for k := 0; k <= aces; k++ {
			if v := hard + 10*k; v <= BlackjackLimit && v > best {
				best = v
			}
		}
		assert.Equal(t, best, Total(values), "%v", values)
	}
}
