package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/palemoky/fourteen/internal/game/card"
	"github.com/palemoky/fourteen/internal/protocol"
	"github.com/palemoky/fourteen/internal/protocol/convert"
)

func infos(cards ...card.Card) []protocol.CardInfo {
	return convert.CardsToInfos(cards)
}

func TestChooseMove(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		hand      []protocol.CardInfo
		faceUp    []protocol.CardInfo
		opened    bool
		deckEmpty bool
		want      Decision
	}{
		{
			name: "highest scoring single card",
			hand: infos(
				card.Card{Suit: card.Heart, Rank: card.Rank9},
				card.Card{Suit: card.Spade, Rank: card.Rank3},
				card.Card{Suit: card.Diamond, Rank: card.Rank2},
			),
			faceUp: infos(
				card.Card{Suit: card.Club, Rank: card.Rank5},
				card.Card{Suit: card.Heart, Rank: card.RankJ},
			),
			want: Decision{HandIndices: []int{1}, FaceUpIndex: 1, Points: 7},
		},
		{
			name: "two cards once opened",
			hand: infos(
				card.Card{Suit: card.Club, Rank: card.Rank6},
				card.Card{Suit: card.Heart, Rank: card.Rank4},
				card.Card{Suit: card.Spade, Rank: card.RankA},
			),
			faceUp: infos(card.Card{Suit: card.Heart, Rank: card.Rank4}),
			opened: true,
			want:   Decision{HandIndices: []int{0, 1}, FaceUpIndex: 0, Points: 9},
		},
		{
			name: "two cards before opening",
			hand: infos(
				card.Card{Suit: card.Club, Rank: card.Rank6},
				card.Card{Suit: card.Heart, Rank: card.Rank4},
			),
			faceUp: infos(card.Card{Suit: card.Heart, Rank: card.Rank4}),
			want:   Decision{Pass: true},
		},
		{
			name: "two cards after deck empty",
			hand: infos(
				card.Card{Suit: card.Club, Rank: card.Rank6},
				card.Card{Suit: card.Heart, Rank: card.Rank4},
			),
			faceUp:    infos(card.Card{Suit: card.Heart, Rank: card.Rank4}),
			opened:    true,
			deckEmpty: true,
			want:      Decision{Pass: true},
		},
		{
			name:   "joker counts five",
			hand:   infos(card.Card{Suit: card.Joker, Rank: card.RankSmallJoker}),
			faceUp: infos(card.Card{Suit: card.Heart, Rank: card.Rank9}),
			want:   Decision{HandIndices: []int{0}, FaceUpIndex: 0, Points: 9},
		},
		{
			name: "single beats cheaper pair",
			hand: infos(
				card.Card{Suit: card.Heart, Rank: card.RankK},
				card.Card{Suit: card.Club, Rank: card.Rank6},
				card.Card{Suit: card.Club, Rank: card.Rank7},
			),
			faceUp: infos(card.Card{Suit: card.Heart, Rank: card.RankA}),
			opened: true,
			want:   Decision{HandIndices: []int{0}, FaceUpIndex: 0, Points: 8},
		},
		{
			name:   "nothing sums to fourteen",
			hand:   infos(card.Card{Suit: card.Heart, Rank: card.Rank2}),
			faceUp: infos(card.Card{Suit: card.Heart, Rank: card.Rank3}),
			opened: true,
			want:   Decision{Pass: true},
		},
		{
			name:   "empty hand",
			faceUp: infos(card.Card{Suit: card.Heart, Rank: card.Rank3}),
			want:   Decision{Pass: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ChooseMove(tt.hand, tt.faceUp, tt.opened, tt.deckEmpty))
		})
	}
}

func TestDefaultName(t *testing.T) {
	t.Parallel()

	name := DefaultName()
	assert.Contains(t, name, "机器人-")
	assert.NotEqual(t, name, DefaultName())
}
