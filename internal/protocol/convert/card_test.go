package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/fourteen/internal/game/card"
	"github.com/palemoky/fourteen/internal/protocol"
)

func TestCardToInfo(t *testing.T) {
	t.Parallel()

	info := CardToInfo(card.Card{Suit: card.Diamond, Rank: card.RankQ})
	assert.Equal(t, protocol.CardInfo{ID: "diamonds-Q", Suit: "diamonds", Rank: "Q", Value: 12, Points: 2}, info)

	joker := CardToInfo(card.Card{Suit: card.Joker, Rank: card.RankBigJoker})
	assert.Equal(t, "joker-big", joker.ID)
	assert.Equal(t, card.JokerValue, joker.Value)
	assert.Equal(t, 5, joker.Points)
}

func TestCardsRoundTrip(t *testing.T) {
	t.Parallel()

	originals := []card.Card{
		{Suit: card.Spade, Rank: card.Rank(3)},
		{Suit: card.Heart, Rank: card.RankA},
		{Suit: card.Joker, Rank: card.RankSmallJoker},
	}

	results, err := InfosToCards(CardsToInfos(originals))
	require.NoError(t, err)
	assert.Equal(t, originals, results)
}

func TestInfosToCards_InvalidID(t *testing.T) {
	t.Parallel()

	_, err := InfosToCards([]protocol.CardInfo{{ID: "stars-7"}})
	assert.Error(t, err)
}

func TestEmptyCards(t *testing.T) {
	t.Parallel()

	assert.Empty(t, CardsToInfos([]card.Card{}))

	cards, err := InfosToCards([]protocol.CardInfo{})
	require.NoError(t, err)
	assert.Empty(t, cards)
}
