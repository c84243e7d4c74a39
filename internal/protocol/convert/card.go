package convert

import (
	"github.com/palemoky/fourteen/internal/game/card"
	"github.com/palemoky/fourteen/internal/protocol"
)

// CardToInfo 将 card.Card 转换为 protocol.CardInfo
func CardToInfo(c card.Card) protocol.CardInfo {
	return protocol.CardInfo{
		ID:     c.ID(),
		Suit:   c.Suit.String(),
		Rank:   c.Rank.String(),
		Value:  c.Value(),
		Points: c.Points(),
	}
}

// CardsToInfos 将 []card.Card 转换为 []protocol.CardInfo
func CardsToInfos(cards []card.Card) []protocol.CardInfo {
	infos := make([]protocol.CardInfo, len(cards))
	for i, c := range cards {
		infos[i] = CardToInfo(c)
	}
	return infos
}

// InfoToCard 将 protocol.CardInfo 还原为 card.Card，以 ID 为准
func InfoToCard(info protocol.CardInfo) (card.Card, error) {
	return card.ParseID(info.ID)
}

// InfosToCards 将 []protocol.CardInfo 还原为 []card.Card
func InfosToCards(infos []protocol.CardInfo) ([]card.Card, error) {
	cards := make([]card.Card, len(infos))
	for i, info := range infos {
		c, err := InfoToCard(info)
		if err != nil {
			return nil, err
		}
		cards[i] = c
	}
	return cards, nil
}
