//go:build !production

package room

import (
	"github.com/palemoky/fourteen/internal/game/card"
)

// NewPlayingRoomForTest 构造一局指定牌面的对局，玩家按顺序入座，第一名为房主并先行动
func NewPlayingRoomForTest(code string, players []*Player, deck card.Deck, faceUp []card.Card) *Room {
	r := &Room{
		Code:    code,
		state:   RoomStatePlaying,
		players: players,
		deck:    deck,
		faceUp:  faceUp,
	}
	if len(players) > 0 {
		players[0].IsHost = true
		r.currentID = players[0].ID
	}
	return r
}

// SetDeckEmptyForTest 标记牌堆已空
func (r *Room) SetDeckEmptyForTest(empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.isDeckEmpty = empty
}

// AddRoomForTest 添加房间用于测试
func (rm *RoomManager) AddRoomForTest(room *Room) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.rooms[room.Code] = room
	for _, p := range room.players {
		rm.members[p.ID] = room.Code
	}
}

// FixedDeck 返回固定顺序的发牌来源
func FixedDeck(deck card.Deck) DeckSource {
	return func() card.Deck { return deck }
}
