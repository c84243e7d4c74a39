package room

import (
	"slices"
	"sync"
	"time"

	"github.com/palemoky/fourteen/internal/apperrors"
	"github.com/palemoky/fourteen/internal/game/card"
)

// Player 房间中的玩家
type Player struct {
	ID        string      // 连接 ID
	Name      string      // 玩家昵称
	Hand      []card.Card // 手牌（有序）
	Collected []card.Card // 吃到的牌
	Score     int         // 累计得分，跨局保留
	IsOpened  bool        // 是否已开门
	IsHost    bool        // 是否房主
}

// resetRound 清空本局数据，保留得分
func (p *Player) resetRound() {
	p.Hand = nil
	p.Collected = nil
	p.IsOpened = false
}

// Room 游戏房间，所有操作都在 mu 保护下原子完成
type Room struct {
	Code      string    // 房间号
	CreatedAt time.Time // 创建时间

	state       RoomState
	players     []*Player // 按加入顺序
	currentID   string    // 当前行动玩家 ID
	deck        card.Deck // 牌堆，从头部摸牌
	faceUp      []card.Card
	isDeckEmpty bool // 牌堆耗尽后保持为 true，直到本局结束

	mu sync.Mutex
}

// newRoom 创建只有房主一人的房间
func newRoom(code, hostID, hostName string) *Room {
	return &Room{
		Code:      code,
		CreatedAt: time.Now(),
		state:     RoomStateWaiting,
		players: []*Player{
			{ID: hostID, Name: hostName, IsHost: true},
		},
	}
}

// State 返回房间状态
func (r *Room) State() RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// PlayerCount 返回房间人数
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// PlayerIDs 按加入顺序返回玩家 ID
func (r *Room) PlayerIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, len(r.players))
	for i, p := range r.players {
		ids[i] = p.ID
	}
	return ids
}

// joinable 房间是否还能加入新玩家（调用方持有锁）
func (r *Room) joinable() error {
	if len(r.players) >= MaxPlayers {
		return apperrors.ErrRoomFull
	}
	if r.state == RoomStatePlaying {
		return apperrors.ErrGameStarted
	}
	return nil
}

// addPlayer 加入一名玩家（调用方持有锁）
func (r *Room) addPlayer(id, name string) error {
	if err := r.joinable(); err != nil {
		return err
	}
	r.players = append(r.players, &Player{ID: id, Name: name})
	return nil
}

// findPlayer 查找玩家及其位置（调用方持有锁）
func (r *Room) findPlayer(id string) (int, *Player) {
	idx := slices.IndexFunc(r.players, func(p *Player) bool { return p.ID == id })
	if idx < 0 {
		return -1, nil
	}
	return idx, r.players[idx]
}

// currentIndex 返回当前行动玩家在顺序中的位置，无人行动时为 -1
func (r *Room) currentIndex() int {
	idx, _ := r.findPlayer(r.currentID)
	return idx
}

// nextPlayerID 返回 id 之后按加入顺序的下一名玩家
func (r *Room) nextPlayerID(id string) string {
	if len(r.players) == 0 {
		return ""
	}
	idx, _ := r.findPlayer(id)
	return r.players[(idx+1)%len(r.players)].ID
}

// totalCards 统计房间内所有牌的数量
func (r *Room) totalCards() int {
	n := len(r.deck) + len(r.faceUp)
	for _, p := range r.players {
		n += len(p.Hand) + len(p.Collected)
	}
	return n
}
