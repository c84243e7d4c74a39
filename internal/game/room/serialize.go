package room

import (
	"slices"

	"github.com/palemoky/fourteen/internal/game/card"
	"github.com/palemoky/fourteen/internal/server/storage"
)

// PlayerView 玩家的只读视图
type PlayerView struct {
	ID        string
	Name      string
	Hand      []card.Card // 对其他玩家隐藏时为 nil
	HandCount int
	Collected []card.Card
	Score     int
	IsOpened  bool
	IsHost    bool
}

// Snapshot 房间的只读快照，由每次操作返回，与传输层无关
type Snapshot struct {
	Code               string
	State              RoomState
	Players            []PlayerView
	FaceUp             []card.Card
	DeckCount          int
	CurrentPlayerID    string
	CurrentPlayerIndex int
	IsDeckEmpty        bool
}

// GameStarted 是否有对局进行中
func (s *Snapshot) GameStarted() bool {
	return s.State == RoomStatePlaying
}

// Player 按 ID 查找玩家视图
func (s *Snapshot) Player(id string) *PlayerView {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// ForViewer 返回给指定玩家看的快照：只能看到自己的手牌，其他人只显示张数
func (s *Snapshot) ForViewer(viewerID string) *Snapshot {
	view := *s
	view.Players = make([]PlayerView, len(s.Players))
	for i, p := range s.Players {
		if p.ID != viewerID {
			p.Hand = nil
		}
		view.Players[i] = p
	}
	return &view
}

// Snapshot 生成房间快照
func (r *Room) Snapshot() *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

// snapshot 生成快照（调用方持有锁），切片均为拷贝
func (r *Room) snapshot() *Snapshot {
	s := &Snapshot{
		Code:               r.Code,
		State:              r.state,
		Players:            make([]PlayerView, len(r.players)),
		FaceUp:             slices.Clone(r.faceUp),
		DeckCount:          len(r.deck),
		CurrentPlayerID:    r.currentID,
		CurrentPlayerIndex: r.currentIndex(),
		IsDeckEmpty:        r.isDeckEmpty,
	}
	for i, p := range r.players {
		s.Players[i] = PlayerView{
			ID:        p.ID,
			Name:      p.Name,
			Hand:      slices.Clone(p.Hand),
			HandCount: len(p.Hand),
			Collected: slices.Clone(p.Collected),
			Score:     p.Score,
			IsOpened:  p.IsOpened,
			IsHost:    p.IsHost,
		}
	}
	return s
}

// toRoomData 将房间转换为 Redis 镜像数据（调用方持有锁）
func (r *Room) toRoomData() *storage.RoomData {
	data := &storage.RoomData{
		Code:          r.Code,
		State:         r.state.String(),
		Players:       make([]storage.PlayerData, 0, len(r.players)),
		CurrentPlayer: r.currentID,
		DeckCount:     len(r.deck),
		FaceUp:        cardIDs(r.faceUp),
		IsDeckEmpty:   r.isDeckEmpty,
		CreatedAt:     r.CreatedAt.Unix(),
	}

	for _, p := range r.players {
		data.Players = append(data.Players, storage.PlayerData{
			ID:        p.ID,
			Name:      p.Name,
			Score:     p.Score,
			HandCount: len(p.Hand),
			IsOpened:  p.IsOpened,
			IsHost:    p.IsHost,
		})
	}
	return data
}

func cardIDs(cards []card.Card) []string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID()
	}
	return ids
}
