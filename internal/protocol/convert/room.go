package convert

import (
	"github.com/palemoky/fourteen/internal/game/room"
	"github.com/palemoky/fourteen/internal/protocol"
	"github.com/palemoky/fourteen/internal/server/storage"
)

// PlayerToInfo 玩家公开信息
func PlayerToInfo(p room.PlayerView) protocol.PlayerInfo {
	return protocol.PlayerInfo{
		ID:             p.ID,
		Name:           p.Name,
		Score:          p.Score,
		IsHost:         p.IsHost,
		IsOpened:       p.IsOpened,
		HandCount:      p.HandCount,
		CollectedCount: len(p.Collected),
	}
}

// SnapshotToView 生成发给 viewerID 的房间视图，其他玩家的手牌不会出现在结果中
func SnapshotToView(s *room.Snapshot, viewerID string) protocol.RoomView {
	view := protocol.RoomView{
		Code:               s.Code,
		Players:            make([]protocol.PlayerInfo, len(s.Players)),
		Hand:               []protocol.CardInfo{},
		FaceUp:             CardsToInfos(s.FaceUp),
		DeckCount:          s.DeckCount,
		CurrentPlayerID:    s.CurrentPlayerID,
		CurrentPlayerIndex: s.CurrentPlayerIndex,
		IsDeckEmpty:        s.IsDeckEmpty,
		GameStarted:        s.GameStarted(),
	}
	for i, p := range s.Players {
		view.Players[i] = PlayerToInfo(p)
		if p.ID == viewerID {
			view.Hand = CardsToInfos(p.Hand)
		}
	}
	return view
}

// MoveToInfo 转换最近一次行动
func MoveToInfo(m *room.Move) *protocol.MoveInfo {
	if m == nil {
		return nil
	}
	info := &protocol.MoveInfo{
		Kind:       string(m.Kind),
		PlayerID:   m.PlayerID,
		PlayerName: m.PlayerName,
		Points:     m.Points,
		Drawn:      m.Drawn,
	}
	if len(m.Captured) > 0 {
		info.Captured = CardsToInfos(m.Captured)
	}
	if m.Discarded != nil {
		discarded := CardToInfo(*m.Discarded)
		info.Discarded = &discarded
	}
	return info
}

// ResultToInfo 转换结算结果
func ResultToInfo(r *room.GameResult) *protocol.GameResult {
	if r == nil {
		return nil
	}
	info := &protocol.GameResult{
		IsTie:      r.IsTie,
		WinnerID:   r.WinnerID,
		WinnerName: r.WinnerName,
		Forfeit:    r.Forfeit,
		Scores:     make([]protocol.ScoreInfo, len(r.Scores)),
	}
	for i, s := range r.Scores {
		info.Scores[i] = protocol.ScoreInfo{
			PlayerID:    s.ID,
			PlayerName:  s.Name,
			Score:       s.Score,
			RoundPoints: s.RoundPoints,
		}
	}
	return info
}

// LeaderboardEntriesToInfos 转换排行榜条目
func LeaderboardEntriesToInfos(entries []*storage.LeaderboardEntry) []protocol.LeaderboardEntry {
	result := make([]protocol.LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		if e == nil {
			continue
		}
		result = append(result, protocol.LeaderboardEntry{
			Rank:       e.Rank,
			PlayerName: e.PlayerName,
			Rating:     e.Rating,
			Wins:       e.Wins,
			TotalGames: e.TotalGames,
			WinRate:    e.WinRate,
		})
	}
	return result
}
