package handler

import (
	"context"
	"log"
	"time"

	"github.com/palemoky/fourteen/internal/game/room"
	"github.com/palemoky/fourteen/internal/protocol"
	"github.com/palemoky/fourteen/internal/protocol/codec"
	"github.com/palemoky/fourteen/internal/protocol/convert"
	"github.com/palemoky/fourteen/internal/server/storage"
	"github.com/palemoky/fourteen/internal/types"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 50
	recordTimeout           = 3 * time.Second
)

// handleGetLeaderboard 获取排行榜
func (h *Handler) handleGetLeaderboard(client types.ClientInterface, msg *protocol.Message) {
	if h.leaderboard == nil {
		client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "排行榜未启用"))
		return
	}

	payload, err := codec.ParsePayload[protocol.GetLeaderboardPayload](msg)
	if err != nil {
		payload = &protocol.GetLeaderboardPayload{}
	}
	if payload.Limit <= 0 || payload.Limit > maxLeaderboardLimit {
		payload.Limit = defaultLeaderboardLimit
	}
	switch payload.Type {
	case "daily", "weekly":
	default:
		payload.Type = "total"
	}

	ctx := context.Background()
	entries, err := h.leaderboard.GetLeaderboard(ctx, payload.Type, payload.Limit)
	if err != nil {
		log.Printf("获取排行榜失败: %v", err)
		client.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "获取排行榜失败"))
		return
	}

	result := protocol.LeaderboardResultPayload{
		Type:    payload.Type,
		Entries: convert.LeaderboardEntriesToInfos(entries),
	}
	if name := client.GetName(); name != "" {
		rank, err := h.leaderboard.GetPlayerRank(ctx, name)
		if err != nil {
			log.Printf("获取 %s 的名次失败: %v", name, err)
		} else if rank > 0 {
			result.PlayerRank = rank
		}
	}
	client.SendMessage(codec.MustNewMessage(protocol.MsgLeaderboardResult, result))
}

// recordResult 将一局结果写入排行榜。forfeited 中的玩家（中途离开者）记为负。
func (h *Handler) recordResult(result *room.GameResult, forfeited map[string]string) {
	if h.leaderboard == nil || result == nil {
		return
	}

	type record struct {
		name    string
		outcome storage.Outcome
		points  int
	}
	records := make([]record, 0, len(result.Scores)+len(forfeited))
	for _, s := range result.Scores {
		outcome := storage.OutcomeLoss
		switch {
		case result.IsTie:
			outcome = storage.OutcomeTie
		case s.ID == result.WinnerID:
			outcome = storage.OutcomeWin
		}
		records = append(records, record{name: s.Name, outcome: outcome, points: s.RoundPoints})
	}
	for _, name := range forfeited {
		records = append(records, record{name: name, outcome: storage.OutcomeLoss})
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		for _, r := range records {
			if err := h.leaderboard.RecordGameResult(ctx, r.name, r.outcome, r.points); err != nil {
				log.Printf("⚠️ 记录 %s 的对局结果失败: %v", r.name, err)
			}
		}
	}()
}
