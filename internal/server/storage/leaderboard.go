package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key
	playerStatsKey    = "fourteen:player:stats:"
	leaderboardKey    = "fourteen:leaderboard:total"
	dailyLeaderboard  = "fourteen:leaderboard:daily:"
	weeklyLeaderboard = "fourteen:leaderboard:weekly:"
)

// Outcome 一局结果
type Outcome int

const (
	OutcomeLoss Outcome = iota
	OutcomeTie
	OutcomeWin
)

// 排行积分规则
const (
	RatingWin  = 3
	RatingTie  = 1
	RatingLoss = 0

	StreakBonus3 = 1 // 3 连胜额外加成
	StreakBonus5 = 2 // 5 连胜额外加成
)

// PlayerStats 玩家统计数据，按规范化后的昵称归档
type PlayerStats struct {
	PlayerKey  string `json:"player_key"`
	PlayerName string `json:"player_name"`

	TotalGames int `json:"total_games"`
	Wins       int `json:"wins"`
	Ties       int `json:"ties"`
	Losses     int `json:"losses"`

	TotalPoints int `json:"total_points"` // 累计吃牌得分
	BestPoints  int `json:"best_points"`  // 单局最高得分
	Rating      int `json:"rating"`       // 排行积分

	CurrentStreak int `json:"current_streak"` // 正数为连胜，负数为连败
	MaxWinStreak  int `json:"max_win_streak"`

	LastPlayedAt int64 `json:"last_played_at"`
	CreatedAt    int64 `json:"created_at"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank       int     `json:"rank"`
	PlayerName string  `json:"player_name"`
	Rating     int     `json:"rating"`
	Wins       int     `json:"wins"`
	TotalGames int     `json:"total_games"`
	WinRate    float64 `json:"win_rate"`
}

// LeaderboardManager 排行榜管理器
type LeaderboardManager struct {
	redis *redis.Client
}

// NewLeaderboardManager 创建排行榜管理器
func NewLeaderboardManager(client *redis.Client) *LeaderboardManager {
	return &LeaderboardManager{redis: client}
}

// PlayerKey 昵称不区分大小写
func PlayerKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// GetPlayerStats 获取玩家统计，不存在时返回 nil
func (lm *LeaderboardManager) GetPlayerStats(ctx context.Context, playerName string) (*PlayerStats, error) {
	data, err := lm.redis.Get(ctx, playerStatsKey+PlayerKey(playerName)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var stats PlayerStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (lm *LeaderboardManager) savePlayerStats(ctx context.Context, stats *PlayerStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return lm.redis.Set(ctx, playerStatsKey+stats.PlayerKey, data, 0).Err()
}

// applyOutcome 更新胜负统计并返回积分变化
func applyOutcome(stats *PlayerStats, outcome Outcome) int {
	switch outcome {
	case OutcomeWin:
		stats.Wins++
		stats.CurrentStreak = max(1, stats.CurrentStreak+1)
		stats.MaxWinStreak = max(stats.MaxWinStreak, stats.CurrentStreak)
		return RatingWin + streakBonus(stats.CurrentStreak)
	case OutcomeTie:
		stats.Ties++
		stats.CurrentStreak = 0
		return RatingTie
	default:
		stats.Losses++
		stats.CurrentStreak = min(-1, stats.CurrentStreak-1)
		return RatingLoss
	}
}

func streakBonus(streak int) int {
	switch {
	case streak >= 5:
		return StreakBonus5
	case streak >= 3:
		return StreakBonus3
	default:
		return 0
	}
}

// RecordGameResult 记录一局结果
func (lm *LeaderboardManager) RecordGameResult(ctx context.Context, playerName string, outcome Outcome, points int) error {
	key := PlayerKey(playerName)
	if key == "" {
		return fmt.Errorf("empty player name")
	}

	stats, err := lm.GetPlayerStats(ctx, playerName)
	if err != nil {
		return err
	}
	now := time.Now()
	if stats == nil {
		stats = &PlayerStats{PlayerKey: key, CreatedAt: now.Unix()}
	}

	stats.PlayerName = playerName
	stats.TotalGames++
	stats.TotalPoints += points
	stats.BestPoints = max(stats.BestPoints, points)
	stats.LastPlayedAt = now.Unix()
	stats.Rating += applyOutcome(stats, outcome)

	if err := lm.savePlayerStats(ctx, stats); err != nil {
		return err
	}
	return lm.updateLeaderboard(ctx, stats, now)
}

// updateLeaderboard 更新总榜、日榜和周榜
func (lm *LeaderboardManager) updateLeaderboard(ctx context.Context, stats *PlayerStats, now time.Time) error {
	member := redis.Z{Score: float64(stats.Rating), Member: stats.PlayerKey}

	pipe := lm.redis.TxPipeline()
	pipe.ZAdd(ctx, leaderboardKey, member)

	dailyKey := dailyLeaderboard + now.Format("2006-01-02")
	pipe.ZAdd(ctx, dailyKey, member)
	pipe.Expire(ctx, dailyKey, 48*time.Hour)

	weeklyKey := weeklyKeyFor(now)
	pipe.ZAdd(ctx, weeklyKey, member)
	pipe.Expire(ctx, weeklyKey, 8*24*time.Hour)

	_, err := pipe.Exec(ctx)
	return err
}

func weeklyKeyFor(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%s%d-W%02d", weeklyLeaderboard, year, week)
}

// GetLeaderboard 获取排行榜，boardType 为 total/daily/weekly
func (lm *LeaderboardManager) GetLeaderboard(ctx context.Context, boardType string, limit int) ([]*LeaderboardEntry, error) {
	key := leaderboardKey
	now := time.Now()
	switch boardType {
	case "daily":
		key = dailyLeaderboard + now.Format("2006-01-02")
	case "weekly":
		key = weeklyKeyFor(now)
	}

	results, err := lm.redis.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]*LeaderboardEntry, 0, len(results))
	for i, result := range results {
		playerKey, ok := result.Member.(string)
		if !ok {
			continue
		}
		stats, err := lm.GetPlayerStats(ctx, playerKey)
		if err != nil || stats == nil {
			continue
		}

		winRate := 0.0
		if stats.TotalGames > 0 {
			winRate = float64(stats.Wins) / float64(stats.TotalGames) * 100
		}

		entries = append(entries, &LeaderboardEntry{
			Rank:       i + 1,
			PlayerName: stats.PlayerName,
			Rating:     int(result.Score),
			Wins:       stats.Wins,
			TotalGames: stats.TotalGames,
			WinRate:    winRate,
		})
	}
	return entries, nil
}

// GetPlayerRank 获取玩家在总榜的名次，未上榜返回 -1
func (lm *LeaderboardManager) GetPlayerRank(ctx context.Context, playerName string) (int64, error) {
	rank, err := lm.redis.ZRevRank(ctx, leaderboardKey, PlayerKey(playerName)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil
		}
		return -1, err
	}
	return rank + 1, nil
}
