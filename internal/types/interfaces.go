package types

import (
	"context"

	"github.com/palemoky/fourteen/internal/protocol"
	"github.com/palemoky/fourteen/internal/server/storage"
)

// ServerInterface 定义服务器接口（用于打破循环依赖）
type ServerInterface interface {
	IsMaintenanceMode() bool
	GetOnlineCount() int
	GetClientByID(id string) ClientInterface
}

// ClientInterface 定义客户端接口
type ClientInterface interface {
	GetID() string
	GetName() string
	SetName(name string)
	GetRoom() string
	SetRoom(code string)
	SendMessage(msg *protocol.Message)
	Close()
}

// Leaderboard 排行榜接口，未启用 Redis 时为 nil
type Leaderboard interface {
	RecordGameResult(ctx context.Context, playerName string, outcome storage.Outcome, points int) error
	GetLeaderboard(ctx context.Context, boardType string, limit int) ([]*storage.LeaderboardEntry, error)
	GetPlayerRank(ctx context.Context, playerName string) (int64, error)
}
