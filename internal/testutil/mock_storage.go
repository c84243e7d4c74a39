//go:build !production

package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/fourteen/internal/server/storage"
)

// MockLeaderboard 排行榜 mock
type MockLeaderboard struct {
	mock.Mock
}

func (m *MockLeaderboard) RecordGameResult(ctx context.Context, playerName string, outcome storage.Outcome, points int) error {
	args := m.Called(ctx, playerName, outcome, points)
	return args.Error(0)
}

func (m *MockLeaderboard) GetLeaderboard(ctx context.Context, boardType string, limit int) ([]*storage.LeaderboardEntry, error) {
	args := m.Called(ctx, boardType, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.LeaderboardEntry), args.Error(1)
}

func (m *MockLeaderboard) GetPlayerRank(ctx context.Context, playerName string) (int64, error) {
	args := m.Called(ctx, playerName)
	return args.Get(0).(int64), args.Error(1)
}

// MockRoomStore 房间镜像存储 mock
type MockRoomStore struct {
	mock.Mock
}

func (m *MockRoomStore) SaveRoom(ctx context.Context, code string, data *storage.RoomData) error {
	args := m.Called(ctx, code, data)
	return args.Error(0)
}

func (m *MockRoomStore) DeleteRoom(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}
