package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key 前缀
	roomKeyPrefix = "fourteen:room:"

	// 房间镜像过期时间
	roomExpiration = 2 * time.Hour
)

// RoomData 房间镜像数据（只用于观测，不会在启动时恢复）
type RoomData struct {
	Code          string       `json:"code"`
	State         string       `json:"state"`
	Players       []PlayerData `json:"players"`
	CurrentPlayer string       `json:"current_player,omitempty"`
	DeckCount     int          `json:"deck_count"`
	FaceUp        []string     `json:"face_up,omitempty"`
	IsDeckEmpty   bool         `json:"is_deck_empty"`
	CreatedAt     int64        `json:"created_at"`
	UpdatedAt     int64        `json:"updated_at"`
}

// PlayerData 玩家数据（不含手牌内容）
type PlayerData struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	HandCount int    `json:"hand_count"`
	IsOpened  bool   `json:"is_opened"`
	IsHost    bool   `json:"is_host"`
}

// RedisStore Redis 存储
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// SaveRoom 保存房间镜像
func (rs *RedisStore) SaveRoom(ctx context.Context, code string, data *RoomData) error {
	if data == nil {
		return nil
	}
	data.UpdatedAt = time.Now().Unix()

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("序列化房间数据失败: %w", err)
	}

	return rs.client.Set(ctx, roomKeyPrefix+code, jsonData, roomExpiration).Err()
}

// LoadRoom 读取房间镜像，不存在时返回 nil
func (rs *RedisStore) LoadRoom(ctx context.Context, code string) (*RoomData, error) {
	data, err := rs.client.Get(ctx, roomKeyPrefix+code).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var roomData RoomData
	if err := json.Unmarshal(data, &roomData); err != nil {
		return nil, fmt.Errorf("反序列化房间数据失败: %w", err)
	}
	return &roomData, nil
}

// DeleteRoom 删除房间镜像
func (rs *RedisStore) DeleteRoom(ctx context.Context, code string) error {
	return rs.client.Del(ctx, roomKeyPrefix+code).Err()
}

// GetAllRoomCodes 获取所有镜像中的房间号
func (rs *RedisStore) GetAllRoomCodes(ctx context.Context) ([]string, error) {
	var codes []string
	iter := rs.client.Scan(ctx, 0, roomKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		codes = append(codes, iter.Val()[len(roomKeyPrefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return codes, nil
}

// ClearRooms 清除上次运行残留的房间镜像
func (rs *RedisStore) ClearRooms(ctx context.Context) (int, error) {
	codes, err := rs.GetAllRoomCodes(ctx)
	if err != nil {
		return 0, err
	}
	if len(codes) == 0 {
		return 0, nil
	}

	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = roomKeyPrefix + code
	}
	if err := rs.client.Del(ctx, keys...).Err(); err != nil {
		return 0, err
	}
	return len(keys), nil
}
