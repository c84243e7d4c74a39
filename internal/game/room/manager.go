package room

import (
	"context"
	"log"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/palemoky/fourteen/internal/apperrors"
	"github.com/palemoky/fourteen/internal/game/card"
	"github.com/palemoky/fourteen/internal/server/storage"
)

const (
	roomCodeLength = 6                                  // 房间号长度
	roomCodeChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // 房间号字符集，去掉易混淆的 0/O/1/I
)

// RoomStore 房间镜像存储，为空时不做镜像
type RoomStore interface {
	SaveRoom(ctx context.Context, code string, data *storage.RoomData) error
	DeleteRoom(ctx context.Context, code string) error
}

// DeckSource 提供新一局的牌
type DeckSource func() card.Deck

// MoveOutcome 一次行动的结果
type MoveOutcome struct {
	Snapshot *Snapshot
	Move     *Move
	Result   *GameResult // 本局结束时非空
}

// LeaveOutcome 玩家离开房间的结果
type LeaveOutcome struct {
	Code       string
	PlayerID   string
	PlayerName string
	Disbanded  bool        // 房间已解散
	Snapshot   *Snapshot   // 房间仍存在时的快照
	Result     *GameResult // 对局中途离开时的判负结果
}

// RoomManager 房间管理器：维护房间号 → 房间、玩家 → 房间号两张表。
// 加锁顺序固定为先管理器后房间。
type RoomManager struct {
	store   RoomStore
	newDeck DeckSource

	rooms   map[string]*Room
	members map[string]string // 玩家 ID → 房间号
	mu      sync.RWMutex
}

// NewRoomManager 创建房间管理器
func NewRoomManager(store RoomStore) *RoomManager {
	return &RoomManager{
		store:   store,
		newDeck: func() card.Deck { return card.NewShuffledDeck(nil) },
		rooms:   make(map[string]*Room),
		members: make(map[string]string),
	}
}

// SetDeckSource 替换发牌来源
func (rm *RoomManager) SetDeckSource(src DeckSource) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.newDeck = src
}

// NormalizeCode 房间号不区分大小写
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// generateRoomCode 生成未被占用的房间号（调用方持有 rm.mu）
func (rm *RoomManager) generateRoomCode() string {
	buf := make([]byte, roomCodeLength)
	for {
		for i := range buf {
			buf[i] = roomCodeChars[rand.IntN(len(roomCodeChars))]
		}
		code := string(buf)
		if _, exists := rm.rooms[code]; !exists {
			return code
		}
	}
}

// notify 在持有房间锁时推送事件，保证同一房间的通知顺序与状态变更顺序一致。
// 回调不得再调用 RoomManager。
func notify[T any](fn func(T), v T) {
	if fn != nil {
		fn(v)
	}
}

// CreateRoom 创建房间，创建者成为房主。
// 已在其他房间的玩家先离开原房间，onLeave 在原房间锁内收到离开结果。
func (rm *RoomManager) CreateRoom(playerID, playerName string, onLeave func(*LeaveOutcome)) (*Snapshot, error) {
	name := NormalizeName(playerName)
	if name == "" {
		return nil, apperrors.ErrInvalidName
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.leaveLocked(playerID, onLeave)

	code := rm.generateRoomCode()
	room := newRoom(code, playerID, name)
	rm.rooms[code] = room
	rm.members[playerID] = code

	room.mu.Lock()
	defer room.mu.Unlock()
	rm.save(room)

	log.Printf("🏠 房间 %s 已创建，玩家 %s", code, name)
	return room.snapshot(), nil
}

// JoinRoom 加入房间。目标房间无法加入时玩家留在原房间；
// 可以加入时先离开原房间（onLeave），再在新房间锁内推送 onJoin。
func (rm *RoomManager) JoinRoom(playerID, playerName, code string, onLeave func(*LeaveOutcome), onJoin func(*Snapshot)) (*Snapshot, error) {
	name := NormalizeName(playerName)
	if name == "" {
		return nil, apperrors.ErrInvalidName
	}
	code = NormalizeCode(code)

	rm.mu.Lock()
	defer rm.mu.Unlock()

	room, exists := rm.rooms[code]
	if !exists {
		return nil, apperrors.ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if rm.members[playerID] == code {
		return room.snapshot(), nil
	}
	if err := room.joinable(); err != nil {
		return nil, err
	}

	rm.leaveLocked(playerID, onLeave)
	if err := room.addPlayer(playerID, name); err != nil {
		return nil, err
	}
	rm.members[playerID] = code
	rm.save(room)

	log.Printf("👤 玩家 %s 加入房间 %s", name, code)
	snapshot := room.snapshot()
	notify(onJoin, snapshot)
	return snapshot, nil
}

// StartGame 房主开局，onStart 在房间锁内收到开局快照
func (rm *RoomManager) StartGame(playerID string, onStart func(*Snapshot)) (*Snapshot, error) {
	room, newDeck := rm.roomOfPlayer(playerID)
	if room == nil {
		return nil, apperrors.ErrNotInRoom
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if err := room.startLocked(playerID, newDeck()); err != nil {
		return nil, err
	}
	rm.save(room)

	log.Printf("🎮 房间 %s 开始游戏", room.Code)
	snapshot := room.snapshot()
	notify(onStart, snapshot)
	return snapshot, nil
}

// Combine 吃牌
func (rm *RoomManager) Combine(playerID string, handIndices []int, faceUpIndex int, onMove func(*MoveOutcome)) (*MoveOutcome, error) {
	room, _ := rm.roomOfPlayer(playerID)
	if room == nil {
		return nil, apperrors.ErrNotInRoom
	}
	return rm.applyMove(room, onMove, func() (*Move, *GameResult, error) {
		return room.combineLocked(playerID, handIndices, faceUpIndex)
	})
}

// Pass 过牌
func (rm *RoomManager) Pass(playerID string, onMove func(*MoveOutcome)) (*MoveOutcome, error) {
	room, _ := rm.roomOfPlayer(playerID)
	if room == nil {
		return nil, apperrors.ErrNotInRoom
	}
	return rm.applyMove(room, onMove, func() (*Move, *GameResult, error) {
		return room.passLocked(playerID)
	})
}

// applyMove 在房间锁内执行行动、生成快照并推送 onMove
func (rm *RoomManager) applyMove(room *Room, onMove func(*MoveOutcome), fn func() (*Move, *GameResult, error)) (*MoveOutcome, error) {
	room.mu.Lock()
	defer room.mu.Unlock()

	move, result, err := fn()
	if err != nil {
		return nil, err
	}
	rm.save(room)

	if result != nil {
		if result.IsTie {
			log.Printf("🏁 房间 %s 本局结束：平局", room.Code)
		} else {
			log.Printf("🏁 房间 %s 本局结束：%s 获胜", room.Code, result.WinnerName)
		}
	}
	out := &MoveOutcome{Snapshot: room.snapshot(), Move: move, Result: result}
	notify(onMove, out)
	return out, nil
}

// LeaveRoom 玩家离开或断开连接，onLeave 在房间锁内收到离开结果
func (rm *RoomManager) LeaveRoom(playerID string, onLeave func(*LeaveOutcome)) *LeaveOutcome {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.leaveLocked(playerID, onLeave)
}

// leaveLocked 调用方持有 rm.mu
func (rm *RoomManager) leaveLocked(playerID string, onLeave func(*LeaveOutcome)) *LeaveOutcome {
	code, ok := rm.members[playerID]
	if !ok {
		return nil
	}
	return rm.leaveRoomByCode(playerID, code, onLeave)
}

// leaveRoomByCode 从指定房间移除玩家（调用方持有 rm.mu）
func (rm *RoomManager) leaveRoomByCode(playerID, code string, onLeave func(*LeaveOutcome)) *LeaveOutcome {
	delete(rm.members, playerID)

	room, exists := rm.rooms[code]
	if !exists {
		return nil
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	d := room.removePlayer(playerID)
	if d == nil {
		return nil
	}

	out := &LeaveOutcome{
		Code:       code,
		PlayerID:   d.player.ID,
		PlayerName: d.player.Name,
		Disbanded:  d.empty,
		Result:     d.result,
	}

	log.Printf("👋 玩家 %s 离开房间 %s", d.player.Name, code)

	if d.empty {
		delete(rm.rooms, code)
		rm.remove(code)
		log.Printf("🏠 房间 %s 已解散", code)
	} else {
		if d.result != nil {
			log.Printf("🏳️ 房间 %s 对局中止，%s 获胜", code, d.result.WinnerName)
		}
		rm.save(room)
		out.Snapshot = room.snapshot()
	}
	notify(onLeave, out)
	return out
}

// roomOfPlayer 查找玩家所在房间
func (rm *RoomManager) roomOfPlayer(playerID string) (*Room, DeckSource) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	code, ok := rm.members[playerID]
	if !ok {
		return nil, rm.newDeck
	}
	return rm.rooms[code], rm.newDeck
}

// GetRoom 获取房间（房间号不区分大小写）
func (rm *RoomManager) GetRoom(code string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.rooms[NormalizeCode(code)]
}

// RoomCodeOf 返回玩家所在房间号
func (rm *RoomManager) RoomCodeOf(playerID string) string {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.members[playerID]
}

// GetRoomCount 获取房间数量
func (rm *RoomManager) GetRoomCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

// GetActiveGamesCount 获取进行中的对局数量
func (rm *RoomManager) GetActiveGamesCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	count := 0
	for _, room := range rm.rooms {
		if room.State() == RoomStatePlaying {
			count++
		}
	}
	return count
}

// save 异步写入房间镜像（调用方持有房间锁）
func (rm *RoomManager) save(room *Room) {
	if rm.store == nil {
		return
	}
	data := room.toRoomData()
	go func() {
		if err := rm.store.SaveRoom(context.Background(), data.Code, data); err != nil {
			log.Printf("⚠️ 房间 %s 镜像写入失败: %v", data.Code, err)
		}
	}()
}

// remove 异步删除房间镜像
func (rm *RoomManager) remove(code string) {
	if rm.store == nil {
		return
	}
	go func() {
		if err := rm.store.DeleteRoom(context.Background(), code); err != nil {
			log.Printf("⚠️ 房间 %s 镜像删除失败: %v", code, err)
		}
	}()
}
