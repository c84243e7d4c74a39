package bot

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/palemoky/fourteen/internal/protocol"
	"github.com/palemoky/fourteen/internal/protocol/codec"
)

// 牌堆空后双方连续过牌达到该次数视为僵局，机器人主动离开
const maxStalledPasses = 8

// ErrConnectionLost 对局结束前连接断开
var ErrConnectionLost = errors.New("与服务器的连接已断开")

// Options 机器人参数
type Options struct {
	Name     string        // 昵称，为空时自动生成
	RoomCode string        // 为空时创建房间，否则加入该房间
	Rounds   int           // 打满多少局后离开，最少 1 局
	Delay    time.Duration // 每次行动前的思考时间
	OnRoom   func(code string)
}

// Bot 自动对局的机器人玩家
type Bot struct {
	client *Client
	opts   Options

	roomCode       string
	played         int
	stalled        int
	pendingCombine bool
}

// DefaultName 生成机器人昵称
func DefaultName() string {
	return "机器人-" + uuid.NewString()[:8]
}

// New 创建机器人，client 需已连接
func New(client *Client, opts Options) *Bot {
	if opts.Name == "" {
		opts.Name = DefaultName()
	}
	opts.Rounds = max(opts.Rounds, 1)
	return &Bot{client: client, opts: opts}
}

// Run 处理服务器消息直到打满局数、房间解散或 ctx 取消
func (b *Bot) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			_ = b.client.LeaveRoom()
			return ctx.Err()
		case msg, ok := <-b.client.Messages():
			if !ok {
				return ErrConnectionLost
			}
			done, err := b.handle(ctx, msg)
			if errors.Is(err, ErrClientClosed) {
				return ErrConnectionLost
			}
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}
	}
}

func (b *Bot) handle(ctx context.Context, msg *protocol.Message) (bool, error) {
	switch msg.Type {
	case protocol.MsgConnected:
		if b.opts.RoomCode != "" {
			return false, b.client.JoinRoom(b.opts.RoomCode, b.opts.Name)
		}
		return false, b.client.CreateRoom(b.opts.Name)

	case protocol.MsgRoomCreated:
		payload, err := codec.ParsePayload[protocol.RoomCreatedPayload](msg)
		if err != nil {
			return false, err
		}
		b.setRoom(payload.RoomCode)
		log.Printf("🤖 %s 创建了房间 %s", b.opts.Name, payload.RoomCode)

	case protocol.MsgPlayerJoined:
		payload, err := codec.ParsePayload[protocol.PlayerJoinedPayload](msg)
		if err != nil {
			return false, err
		}
		b.setRoom(payload.Room.Code)
		if b.isHost(payload.Room) && len(payload.Room.Players) == 2 && !payload.Room.GameStarted {
			return false, b.client.StartGame()
		}

	case protocol.MsgGameStarted:
		payload, err := codec.ParsePayload[protocol.GameStartedPayload](msg)
		if err != nil {
			return false, err
		}
		b.stalled = 0
		return false, b.play(ctx, payload.Room)

	case protocol.MsgStateUpdated:
		payload, err := codec.ParsePayload[protocol.StateUpdatedPayload](msg)
		if err != nil {
			return false, err
		}
		return b.onStateUpdated(ctx, payload)

	case protocol.MsgGameEnded:
		payload, err := codec.ParsePayload[protocol.GameEndedPayload](msg)
		if err != nil {
			return false, err
		}
		return b.onGameEnded(payload)

	case protocol.MsgPlayerLeft:
		payload, err := codec.ParsePayload[protocol.PlayerLeftPayload](msg)
		if err != nil {
			return false, err
		}
		if payload.PlayerID == b.client.PlayerID {
			return true, nil
		}
		if payload.Result != nil {
			b.played++
			log.Printf("🤖 %s 离开，%s 不战而胜", payload.PlayerName, payload.Result.WinnerName)
		}
		return b.played >= b.opts.Rounds, nil

	case protocol.MsgError:
		payload, err := codec.ParsePayload[protocol.ErrorPayload](msg)
		if err != nil {
			return false, err
		}
		log.Printf("🤖 %s 收到错误 %d: %s", b.opts.Name, payload.Code, payload.Message)
		if b.pendingCombine {
			b.pendingCombine = false
			return false, b.client.Pass()
		}
		if payload.Code == protocol.ErrCodeRoomNotFound || payload.Code == protocol.ErrCodeRoomFull {
			return true, errors.New(payload.Message)
		}
	}
	return false, nil
}

func (b *Bot) onStateUpdated(ctx context.Context, payload *protocol.StateUpdatedPayload) (bool, error) {
	if move := payload.LastMove; move != nil {
		switch {
		case move.Kind == protocol.MoveKindCombine:
			b.stalled = 0
		case payload.Room.IsDeckEmpty:
			b.stalled++
		}
	}
	if b.stalled >= maxStalledPasses {
		log.Printf("🤖 %s 连续 %d 次过牌，对局陷入僵局，离开房间", b.opts.Name, b.stalled)
		return true, b.client.LeaveRoom()
	}
	return false, b.play(ctx, payload.Room)
}

func (b *Bot) onGameEnded(payload *protocol.GameEndedPayload) (bool, error) {
	b.played++
	if payload.Result.IsTie {
		log.Printf("🤖 第 %d 局平局", b.played)
	} else {
		log.Printf("🤖 第 %d 局结束，%s 获胜", b.played, payload.Result.WinnerName)
	}

	if b.played >= b.opts.Rounds {
		return true, b.client.LeaveRoom()
	}
	if b.isHost(payload.Room) && len(payload.Room.Players) == 2 {
		return false, b.client.StartGame()
	}
	return false, nil
}

// play 轮到自己时选择行动
func (b *Bot) play(ctx context.Context, view protocol.RoomView) error {
	b.pendingCombine = false
	if !view.GameStarted || view.CurrentPlayerID != b.client.PlayerID {
		return nil
	}

	if b.opts.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(b.opts.Delay):
		}
	}

	opened := false
	for _, p := range view.Players {
		if p.ID == b.client.PlayerID {
			opened = p.IsOpened
		}
	}

	decision := ChooseMove(view.Hand, view.FaceUp, opened, view.IsDeckEmpty)
	if decision.Pass {
		return b.client.Pass()
	}
	b.pendingCombine = true
	return b.client.Combine(decision.HandIndices, decision.FaceUpIndex)
}

func (b *Bot) isHost(view protocol.RoomView) bool {
	for _, p := range view.Players {
		if p.ID == b.client.PlayerID {
			return p.IsHost
		}
	}
	return false
}

func (b *Bot) setRoom(code string) {
	if code == "" || code == b.roomCode {
		return
	}
	b.roomCode = code
	if b.opts.OnRoom != nil {
		b.opts.OnRoom(code)
	}
}

// RoomCode 当前所在房间号
func (b *Bot) RoomCode() string {
	return b.roomCode
}
