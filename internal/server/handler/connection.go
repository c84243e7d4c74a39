package handler

import (
	"time"

	"github.com/palemoky/fourteen/internal/protocol"
	"github.com/palemoky/fourteen/internal/protocol/codec"
	"github.com/palemoky/fourteen/internal/types"
)

// handlePing 处理心跳消息
func (h *Handler) handlePing(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.PingPayload](msg)
	if err != nil {
		return
	}

	client.SendMessage(codec.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: payload.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
}

// HandleDisconnect 连接断开时离开房间，通知剩余玩家
func (h *Handler) HandleDisconnect(client types.ClientInterface) {
	if h.roomManager.RoomCodeOf(client.GetID()) == "" {
		return
	}
	h.leave(client, false)
}
