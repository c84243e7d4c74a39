package handler

import (
	"github.com/palemoky/fourteen/internal/game/room"
	"github.com/palemoky/fourteen/internal/protocol"
	"github.com/palemoky/fourteen/internal/protocol/codec"
	"github.com/palemoky/fourteen/internal/protocol/convert"
)

// broadcastView 给快照中的每位玩家发送一条只包含自己手牌的消息
func (h *Handler) broadcastView(s *room.Snapshot, build func(view protocol.RoomView) (protocol.MessageType, any)) {
	for _, p := range s.Players {
		client := h.server.GetClientByID(p.ID)
		if client == nil {
			continue
		}
		msgType, payload := build(convert.SnapshotToView(s, p.ID))
		client.SendMessage(codec.MustNewMessage(msgType, payload))
	}
}
