package handler

import (
	"github.com/palemoky/fourteen/internal/game/room"
	"github.com/palemoky/fourteen/internal/protocol"
	"github.com/palemoky/fourteen/internal/protocol/codec"
	"github.com/palemoky/fourteen/internal/protocol/convert"
	"github.com/palemoky/fourteen/internal/types"
)

// handleCombine 处理吃牌
func (h *Handler) handleCombine(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.CombinePayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if _, err := h.roomManager.Combine(client.GetID(), payload.HandIndices, payload.FaceUpIndex, h.broadcastOutcome); err != nil {
		sendError(client, err)
	}
}

// handlePass 处理过牌
func (h *Handler) handlePass(client types.ClientInterface) {
	if _, err := h.roomManager.Pass(client.GetID(), h.broadcastOutcome); err != nil {
		sendError(client, err)
	}
}

// broadcastOutcome 在房间锁内广播行动后的状态，终局时广播结算并记录排行榜
func (h *Handler) broadcastOutcome(outcome *room.MoveOutcome) {
	lastMove := convert.MoveToInfo(outcome.Move)

	if outcome.Result == nil {
		h.broadcastView(outcome.Snapshot, func(view protocol.RoomView) (protocol.MessageType, any) {
			return protocol.MsgStateUpdated, protocol.StateUpdatedPayload{Room: view, LastMove: lastMove}
		})
		return
	}

	result := convert.ResultToInfo(outcome.Result)
	h.broadcastView(outcome.Snapshot, func(view protocol.RoomView) (protocol.MessageType, any) {
		return protocol.MsgGameEnded, protocol.GameEndedPayload{Result: *result, Room: view, LastMove: lastMove}
	})
	h.recordResult(outcome.Result, nil)
}
