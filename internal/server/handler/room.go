package handler

import (
	"github.com/palemoky/fourteen/internal/apperrors"
	"github.com/palemoky/fourteen/internal/game/room"
	"github.com/palemoky/fourteen/internal/protocol"
	"github.com/palemoky/fourteen/internal/protocol/codec"
	"github.com/palemoky/fourteen/internal/protocol/convert"
	"github.com/palemoky/fourteen/internal/types"
)

// handleCreateRoom 处理创建房间
func (h *Handler) handleCreateRoom(client types.ClientInterface, msg *protocol.Message) {
	if h.server.IsMaintenanceMode() {
		sendError(client, apperrors.ErrServerMaintenance)
		return
	}

	payload, err := codec.ParsePayload[protocol.CreateRoomPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	if room.NormalizeName(payload.PlayerName) == "" {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidName))
		return
	}

	// 已在其他房间时由房间管理器先移出并通知原房间
	snapshot, err := h.roomManager.CreateRoom(client.GetID(), payload.PlayerName, h.leaveNotifier(client, true))
	if err != nil {
		sendError(client, err)
		return
	}

	h.bindClient(client, snapshot)
	client.SendMessage(codec.MustNewMessage(protocol.MsgRoomCreated, protocol.RoomCreatedPayload{
		RoomCode: snapshot.Code,
		Room:     convert.SnapshotToView(snapshot, client.GetID()),
	}))
}

// handleJoinRoom 处理加入房间
func (h *Handler) handleJoinRoom(client types.ClientInterface, msg *protocol.Message) {
	if h.server.IsMaintenanceMode() {
		sendError(client, apperrors.ErrServerMaintenance)
		return
	}

	payload, err := codec.ParsePayload[protocol.JoinRoomPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	if room.NormalizeName(payload.PlayerName) == "" {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidName))
		return
	}

	joined := func(snapshot *room.Snapshot) {
		h.bindClient(client, snapshot)
		player := convert.PlayerToInfo(*snapshot.Player(client.GetID()))
		h.broadcastView(snapshot, func(view protocol.RoomView) (protocol.MessageType, any) {
			return protocol.MsgPlayerJoined, protocol.PlayerJoinedPayload{Player: player, Room: view}
		})
	}

	snapshot, err := h.roomManager.JoinRoom(client.GetID(), payload.PlayerName, payload.RoomCode,
		h.leaveNotifier(client, true), joined)
	if err != nil {
		sendError(client, err)
		return
	}
	h.bindClient(client, snapshot)
}

// bindClient 记录客户端所在房间和规范化后的昵称
func (h *Handler) bindClient(client types.ClientInterface, snapshot *room.Snapshot) {
	client.SetRoom(snapshot.Code)
	if p := snapshot.Player(client.GetID()); p != nil {
		client.SetName(p.Name)
	}
}

// handleLeaveRoom 处理离开房间
func (h *Handler) handleLeaveRoom(client types.ClientInterface) {
	h.leave(client, true)
}

// leave 将客户端移出房间并通知剩余玩家。notifySelf 为 false 时（断开连接）不再给离开者发消息。
func (h *Handler) leave(client types.ClientInterface, notifySelf bool) {
	out := h.roomManager.LeaveRoom(client.GetID(), h.leaveNotifier(client, notifySelf))
	if out == nil {
		client.SetRoom("")
		if notifySelf {
			client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeNotInRoom))
		}
	}
}

// leaveNotifier 返回在原房间锁内推送离开消息的回调
func (h *Handler) leaveNotifier(client types.ClientInterface, notifySelf bool) func(*room.LeaveOutcome) {
	return func(out *room.LeaveOutcome) {
		client.SetRoom("")

		result := convert.ResultToInfo(out.Result)
		leftPayload := func(view protocol.RoomView) protocol.PlayerLeftPayload {
			return protocol.PlayerLeftPayload{
				PlayerID:   out.PlayerID,
				PlayerName: out.PlayerName,
				Room:       view,
				Result:     result,
			}
		}

		if notifySelf {
			view := protocol.RoomView{Code: out.Code, Players: []protocol.PlayerInfo{}, Hand: []protocol.CardInfo{}, FaceUp: []protocol.CardInfo{}}
			if out.Snapshot != nil {
				view = convert.SnapshotToView(out.Snapshot, client.GetID())
			}
			client.SendMessage(codec.MustNewMessage(protocol.MsgPlayerLeft, leftPayload(view)))
		}

		if out.Snapshot != nil {
			h.broadcastView(out.Snapshot, func(view protocol.RoomView) (protocol.MessageType, any) {
				return protocol.MsgPlayerLeft, leftPayload(view)
			})
		}

		if out.Result != nil {
			// 中途离开记为负
			h.recordResult(out.Result, map[string]string{out.PlayerID: out.PlayerName})
		}
	}
}

// handleStartGame 房主开局
func (h *Handler) handleStartGame(client types.ClientInterface) {
	_, err := h.roomManager.StartGame(client.GetID(), func(snapshot *room.Snapshot) {
		h.broadcastView(snapshot, func(view protocol.RoomView) (protocol.MessageType, any) {
			return protocol.MsgGameStarted, protocol.GameStartedPayload{Room: view}
		})
	})
	if err != nil {
		sendError(client, err)
	}
}
