package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgPing MessageType = "ping" // 心跳 ping

	// 房间操作
	MsgCreateRoom MessageType = "create_room" // 创建房间
	MsgJoinRoom   MessageType = "join_room"   // 加入房间
	MsgLeaveRoom  MessageType = "leave_room"  // 离开房间
	MsgStartGame  MessageType = "start_game"  // 房主开局

	// 游戏操作
	MsgCombine MessageType = "combine" // 凑 14 吃牌
	MsgPass    MessageType = "pass"    // 过牌

	// 排行榜
	MsgGetLeaderboard MessageType = "get_leaderboard" // 获取排行榜
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgConnected MessageType = "connected" // 连接成功
	MsgPong      MessageType = "pong"      // 心跳 pong

	// 房间相关
	MsgRoomCreated  MessageType = "room_created"  // 房间创建成功
	MsgPlayerJoined MessageType = "player_joined" // 有玩家加入（发给房间所有人）
	MsgPlayerLeft   MessageType = "player_left"   // 玩家离开

	// 游戏流程
	MsgGameStarted  MessageType = "game_started"  // 游戏开始
	MsgStateUpdated MessageType = "state_updated" // 有人行动后的状态
	MsgGameEnded    MessageType = "game_ended"    // 本局结束

	// 排行榜
	MsgLeaderboardResult MessageType = "leaderboard_result" // 排行榜结果

	// 错误
	MsgError MessageType = "error" // 错误消息
)
