package protocol

// --- 客户端请求 Payloads ---

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// CreateRoomPayload 创建房间请求
type CreateRoomPayload struct {
	PlayerName string `json:"player_name"`
}

// JoinRoomPayload 加入房间请求
type JoinRoomPayload struct {
	RoomCode   string `json:"room_code"`
	PlayerName string `json:"player_name"`
}

// CombinePayload 吃牌请求：1~2 张手牌 + 1 张公共牌
type CombinePayload struct {
	HandIndices []int `json:"hand_indices"`
	FaceUpIndex int   `json:"face_up_index"`
}

// GetLeaderboardPayload 获取排行榜请求
type GetLeaderboardPayload struct {
	Type  string `json:"type"`  // total/daily/weekly
	Limit int    `json:"limit"` // 数量
}

// --- 服务端响应 Payloads ---

// ConnectedPayload 连接成功响应
type ConnectedPayload struct {
	PlayerID string `json:"player_id"`
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"` // 客户端发送的时间戳
	ServerTimestamp int64 `json:"server_timestamp"` // 服务器时间戳（毫秒）
}

// RoomCreatedPayload 房间创建成功
type RoomCreatedPayload struct {
	RoomCode string   `json:"room_code"`
	Room     RoomView `json:"room"`
}

// PlayerJoinedPayload 玩家加入
type PlayerJoinedPayload struct {
	Player PlayerInfo `json:"player"`
	Room   RoomView   `json:"room"`
}

// PlayerLeftPayload 玩家离开
type PlayerLeftPayload struct {
	PlayerID   string      `json:"player_id"`
	PlayerName string      `json:"player_name"`
	Room       RoomView    `json:"room"`
	Result     *GameResult `json:"result,omitempty"` // 对局中途离开时的判负结果
}

// GameStartedPayload 游戏开始
type GameStartedPayload struct {
	Room RoomView `json:"room"`
}

// StateUpdatedPayload 状态更新
type StateUpdatedPayload struct {
	Room     RoomView  `json:"room"`
	LastMove *MoveInfo `json:"last_move,omitempty"`
}

// GameEndedPayload 本局结束
type GameEndedPayload struct {
	Result   GameResult `json:"result"`
	Room     RoomView   `json:"room"`
	LastMove *MoveInfo  `json:"last_move,omitempty"`
}

// LeaderboardResultPayload 排行榜结果
type LeaderboardResultPayload struct {
	Type       string             `json:"type"`
	Entries    []LeaderboardEntry `json:"entries"`
	PlayerRank int64              `json:"player_rank,omitempty"` // 请求者在总榜的名次，未上榜为 0
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// --- 公共数据结构 ---

// CardInfo 牌信息
type CardInfo struct {
	ID     string `json:"id"`     // 如 hearts-A、joker-small
	Suit   string `json:"suit"`   // hearts/spades/diamonds/clubs/joker
	Rank   string `json:"rank"`   // A,2..10,J,Q,K,small,big
	Value  int    `json:"value"`  // 凑 14 的点数
	Points int    `json:"points"` // 吃到后的得分
}

// PlayerInfo 玩家信息（不含手牌内容）
type PlayerInfo struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Score          int    `json:"score"`
	IsHost         bool   `json:"is_host"`
	IsOpened       bool   `json:"is_opened"`
	HandCount      int    `json:"hand_count"`
	CollectedCount int    `json:"collected_count"`
}

// RoomView 发给某个玩家的房间视图：只包含自己的手牌
type RoomView struct {
	Code               string       `json:"code"`
	Players            []PlayerInfo `json:"players"`
	Hand               []CardInfo   `json:"hand"`
	FaceUp             []CardInfo   `json:"face_up"`
	DeckCount          int          `json:"deck_count"`
	CurrentPlayerID    string       `json:"current_player_id,omitempty"`
	CurrentPlayerIndex int          `json:"current_player_index"`
	IsDeckEmpty        bool         `json:"is_deck_empty"`
	GameStarted        bool         `json:"game_started"`
}

// MoveInfo.Kind 取值
const (
	MoveKindCombine = "combine"
	MoveKindPass    = "pass"
)

// MoveInfo 最近一次行动
type MoveInfo struct {
	Kind       string     `json:"kind"` // combine/pass
	PlayerID   string     `json:"player_id"`
	PlayerName string     `json:"player_name"`
	Captured   []CardInfo `json:"captured,omitempty"`
	Points     int        `json:"points,omitempty"`
	Drawn      int        `json:"drawn"`
	Discarded  *CardInfo  `json:"discarded,omitempty"`
}

// ScoreInfo 结算分数
type ScoreInfo struct {
	PlayerID    string `json:"player_id"`
	PlayerName  string `json:"player_name"`
	Score       int    `json:"score"`        // 房间内累计得分
	RoundPoints int    `json:"round_points"` // 本局得分
}

// GameResult 结算结果，平局时没有胜者
type GameResult struct {
	IsTie      bool        `json:"is_tie"`
	WinnerID   string      `json:"winner_id,omitempty"`
	WinnerName string      `json:"winner_name,omitempty"`
	Forfeit    bool        `json:"forfeit,omitempty"`
	Scores     []ScoreInfo `json:"scores"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank       int     `json:"rank"`
	PlayerName string  `json:"player_name"`
	Rating     int     `json:"rating"`
	Wins       int     `json:"wins"`
	TotalGames int     `json:"total_games"`
	WinRate    float64 `json:"win_rate"`
}
