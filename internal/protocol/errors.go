package protocol

// 错误码
const (
	ErrCodeUnknown     = 1000
	ErrCodeInvalidMsg  = 1001
	ErrCodeRateLimit   = 1002 // 速率限制
	ErrCodeInvalidName = 1003

	ErrCodeRoomNotFound     = 2001
	ErrCodeRoomFull         = 2002
	ErrCodeNotInRoom        = 2003
	ErrCodeGameStarted      = 2004 // 游戏已开始
	ErrCodeNotHost          = 2005
	ErrCodeNotEnoughPlayers = 2006

	ErrCodeGameNotStart         = 3001
	ErrCodeNotYourTurn          = 3002
	ErrCodeInvalidCombination   = 3003
	ErrCodeMustOpenWithOneCard  = 3004 // 开门前只能用一张手牌
	ErrCodeDeckEmptyOneCardOnly = 3005 // 牌堆空后只能用一张手牌
	ErrCodeInvalidSelection     = 3006

	ErrCodeServerMaintenance = 5003 // 服务器维护中
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:              "未知错误",
	ErrCodeInvalidMsg:           "无效的消息格式",
	ErrCodeRateLimit:            "请求过于频繁",
	ErrCodeInvalidName:          "昵称不能为空",
	ErrCodeRoomNotFound:         "房间不存在",
	ErrCodeRoomFull:             "房间已满",
	ErrCodeNotInRoom:            "您不在房间中",
	ErrCodeGameStarted:          "游戏已开始",
	ErrCodeNotHost:              "只有房主可以开始游戏",
	ErrCodeNotEnoughPlayers:     "需要两名玩家才能开始",
	ErrCodeGameNotStart:         "游戏尚未开始",
	ErrCodeNotYourTurn:          "还没轮到您",
	ErrCodeInvalidCombination:   "无效的组合",
	ErrCodeMustOpenWithOneCard:  "开门前只能使用一张手牌",
	ErrCodeDeckEmptyOneCardOnly: "牌堆空后只能使用一张手牌",
	ErrCodeInvalidSelection:     "选择的牌无效",
	ErrCodeServerMaintenance:    "服务器维护中",
}
