package room

// RoomState 房间状态
type RoomState int

const (
	RoomStateWaiting RoomState = iota // 等待开局（含一局结束后）
	RoomStatePlaying                  // 对局进行中
)

func (s RoomState) String() string {
	switch s {
	case RoomStatePlaying:
		return "playing"
	default:
		return "waiting"
	}
}

// MaxPlayers 房间容量
const MaxPlayers = 2

const (
	initialHandSize = 4 // 每人起手牌数
	initialFaceUp   = 2 // 开局翻开的公共牌数
	maxDiscardHand  = 4 // 牌堆空后手牌超过该数量才需要弃牌
)

// drawCountFor 吃牌后补牌数量：用 1 张手牌补 2 张，用 2 张手牌补 3 张
func drawCountFor(handCards int) int {
	return handCards + 1
}
