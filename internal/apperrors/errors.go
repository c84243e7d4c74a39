package apperrors

import (
	"github.com/palemoky/fourteen/internal/protocol"
)

// GameError 游戏错误（房间和对局共享），携带协议错误码
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

func newError(code int) *GameError {
	return &GameError{Code: code, Message: protocol.ErrorMessages[code]}
}

// 预定义错误
var (
	ErrInvalidName = newError(protocol.ErrCodeInvalidName)

	ErrRoomNotFound     = newError(protocol.ErrCodeRoomNotFound)
	ErrRoomFull         = newError(protocol.ErrCodeRoomFull)
	ErrNotInRoom        = newError(protocol.ErrCodeNotInRoom)
	ErrGameStarted      = newError(protocol.ErrCodeGameStarted)
	ErrNotHost          = newError(protocol.ErrCodeNotHost)
	ErrNotEnoughPlayers = newError(protocol.ErrCodeNotEnoughPlayers)

	ErrGameNotStart         = newError(protocol.ErrCodeGameNotStart)
	ErrNotYourTurn          = newError(protocol.ErrCodeNotYourTurn)
	ErrInvalidCombination   = newError(protocol.ErrCodeInvalidCombination)
	ErrMustOpenWithOneCard  = newError(protocol.ErrCodeMustOpenWithOneCard)
	ErrDeckEmptyOneCardOnly = newError(protocol.ErrCodeDeckEmptyOneCardOnly)
	ErrInvalidSelection     = newError(protocol.ErrCodeInvalidSelection)
	ErrServerMaintenance    = newError(protocol.ErrCodeServerMaintenance)
)
