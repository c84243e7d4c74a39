package room

import (
	"slices"
)

// departure 玩家离开房间后的结果
type departure struct {
	player *Player
	result *GameResult // 对局中途离开时的判负结果
	empty  bool        // 房间已无人
}

// removePlayer 移除玩家（调用方持有锁）。
// 行动权按稳定 ID 重新定位，房主离开时由下一名玩家接任。
func (r *Room) removePlayer(id string) *departure {
	idx, p := r.findPlayer(id)
	if p == nil {
		return nil
	}

	// 先确定接手行动权的玩家，再从顺序中移除
	nextID := r.currentID
	if r.currentID == id {
		nextID = r.nextPlayerID(id)
	}
	r.players = slices.Delete(r.players, idx, idx+1)
	if nextID == id {
		nextID = ""
	}
	r.currentID = nextID

	d := &departure{player: p, empty: len(r.players) == 0}
	if d.empty {
		return d
	}

	if p.IsHost {
		r.players[0].IsHost = true
	}

	// 对局中人数不足，本局作废，剩下的玩家获胜
	if r.state == RoomStatePlaying && len(r.players) < MaxPlayers {
		d.result = r.forfeitResult(r.players[0])
		r.resetRound()
	}
	return d
}
