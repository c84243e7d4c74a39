package bot

import "github.com/palemoky/fourteen/internal/protocol"

// captureTarget 吃牌需要凑出的点数
const captureTarget = 14

// Decision 机器人本回合的行动
type Decision struct {
	Pass        bool
	HandIndices []int
	FaceUpIndex int
	Points      int // 预计得分
}

// ChooseMove 选出得分最高的合法吃牌，没有时过牌。
// 未开门或牌堆已空时只考虑单张手牌；同分时取先枚举到的组合。
func ChooseMove(hand, faceUp []protocol.CardInfo, opened, deckEmpty bool) Decision {
	best := Decision{Pass: true, Points: -1}
	consider := func(indices []int, handValue, handPoints int) {
		for j, f := range faceUp {
			if handValue+f.Value != captureTarget {
				continue
			}
			if points := handPoints + f.Points; points > best.Points {
				best = Decision{HandIndices: indices, FaceUpIndex: j, Points: points}
			}
		}
	}

	for i, c := range hand {
		consider([]int{i}, c.Value, c.Points)
	}

	if opened && !deckEmpty {
		for i := range hand {
			for k := i + 1; k < len(hand); k++ {
				consider([]int{i, k}, hand[i].Value+hand[k].Value, hand[i].Points+hand[k].Points)
			}
		}
	}

	if best.Pass {
		best.Points = 0
	}
	return best
}
