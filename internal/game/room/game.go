package room

import (
	"slices"

	"github.com/palemoky/fourteen/internal/apperrors"
	"github.com/palemoky/fourteen/internal/game/card"
)

// MoveKind 行动类型
type MoveKind string

const (
	MoveCombine MoveKind = "combine"
	MovePass    MoveKind = "pass"
)

// Move 一次成功的行动
type Move struct {
	Kind       MoveKind
	PlayerID   string
	PlayerName string
	Captured   []card.Card // 吃到的牌（手牌在前，公共牌在后）
	Points     int         // 本次得分
	Drawn      int         // 本次摸牌数
	Discarded  *card.Card  // 翻到公共区的牌
}

// PlayerScore 结算时的玩家得分
type PlayerScore struct {
	ID          string
	Name        string
	Score       int // 房间内累计得分
	RoundPoints int // 本局吃牌得分
}

// GameResult 一局的结果，平局时没有胜者
type GameResult struct {
	IsTie      bool
	WinnerID   string
	WinnerName string
	Forfeit    bool // 对手中途离开
	Scores     []PlayerScore
}

// StartGame 房主开局：洗好的牌由调用方提供
func (r *Room) StartGame(requesterID string, deck card.Deck) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.startLocked(requesterID, deck)
}

func (r *Room) startLocked(requesterID string, deck card.Deck) error {
	_, requester := r.findPlayer(requesterID)
	if requester == nil {
		return apperrors.ErrNotInRoom
	}
	if r.state == RoomStatePlaying {
		return apperrors.ErrGameStarted
	}
	if len(r.players) != MaxPlayers {
		return apperrors.ErrNotEnoughPlayers
	}
	if !requester.IsHost {
		return apperrors.ErrNotHost
	}

	r.deal(deck)
	return nil
}

// deal 按加入顺序每人发 4 张，再翻开 2 张公共牌（调用方持有锁）
func (r *Room) deal(deck card.Deck) {
	r.deck = slices.Clone(deck)
	for _, p := range r.players {
		p.resetRound()
		p.Hand = r.draw(initialHandSize)
	}
	r.faceUp = r.draw(initialFaceUp)
	r.isDeckEmpty = false
	r.currentID = r.players[0].ID
	r.state = RoomStatePlaying
}

// draw 从牌堆头部摸至多 n 张
func (r *Room) draw(n int) []card.Card {
	n = min(n, len(r.deck))
	drawn := slices.Clone(r.deck[:n])
	r.deck = r.deck[n:]
	return drawn
}

// checkTurn 校验对局状态和行动权（调用方持有锁）
func (r *Room) checkTurn(playerID string) (*Player, error) {
	if r.state != RoomStatePlaying {
		return nil, apperrors.ErrGameNotStart
	}
	_, p := r.findPlayer(playerID)
	if p == nil {
		return nil, apperrors.ErrNotInRoom
	}
	if r.currentID != playerID {
		return nil, apperrors.ErrNotYourTurn
	}
	return p, nil
}

// validSelection 手牌需选 1~2 张不重复且在范围内的牌，公共牌索引需在范围内
func validSelection(handSize, faceUpSize int, handIndices []int, faceUpIndex int) bool {
	if len(handIndices) == 0 || len(handIndices) > 2 {
		return false
	}
	if faceUpIndex < 0 || faceUpIndex >= faceUpSize {
		return false
	}
	for i, idx := range handIndices {
		if idx < 0 || idx >= handSize {
			return false
		}
		if slices.Contains(handIndices[:i], idx) {
			return false
		}
	}
	return true
}

// Combine 用手牌和一张公共牌凑 14 吃牌。任何校验失败都不会修改状态。
func (r *Room) Combine(playerID string, handIndices []int, faceUpIndex int) (*Move, *GameResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.combineLocked(playerID, handIndices, faceUpIndex)
}

func (r *Room) combineLocked(playerID string, handIndices []int, faceUpIndex int) (*Move, *GameResult, error) {
	p, err := r.checkTurn(playerID)
	if err != nil {
		return nil, nil, err
	}
	if !validSelection(len(p.Hand), len(r.faceUp), handIndices, faceUpIndex) {
		return nil, nil, apperrors.ErrInvalidSelection
	}

	captured := append(card.Pick(p.Hand, handIndices), r.faceUp[faceUpIndex])
	if !card.IsCapture(captured) {
		return nil, nil, apperrors.ErrInvalidCombination
	}
	if !p.IsOpened && len(handIndices) > 1 {
		return nil, nil, apperrors.ErrMustOpenWithOneCard
	}
	if r.isDeckEmpty && len(handIndices) > 1 {
		return nil, nil, apperrors.ErrDeckEmptyOneCardOnly
	}

	move := &Move{
		Kind:       MoveCombine,
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Captured:   captured,
		Points:     card.SumPoints(captured),
	}

	p.Score += move.Points
	p.Collected = append(p.Collected, captured...)
	p.Hand = card.RemoveIndices(p.Hand, handIndices)
	r.faceUp = slices.Delete(r.faceUp, faceUpIndex, faceUpIndex+1)
	p.IsOpened = true

	// 补牌：牌堆不足时全部摸完并标记牌堆已空
	need := drawCountFor(len(handIndices))
	if len(r.deck) < need {
		r.isDeckEmpty = true
	}
	drawn := r.draw(need)
	p.Hand = append(p.Hand, drawn...)
	move.Drawn = len(drawn)

	// 弃牌：牌堆未空且有手牌，或牌堆已空但手牌超过 4 张
	if (!r.isDeckEmpty && len(p.Hand) > 0) || (r.isDeckEmpty && len(p.Hand) > maxDiscardHand) {
		move.Discarded = r.discardFront(p)
	}

	return move, r.finishMove(), nil
}

// Pass 过牌：牌堆有牌时摸一张并把最前面的手牌翻到公共区，否则标记牌堆已空
func (r *Room) Pass(playerID string) (*Move, *GameResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.passLocked(playerID)
}

func (r *Room) passLocked(playerID string) (*Move, *GameResult, error) {
	p, err := r.checkTurn(playerID)
	if err != nil {
		return nil, nil, err
	}

	move := &Move{Kind: MovePass, PlayerID: p.ID, PlayerName: p.Name}
	if len(r.deck) > 0 {
		p.Hand = append(p.Hand, r.draw(1)...)
		move.Drawn = 1
		move.Discarded = r.discardFront(p)
	} else {
		r.isDeckEmpty = true
	}

	return move, r.finishMove(), nil
}

// discardFront 将手牌最前面一张翻到公共区
func (r *Room) discardFront(p *Player) *card.Card {
	c := p.Hand[0]
	p.Hand = slices.Delete(p.Hand, 0, 1)
	r.faceUp = append(r.faceUp, c)
	return &c
}

// finishMove 行动结束：判断是否终局，否则轮到下一名玩家
func (r *Room) finishMove() *GameResult {
	if r.isGameOver() {
		result := r.buildResult()
		r.resetRound()
		return result
	}
	r.currentID = r.nextPlayerID(r.currentID)
	return nil
}

// isGameOver 牌堆已空且所有玩家手牌为空
func (r *Room) isGameOver() bool {
	if !r.isDeckEmpty {
		return false
	}
	for _, p := range r.players {
		if len(p.Hand) > 0 {
			return false
		}
	}
	return true
}

// buildResult 得分最高者获胜，最高分有多人时为平局
func (r *Room) buildResult() *GameResult {
	result := &GameResult{Scores: r.scores()}

	best := -1
	for _, s := range result.Scores {
		best = max(best, s.Score)
	}

	var leaders []PlayerScore
	for _, s := range result.Scores {
		if s.Score == best {
			leaders = append(leaders, s)
		}
	}

	if len(leaders) == 1 {
		result.WinnerID = leaders[0].ID
		result.WinnerName = leaders[0].Name
	} else {
		result.IsTie = true
	}
	return result
}

// forfeitResult 对局中有人离开，剩下的玩家获胜
func (r *Room) forfeitResult(winner *Player) *GameResult {
	return &GameResult{
		WinnerID:   winner.ID,
		WinnerName: winner.Name,
		Forfeit:    true,
		Scores:     r.scores(),
	}
}

func (r *Room) scores() []PlayerScore {
	scores := make([]PlayerScore, len(r.players))
	for i, p := range r.players {
		scores[i] = PlayerScore{
			ID:          p.ID,
			Name:        p.Name,
			Score:       p.Score,
			RoundPoints: card.SumPoints(p.Collected),
		}
	}
	return scores
}

// resetRound 重置本局状态，得分保留到下一局
func (r *Room) resetRound() {
	r.deck = nil
	r.faceUp = nil
	r.currentID = ""
	r.isDeckEmpty = false
	r.state = RoomStateWaiting
	for _, p := range r.players {
		p.resetRound()
	}
}
