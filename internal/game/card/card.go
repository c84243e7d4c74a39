package card

import (
	"fmt"
	"math/rand/v2"
	"strconv"
)

// Suit 定义花色
type Suit int

// Rank 定义牌面
type Rank int

// Card 定义一张牌，创建后不可变
type Card struct {
	Suit Suit
	Rank Rank
}

const (
	Heart   Suit = iota // 红心
	Spade               // 黑桃
	Diamond             // 方块
	Club                // 梅花
	Joker               // 王牌
)

// suitNames 花色标识
var suitNames = map[Suit]string{
	Heart:   "hearts",
	Spade:   "spades",
	Diamond: "diamonds",
	Club:    "clubs",
	Joker:   "joker",
}

// suitSymbols 花色符号映射表
var suitSymbols = map[Suit]string{
	Heart:   "♥",
	Spade:   "♠",
	Diamond: "♦",
	Club:    "♣",
	Joker:   "🃏",
}

// suitPoints 吃牌得分，只与花色有关
var suitPoints = map[Suit]int{
	Heart:   4,
	Spade:   3,
	Diamond: 2,
	Club:    1,
	Joker:   5,
}

func (s Suit) String() string {
	if name, ok := suitNames[s]; ok {
		return name
	}
	return ""
}

// Symbol 返回花色符号
func (s Suit) Symbol() string {
	return suitSymbols[s]
}

// Points 返回该花色的吃牌得分
func (s Suit) Points() int {
	return suitPoints[s]
}

const (
	RankA Rank = iota + 1
	Rank2
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
	Rank9
	Rank10
	RankJ
	RankQ
	RankK
	RankSmallJoker
	RankBigJoker
)

// JokerValue 王牌的点数
const JokerValue = 5

// DeckSize 一副牌的张数
const DeckSize = 54

// rankNames 牌面显示
var rankNames = map[Rank]string{
	RankA:          "A",
	RankJ:          "J",
	RankQ:          "Q",
	RankK:          "K",
	RankSmallJoker: "small",
	RankBigJoker:   "big",
}

func (r Rank) String() string {
	if name, ok := rankNames[r]; ok {
		return name
	}
	return strconv.Itoa(int(r))
}

// IsJoker 是否为王牌
func (c Card) IsJoker() bool {
	return c.Suit == Joker
}

// Value 返回参与凑 14 的点数：A=1 ... K=13，王牌为 5
func (c Card) Value() int {
	if c.IsJoker() {
		return JokerValue
	}
	return int(c.Rank)
}

// Points 返回吃到这张牌的得分
func (c Card) Points() int {
	return c.Suit.Points()
}

// ID 返回稳定的牌标识，如 hearts-A、joker-small
func (c Card) ID() string {
	return fmt.Sprintf("%s-%s", c.Suit, c.Rank)
}

func (c Card) String() string {
	if c.IsJoker() {
		if c.Rank == RankBigJoker {
			return "大王"
		}
		return "小王"
	}
	return c.Suit.Symbol() + c.Rank.String()
}

// ParseID 将牌标识解析为 Card
func ParseID(id string) (Card, error) {
	for _, c := range NewDeck() {
		if c.ID() == id {
			return c, nil
		}
	}
	return Card{}, fmt.Errorf("无法识别的牌: %s", id)
}

// Deck 定义一副牌，从头部开始摸牌
type Deck []Card

// NewDeck 按固定顺序生成 52 张花色牌和 2 张王牌
func NewDeck() Deck {
	deck := make(Deck, 0, DeckSize)
	for s := Heart; s <= Club; s++ {
		for r := RankA; r <= RankK; r++ {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	deck = append(deck,
		Card{Suit: Joker, Rank: RankSmallJoker},
		Card{Suit: Joker, Rank: RankBigJoker},
	)
	return deck
}

// Shuffle 原地洗牌（Fisher-Yates），rng 为空时使用全局随机源
func (d Deck) Shuffle(rng *rand.Rand) {
	swap := func(i, j int) { d[i], d[j] = d[j], d[i] }
	if rng == nil {
		rand.Shuffle(len(d), swap)
		return
	}
	rng.Shuffle(len(d), swap)
}

// NewShuffledDeck 返回一副洗好的新牌
func NewShuffledDeck(rng *rand.Rand) Deck {
	d := NewDeck()
	d.Shuffle(rng)
	return d
}
