package card

import (
	"slices"
	"strings"
)

// Target 吃牌需要凑出的点数
const Target = 14

// SumValues 计算一组牌的点数和
func SumValues(cards []Card) int {
	sum := 0
	for _, c := range cards {
		sum += c.Value()
	}
	return sum
}

// SumPoints 计算一组牌的得分和
func SumPoints(cards []Card) int {
	sum := 0
	for _, c := range cards {
		sum += c.Points()
	}
	return sum
}

// IsCapture 判断这组牌是否恰好凑成 14
func IsCapture(cards []Card) bool {
	return SumValues(cards) == Target
}

// Pick 按索引取出牌（不修改原切片）
func Pick(hand []Card, indices []int) []Card {
	picked := make([]Card, 0, len(indices))
	for _, i := range indices {
		picked = append(picked, hand[i])
	}
	return picked
}

// RemoveIndices 移除指定索引的牌，其余牌保持原有顺序
func RemoveIndices(hand []Card, indices []int) []Card {
	sorted := slices.Clone(indices)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	result := slices.Clone(hand)
	for i := len(sorted) - 1; i >= 0; i-- {
		result = slices.Delete(result, sorted[i], sorted[i]+1)
	}
	return result
}

// Format 将一组牌格式化为可读字符串
func Format(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
