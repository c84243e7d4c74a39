package server

import "math/rand/v2"

// 连接时的临时昵称词库，建房或加入时会被玩家提交的昵称覆盖
var (
	adjectives = []string{
		"勇敢的", "聪明的", "快乐的", "神秘的", "酷炫的",
		"优雅的", "可爱的", "机智的", "淡定的", "呆萌的",
	}

	nouns = []string{
		"熊猫", "老虎", "狐狸", "海豚", "企鹅",
		"柯基", "龙猫", "仓鼠", "水獭", "羊驼",
	}
)

// GenerateNickname 生成随机昵称
func GenerateNickname() string {
	return adjectives[rand.IntN(len(adjectives))] + nouns[rand.IntN(len(nouns))]
}
