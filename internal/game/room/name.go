package room

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// maxNameRunes 昵称最大长度（字符数）
const maxNameRunes = 16

// NormalizeName 规范化玩家昵称：NFC 归一、去除控制字符、折叠空白并截断。
// 结果为空说明昵称无效。
func NormalizeName(name string) string {
	name = norm.NFC.String(name)
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = strings.Join(strings.Fields(name), " ")

	runes := []rune(name)
	if len(runes) > maxNameRunes {
		name = strings.TrimSpace(string(runes[:maxNameRunes]))
	}
	return name
}
