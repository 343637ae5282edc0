package sandbox

import (
	"regexp"
	"strings"
)

// DummyFlag 预埋在 debug_flags 表里的诱饵旗帜
const DummyFlag = "FLAG{YOU_FOUND_ME_BUT_TRY_HARDER}"

type FlagKind string

const (
	FlagNone   FlagKind = ""
	FlagExact  FlagKind = "exact"
	FlagCaesar FlagKind = "caesar" // 找到了 ROT13 形态但没解码
	FlagDecoy  FlagKind = "decoy"
)

var (
	flagPattern   = regexp.MustCompile(`(?i)FLAG\{[^}]+\}`)
	caesarPattern = regexp.MustCompile(`(?i)SYNT\{[^}]+\}`)
)

// Detector 对结果集做纯分类，不落任何状态。
// 匹配目标从当前配置的旗帜动态推出（ROT13 形态现算），换旗不用改代码。
type Detector struct {
	correctFlag  string
	caesarFlag   string
	marker       string
	caesarMarker string
}

func NewDetector(correctFlag string) *Detector {
	marker := strings.TrimSuffix(strings.TrimPrefix(correctFlag, "FLAG{"), "}")
	return &Detector{
		correctFlag:  correctFlag,
		caesarFlag:   Rot13(correctFlag),
		marker:       marker,
		caesarMarker: Rot13(marker),
	}
}

// Scan 扫描所有字符串单元格，单元格内按 精确 > ROT13 > 诱饵 > 模式匹配 的优先级取第一个命中
func (d *Detector) Scan(rows [][]interface{}) FlagKind {
	for _, row := range rows {
		for _, cell := range row {
			s, ok := cell.(string)
			if !ok || s == "" {
				continue
			}
			if kind := d.classify(s); kind != FlagNone {
				return kind
			}
		}
	}
	return FlagNone
}

func (d *Detector) classify(s string) FlagKind {
	if s == d.correctFlag {
		return FlagExact
	}
	if s == d.caesarFlag {
		return FlagCaesar
	}
	if s == DummyFlag {
		return FlagDecoy
	}
	// 用户自行拼接/解码出的形态：带预期内容的 FLAG{...} 或 SYNT{...}
	if flagPattern.MatchString(s) && strings.Contains(s, d.marker) {
		return FlagExact
	}
	if caesarPattern.MatchString(s) && strings.Contains(s, d.caesarMarker) {
		return FlagCaesar
	}
	return FlagNone
}

// Rot13 固定 13 位字母替换，数字和符号原样保留
func Rot13(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z':
			return 'A' + (r-'A'+13)%26
		case r >= 'a' && r <= 'z':
			return 'a' + (r-'a'+13)%26
		}
		return r
	}, s)
}
