package terminal

import (
	"strings"
	"unicode"
)

// TrimOutput 把清洗后的捕获整理为一条命令的逻辑输出：
// 依次剥离命令回显、末尾提示符以及残余的首尾空白。
//
// 回显可能已被翻页处理吞掉或被设备抑制，找不到命令文本时
// 第一步按无事发生处理，不是错误。
func TrimOutput(sanitized, command, prompt string) string {
	cleaned := sanitized

	// 1. 移除命令回显
	sent := strings.TrimSpace(command)
	if sent != "" && strings.HasPrefix(strings.TrimLeftFunc(cleaned, unicode.IsSpace), sent) {
		if idx := strings.Index(cleaned, sent); idx >= 0 {
			cleaned = strings.TrimLeftFunc(cleaned[idx+len(sent):], unicode.IsSpace)
		}
	}

	// 2. 移除结束读取循环的那行提示符
	if prompt != "" {
		trimmed := strings.TrimRightFunc(cleaned, unicode.IsSpace)
		if strings.HasSuffix(trimmed, prompt) {
			cleaned = strings.TrimRightFunc(trimmed[:len(trimmed)-len(prompt)], unicode.IsSpace)
		}
	}

	// 3. 去除整块输出前后的空白
	return strings.TrimSpace(cleaned)
}
