package logger

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// DebugCapture 在debug级别记录一次命令捕获的首尾数行，
// 避免整页路由表刷进日志文件。
func DebugCapture(command string, capture string, maxLines int) {
	if GetLogger().Level < logrus.DebugLevel {
		return
	}
	if maxLines <= 0 {
		maxLines = 5
	}

	normalized := strings.ReplaceAll(capture, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	lines := strings.Split(normalized, "\n")

	if len(lines) <= maxLines*2 {
		Debugf("命令[%s]输出: %s", strings.TrimSpace(command), strings.Join(lines, " ⟩ "))
		return
	}

	head := strings.Join(lines[:maxLines], " ⟩ ")
	tail := strings.Join(lines[len(lines)-maxLines:], " ⟩ ")
	Debugf("命令[%s]输出: head[%s] ... tail[%s]", strings.TrimSpace(command), head, tail)
}
