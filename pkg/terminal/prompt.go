package terminal

import (
	"strings"
	"time"

	"github.com/samiya782/SecureCrtScript/pkg/logger"
)

// DefaultPromptSettle 发送换行后等待光标稳定的时间
const DefaultPromptSettle = 300 * time.Millisecond

// DetectPrompt 获取设备的命令提示符。
//
// 发送一次换行触发屏幕刷新，等待光标稳定后读取光标所在行
// （从第1列到光标前一列）并去除首尾空白。每个会话只需探测一次，
// 之后提示符作为只读哨兵贯穿整个批次。
func DetectPrompt(s Session, settle time.Duration) (string, error) {
	if settle <= 0 {
		settle = DefaultPromptSettle
	}

	if err := s.Send("\n"); err != nil {
		return "", err
	}
	// 无哨兵的短读等价于等待光标稳定
	if _, _, err := s.ReadUntil(nil, settle); err != nil {
		return "", err
	}

	row, col := s.CursorPosition()
	prompt := strings.TrimSpace(s.ReadRegion(row, 1, row, col-1))
	if prompt == "" {
		// 拿不到提示符说明未连接或未登录，继续跑只会得到一堆超时
		return "", ErrNoPrompt
	}

	logger.Debugf("检测到设备提示符: %q", prompt)
	return prompt, nil
}
