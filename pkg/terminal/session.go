package terminal

import (
	"errors"
	"time"
)

// Session 抽象一个已登录的交互式终端会话。
// 由传输层（如 pkg/ssh）提供实现；测试中用脚本化的假会话代替。
type Session interface {
	// Send 向会话写入文本（命令需自带行结束符）
	Send(text string) error
	// ReadUntil 阻塞读取，直到任一 sentinel 出现或超时。
	// 返回本次读取到的全部文本（含命中的 sentinel）；matched 为命中的
	// sentinel 下标，超时未命中时为 -1。err 仅表示传输层故障，超时不是错误。
	ReadUntil(sentinels []string, timeout time.Duration) (text string, matched int, err error)
	// IsConnected 检查底层连接是否仍然可用
	IsConnected() bool
	// CursorPosition 返回当前光标位置（行列均从1开始）
	CursorPosition() (row, col int)
	// ReadRegion 读取屏幕区域内的文本（列区间为闭区间）
	ReadRegion(row, colStart, rowEnd, colEnd int) string
}

var (
	// ErrNoPrompt 未能获取设备提示符；会话不可用，整个批次必须终止
	ErrNoPrompt = errors.New("terminal: no prompt detected")
	// ErrEmptyPrompt 调用方传入了空提示符哨兵
	ErrEmptyPrompt = errors.New("terminal: prompt sentinel is empty")
)
