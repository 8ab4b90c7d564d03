package terminal

import (
	"strings"
	"time"

	"github.com/samiya782/SecureCrtScript/pkg/logger"
)

// 读取循环状态机
type readState int

const (
	stateSending readState = iota
	stateReading
	statePaginated
	stateDone
	stateTimedOut
)

const (
	// DefaultMorePrompt 华为/H3C 设备的翻页横幅
	DefaultMorePrompt = "---- More ----"
	// DefaultPageKey 继续翻页的按键
	DefaultPageKey = " "
	// DefaultReadTimeout 单次读取的默认超时
	DefaultReadTimeout = 10 * time.Second
)

// RawCapture 一次读取循环累积的原始输出
type RawCapture struct {
	// Text 按到达顺序拼接的全部文本块（未清洗）
	Text string
	// Complete false 表示读取超时，输出可能不完整
	Complete bool
	// Pages 命中翻页横幅的次数
	Pages int
}

// Reader 发送命令并读取完整输出，自动处理分页。
type Reader struct {
	// MorePrompt 翻页横幅文本，空则使用 DefaultMorePrompt
	MorePrompt string
	// PageKey 翻页按键，空则使用 DefaultPageKey
	PageKey string
}

// NewReader 创建使用默认翻页参数的 Reader
func NewReader() *Reader {
	return &Reader{MorePrompt: DefaultMorePrompt, PageKey: DefaultPageKey}
}

func (r *Reader) morePrompt() string {
	if r.MorePrompt != "" {
		return r.MorePrompt
	}
	return DefaultMorePrompt
}

func (r *Reader) pageKey() string {
	if r.PageKey != "" {
		return r.PageKey
	}
	return DefaultPageKey
}

// ReadUntilPrompt 发送命令并循环读取，直到真正的提示符重新出现或超时。
//
// 翻页横幅不是错误：命中横幅就发送翻页键继续读下一页，
// 提示符只会在输出全部吐完后出现，因此以它作为结束哨兵
// 可以完整取到多页输出。单次读取直接取提示符会截断长输出。
// 无论正常结束还是超时，已累积的捕获都会返回，Complete 标记区分两者。
func (r *Reader) ReadUntilPrompt(s Session, command, prompt string, timeout time.Duration) (RawCapture, error) {
	capture := RawCapture{}
	if prompt == "" {
		return capture, ErrEmptyPrompt
	}
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}

	sentinels := []string{r.morePrompt(), prompt}
	var buf strings.Builder
	state := stateSending

	for {
		switch state {
		case stateSending:
			logger.Debugf("发送命令: %s", strings.TrimSpace(command))
			if err := s.Send(command); err != nil {
				return capture, err
			}
			state = stateReading

		case stateReading:
			// 无论命中哪个哨兵（或都没命中），已到达的文本一律计入捕获
			text, matched, err := s.ReadUntil(sentinels, timeout)
			buf.WriteString(text)
			if err != nil {
				capture.Text = buf.String()
				return capture, err
			}
			switch matched {
			case 0:
				state = statePaginated
			case 1:
				state = stateDone
			default:
				state = stateTimedOut
			}

		case statePaginated:
			capture.Pages++
			logger.Debugf("检测到翻页横幅（第%d页），发送翻页键继续读取", capture.Pages)
			if err := s.Send(r.pageKey()); err != nil {
				capture.Text = buf.String()
				return capture, err
			}
			state = stateReading

		case stateDone:
			capture.Text = buf.String()
			capture.Complete = true
			return capture, nil

		case stateTimedOut:
			capture.Text = buf.String()
			capture.Complete = false
			logger.Warnf("等待 %q 或 %q 超时，输出可能不完整", prompt, r.morePrompt())
			return capture, nil
		}
	}
}
