package ssh

import (
	"strings"
	"sync"

	"github.com/samiya782/SecureCrtScript/pkg/terminal"
)

// 屏幕模型保留的最大行数，超出后丢弃最旧的行。
// 提示符探测只关心光标所在行，不需要完整回放。
const maxScreenLines = 256

// screenModel 从输出流还原一个简化的屏幕：
// 换行开新行，孤立回车把光标拉回行首（行内覆盖）。
// 转义序列在进入模型前就被清掉，保证读到的提示符是纯文本。
type screenModel struct {
	mu    sync.Mutex
	lines []string
}

func newScreenModel() *screenModel {
	return &screenModel{lines: []string{""}}
}

func (m *screenModel) apply(chunk string) {
	cleaned := terminal.Sanitize(chunk)
	cleaned = strings.ReplaceAll(cleaned, "\r\n", "\n")

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range cleaned {
		switch r {
		case '\n':
			m.lines = append(m.lines, "")
			if len(m.lines) > maxScreenLines {
				m.lines = m.lines[len(m.lines)-maxScreenLines:]
			}
		case '\r':
			// 行内覆盖：光标回到行首
			m.lines[len(m.lines)-1] = ""
		default:
			m.lines[len(m.lines)-1] += string(r)
		}
	}
}

// cursor 当前光标位置，行列均从1开始
func (m *screenModel) cursor() (row, col int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	last := m.lines[len(m.lines)-1]
	return len(m.lines), len([]rune(last)) + 1
}

// region 读取某一行的列区间（闭区间），越界部分自动收窄
func (m *screenModel) region(row, colStart, colEnd int) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if row < 1 || row > len(m.lines) {
		return ""
	}
	runes := []rune(m.lines[row-1])
	if colStart < 1 {
		colStart = 1
	}
	if colEnd > len(runes) {
		colEnd = len(runes)
	}
	if colStart > colEnd {
		return ""
	}
	return string(runes[colStart-1 : colEnd])
}
