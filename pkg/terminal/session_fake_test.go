package terminal

import (
	"time"
)

// readStep 脚本化会话的一次 ReadUntil 应答
type readStep struct {
	text    string
	matched int
	err     error
}

// fakeSession 按脚本逐次应答的假会话，记录所有写入
type fakeSession struct {
	steps     []readStep
	sent      []string
	sendErr   error
	connected bool

	cursorRow  int
	cursorCol  int
	cursorLine string
}

func newFakeSession(steps ...readStep) *fakeSession {
	return &fakeSession{steps: steps, connected: true}
}

func (s *fakeSession) Send(text string) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, text)
	return nil
}

func (s *fakeSession) ReadUntil(sentinels []string, timeout time.Duration) (string, int, error) {
	if len(s.steps) == 0 {
		// 脚本耗尽视作超时
		return "", -1, nil
	}
	step := s.steps[0]
	s.steps = s.steps[1:]
	return step.text, step.matched, step.err
}

func (s *fakeSession) IsConnected() bool { return s.connected }

func (s *fakeSession) CursorPosition() (int, int) { return s.cursorRow, s.cursorCol }

func (s *fakeSession) ReadRegion(row, colStart, rowEnd, colEnd int) string {
	if row != s.cursorRow {
		return ""
	}
	runes := []rune(s.cursorLine)
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

var _ Session = (*fakeSession)(nil)
