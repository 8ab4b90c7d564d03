package ssh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScreenModelCursorAndRegion(t *testing.T) {
	m := newScreenModel()
	m.apply("Welcome banner\r\n<AH-HF-CR01>")

	row, col := m.cursor()
	assert.Equal(t, 2, row)
	assert.Equal(t, len("<AH-HF-CR01>")+1, col)
	assert.Equal(t, "<AH-HF-CR01>", m.region(row, 1, col-1))
}

func TestScreenModelCarriageReturnOverwrites(t *testing.T) {
	// 孤立回车把光标拉回行首，行内内容被覆盖
	m := newScreenModel()
	m.apply("---- More ----\r<Device>")

	row, col := m.cursor()
	assert.Equal(t, 1, row)
	assert.Equal(t, "<Device>", m.region(row, 1, col-1))
}

func TestScreenModelStripsEscapes(t *testing.T) {
	m := newScreenModel()
	m.apply("\x1b[2J\x1b[1;1H<Device>")

	row, col := m.cursor()
	assert.Equal(t, "<Device>", m.region(row, 1, col-1))
}

func TestScreenModelRegionBounds(t *testing.T) {
	m := newScreenModel()
	m.apply("abc")

	assert.Equal(t, "", m.region(5, 1, 3), "越界行返回空")
	assert.Equal(t, "abc", m.region(1, 1, 99), "列越界自动收窄")
	assert.Equal(t, "", m.region(1, 3, 2))
}

func TestConsumeSentinelEarliestMatchWins(t *testing.T) {
	s := &ShellSession{pending: "head ---- More ---- tail <Device>"}

	text, idx, ok := s.consumeSentinel([]string{"---- More ----", "<Device>"})

	assert.True(t, ok)
	assert.Equal(t, 0, idx, "先出现的哨兵优先，而不是列表顺序")
	assert.Equal(t, "head ---- More ----", text)
	assert.Equal(t, " tail <Device>", s.pending)

	text, idx, ok = s.consumeSentinel([]string{"---- More ----", "<Device>"})
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, " tail <Device>", text)
	assert.Equal(t, "", s.pending)
}

func TestConsumeSentinelNoMatch(t *testing.T) {
	s := &ShellSession{pending: "partial output"}

	_, idx, ok := s.consumeSentinel([]string{"<Device>"})

	assert.False(t, ok)
	assert.Equal(t, -1, idx)
	assert.Equal(t, "partial output", s.pending, "未命中时缓冲保持不动")
}
