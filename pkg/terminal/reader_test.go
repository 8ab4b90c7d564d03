package terminal

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadUntilPromptDrainsPagination(t *testing.T) {
	// 两次翻页横幅后出现真正的提示符
	sess := newFakeSession(
		readStep{text: "page one ---- More ----", matched: 0},
		readStep{text: "page two ---- More ----", matched: 0},
		readStep{text: "page three\n<Device>", matched: 1},
	)

	reader := NewReader()
	capture, err := reader.ReadUntilPrompt(sess, "dis ip rou 1.1.1.1\n", "<Device>", time.Second)

	require.NoError(t, err)
	assert.True(t, capture.Complete)
	assert.Equal(t, 2, capture.Pages)
	// 捕获是三次读取块的按序拼接
	assert.Equal(t, "page one ---- More ----page two ---- More ----page three\n<Device>", capture.Text)
	// 每次横幅恰好触发一次翻页键
	require.Len(t, sess.sent, 3)
	assert.Equal(t, "dis ip rou 1.1.1.1\n", sess.sent[0])
	assert.Equal(t, " ", sess.sent[1])
	assert.Equal(t, " ", sess.sent[2])
}

func TestReadUntilPromptImmediateFinish(t *testing.T) {
	sess := newFakeSession(
		readStep{text: "short output\n<Device>", matched: 1},
	)

	capture, err := NewReader().ReadUntilPrompt(sess, "dis ip rou 2.2.2.2\n", "<Device>", time.Second)

	require.NoError(t, err)
	assert.True(t, capture.Complete)
	assert.Zero(t, capture.Pages)
	assert.Equal(t, []string{"dis ip rou 2.2.2.2\n"}, sess.sent)
}

func TestReadUntilPromptTimeout(t *testing.T) {
	// 哨兵一直没出现：已到达的文本仍计入捕获，超时通过标志上报而非错误
	sess := newFakeSession(
		readStep{text: "partial out", matched: -1},
	)

	capture, err := NewReader().ReadUntilPrompt(sess, "dis ip rou 3.3.3.3\n", "<Device>", time.Second)

	require.NoError(t, err)
	assert.False(t, capture.Complete)
	assert.Equal(t, "partial out", capture.Text)
}

func TestReadUntilPromptTimeoutAfterPagination(t *testing.T) {
	sess := newFakeSession(
		readStep{text: "page one ---- More ----", matched: 0},
		readStep{text: "tail without prompt", matched: -1},
	)

	capture, err := NewReader().ReadUntilPrompt(sess, "dis ip rou 4.4.4.4\n", "<Device>", time.Second)

	require.NoError(t, err)
	assert.False(t, capture.Complete)
	assert.Equal(t, 1, capture.Pages)
	assert.Equal(t, "page one ---- More ----tail without prompt", capture.Text)
}

func TestReadUntilPromptEmptyPrompt(t *testing.T) {
	// 空提示符哨兵说明会话不可用，必须快速失败
	sess := newFakeSession()
	_, err := NewReader().ReadUntilPrompt(sess, "dis ip rou 1.1.1.1\n", "", time.Second)
	assert.ErrorIs(t, err, ErrEmptyPrompt)
	assert.Empty(t, sess.sent, "快速失败时不应向会话写入任何内容")
}

func TestReadUntilPromptTransportError(t *testing.T) {
	transportErr := errors.New("connection reset")
	sess := newFakeSession(
		readStep{text: "some bytes", matched: -1, err: transportErr},
	)

	capture, err := NewReader().ReadUntilPrompt(sess, "dis ip rou 1.1.1.1\n", "<Device>", time.Second)

	assert.ErrorIs(t, err, transportErr)
	// 传输失败前已到达的文本不丢弃
	assert.Equal(t, "some bytes", capture.Text)
}

func TestReaderCustomMorePrompt(t *testing.T) {
	sess := newFakeSession(
		readStep{text: "p1 --More--", matched: 0},
		readStep{text: "p2\nRouter#", matched: 1},
	)

	reader := &Reader{MorePrompt: "--More--", PageKey: " "}
	capture, err := reader.ReadUntilPrompt(sess, "show ip route 1.1.1.1\n", "Router#", time.Second)

	require.NoError(t, err)
	assert.Equal(t, 1, capture.Pages)
	assert.True(t, capture.Complete)
}
