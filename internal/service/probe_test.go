package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samiya782/SecureCrtScript/internal/config"
	"github.com/samiya782/SecureCrtScript/internal/model"
	"github.com/samiya782/SecureCrtScript/internal/route"
	"github.com/samiya782/SecureCrtScript/pkg/terminal"
)

// scriptReply 脚本化应答：按最近一次发送的命令查表
type scriptReply struct {
	output string // 命令输出（不含提示符，应答时自动补）
	err    error  // 模拟传输故障
}

// scriptedSession 以命令为键应答的假会话
type scriptedSession struct {
	prompt    string
	replies   map[string]scriptReply
	lastCmd   string
	connected bool
	commands  []string
}

func newScriptedSession(prompt string, replies map[string]scriptReply) *scriptedSession {
	return &scriptedSession{prompt: prompt, replies: replies, connected: true}
}

func (s *scriptedSession) Send(text string) error {
	cmd := strings.TrimSpace(text)
	if cmd != "" {
		s.lastCmd = cmd
		s.commands = append(s.commands, cmd)
	}
	return nil
}

func (s *scriptedSession) ReadUntil(sentinels []string, timeout time.Duration) (string, int, error) {
	if len(sentinels) == 0 {
		// 提示符探测时的光标稳定等待
		return "", -1, nil
	}
	reply, ok := s.replies[s.lastCmd]
	if !ok {
		return "", -1, nil // 未脚本化的命令视作超时
	}
	if reply.err != nil {
		return "", -1, reply.err
	}
	// 应答 = 回显 + 输出 + 提示符；提示符是第二个哨兵
	return s.lastCmd + "\n" + reply.output + "\n" + s.prompt, 1, nil
}

func (s *scriptedSession) IsConnected() bool {
	return s.connected
}

func (s *scriptedSession) CursorPosition() (int, int) {
	return 1, len([]rune(s.prompt)) + 1
}

func (s *scriptedSession) ReadRegion(row, colStart, rowEnd, colEnd int) string {
	return s.prompt
}

var _ terminal.Session = (*scriptedSession)(nil)

const ibgpRoute = `Destination/Mask        Proto  Pre Cost      Flags NextHop         Interface
61.133.137.0/24         IBGP   255 0          RD   61.133.137.1    GigabitEthernet1/0/0`

const srRoute = `Destination/Mask        Proto  Pre Cost      Flags NextHop         Interface
10.10.0.0/16            Static 60  0          D    10.10.0.1       GE0/0/1`

func TestRunBatchOneLabelPerTarget(t *testing.T) {
	cfg := config.Default()
	sess := newScriptedSession("<AH-HF-CR01>", map[string]scriptReply{
		"dis ip rou 1.1.1.1":  {output: ibgpRoute},
		"dis ip rou 2.2.2.2":  {err: errors.New("read: connection reset")},
		"dis ip rou 3.3.3.3":  {output: "Info: The route does not exist."},
		"dis ip rou 4.4.4.4":  {output: srRoute},
		"dis cur int GE0/0/1": {output: "interface GigabitEthernet0/0/1\n description dT:AH-HF-CityA.rack1"},
	})

	svc := NewProbeService(cfg)
	task, results, err := svc.RunBatch(context.Background(), sess,
		"192.0.2.1", []string{"1.1.1.1", "2.2.2.2", "3.3.3.3", "4.4.4.4"})

	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, model.TaskStatusSuccess, task.Status)
	assert.Equal(t, "<AH-HF-CR01>", task.Prompt)

	// 目标2的故障被隔离：每个输入仍有且仅有一个标签，顺序保持
	require.Len(t, results, 4)
	assert.Equal(t, "61.133.137.1", results[0].Label)
	assert.Equal(t, route.LabelProcessError, results[1].Label)
	assert.Equal(t, route.LabelNoRoute, results[2].Label)
	assert.Equal(t, "CityA", results[3].Label)

	for i, res := range results {
		assert.Equal(t, i, res.Seq)
	}
}

func TestRunBatchNoPromptAbortsRun(t *testing.T) {
	cfg := config.Default()
	sess := newScriptedSession("", nil) // 光标行为空 → 无法获取提示符

	svc := NewProbeService(cfg)
	task, results, err := svc.RunBatch(context.Background(), sess, "192.0.2.1", []string{"1.1.1.1"})

	assert.ErrorIs(t, err, terminal.ErrNoPrompt)
	assert.Empty(t, results, "提示符探测失败时不做任何目标处理")
	require.NotNil(t, task)
	assert.Equal(t, model.TaskStatusFailed, task.Status)
}

func TestRunBatchAbortsOnDisconnect(t *testing.T) {
	cfg := config.Default()
	sess := newScriptedSession("<AH-HF-CR01>", map[string]scriptReply{
		"dis ip rou 1.1.1.1": {output: ibgpRoute},
	})

	svc := NewProbeService(cfg)

	// 第一个目标处理完后连接断开
	sessWrapper := &disconnectAfter{scriptedSession: sess, allow: 1}

	task, results, err := svc.RunBatch(context.Background(), sessWrapper,
		"192.0.2.1", []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disconnected")
	require.NotNil(t, task)
	assert.Equal(t, model.TaskStatusAborted, task.Status)
	// 断开前完成的结果保留
	require.Len(t, results, 1)
	assert.Equal(t, "61.133.137.1", results[0].Label)
}

func TestRunBatchTimeoutYieldsNoOutputLabel(t *testing.T) {
	cfg := config.Default()
	cfg.Probe.ReadTimeout = 50 * time.Millisecond
	// 未脚本化的命令一律超时应答空文本
	sess := newScriptedSession("<AH-HF-CR01>", map[string]scriptReply{})

	svc := NewProbeService(cfg)
	task, results, err := svc.RunBatch(context.Background(), sess, "192.0.2.1", []string{"5.5.5.5"})

	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusSuccess, task.Status)
	require.Len(t, results, 1)
	// 超时不致命：该目标以"命令无输出"收尾并标记超时
	assert.Equal(t, route.LabelNoOutput, results[0].Label)
	assert.True(t, results[0].TimedOut)
}

// disconnectAfter 处理 allow 个目标后报告连接断开
type disconnectAfter struct {
	*scriptedSession
	allow int
	seen  int
}

func (d *disconnectAfter) IsConnected() bool {
	d.seen++
	return d.seen <= d.allow
}
