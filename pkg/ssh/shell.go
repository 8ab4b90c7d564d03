package ssh

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/samiya782/SecureCrtScript/pkg/terminal"
)

// ShellSession 在设备的 PTY Shell 上实现 terminal.Session。
// 所有读写都串行发生在同一个会话上：设备一次只处理一条命令，
// 上层的读取循环天然保证了这一点。
type ShellSession struct {
	client  *Client
	session *ssh.Session
	stdin   io.WriteCloser

	chunks chan string // 读取协程推送的原始文本块

	mu      sync.Mutex
	pending string // 已到达但尚未被 ReadUntil 消费的文本
	readErr error
	closed  bool

	screen *screenModel
}

// OpenShell 打开交互式Shell并返回终端会话
func (c *Client) OpenShell() (*ShellSession, error) {
	c.mutex.RLock()
	conn := c.connection
	c.mutex.RUnlock()
	if conn == nil {
		return nil, fmt.Errorf("SSH connection not established")
	}

	session, err := conn.NewSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	// 启用回显，兼容网络设备CLI
	modes := ssh.TerminalModes{
		ssh.ECHO:          1,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}

	width, height := c.config.TerminalWidth, c.config.TerminalHeight
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}

	// 终端类型回退：优先 vt100，再尝试 xterm/ansi/dumb
	var ptyErr error
	for _, term := range []string{"vt100", "xterm", "ansi", "dumb"} {
		if ptyErr = session.RequestPty(term, width, height, modes); ptyErr == nil {
			break
		}
	}
	if ptyErr != nil {
		session.Close()
		return nil, fmt.Errorf("failed to request pty: %w", ptyErr)
	}

	stdin, err := session.StdinPipe()
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to get stdin: %w", err)
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to get stdout: %w", err)
	}
	stderr, err := session.StderrPipe()
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to get stderr: %w", err)
	}

	if err := session.Shell(); err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to start shell: %w", err)
	}

	s := &ShellSession{
		client:  c,
		session: session,
		stdin:   stdin,
		chunks:  make(chan string, 256),
		screen:  newScreenModel(),
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go s.pump(stdout, &wg)
	go s.pump(stderr, &wg)
	go func() {
		wg.Wait()
		close(s.chunks)
	}()

	// 促使设备输出当前提示符（网络设备通常期望 CRLF）
	_, _ = stdin.Write([]byte("\r\n"))

	return s, nil
}

// pump 持续读取管道，同步更新屏幕模型并推送到文本块通道
func (s *ShellSession) pump(r io.Reader, wg *sync.WaitGroup) {
	defer wg.Done()
	buf := make([]byte, 2048)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := string(buf[:n])
			s.screen.apply(chunk)
			s.chunks <- chunk
		}
		if err != nil {
			if err != io.EOF {
				s.mu.Lock()
				if s.readErr == nil {
					s.readErr = err
				}
				s.mu.Unlock()
			}
			return
		}
	}
}

// Send 向会话写入文本。以 \n 结尾的命令转为 CRLF。
func (s *ShellSession) Send(text string) error {
	if strings.HasSuffix(text, "\n") && !strings.HasSuffix(text, "\r\n") {
		text = strings.TrimSuffix(text, "\n") + "\r\n"
	}
	_, err := s.stdin.Write([]byte(text))
	return err
}

// ReadUntil 读取直到任一哨兵出现或超时。
// 命中时返回含哨兵在内的已消费文本与哨兵下标；
// 超时返回已到达的全部文本与 -1，超时本身不是错误。
func (s *ShellSession) ReadUntil(sentinels []string, timeout time.Duration) (string, int, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		if text, idx, ok := s.consumeSentinel(sentinels); ok {
			return text, idx, nil
		}

		select {
		case chunk, ok := <-s.chunks:
			if !ok {
				// 流已结束：吐出剩余缓冲并报告读取错误
				s.mu.Lock()
				text := s.pending
				s.pending = ""
				err := s.readErr
				s.mu.Unlock()
				if err == nil {
					err = io.EOF
				}
				return text, -1, err
			}
			s.mu.Lock()
			s.pending += chunk
			s.mu.Unlock()
		case <-timer.C:
			s.mu.Lock()
			text := s.pending
			s.pending = ""
			s.mu.Unlock()
			return text, -1, nil
		}
	}
}

// consumeSentinel 在缓冲中查找最先出现的哨兵；
// 命中时消费到哨兵结尾为止的文本。
func (s *ShellSession) consumeSentinel(sentinels []string) (string, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	best, bestIdx := -1, -1
	for i, sentinel := range sentinels {
		if sentinel == "" {
			continue
		}
		if pos := strings.Index(s.pending, sentinel); pos >= 0 {
			if best < 0 || pos < best {
				best, bestIdx = pos, i
			}
		}
	}
	if bestIdx < 0 {
		return "", -1, false
	}

	end := best + len(sentinels[bestIdx])
	text := s.pending[:end]
	s.pending = s.pending[end:]
	return text, bestIdx, true
}

// IsConnected 检查底层连接是否仍然可用
func (s *ShellSession) IsConnected() bool {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	return !closed && s.client.IsConnected()
}

// CursorPosition 返回屏幕模型中的当前光标位置（行列从1开始）
func (s *ShellSession) CursorPosition() (int, int) {
	return s.screen.cursor()
}

// ReadRegion 读取屏幕区域文本；目前只支持单行区域（提示符探测只需要这个）
func (s *ShellSession) ReadRegion(row, colStart, rowEnd, colEnd int) string {
	return s.screen.region(row, colStart, colEnd)
}

// Close 关闭Shell会话（不关闭底层连接）
func (s *ShellSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	_ = s.stdin.Close()
	return s.session.Close()
}

var _ terminal.Session = (*ShellSession)(nil)
