package terminal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimOutputStripsEchoAndPrompt(t *testing.T) {
	command := "dis ip rou 1.1.1.1\n"
	prompt := "<Device>"
	sanitized := "dis ip rou 1.1.1.1\n<routing table>\n<Device>"

	assert.Equal(t, "<routing table>", TrimOutput(sanitized, command, prompt))
}

func TestTrimOutputEchoMissingIsNoop(t *testing.T) {
	// 回显可能被翻页处理吞掉，找不到命令文本不是错误
	command := "dis ip rou 1.1.1.1\n"
	prompt := "<Device>"
	sanitized := "Routing Table : Public\n<Device>"

	assert.Equal(t, "Routing Table : Public", TrimOutput(sanitized, command, prompt))
}

func TestTrimOutputPromptMissing(t *testing.T) {
	// 超时捕获可能没有末尾提示符
	command := "dis ip rou 1.1.1.1\n"
	sanitized := "  dis ip rou 1.1.1.1\r\npartial output   "

	assert.Equal(t, "partial output", TrimOutput(sanitized, command, "<Device>"))
}

func TestTrimOutputLeadingWhitespaceBeforeEcho(t *testing.T) {
	command := "  dis cur int GE0/0/1  \n"
	prompt := "[Device]"
	sanitized := "\r\n dis cur int GE0/0/1\n interface GigabitEthernet0/0/1\n description dT:AH-HF-CityA.rack1\n[Device]"

	got := TrimOutput(sanitized, command, prompt)
	assert.Equal(t, "interface GigabitEthernet0/0/1\n description dT:AH-HF-CityA.rack1", got)
}

func TestTrimOutputEmpty(t *testing.T) {
	assert.Equal(t, "", TrimOutput("", "cmd\n", "<Device>"))
	assert.Equal(t, "", TrimOutput("   \r\n  ", "", ""))
}
