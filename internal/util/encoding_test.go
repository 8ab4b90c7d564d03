package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestEnsureUTF8PassthroughValid(t *testing.T) {
	assert.Equal(t, "", EnsureUTF8(""))
	assert.Equal(t, "plain ascii", EnsureUTF8("plain ascii"))
	assert.Equal(t, "接口描述", EnsureUTF8("接口描述"))
}

func TestEnsureUTF8DecodesGBK(t *testing.T) {
	// 设备以GBK输出"新城"时应正确转为UTF-8
	gbk, err := simplifiedchinese.GBK.NewEncoder().String("新城")
	assert.NoError(t, err)
	assert.NotEqual(t, "新城", gbk) // 编码后确实不是UTF-8形式

	assert.Equal(t, "新城", EnsureUTF8(gbk))
}
