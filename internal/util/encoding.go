package util

import (
	"bytes"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"
)

// 运营商网络里的老设备常以 GBK/GB18030 输出接口描述与横幅，
// 直接当 UTF-8 处理会得到乱码，后续的描述提取就永远匹配不上。
var legacyEncodings = []encoding.Encoding{
	simplifiedchinese.GB18030,
	simplifiedchinese.GBK,
	traditionalchinese.Big5,
}

// EnsureUTF8 把可能是传统编码的设备输出转成 UTF-8。
// 已是合法 UTF-8 的文本原样返回；全部解码尝试失败时退回原始字节。
func EnsureUTF8(s string) string {
	if s == "" || utf8.ValidString(s) {
		return s
	}
	b := []byte(s)
	for _, enc := range legacyEncodings {
		if decoded, ok := tryDecode(enc, b); ok {
			return decoded
		}
	}
	return s
}

func tryDecode(enc encoding.Encoding, b []byte) (string, bool) {
	reader := transform.NewReader(bytes.NewReader(b), enc.NewDecoder())
	decoded, err := io.ReadAll(reader)
	if err != nil || !utf8.Valid(decoded) {
		return "", false
	}
	return string(decoded), true
}
