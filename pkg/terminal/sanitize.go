package terminal

import "regexp"

// 正则在包加载时编译一次。
var (
	// lineOverwritePattern 匹配设备翻页时用于原地擦除
	// "---- More ----" 横幅的行内覆盖序列：
	// 空白 + 光标回退 + 空白 + 光标回退。
	lineOverwritePattern = regexp.MustCompile(`\s*\x1b\[\d+D\s+\x1b\[\d+D`)

	// ansiEscapePattern 匹配其余通用 ANSI 转义序列（CSI 光标/颜色控制
	// 与 OSC 标题设置等），统一删除。
	ansiEscapePattern = regexp.MustCompile(`\x1b(?:\[[0-?]*[ -/]*[@-~]|\].*?(?:\x07|\x1b\\))`)
)

// Sanitize 清洗终端原始输出。
//
// 两步顺序不可交换：必须先把翻页覆盖序列替换为换行，再删除其余转义码。
// 覆盖序列若被当作普通噪声直接删除，横幅前后两行会被粘在一起，
// 破坏表格输出的列对齐；而先跑通用删除会拆掉覆盖序列本身的结构，
// 使第一步再也匹配不到。
func Sanitize(text string) string {
	cleaned := lineOverwritePattern.ReplaceAllString(text, "\n")
	return ansiEscapePattern.ReplaceAllString(cleaned, "")
}
