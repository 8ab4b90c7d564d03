package route

import (
	"strings"

	"github.com/samiya782/SecureCrtScript/pkg/logger"
)

// RouteRecord `dis ip rou` 输出中一条路由的关键字段
type RouteRecord struct {
	Destination string `json:"destination"`
	Protocol    string `json:"protocol"`
	Flag        string `json:"flag"`
	NextHop     string `json:"nexthop"`
	Interface   string `json:"interface"`
}

// 路由表表头的固定列名（大小写敏感的字面匹配）
const (
	headerDestination = "Destination/Mask"
	headerNextHop     = "NextHop"
)

// 表头后的数据行至少应有的列数：
// Destination/Mask Proto Pre Cost Flags NextHop Interface
const minRouteFields = 7

// ParseRoute 解析 `dis ip rou <ip>` 的输出。
//
// 先定位同时包含 "Destination/Mask" 与 "NextHop" 的表头行，
// 其后第一条能按空白拆出至少7列的非空行即为结果，
// 列 0/1/4/5/6 分别对应目的、协议、标志、下一跳、出接口。
// 只取第一条命中的路由，不做多路由聚合；
// 找不到表头或数据行时返回 nil。
func ParseRoute(output string) *RouteRecord {
	headerFound := false
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if strings.Contains(line, headerDestination) && strings.Contains(line, headerNextHop) {
			headerFound = true
			continue
		}
		if !headerFound || line == "" {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < minRouteFields {
			logger.Debugf("路由行列数不足，跳过: %q", line)
			continue
		}

		rec := &RouteRecord{
			Destination: parts[0],
			Protocol:    parts[1],
			Flag:        parts[4],
			NextHop:     parts[5],
			Interface:   parts[6],
		}
		logger.Debugf("解析到路由记录: %+v", rec)
		return rec
	}

	logger.Debug("输出中未找到可解析的路由记录")
	return nil
}
