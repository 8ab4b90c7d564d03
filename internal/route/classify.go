package route

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/samiya782/SecureCrtScript/pkg/logger"
)

// 分类结果的固定文案，与既有运维表格保持一致
const (
	LabelNoRoute       = "未找到路由信息"
	LabelNoRuleMatched = "未匹配任何已知规则"
	LabelDescUnmatched = "SR描述未匹配提取规则"
	LabelNoOutput      = "命令无输出"
	LabelProcessError  = "处理时发生错误"
)

// FollowUpFunc 发起一次附加的命令/应答往返（查询接口配置），
// 由调用方提供，使分类器与会话传输解耦。
type FollowUpFunc func(iface string) (string, error)

// PrefixLabel 下一跳前缀到类别名的映射
type PrefixLabel struct {
	Prefix string `json:"prefix"`
	Label  string `json:"label"`
}

// Options 分类规则参数；零值字段取默认
type Options struct {
	// DescriptionMarker 接口配置中描述行的起始标记
	DescriptionMarker string
	// SitePrefix 描述中站点名的前缀标记，站点名取前缀与下一个'.'之间的内容
	SitePrefix string
	// PrefixLabels 按序评估的下一跳前缀规则
	PrefixLabels []PrefixLabel
}

// DefaultOptions 安徽合肥现网使用的规则参数
func DefaultOptions() Options {
	return Options{
		DescriptionMarker: "description dT:",
		SitePrefix:        "AH-HF-",
		PrefixLabels: []PrefixLabel{
			{Prefix: "124", Label: "新城"},
			{Prefix: "202", Label: "出省地址"},
		},
	}
}

// rule 一条有守卫条件的分类规则
type rule struct {
	name  string
	match func(*RouteRecord) bool
	apply func(*RouteRecord, FollowUpFunc) (string, error)
}

// Classifier 对路由记录应用有序规则表，首条命中生效。
type Classifier struct {
	opts        Options
	sitePattern *regexp.Regexp
	rules       []rule
}

// NewClassifier 创建分类器；规则按声明顺序评估，顺序即决胜规则。
func NewClassifier(opts Options) *Classifier {
	def := DefaultOptions()
	if opts.DescriptionMarker == "" {
		opts.DescriptionMarker = def.DescriptionMarker
	}
	if opts.SitePrefix == "" {
		opts.SitePrefix = def.SitePrefix
	}
	if len(opts.PrefixLabels) == 0 {
		opts.PrefixLabels = def.PrefixLabels
	}

	c := &Classifier{
		opts:        opts,
		sitePattern: regexp.MustCompile(regexp.QuoteMeta(opts.SitePrefix) + `([^.]+)`),
	}

	// 规则 1: 普通BAS设备 —— IBGP 路由直接取下一跳地址
	c.rules = append(c.rules, rule{
		name:  "ibgp-nexthop",
		match: func(r *RouteRecord) bool { return r.Protocol == "IBGP" },
		apply: func(r *RouteRecord, _ FollowUpFunc) (string, error) {
			return r.NextHop, nil
		},
	})

	// 规则 2: SR设备 —— 直连标志 D，需追查出接口的描述
	c.rules = append(c.rules, rule{
		name:  "sr-description",
		match: func(r *RouteRecord) bool { return r.Flag == "D" && r.Interface != "" },
		apply: c.describeInterface,
	})

	// 规则 3/4: 按下一跳前缀归类（新城 / 出省地址）
	for _, pl := range opts.PrefixLabels {
		pl := pl
		c.rules = append(c.rules, rule{
			name:  "nexthop-prefix-" + pl.Prefix,
			match: func(r *RouteRecord) bool { return strings.HasPrefix(r.NextHop, pl.Prefix) },
			apply: func(_ *RouteRecord, _ FollowUpFunc) (string, error) {
				return pl.Label, nil
			},
		})
	}

	return c
}

// Classify 为一条路由记录产出分类标签。
// 记录为 nil（解析失败）时直接返回占位文案，不再评估规则。
// error 仅来自附加查询的传输故障，由调用方在单目标边界处理。
func (c *Classifier) Classify(rec *RouteRecord, followUp FollowUpFunc) (string, error) {
	if rec == nil {
		return LabelNoRoute, nil
	}

	for _, r := range c.rules {
		if !r.match(rec) {
			continue
		}
		label, err := r.apply(rec, followUp)
		if err != nil {
			return "", err
		}
		logger.Debugf("规则 %s 命中, 标签: %s", r.name, label)
		return label, nil
	}

	return LabelNoRuleMatched, nil
}

// describeInterface 查询接口配置并提取描述中的站点名。
//
// 描述行形如 "description dT:AH-HF-CityA.rack1"，取前缀与首个'.'之间
// 的 "CityA"。标记行存在但不符合提取规则、或整段输出没有标记行时，
// 分别退回固定占位文案——这可能掩盖设备配置差异导致的静默误分类，
// 因此每次退回都会留一条告警日志。
func (c *Classifier) describeInterface(rec *RouteRecord, followUp FollowUpFunc) (string, error) {
	logger.Debugf("检测到SR设备 (Flag=D), 查询接口 %s 描述", rec.Interface)
	output, err := followUp(rec.Interface)
	if err != nil {
		return "", fmt.Errorf("查询接口 %s 配置失败: %w", rec.Interface, err)
	}

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, c.opts.DescriptionMarker) {
			continue
		}
		if m := c.sitePattern.FindStringSubmatch(line); m != nil {
			return m[1], nil
		}
		logger.Warnf("接口 %s 描述行不符合提取规则: %q", rec.Interface, line)
		return LabelDescUnmatched, nil
	}

	logger.Warnf("接口 %s 配置中没有 %q 描述行", rec.Interface, c.opts.DescriptionMarker)
	return fmt.Sprintf("未找到接口 %s 的'%s'", rec.Interface, c.opts.DescriptionMarker), nil
}
