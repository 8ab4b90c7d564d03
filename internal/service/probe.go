package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/samiya782/SecureCrtScript/internal/config"
	"github.com/samiya782/SecureCrtScript/internal/database"
	"github.com/samiya782/SecureCrtScript/internal/model"
	"github.com/samiya782/SecureCrtScript/internal/route"
	"github.com/samiya782/SecureCrtScript/internal/util"
	"github.com/samiya782/SecureCrtScript/pkg/logger"
	"github.com/samiya782/SecureCrtScript/pkg/terminal"
)

// ProbeService 批量路由探测：对每个目标地址执行
// 查路由 → 清洗 → 解析 → 分类 的流水线，产出一个分类标签。
type ProbeService struct {
	cfg         *config.Config
	reader      *terminal.Reader
	classifier  *route.Classifier
	transcripts TranscriptWriter
	// 设备会话是单个有状态资源，同一时刻只允许一个批次在跑
	sem *semaphore.Weighted
}

// NewProbeService 创建探测服务
func NewProbeService(cfg *config.Config) *ProbeService {
	return &ProbeService{
		cfg: cfg,
		reader: &terminal.Reader{
			MorePrompt: cfg.Probe.MorePrompt,
			PageKey:    cfg.Probe.PageKey,
		},
		classifier:  route.NewClassifier(cfg.ClassifyOptions()),
		transcripts: NewTranscriptWriter(cfg),
		sem:         semaphore.NewWeighted(1),
	}
}

// Start 启动服务
func (s *ProbeService) Start(ctx context.Context) error {
	logger.Info("Probe service started")
	return nil
}

// Stop 停止服务
func (s *ProbeService) Stop() {
	logger.Info("Probe service stopped")
}

// RunBatch 对一组目标地址顺序执行探测，返回任务与逐目标结果。
//
// 提示符探测失败（ErrNoPrompt）与会话断开会终止整个批次；
// 其余失败都被隔离在单个目标内，以描述性标签落入结果，
// 保证每个输入地址都有且仅有一个标签。
func (s *ProbeService) RunBatch(ctx context.Context, sess terminal.Session, deviceIP string, targets []string) (*model.BatchTask, []model.TargetResult, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, nil, err
	}
	defer s.sem.Release(1)

	task := &model.BatchTask{
		ID:          fmt.Sprintf("task_%d", time.Now().UnixNano()),
		DeviceIP:    deviceIP,
		TargetCount: len(targets),
		Status:      model.TaskStatusRunning,
		StartTime:   time.Now(),
	}

	// 提示符在整个批次中作为只读哨兵复用，探测失败则整批终止
	prompt, err := terminal.DetectPrompt(sess, s.cfg.Probe.PromptSettle)
	if err != nil {
		task.Status = model.TaskStatusFailed
		task.ErrorMsg = err.Error()
		s.finishTask(task)
		return task, nil, err
	}
	task.Prompt = prompt
	s.saveTask(task)

	logger.Infof("批量探测开始: 设备=%s 提示符=%q 目标数=%d", deviceIP, prompt, len(targets))

	results := make([]model.TargetResult, 0, len(targets))
	for i, target := range targets {
		select {
		case <-ctx.Done():
			task.Status = model.TaskStatusAborted
			task.ErrorMsg = ctx.Err().Error()
			s.finishTask(task)
			return task, results, ctx.Err()
		default:
		}

		// 会话已断开时不做逐目标重试，直接终止整个批次
		if !sess.IsConnected() {
			task.Status = model.TaskStatusAborted
			task.ErrorMsg = "session disconnected"
			s.finishTask(task)
			return task, results, fmt.Errorf("session disconnected before target %q", target)
		}

		logger.Infof("--- 开始处理目标 %s (%d/%d) ---", target, i+1, len(targets))
		res := s.processTarget(ctx, sess, prompt, task, i, target)
		logger.Infof("目标 %s 的处理结果: %s", target, res.Label)

		results = append(results, res)
		s.saveResult(&res)
	}

	task.Status = model.TaskStatusSuccess
	s.finishTask(task)
	return task, results, nil
}

// processTarget 处理单个目标。任何意外失败都被兜在这里，
// 转成通用错误标签而不是让批次中断。
func (s *ProbeService) processTarget(ctx context.Context, sess terminal.Session, prompt string, task *model.BatchTask, seq int, target string) (res model.TargetResult) {
	res = model.TargetResult{
		ID:     fmt.Sprintf("%s_%03d", task.ID, seq),
		TaskID: task.ID,
		Seq:    seq,
		Target: target,
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("处理目标 %s 时发生未知错误: %v", target, r)
			res.Label = route.LabelProcessError
		}
	}()

	command := fmt.Sprintf(s.cfg.Probe.RouteCommand, target) + "\n"
	capture, err := s.reader.ReadUntilPrompt(sess, command, prompt, s.cfg.Probe.ReadTimeout)
	if err != nil {
		logger.Errorf("目标 %s 读取失败: %v", target, err)
		res.Label = route.LabelProcessError
		return res
	}
	res.TimedOut = !capture.Complete
	res.Transcript = s.archive(ctx, task, seq, target, capture.Text)

	output := terminal.TrimOutput(terminal.Sanitize(util.EnsureUTF8(capture.Text)), command, prompt)
	logger.DebugCapture(command, output, 5)

	if output == "" {
		logger.Warnf("目标 %s 的路由查询没有返回有效输出", target)
		res.Label = route.LabelNoOutput
		return res
	}

	rec := route.ParseRoute(output)
	label, err := s.classifier.Classify(rec, func(iface string) (string, error) {
		return s.followUp(sess, prompt, iface)
	})
	if err != nil {
		logger.Errorf("目标 %s 分类失败: %v", target, err)
		res.Label = route.LabelProcessError
		return res
	}

	res.Label = label
	return res
}

// followUp 附加的接口配置查询往返，供分类器按需调用
func (s *ProbeService) followUp(sess terminal.Session, prompt, iface string) (string, error) {
	command := fmt.Sprintf(s.cfg.Probe.InterfaceCommand, iface) + "\n"
	capture, err := s.reader.ReadUntilPrompt(sess, command, prompt, s.cfg.Probe.ReadTimeout)
	if err != nil {
		return "", err
	}
	return terminal.TrimOutput(terminal.Sanitize(util.EnsureUTF8(capture.Text)), command, prompt), nil
}

// archive 存档原始捕获；失败只记日志
func (s *ProbeService) archive(ctx context.Context, task *model.BatchTask, seq int, target, raw string) string {
	if s.transcripts == nil || raw == "" {
		return ""
	}
	meta := TranscriptMeta{TaskID: task.ID, DeviceIP: task.DeviceIP, Seq: seq, Target: target}
	loc, err := s.transcripts.Write(ctx, meta, raw)
	if err != nil {
		logger.Warnf("目标 %s 原始捕获存档失败: %v", target, err)
		return ""
	}
	return loc
}

func (s *ProbeService) saveTask(task *model.BatchTask) {
	if db := database.GetDB(); db != nil {
		if err := db.Save(task).Error; err != nil {
			logger.Warnf("保存任务记录失败: %v", err)
		}
	}
}

func (s *ProbeService) finishTask(task *model.BatchTask) {
	task.EndTime = time.Now()
	task.Duration = task.EndTime.Sub(task.StartTime).Milliseconds()
	s.saveTask(task)
	logger.Infof("批量探测结束: 任务=%s 状态=%s 耗时=%dms", task.ID, task.Status, task.Duration)
}

func (s *ProbeService) saveResult(res *model.TargetResult) {
	if db := database.GetDB(); db != nil {
		if err := db.Create(res).Error; err != nil {
			logger.Warnf("保存目标结果失败: %v", err)
		}
	}
}
