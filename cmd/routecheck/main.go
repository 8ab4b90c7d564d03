package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samiya782/SecureCrtScript/internal/config"
	"github.com/samiya782/SecureCrtScript/internal/database"
	"github.com/samiya782/SecureCrtScript/internal/model"
	"github.com/samiya782/SecureCrtScript/internal/service"
	"github.com/samiya782/SecureCrtScript/pkg/logger"
	sshpkg "github.com/samiya782/SecureCrtScript/pkg/ssh"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（空则使用内置默认）")
	host := flag.String("host", "", "设备地址")
	port := flag.Int("port", 22, "设备SSH端口")
	username := flag.String("user", "", "登录用户名")
	password := flag.String("pass", "", "登录密码（也可用 SSH_PROBE_PASSWORD 环境变量）")
	targetsPath := flag.String("targets", "", "目标地址清单CSV（取第一列）")
	outPath := flag.String("out", "", "结果CSV输出路径（默认 <输入>_result_<时间戳>.csv）")
	flag.Parse()

	if *host == "" || *username == "" || *targetsPath == "" {
		fmt.Println("用法: routecheck -host <设备IP> -user <用户名> [-pass <密码>] -targets <清单.csv>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if *password == "" {
		*password = os.Getenv("SSH_PROBE_PASSWORD")
	}

	var cfg *config.Config
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Printf("加载配置失败: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}); err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	targets, err := loadTargets(*targetsPath)
	if err != nil {
		logger.Fatalf("读取目标清单失败: %v", err)
	}
	if len(targets) == 0 {
		logger.Fatal("目标清单为空")
	}
	logger.Infof("已读取 %d 个目标地址: %s", len(targets), *targetsPath)

	// 结果落库是可选的：数据库初始化失败只降级为不落库
	if err := database.InitSQLite(cfg.Database.SQLite); err != nil {
		logger.Warnf("数据库初始化失败，结果将不落库: %v", err)
	} else {
		defer database.Close()
	}

	ctx := context.Background()
	client, err := sshpkg.Connect(ctx, &sshpkg.Config{
		ConnectTimeout:    cfg.SSH.ConnectTimeout,
		KeepAliveInterval: cfg.SSH.KeepAliveInterval,
		TerminalWidth:     cfg.SSH.TerminalWidth,
		TerminalHeight:    cfg.SSH.TerminalHeight,
	}, &sshpkg.ConnectionInfo{
		Host:     *host,
		Port:     *port,
		Username: *username,
		Password: *password,
	})
	if err != nil {
		logger.Fatalf("设备连接失败: %v", err)
	}
	defer client.Close()

	sess, err := client.OpenShell()
	if err != nil {
		logger.Fatalf("打开交互会话失败: %v", err)
	}
	defer sess.Close()

	probeService := service.NewProbeService(cfg)
	task, results, err := probeService.RunBatch(ctx, sess, *host, targets)
	if err != nil {
		// 部分结果也要落盘，方便续跑
		logger.Errorf("批量探测中断: %v", err)
	}

	output := *outPath
	if output == "" {
		base := strings.TrimSuffix(*targetsPath, filepath.Ext(*targetsPath))
		output = fmt.Sprintf("%s_result_%d.csv", base, time.Now().Unix())
	}
	if err := writeResults(output, results); err != nil {
		logger.Fatalf("写入结果文件失败: %v", err)
	}

	status := "unknown"
	if task != nil {
		status = task.Status
	}
	logger.Infof("处理完成: 状态=%s 结果=%d/%d 输出=%s", status, len(results), len(targets), output)
}

// loadTargets 读取CSV第一列作为目标地址清单，跳过空行
func loadTargets(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	targets := make([]string, 0, len(records))
	for _, rec := range records {
		if len(rec) == 0 {
			continue
		}
		t := strings.TrimSpace(rec[0])
		if t == "" {
			continue
		}
		targets = append(targets, t)
	}
	return targets, nil
}

// writeResults 输出 目标,标签 结果表
func writeResults(path string, results []model.TargetResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	if err := writer.Write([]string{"target", "label", "timed_out"}); err != nil {
		return err
	}
	for _, res := range results {
		timedOut := ""
		if res.TimedOut {
			timedOut = "true"
		}
		if err := writer.Write([]string{res.Target, res.Label, timedOut}); err != nil {
			return err
		}
	}
	return nil
}
