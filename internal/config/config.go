package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/samiya782/SecureCrtScript/internal/route"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	SSH      SSHConfig      `mapstructure:"ssh"`
	Probe    ProbeConfig    `mapstructure:"probe"`
	Classify ClassifyConfig `mapstructure:"classify"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig HTTP服务配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// SSHConfig SSH连接配置
type SSHConfig struct {
	ConnectTimeout    time.Duration `mapstructure:"connect_timeout"`
	KeepAliveInterval time.Duration `mapstructure:"keep_alive_interval"`
	TerminalWidth     int           `mapstructure:"terminal_width"`
	TerminalHeight    int           `mapstructure:"terminal_height"`
}

// ProbeConfig 探测流程配置：读取循环与命令模板
type ProbeConfig struct {
	// MorePrompt 设备翻页横幅文本
	MorePrompt string `mapstructure:"more_prompt"`
	// PageKey 继续翻页的按键
	PageKey string `mapstructure:"page_key"`
	// ReadTimeout 单次读取等待哨兵的超时
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// PromptSettle 提示符探测时等待光标稳定的时间
	PromptSettle time.Duration `mapstructure:"prompt_settle"`
	// RouteCommand 路由查询命令模板（%s 为目标地址）
	RouteCommand string `mapstructure:"route_command"`
	// InterfaceCommand 接口配置查询命令模板（%s 为接口名）
	InterfaceCommand string `mapstructure:"interface_command"`
}

// ClassifyConfig 分类规则配置
type ClassifyConfig struct {
	DescriptionMarker string              `mapstructure:"description_marker"`
	SitePrefix        string              `mapstructure:"site_prefix"`
	PrefixLabels      []route.PrefixLabel `mapstructure:"prefix_labels"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	SQLite SQLiteConfig `mapstructure:"sqlite"`
}

// SQLiteConfig SQLite配置
type SQLiteConfig struct {
	Path            string        `mapstructure:"path"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// StorageConfig 原始会话捕获的存档配置
type StorageConfig struct {
	// Backend 存档后端：local | minio | none
	Backend string      `mapstructure:"backend"`
	BaseDir string      `mapstructure:"base_dir"`
	Minio   MinioConfig `mapstructure:"minio"`
}

// MinioConfig 对象存储配置
type MinioConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Secure    bool   `mapstructure:"secure"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

var globalConfig *Config

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	viper.SetConfigType("yaml")

	setDefaults()

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("../configs")
	}

	// 环境变量覆盖，如 SSH_PROBE_LOG_LEVEL
	viper.SetEnvPrefix("SSH_PROBE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	globalConfig = &config
	return &config, nil
}

// Get 获取全局配置；未加载时返回内置默认
func Get() *Config {
	if globalConfig == nil {
		return Default()
	}
	return globalConfig
}

// Default 内置默认配置（测试与CLI免配置文件运行时使用）
func Default() *Config {
	clsDef := route.DefaultOptions()
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			Mode:         "release",
			ReadTimeout:  60 * time.Second,
			WriteTimeout: 600 * time.Second,
		},
		SSH: SSHConfig{
			ConnectTimeout:    15 * time.Second,
			KeepAliveInterval: 30 * time.Second,
			TerminalWidth:     80,
			TerminalHeight:    24,
		},
		Probe: ProbeConfig{
			MorePrompt:       "---- More ----",
			PageKey:          " ",
			ReadTimeout:      10 * time.Second,
			PromptSettle:     300 * time.Millisecond,
			RouteCommand:     "dis ip rou %s",
			InterfaceCommand: "dis cur int %s",
		},
		Classify: ClassifyConfig{
			DescriptionMarker: clsDef.DescriptionMarker,
			SitePrefix:        clsDef.SitePrefix,
			PrefixLabels:      clsDef.PrefixLabels,
		},
		Database: DatabaseConfig{
			SQLite: SQLiteConfig{Path: "./data/probe.db", ConnMaxLifetime: time.Hour},
		},
		Storage: StorageConfig{Backend: "none", BaseDir: "./data/captures"},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			Output:     "both",
			FilePath:   "./logs/probe.log",
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     14,
		},
	}
}

func setDefaults() {
	def := Default()

	viper.SetDefault("server.host", def.Server.Host)
	viper.SetDefault("server.port", def.Server.Port)
	viper.SetDefault("server.mode", def.Server.Mode)
	viper.SetDefault("server.read_timeout", def.Server.ReadTimeout)
	viper.SetDefault("server.write_timeout", def.Server.WriteTimeout)

	viper.SetDefault("ssh.connect_timeout", def.SSH.ConnectTimeout)
	viper.SetDefault("ssh.keep_alive_interval", def.SSH.KeepAliveInterval)
	viper.SetDefault("ssh.terminal_width", def.SSH.TerminalWidth)
	viper.SetDefault("ssh.terminal_height", def.SSH.TerminalHeight)

	viper.SetDefault("probe.more_prompt", def.Probe.MorePrompt)
	viper.SetDefault("probe.page_key", def.Probe.PageKey)
	viper.SetDefault("probe.read_timeout", def.Probe.ReadTimeout)
	viper.SetDefault("probe.prompt_settle", def.Probe.PromptSettle)
	viper.SetDefault("probe.route_command", def.Probe.RouteCommand)
	viper.SetDefault("probe.interface_command", def.Probe.InterfaceCommand)

	viper.SetDefault("classify.description_marker", def.Classify.DescriptionMarker)
	viper.SetDefault("classify.site_prefix", def.Classify.SitePrefix)

	viper.SetDefault("database.sqlite.path", def.Database.SQLite.Path)
	viper.SetDefault("database.sqlite.conn_max_lifetime", def.Database.SQLite.ConnMaxLifetime)

	viper.SetDefault("storage.backend", def.Storage.Backend)
	viper.SetDefault("storage.base_dir", def.Storage.BaseDir)
	viper.SetDefault("storage.minio.secure", false)

	viper.SetDefault("log.level", def.Log.Level)
	viper.SetDefault("log.format", def.Log.Format)
	viper.SetDefault("log.output", def.Log.Output)
	viper.SetDefault("log.file_path", def.Log.FilePath)
	viper.SetDefault("log.max_size", def.Log.MaxSize)
	viper.SetDefault("log.max_backups", def.Log.MaxBackups)
	viper.SetDefault("log.max_age", def.Log.MaxAge)
	viper.SetDefault("log.compress", def.Log.Compress)
}

// ClassifyOptions 组装分类器参数
func (c *Config) ClassifyOptions() route.Options {
	return route.Options{
		DescriptionMarker: c.Classify.DescriptionMarker,
		SitePrefix:        c.Classify.SitePrefix,
		PrefixLabels:      c.Classify.PrefixLabels,
	}
}
