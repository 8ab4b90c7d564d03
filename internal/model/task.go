package model

import (
	"time"
)

// BatchTask 一次批量路由探测任务
type BatchTask struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	DeviceIP    string    `json:"device_ip" gorm:"type:varchar(64);not null;index"`
	DevicePort  int       `json:"device_port" gorm:"not null;default:22"`
	Username    string    `json:"username" gorm:"type:varchar(64)"`
	Prompt      string    `json:"prompt" gorm:"type:varchar(128)"`
	TargetCount int       `json:"target_count" gorm:"not null;default:0"`
	Status      string    `json:"status" gorm:"type:varchar(16);not null;default:'pending'"`
	ErrorMsg    string    `json:"error_msg" gorm:"type:text"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Duration    int64     `json:"duration"` // 执行时长，毫秒
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 表名
func (BatchTask) TableName() string {
	return "batch_tasks"
}

// 任务状态枚举
const (
	TaskStatusPending = "pending"
	TaskStatusRunning = "running"
	TaskStatusSuccess = "success"
	TaskStatusFailed  = "failed"
	TaskStatusAborted = "aborted"
)

// TargetResult 单个目标地址的分类结果
type TargetResult struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	TaskID    string    `json:"task_id" gorm:"type:varchar(64);not null;index"`
	Seq       int       `json:"seq" gorm:"not null"` // 输入顺序，从0开始
	Target    string    `json:"target" gorm:"type:varchar(64);not null"`
	Label     string    `json:"label" gorm:"type:varchar(256)"`
	TimedOut  bool      `json:"timed_out" gorm:"not null;default:false"`
	Transcript string   `json:"transcript,omitempty" gorm:"type:varchar(512)"` // 原始捕获的存档位置
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 表名
func (TargetResult) TableName() string {
	return "target_results"
}
