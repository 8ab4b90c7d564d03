package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/samiya782/SecureCrtScript/internal/config"
	"github.com/samiya782/SecureCrtScript/internal/database"
	"github.com/samiya782/SecureCrtScript/internal/model"
	"github.com/samiya782/SecureCrtScript/internal/service"
	"github.com/samiya782/SecureCrtScript/pkg/logger"
	sshpkg "github.com/samiya782/SecureCrtScript/pkg/ssh"
)

// ErrorResponse 统一错误响应
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ProbeHandler 路由探测处理器
type ProbeHandler struct {
	cfg          *config.Config
	probeService *service.ProbeService
}

// NewProbeHandler 创建路由探测处理器
func NewProbeHandler(cfg *config.Config, probeService *service.ProbeService) *ProbeHandler {
	return &ProbeHandler{cfg: cfg, probeService: probeService}
}

// BatchProbeRequest 批量探测请求
type BatchProbeRequest struct {
	Host     string   `json:"host" binding:"required"`
	Port     int      `json:"port"`
	Username string   `json:"username" binding:"required"`
	Password string   `json:"password" binding:"required"`
	Targets  []string `json:"targets" binding:"required"`
}

// BatchProbeResponse 批量探测响应
type BatchProbeResponse struct {
	Task    *model.BatchTask     `json:"task"`
	Results []model.TargetResult `json:"results"`
}

// Health 健康检查
func (h *ProbeHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// BatchProbe 对一台设备批量执行路由探测
func (h *ProbeHandler) BatchProbe(c *gin.Context) {
	var request BatchProbeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.Errorf("Invalid request parameters: %v", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_PARAMS",
			Message: "请求参数无效: " + err.Error(),
		})
		return
	}
	if err := h.validateBatchRequest(&request); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "VALIDATION_FAILED",
			Message: err.Error(),
		})
		return
	}
	if request.Port <= 0 {
		request.Port = 22
	}

	ctx := c.Request.Context()

	client, err := sshpkg.Connect(ctx, &sshpkg.Config{
		ConnectTimeout:    h.cfg.SSH.ConnectTimeout,
		KeepAliveInterval: h.cfg.SSH.KeepAliveInterval,
		TerminalWidth:     h.cfg.SSH.TerminalWidth,
		TerminalHeight:    h.cfg.SSH.TerminalHeight,
	}, &sshpkg.ConnectionInfo{
		Host:     request.Host,
		Port:     request.Port,
		Username: request.Username,
		Password: request.Password,
	})
	if err != nil {
		logger.Errorf("Failed to connect device %s: %v", request.Host, err)
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Code:    "CONNECT_FAILED",
			Message: "设备连接失败: " + err.Error(),
		})
		return
	}
	defer client.Close()

	sess, err := client.OpenShell()
	if err != nil {
		logger.Errorf("Failed to open shell on %s: %v", request.Host, err)
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Code:    "SHELL_FAILED",
			Message: "打开交互会话失败: " + err.Error(),
		})
		return
	}
	defer sess.Close()

	task, results, err := h.probeService.RunBatch(ctx, sess, request.Host, request.Targets)
	if err != nil {
		logger.Errorf("Batch probe failed on %s: %v", request.Host, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "PROBE_FAILED",
			Message: "批量探测失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, BatchProbeResponse{Task: task, Results: results})
}

// GetTask 查询任务状态
func (h *ProbeHandler) GetTask(c *gin.Context) {
	taskID := c.Param("task_id")
	db := database.GetDB()
	if db == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Code:    "DB_UNAVAILABLE",
			Message: "数据库未初始化",
		})
		return
	}

	var task model.BatchTask
	if err := db.First(&task, "id = ?", taskID).Error; err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    "TASK_NOT_FOUND",
			Message: "任务不存在: " + taskID,
		})
		return
	}
	c.JSON(http.StatusOK, task)
}

// GetTaskResults 查询任务的逐目标结果
func (h *ProbeHandler) GetTaskResults(c *gin.Context) {
	taskID := c.Param("task_id")
	db := database.GetDB()
	if db == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Code:    "DB_UNAVAILABLE",
			Message: "数据库未初始化",
		})
		return
	}

	var results []model.TargetResult
	if err := db.Where("task_id = ?", taskID).Order("seq").Find(&results).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "QUERY_FAILED",
			Message: "查询结果失败: " + err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"task_id": taskID, "results": results})
}

func (h *ProbeHandler) validateBatchRequest(req *BatchProbeRequest) error {
	if len(req.Targets) == 0 {
		return fmt.Errorf("targets 不能为空")
	}
	for _, t := range req.Targets {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("targets 中存在空白项")
		}
	}
	return nil
}
