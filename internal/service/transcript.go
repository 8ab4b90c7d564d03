package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/samiya782/SecureCrtScript/internal/config"
	"github.com/samiya782/SecureCrtScript/pkg/logger"
)

// TranscriptMeta 存档写入元数据
type TranscriptMeta struct {
	TaskID   string
	DeviceIP string
	Seq      int
	Target   string
}

// TranscriptWriter 把单目标的原始终端捕获写入存档，返回存放位置。
// 存档仅用于事后排查误分类，写入失败不影响批次结果。
type TranscriptWriter interface {
	Write(ctx context.Context, meta TranscriptMeta, content string) (string, error)
}

// NewTranscriptWriter 根据配置创建写入器；backend 为 none 时返回 nil
func NewTranscriptWriter(cfg *config.Config) TranscriptWriter {
	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Backend)) {
	case "minio":
		local := &localTranscriptWriter{baseDir: cfg.Storage.BaseDir}
		mw := newMinioTranscriptWriter(cfg.Storage.Minio)
		if mw == nil {
			logger.Warn("MinIO transcript backend configured but client init failed; using local only")
			return local
		}
		// MinIO 写失败时回退本地，保证排查材料不丢
		return &fallbackTranscriptWriter{primary: mw, fallback: local}
	case "local":
		return &localTranscriptWriter{baseDir: cfg.Storage.BaseDir}
	default:
		return nil
	}
}

func transcriptObjectName(meta TranscriptMeta) string {
	target := strings.NewReplacer("/", "_", ":", "_", " ", "_").Replace(meta.Target)
	return path.Join(meta.TaskID, fmt.Sprintf("%03d_%s.txt", meta.Seq, target))
}

// localTranscriptWriter 本地文件存档
type localTranscriptWriter struct {
	baseDir string
}

func (w *localTranscriptWriter) Write(ctx context.Context, meta TranscriptMeta, content string) (string, error) {
	baseDir := strings.TrimSpace(w.baseDir)
	if baseDir == "" {
		baseDir = "./data/captures"
	}
	fullPath := filepath.Join(baseDir, filepath.FromSlash(transcriptObjectName(meta)))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create transcript directory: %w", err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write transcript: %w", err)
	}
	return fullPath, nil
}

// minioTranscriptWriter 对象存储存档
type minioTranscriptWriter struct {
	client *minio.Client
	bucket string
}

func newMinioTranscriptWriter(cfg config.MinioConfig) *minioTranscriptWriter {
	if strings.TrimSpace(cfg.Host) == "" || strings.TrimSpace(cfg.Bucket) == "" {
		return nil
	}
	endpoint := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		logger.Warnf("MinIO client init failed: %v", err)
		return nil
	}
	return &minioTranscriptWriter{client: client, bucket: cfg.Bucket}
}

func (w *minioTranscriptWriter) Write(ctx context.Context, meta TranscriptMeta, content string) (string, error) {
	objectName := path.Join("transcripts", meta.DeviceIP, transcriptObjectName(meta))
	reader := bytes.NewReader([]byte(content))
	_, err := w.client.PutObject(ctx, w.bucket, objectName, reader, int64(reader.Len()),
		minio.PutObjectOptions{ContentType: "text/plain; charset=utf-8"})
	if err != nil {
		return "", fmt.Errorf("minio put failed: %w", err)
	}
	return fmt.Sprintf("minio://%s/%s", w.bucket, objectName), nil
}

// fallbackTranscriptWriter 先写主后端，失败回退备用后端
type fallbackTranscriptWriter struct {
	primary  TranscriptWriter
	fallback TranscriptWriter
}

func (w *fallbackTranscriptWriter) Write(ctx context.Context, meta TranscriptMeta, content string) (string, error) {
	loc, err := w.primary.Write(ctx, meta, content)
	if err == nil {
		return loc, nil
	}
	logger.Warnf("transcript primary write failed, falling back to local: %v", err)
	return w.fallback.Write(ctx, meta, content)
}
