package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"

	"resume-match-go/internal/config"
)

// ObjectStorage 对象存储接口
type ObjectStorage interface {
	// UploadResumeFile 上传原始简历文件，返回对象键
	UploadResumeFile(ctx context.Context, applicationUUID, fileExt string, reader io.Reader, fileSize int64) (string, error)

	// GetResumeFile 按对象键读取原始简历字节
	GetResumeFile(ctx context.Context, objectKey string) ([]byte, error)

	// GetPresignedURL 生成带过期时间的下载链接
	GetPresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)

	// DeleteFile 删除对象
	DeleteFile(ctx context.Context, objectKey string) error
}

var _ ObjectStorage = (*MinIO)(nil)

// MinIO 原始简历文件的对象存储实现
type MinIO struct {
	client *minio.Client
	cfg    *config.MinIOConfig
	logger *log.Logger
}

// NewMinIO 创建MinIO客户端，保证简历桶存在并按配置挂过期规则
func NewMinIO(cfg *config.MinIOConfig, logger *log.Logger) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	m := &MinIO{
		client: client,
		cfg:    cfg,
		logger: logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.ensureBucketExists(ctx, cfg.ResumeBucket); err != nil {
		return nil, err
	}
	if cfg.ResumeExpireDays > 0 {
		if err := m.setupBucketLifecycle(ctx, cfg.ResumeBucket, cfg.ResumeExpireDays); err != nil {
			// 过期规则失败不影响主功能
			m.logger.Printf("设置存储桶过期规则失败: %v", err)
		}
	}
	return m, nil
}

func (m *MinIO) ensureBucketExists(ctx context.Context, bucketName string) error {
	exists, err := m.client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("检查存储桶失败: %w", err)
	}
	if exists {
		return nil
	}
	err = m.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: m.cfg.Location})
	if err != nil {
		return fmt.Errorf("创建存储桶%s失败: %w", bucketName, err)
	}
	m.logger.Printf("创建存储桶: %s", bucketName)
	return nil
}

func (m *MinIO) setupBucketLifecycle(ctx context.Context, bucketName string, expireDays int) error {
	lc := lifecycle.NewConfiguration()
	lc.Rules = []lifecycle.Rule{
		{
			ID:     "expire-raw-resumes",
			Status: "Enabled",
			Expiration: lifecycle.Expiration{
				Days: lifecycle.ExpirationDays(expireDays),
			},
		},
	}
	return m.client.SetBucketLifecycle(ctx, bucketName, lc)
}

// UploadResumeFile 上传原始简历，对象键为 resumes/{applicationUUID}{ext}
func (m *MinIO) UploadResumeFile(ctx context.Context, applicationUUID, fileExt string, reader io.Reader, fileSize int64) (string, error) {
	if !strings.HasPrefix(fileExt, ".") && fileExt != "" {
		fileExt = "." + fileExt
	}
	objectKey := fmt.Sprintf("resumes/%s%s", applicationUUID, fileExt)

	_, err := m.client.PutObject(ctx, m.cfg.ResumeBucket, objectKey, reader, fileSize,
		minio.PutObjectOptions{ContentType: contentTypeForExt(fileExt)})
	if err != nil {
		return "", fmt.Errorf("上传简历文件失败: %w", err)
	}
	m.logger.Printf("简历文件已上传: %s", objectKey)
	return objectKey, nil
}

// UploadResumeFileFromBytes 字节切片版本的上传入口
func (m *MinIO) UploadResumeFileFromBytes(ctx context.Context, applicationUUID, fileExt string, data []byte) (string, error) {
	return m.UploadResumeFile(ctx, applicationUUID, fileExt, bytes.NewReader(data), int64(len(data)))
}

// GetResumeFile 按对象键读取原始简历字节
func (m *MinIO) GetResumeFile(ctx context.Context, objectKey string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.cfg.ResumeBucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("读取简历对象失败: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("读取简历内容失败: %w", err)
	}
	return data, nil
}

// GetPresignedURL 生成带过期时间的下载链接
func (m *MinIO) GetPresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.cfg.ResumeBucket, objectKey, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("生成预签名链接失败: %w", err)
	}
	return u.String(), nil
}

// DeleteFile 删除对象
func (m *MinIO) DeleteFile(ctx context.Context, objectKey string) error {
	err := m.client.RemoveObject(ctx, m.cfg.ResumeBucket, objectKey, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("删除简历对象失败: %w", err)
	}
	return nil
}

func contentTypeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
