package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"resume-match-go/internal/config"
	"resume-match-go/internal/constants"
	"resume-match-go/internal/tracing"
	"resume-match-go/internal/types"
)

// ErrNotFound 键不存在
var ErrNotFound = redis.Nil

var redisTracer = otel.Tracer("resume-match-go/storage/redis")

// Redis 缓存与去重存储
// 承载两件事：原始简历文件的MD5去重集合，和岗位要求的读缓存
type Redis struct {
	client *redis.Client
	cfg    *config.RedisConfig
}

// NewRedisAdapter 创建Redis客户端并验证连通性
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("Redis配置不能为空")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("连接Redis失败: %w", err)
	}

	return &Redis{client: client, cfg: cfg}, nil
}

// Close 关闭连接
func (r *Redis) Close() error {
	return r.client.Close()
}

// Ping 连通性检查，健康检查接口使用
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// md5ExpireDuration MD5去重记录的保留时长
func (r *Redis) md5ExpireDuration() time.Duration {
	days := r.cfg.MD5RecordExpireDays
	if days <= 0 {
		days = constants.MD5RecordDefaultExpireDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// fileMD5RecordKey 构造(岗位, MD5)去重键
// 去重范围限定在单个岗位内，同一份文件投不同岗位各自独立登记
func fileMD5RecordKey(jobID, md5Hex string) string {
	return fmt.Sprintf(constants.KeyFileMD5Record, jobID, md5Hex)
}

func fileMD5SetMember(jobID, md5Hex string) string {
	return jobID + ":" + md5Hex
}

// CheckAndAddFileMD5 原子地检查并登记一个简历文件在指定岗位下的MD5
// 返回true表示该(岗位, MD5)已存在(同岗位重复上传)。用SETNX+TTL的附属键
// 承载原子性，同时维护集合键便于审计遍历
func (r *Redis) CheckAndAddFileMD5(ctx context.Context, jobID, md5Hex string) (bool, error) {
	ctx, span := redisTracer.Start(ctx, "redis.CheckAndAddFileMD5",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("job.id", jobID),
			attribute.String("file.md5", md5Hex)))
	defer span.End()

	recordKey := fileMD5RecordKey(jobID, md5Hex)
	created, err := r.client.SetNX(ctx, recordKey, "1", r.md5ExpireDuration()).Result()
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return false, fmt.Errorf("登记文件MD5失败: %w", err)
	}
	if !created {
		span.SetAttributes(attribute.Bool("file.duplicate", true))
		return true, nil
	}

	// 集合键仅用于审计，写失败不影响去重判定
	if err := r.client.SAdd(ctx, constants.KeyFileMD5Set, fileMD5SetMember(jobID, md5Hex)).Err(); err != nil {
		span.AddEvent("sadd_failed", trace.WithAttributes(attribute.String("error", err.Error())))
	}
	span.SetAttributes(attribute.Bool("file.duplicate", false))
	return false, nil
}

// RemoveFileMD5 移除(岗位, MD5)登记，投递失败回滚时调用
func (r *Redis) RemoveFileMD5(ctx context.Context, jobID, md5Hex string) error {
	recordKey := fileMD5RecordKey(jobID, md5Hex)
	if err := r.client.Del(ctx, recordKey).Err(); err != nil {
		return fmt.Errorf("移除MD5登记失败: %w", err)
	}
	return r.client.SRem(ctx, constants.KeyFileMD5Set, fileMD5SetMember(jobID, md5Hex)).Err()
}

// CacheJobRequirements 缓存岗位要求，减少热岗位的数据库读
func (r *Redis) CacheJobRequirements(ctx context.Context, jobID string, req types.JobRequirements) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("序列化岗位要求失败: %w", err)
	}
	key := fmt.Sprintf(constants.KeyJobRequirements, jobID)
	return r.client.Set(ctx, key, data, constants.JobCacheDuration).Err()
}

// GetCachedJobRequirements 读取岗位要求缓存，未命中返回ErrNotFound
func (r *Redis) GetCachedJobRequirements(ctx context.Context, jobID string) (types.JobRequirements, error) {
	ctx, span := redisTracer.Start(ctx, "redis.GetCachedJobRequirements",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("job.id", jobID)))
	defer span.End()

	key := fmt.Sprintf(constants.KeyJobRequirements, jobID)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			span.SetAttributes(attribute.Bool("cache.hit", false))
			return types.JobRequirements{}, ErrNotFound
		}
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return types.JobRequirements{}, fmt.Errorf("读取岗位要求缓存失败: %w", err)
	}

	var req types.JobRequirements
	if err := json.Unmarshal(data, &req); err != nil {
		// 缓存内容损坏按未命中处理，让调用方回源重建
		return types.JobRequirements{}, ErrNotFound
	}
	span.SetAttributes(attribute.Bool("cache.hit", true))
	return req, nil
}
