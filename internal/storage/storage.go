package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"resume-match-go/internal/config"
	"resume-match-go/internal/types"
)

// Storage 存储管理器，聚合所有存储相关依赖
type Storage struct {
	// 关系型数据库
	MySQL *MySQL

	// 对象存储
	MinIO *MinIO

	// 键值存储
	Redis *Redis
}

// NewStorage 创建存储管理器
// 未配置的组件跳过初始化，已配置组件的失败视为致命错误
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}

	storage := &Storage{}
	var err error

	if cfg.MySQL.Host != "" {
		storage.MySQL, err = NewMySQL(&cfg.MySQL)
		if err != nil {
			return nil, fmt.Errorf("初始化MySQL失败: %w", err)
		}
	}

	if cfg.MinIO.Endpoint != "" {
		var minioLogger *log.Logger
		if cfg.Logger.Level == "debug" {
			minioLogger = log.New(os.Stderr, "[MinIOStorage] ", log.LstdFlags|log.Lshortfile)
		} else {
			minioLogger = log.New(io.Discard, "", 0)
		}
		storage.MinIO, err = NewMinIO(&cfg.MinIO, minioLogger)
		if err != nil {
			if storage.MySQL != nil {
				storage.MySQL.Close()
			}
			return nil, fmt.Errorf("初始化MinIO失败: %w", err)
		}
	}

	if cfg.Redis.Address != "" {
		storage.Redis, err = NewRedisAdapter(&cfg.Redis)
		if err != nil {
			storage.Close()
			return nil, fmt.Errorf("初始化Redis失败: %w", err)
		}
	}

	return storage, nil
}

// Close 关闭所有存储连接
func (s *Storage) Close() {
	if s.MySQL != nil {
		if err := s.MySQL.Close(); err != nil {
			log.Printf("关闭MySQL连接失败: %v", err)
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Printf("关闭Redis连接失败: %v", err)
		}
	}
}

// GetJobRequirements 读取岗位要求，优先走Redis缓存，未命中回源MySQL并回填
func (s *Storage) GetJobRequirements(ctx context.Context, jobID string) (types.JobRequirements, error) {
	if s.Redis != nil {
		req, err := s.Redis.GetCachedJobRequirements(ctx, jobID)
		if err == nil {
			return req, nil
		}
		if !errors.Is(err, ErrNotFound) {
			// 缓存故障降级为直接回源
			log.Printf("岗位要求缓存读取异常: %v", err)
		}
	}

	if s.MySQL == nil {
		return types.JobRequirements{}, fmt.Errorf("未配置数据库，无法读取岗位要求")
	}
	req, err := s.MySQL.LookupRequirements(ctx, jobID)
	if err != nil {
		return types.JobRequirements{}, err
	}

	if s.Redis != nil {
		if err := s.Redis.CacheJobRequirements(ctx, jobID, req); err != nil {
			log.Printf("回填岗位要求缓存失败: %v", err)
		}
	}
	return req, nil
}
