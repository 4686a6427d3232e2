package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 应用程序配置
type Config struct {
	// 服务器配置
	Server ServerConfig `yaml:"server"`

	// MySQL配置
	MySQL MySQLConfig `yaml:"mysql"`

	// MinIO配置
	MinIO MinIOConfig `yaml:"minio"`

	// Redis配置
	Redis RedisConfig `yaml:"redis"`

	// 文本提取器配置
	Extractor ExtractorConfig `yaml:"extractor"`

	// 评分引擎配置
	Scoring ScoringConfig `yaml:"scoring"`

	// 技能词表配置
	Skills SkillsConfig `yaml:"skills"`

	// 规范化器配置
	Normalizer NormalizerConfig `yaml:"normalizer"`

	// 日志配置
	Logger LoggerConfig `yaml:"logger"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Address string `yaml:"address"` // 例如 ":8080"
}

// MySQLConfig MySQL配置结构
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	// 连接池设置
	MaxIdleConns int `yaml:"max_idle_conns"` // 最大空闲连接数
	MaxOpenConns int `yaml:"max_open_conns"` // 最大打开连接数
	// 连接生命周期
	ConnMaxLifetimeMinutes int `yaml:"conn_max_lifetime_minutes"` // 连接最大生命周期(分钟)
	ConnMaxIdleTimeMinutes int `yaml:"conn_max_idle_time_minutes"`
	// 超时设置
	ConnectTimeoutSeconds int `yaml:"connect_timeout_seconds"`
	ReadTimeoutSeconds    int `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds   int `yaml:"write_timeout_seconds"`
	// 日志设置
	LogLevel int `yaml:"log_level"` // gorm日志级别(1-4)
}

// MinIOConfig MinIO配置结构
type MinIOConfig struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"accessKeyID"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	UseSSL          bool   `yaml:"useSSL"`
	Location        string `yaml:"location"` // 可选，存储桶区域
	// 原始简历存储桶
	ResumeBucket string `yaml:"resumeBucket"`
	// 原始文件保留天数，0表示不过期
	ResumeExpireDays int `yaml:"resume_expire_days"`
}

// RedisConfig Redis配置结构
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// 连接池设置
	PoolSize     int `yaml:"pool_size"`
	MinIdleConns int `yaml:"min_idle_conns"`
	// 超时设置
	DialTimeoutSeconds  int `yaml:"dial_timeout_seconds"`
	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"`
	// MD5去重记录过期天数
	MD5RecordExpireDays int `yaml:"md5_record_expire_days"`
}

// ExtractorConfig 文本提取器配置
type ExtractorConfig struct {
	// Type 提取器类型: "default" 纯本地解析, "tika" 走Tika服务器
	Type string `yaml:"type"`
	// Tika服务器地址，仅type为tika时使用
	TikaServerURL string `yaml:"tika_server_url"`
	// Tika请求超时(秒)
	TikaTimeoutSeconds int `yaml:"tika_timeout_seconds"`
}

// ScoringConfig 评分引擎配置
// 权重必须和为1.0，缺省时使用包内默认值
type ScoringConfig struct {
	SkillWeight      float64 `yaml:"skill_weight"`
	ExperienceWeight float64 `yaml:"experience_weight"`
	EducationWeight  float64 `yaml:"education_weight"`
	SemanticWeight   float64 `yaml:"semantic_weight"`
	// 工作经历日期解析失败时按此月数计入
	DefaultDurationMonths int `yaml:"default_duration_months"`
}

// SkillsConfig 技能词表配置
type SkillsConfig struct {
	// VocabularyPath 外部词表文件路径，留空使用内置词表
	VocabularyPath string `yaml:"vocabulary_path"`
}

// NormalizerConfig 规范化器配置
type NormalizerConfig struct {
	// 外部存储查询超时，查询失败按字段缺失处理
	LookupTimeout string `yaml:"lookup_timeout"` // 例如 "2s"
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string `yaml:"level"`       // debug, info, warn, error
	Format       string `yaml:"format"`      // json, pretty
	TimeFormat   string `yaml:"time_format"` // 时间格式
	ReportCaller bool   `yaml:"report_caller"`
}

// LoadConfig 从文件加载配置
// configPath为空时在常见位置搜索；测试环境找不到文件时回退到默认配置
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		searchPaths := []string{
			"config.yaml",
			"./config.yaml",
			"../config.yaml",
			"../../config.yaml",
			filepath.Join(os.Getenv("HOME"), ".resume-match", "config.yaml"),
		}

		if execPath, err := os.Executable(); err == nil {
			execDir := filepath.Dir(execPath)
			searchPaths = append(searchPaths,
				filepath.Join(execDir, "config.yaml"),
				filepath.Join(execDir, "..", "config.yaml"),
			)
		}

		for _, path := range searchPaths {
			if _, err := os.Stat(path); err == nil {
				configPath = path
				break
			}
		}

		if configPath == "" {
			if inTestEnv() {
				return createDefaultConfig(), nil
			}
			configPath = "config.yaml"
		}
	}

	if _, err := os.Stat(configPath); err != nil {
		if inTestEnv() {
			return createDefaultConfig(), nil
		}
		return nil, fmt.Errorf("配置文件不存在: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 从环境变量覆盖敏感配置（如果存在）
	if envPwd := os.Getenv("MYSQL_PASSWORD"); envPwd != "" {
		config.MySQL.Password = envPwd
	}
	if envKey := os.Getenv("MINIO_SECRET_ACCESS_KEY"); envKey != "" {
		config.MinIO.SecretAccessKey = envKey
	}
	if envPwd := os.Getenv("REDIS_PASSWORD"); envPwd != "" {
		config.Redis.Password = envPwd
	}

	applyDefaults(&config)
	return &config, nil
}

// inTestEnv 通过进程参数判断是否处于go test环境
func inTestEnv() bool {
	for _, arg := range os.Args {
		if strings.Contains(arg, "test") {
			return true
		}
	}
	return false
}

// applyDefaults 填充缺省配置项
func applyDefaults(config *Config) {
	if config.Server.Address == "" {
		config.Server.Address = ":8080"
	}
	if config.Extractor.Type == "" {
		config.Extractor.Type = "default"
	}
	if config.Extractor.TikaTimeoutSeconds == 0 {
		config.Extractor.TikaTimeoutSeconds = 60
	}
	if config.Scoring.SkillWeight == 0 && config.Scoring.ExperienceWeight == 0 &&
		config.Scoring.EducationWeight == 0 && config.Scoring.SemanticWeight == 0 {
		config.Scoring.SkillWeight = 0.40
		config.Scoring.ExperienceWeight = 0.25
		config.Scoring.EducationWeight = 0.15
		config.Scoring.SemanticWeight = 0.20
	}
	if config.Scoring.DefaultDurationMonths == 0 {
		config.Scoring.DefaultDurationMonths = 12
	}
	if config.Normalizer.LookupTimeout == "" {
		config.Normalizer.LookupTimeout = "2s"
	}
	if config.MinIO.ResumeBucket == "" {
		config.MinIO.ResumeBucket = "resume-originals"
	}
	if config.Logger.Level == "" {
		config.Logger.Level = "info"
	}
}

// Validate 校验配置的内部一致性
func (c *Config) Validate() error {
	sum := c.Scoring.SkillWeight + c.Scoring.ExperienceWeight +
		c.Scoring.EducationWeight + c.Scoring.SemanticWeight
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("评分权重之和必须为1.0，当前为%.4f", sum)
	}
	if c.Extractor.Type != "default" && c.Extractor.Type != "tika" {
		return fmt.Errorf("未知的提取器类型: %s", c.Extractor.Type)
	}
	if c.Extractor.Type == "tika" && c.Extractor.TikaServerURL == "" {
		return fmt.Errorf("tika提取器需要配置tika_server_url")
	}
	return nil
}

// createDefaultConfig 默认配置，测试环境下找不到配置文件时使用
func createDefaultConfig() *Config {
	config := &Config{}

	config.MySQL.Host = "localhost"
	config.MySQL.Port = 3306
	config.MySQL.Username = "root"
	config.MySQL.Database = "resume_match"
	config.MySQL.MaxIdleConns = 10
	config.MySQL.MaxOpenConns = 100

	config.MinIO.Endpoint = "localhost:9000"
	config.MinIO.AccessKeyID = "minioadmin"
	config.MinIO.SecretAccessKey = "minioadmin"

	config.Redis.Address = "localhost:6379"
	config.Redis.MD5RecordExpireDays = 30

	config.Logger.Level = "info"
	config.Logger.Format = "pretty"

	applyDefaults(config)
	return config
}

// GetDuration 解析时长字符串，解析失败返回默认值
func GetDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	if durationStr == "" {
		return defaultDuration
	}
	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return defaultDuration
	}
	return d
}
