package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"resume-match-go/internal/config"
	"resume-match-go/internal/storage/models"
	"resume-match-go/internal/tracing"
	"resume-match-go/internal/types"
)

var mysqlTracer = otel.Tracer("resume-match-go/storage/mysql")

// ErrDuplicateApplication 同一申请人对同一岗位的重复投递
// 由数据库唯一约束兜底产生，是存储层唯一向上传播的业务错误
var ErrDuplicateApplication = errors.New("duplicate application for this job")

// ErrRecordNotFound 查询目标不存在
var ErrRecordNotFound = gorm.ErrRecordNotFound

type spanContextKey struct{}

// GormTracingPlugin 向GORM操作注入OpenTelemetry追踪点
type GormTracingPlugin struct {
	tracer trace.Tracer
	dbName string
}

// NewGormTracingPlugin 创建GORM追踪插件
func NewGormTracingPlugin(dbName string) *GormTracingPlugin {
	return &GormTracingPlugin{
		tracer: mysqlTracer,
		dbName: dbName,
	}
}

// Name 返回插件名称
func (p *GormTracingPlugin) Name() string {
	return "GormOpenTelemetryPlugin"
}

// Initialize 为全部CRUD操作注册前后回调
func (p *GormTracingPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	if err := cb.Create().Before("gorm:create").Register("otel:before_create", p.before("CREATE")); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("otel:after_create", p.after()); err != nil {
		return err
	}

	if err := cb.Query().Before("gorm:query").Register("otel:before_query", p.before("SELECT")); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("otel:after_query", p.after()); err != nil {
		return err
	}

	if err := cb.Update().Before("gorm:update").Register("otel:before_update", p.before("UPDATE")); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("otel:after_update", p.after()); err != nil {
		return err
	}

	if err := cb.Delete().Before("gorm:delete").Register("otel:before_delete", p.before("DELETE")); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("otel:after_delete", p.after()); err != nil {
		return err
	}

	if err := cb.Row().Before("gorm:row").Register("otel:before_row", p.before("ROW")); err != nil {
		return err
	}
	if err := cb.Row().After("gorm:row").Register("otel:after_row", p.after()); err != nil {
		return err
	}

	if err := cb.Raw().Before("gorm:raw").Register("otel:before_raw", p.before("RAW")); err != nil {
		return err
	}
	if err := cb.Raw().After("gorm:raw").Register("otel:after_raw", p.after()); err != nil {
		return err
	}

	return nil
}

func (p *GormTracingPlugin) before(operation string) func(db *gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		tableName := db.Statement.Table
		if tableName == "" {
			tableName = "unknown"
		}

		newCtx, span := p.tracer.Start(ctx, fmt.Sprintf("%s %s", operation, tableName),
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				semconv.DBSystemMySQL,
				attribute.String("db.name", p.dbName),
				attribute.String("db.operation", operation),
				attribute.String("db.sql.table", tableName),
			),
		)
		db.Statement.Context = context.WithValue(newCtx, spanContextKey{}, span)
	}
}

func (p *GormTracingPlugin) after() func(db *gorm.DB) {
	return func(db *gorm.DB) {
		span, ok := db.Statement.Context.Value(spanContextKey{}).(trace.Span)
		if !ok {
			return
		}
		defer span.End()

		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		switch {
		case db.Error == nil:
			span.SetStatus(codes.Ok, "")
		case errors.Is(db.Error, gorm.ErrRecordNotFound):
			// 记录不存在属于正常业务分支，不按错误上报
			span.SetAttributes(attribute.String("error.type", "record_not_found"))
			span.SetStatus(codes.Ok, "record not found")
		default:
			tracing.RecordError(span, db.Error, tracing.ErrorTypeDB)
		}
	}
}

// MySQL 提供关系数据库功能
type MySQL struct {
	db  *gorm.DB
	cfg *config.MySQLConfig
}

// NewMySQL 创建MySQL客户端并自动迁移表结构
func NewMySQL(cfg *config.MySQLConfig) (*MySQL, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MySQL配置不能为空")
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%ds&readTimeout=%ds&writeTimeout=%ds",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
		cfg.ConnectTimeoutSeconds, cfg.ReadTimeoutSeconds, cfg.WriteTimeoutSeconds)

	var logLevel gormlogger.LogLevel
	switch cfg.LogLevel {
	case 1:
		logLevel = gormlogger.Silent
	case 2:
		logLevel = gormlogger.Error
	case 3:
		logLevel = gormlogger.Warn
	default:
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(logLevel),
		PrepareStmt:                              true,
	})
	if err != nil {
		return nil, fmt.Errorf("连接MySQL失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层sql.DB失败: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTimeMinutes) * time.Minute)

	if err := db.Use(NewGormTracingPlugin(cfg.Database)); err != nil {
		return nil, fmt.Errorf("注册追踪插件失败: %w", err)
	}

	m := &MySQL{db: db, cfg: cfg}
	if err := m.autoMigrateSchema(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("自动迁移数据库结构失败: %w", err)
	}

	log.Println("成功连接到MySQL并完成结构迁移")
	return m, nil
}

func (m *MySQL) autoMigrateSchema() error {
	// 迁移期间关闭SQL日志，避免刷屏
	silentDB := m.db.Session(&gorm.Session{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	return silentDB.AutoMigrate(
		&models.Applicant{},
		&models.Job{},
		&models.Application{},
	)
}

// DB 返回GORM连接实例
func (m *MySQL) DB() *gorm.DB {
	return m.db
}

// Close 关闭数据库连接
func (m *MySQL) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("获取底层sql.DB失败: %w", err)
	}
	return sqlDB.Close()
}

// CreateApplication 写入一条投递记录
// 命中(job_id, applicant_id)唯一约束时返回ErrDuplicateApplication
func (m *MySQL) CreateApplication(ctx context.Context, app *models.Application) error {
	if err := m.db.WithContext(ctx).Create(app).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateApplication
		}
		return fmt.Errorf("写入投递记录失败: %w", err)
	}
	return nil
}

// GetApplicationByUUID 按主键读取投递记录，附带岗位信息
func (m *MySQL) GetApplicationByUUID(ctx context.Context, applicationUUID string) (*models.Application, error) {
	var app models.Application
	err := m.db.WithContext(ctx).Preload("Job").
		First(&app, "application_uuid = ?", applicationUUID).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// ListApplications 按投递时间倒序分页列出投递记录
func (m *MySQL) ListApplications(ctx context.Context, offset, limit int) ([]models.Application, error) {
	if limit <= 0 {
		limit = 50
	}
	var apps []models.Application
	err := m.db.WithContext(ctx).Preload("Job").
		Order("applied_at DESC").Offset(offset).Limit(limit).
		Find(&apps).Error
	return apps, err
}

// ListApplicationsByJob 列出某岗位的全部投递，按分数倒序
func (m *MySQL) ListApplicationsByJob(ctx context.Context, jobID string) ([]models.Application, error) {
	var apps []models.Application
	err := m.db.WithContext(ctx).Preload("Job").
		Where("job_id = ?", jobID).
		Order("score DESC").
		Find(&apps).Error
	return apps, err
}

// ListApplicationsByApplicant 列出某申请人的全部投递
func (m *MySQL) ListApplicationsByApplicant(ctx context.Context, applicantID string) ([]models.Application, error) {
	var apps []models.Application
	err := m.db.WithContext(ctx).Preload("Job").
		Where("applicant_id = ? OR candidate_id = ?", applicantID, applicantID).
		Order("applied_at DESC").
		Find(&apps).Error
	return apps, err
}

// UpdateApplicationStatus 更新投递状态
func (m *MySQL) UpdateApplicationStatus(ctx context.Context, applicationUUID string, status string) error {
	result := m.db.WithContext(ctx).Model(&models.Application{}).
		Where("application_uuid = ?", applicationUUID).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("更新投递状态失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetJobByID 按主键读取岗位
func (m *MySQL) GetJobByID(ctx context.Context, jobID string) (*models.Job, error) {
	var job models.Job
	if err := m.db.WithContext(ctx).First(&job, "job_id = ?", jobID).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// GetApplicantByID 按主键读取申请人
func (m *MySQL) GetApplicantByID(ctx context.Context, applicantID string) (*models.Applicant, error) {
	var applicant models.Applicant
	if err := m.db.WithContext(ctx).First(&applicant, "applicant_id = ?", applicantID).Error; err != nil {
		return nil, err
	}
	return &applicant, nil
}

// LookupName 实现normalizer.IdentityStore
func (m *MySQL) LookupName(ctx context.Context, applicantID string) (string, error) {
	applicant, err := m.GetApplicantByID(ctx, applicantID)
	if err != nil {
		return "", err
	}
	return applicant.FullName, nil
}

// LookupTitle 实现normalizer.JobStore
func (m *MySQL) LookupTitle(ctx context.Context, jobID string) (string, error) {
	job, err := m.GetJobByID(ctx, jobID)
	if err != nil {
		return "", err
	}
	return job.Title, nil
}

// LookupRequirements 实现normalizer.JobStore
func (m *MySQL) LookupRequirements(ctx context.Context, jobID string) (types.JobRequirements, error) {
	job, err := m.GetJobByID(ctx, jobID)
	if err != nil {
		return types.JobRequirements{}, err
	}
	return job.Requirements(), nil
}

// isDuplicateKeyError 识别MySQL 1062唯一约束冲突
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *gomysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}
