package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/gofrs/uuid/v5"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"resume-match-go/internal/config"
	"resume-match-go/internal/constants"
	"resume-match-go/internal/logger"
	"resume-match-go/internal/normalizer"
	"resume-match-go/internal/processor"
	"resume-match-go/internal/storage"
	"resume-match-go/internal/storage/models"
	"resume-match-go/internal/types"
	"resume-match-go/pkg/utils"
)

// ErrInvalidStatus 状态更新的目标状态不在允许集合内
var ErrInvalidStatus = errors.New("invalid application status")

// ApplicationHandler 投递处理器，协调上传、流水线和持久化
type ApplicationHandler struct {
	cfg        *config.Config
	storage    *storage.Storage
	pipeline   *processor.Pipeline
	normalizer *normalizer.Normalizer
}

// NewApplicationHandler 创建投递处理器
func NewApplicationHandler(cfg *config.Config, st *storage.Storage, pipeline *processor.Pipeline, norm *normalizer.Normalizer) *ApplicationHandler {
	return &ApplicationHandler{
		cfg:        cfg,
		storage:    st,
		pipeline:   pipeline,
		normalizer: norm,
	}
}

// ApplyRequest 一次投递请求的输入
type ApplyRequest struct {
	JobID         string
	ApplicantID   string // 公开投递时为空
	ApplicantName string
	Email         string
	Phone         string
	Filename      string
	FileBytes     []byte
	SourceChannel string
}

// ApplyResponse 投递接口响应
type ApplyResponse struct {
	ApplicationUUID string       `json:"application_uuid,omitempty"`
	Status          string       `json:"status"`
	Score           float64      `json:"score"` // 0-100展示刻度
	Scoring         *ScoringView `json:"scoring,omitempty"`
	TextDegraded    bool         `json:"text_degraded"`
	ProfileEmpty    bool         `json:"profile_empty"`
}

// ScoringView 评分明细的对外展示形态，分量分保持[0,1]原始刻度
type ScoringView struct {
	SkillScore      float64           `json:"skill_score"`
	ExperienceScore float64           `json:"experience_score"`
	EducationScore  float64           `json:"education_score"`
	SemanticScore   float64           `json:"semantic_score"`
	MatchedSkills   []string          `json:"matched_skills"`
	MissingSkills   []string          `json:"missing_skills"`
	Breakdown       map[string]string `json:"breakdown"`
}

// HandleApply 处理一次投递(实名或公开)
// 重复文件直接跳过处理；同一申请人重复投递同一岗位返回ErrDuplicateApplication
func (h *ApplicationHandler) HandleApply(ctx context.Context, req ApplyRequest) (*ApplyResponse, error) {
	if req.JobID == "" {
		return nil, fmt.Errorf("job_id不能为空")
	}
	if len(req.FileBytes) == 0 {
		return nil, fmt.Errorf("简历文件不能为空")
	}

	job, err := h.storage.GetJobRequirements(ctx, req.JobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("读取岗位要求失败: %w", err)
	}

	// 文件级去重按岗位隔离，同一份文件投同一岗位只处理一次
	// 投其它岗位不受影响
	fileMD5 := utils.CalculateMD5(req.FileBytes)
	if h.storage.Redis != nil {
		duplicate, err := h.storage.Redis.CheckAndAddFileMD5(ctx, req.JobID, fileMD5)
		if err != nil {
			return nil, fmt.Errorf("文件去重检查失败: %w", err)
		}
		if duplicate {
			logger.Info().Str("md5", fileMD5).Str("job_id", req.JobID).Str("filename", req.Filename).Msg("检测到同岗位重复简历文件，跳过处理")
			return &ApplyResponse{Status: "DuplicateFileSkipped"}, nil
		}
	}

	applicationUUID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("生成投递UUID失败: %w", err)
	}

	// 原始文件落对象存储，流水线只消费内存字节
	objectKey := ""
	fileExt := filepath.Ext(req.Filename)
	if h.storage.MinIO != nil {
		objectKey, err = h.storage.MinIO.UploadResumeFileFromBytes(ctx, applicationUUID.String(), fileExt, req.FileBytes)
		if err != nil {
			h.rollbackFileMD5(ctx, req.JobID, fileMD5)
			return nil, fmt.Errorf("上传简历文件失败: %w", err)
		}
	}

	result := h.pipeline.ProcessSubmission(ctx, req.FileBytes, req.Filename, job)

	app, err := h.buildApplicationRow(applicationUUID.String(), req, job, result, objectKey, fileMD5)
	if err != nil {
		h.rollbackUpload(ctx, req.JobID, fileMD5, objectKey)
		return nil, err
	}

	if err := h.storage.MySQL.CreateApplication(ctx, app); err != nil {
		h.rollbackUpload(ctx, req.JobID, fileMD5, objectKey)
		return nil, err
	}

	logger.Info().
		Str("application_uuid", app.ApplicationUUID).
		Str("job_id", req.JobID).
		Float64("final_score", result.Scoring.FinalScore).
		Bool("text_degraded", result.TextDegraded).
		Msg("投递处理完成")

	return &ApplyResponse{
		ApplicationUUID: app.ApplicationUUID,
		Status:          app.Status,
		Score:           displayScore(result.Scoring.FinalScore),
		Scoring: &ScoringView{
			SkillScore:      result.Scoring.SkillScore,
			ExperienceScore: result.Scoring.ExperienceScore,
			EducationScore:  result.Scoring.EducationScore,
			SemanticScore:   result.Scoring.SemanticScore,
			MatchedSkills:   result.Scoring.MatchedSkills,
			MissingSkills:   result.Scoring.MissingSkills,
			Breakdown:       result.Scoring.Breakdown,
		},
		TextDegraded: result.TextDegraded,
		ProfileEmpty: result.ProfileEmpty,
	}, nil
}

// buildApplicationRow 把流水线产物组装成数据库行
func (h *ApplicationHandler) buildApplicationRow(applicationUUID string, req ApplyRequest, job types.JobRequirements, result *types.SubmissionResult, objectKey, fileMD5 string) (*models.Application, error) {
	profileJSON, err := json.Marshal(result.Profile)
	if err != nil {
		return nil, fmt.Errorf("序列化候选画像失败: %w", err)
	}
	scoringJSON, err := json.Marshal(result.Scoring)
	if err != nil {
		return nil, fmt.Errorf("序列化评分明细失败: %w", err)
	}

	sourceChannel := req.SourceChannel
	if sourceChannel == "" {
		sourceChannel = constants.DefaultSourceChannel
	}

	// 表单提交的联系信息优先于简历提取结果
	name := firstNonEmpty(req.ApplicantName, result.Profile.Name)
	email := firstNonEmpty(req.Email, result.Profile.Email)
	phone := firstNonEmpty(req.Phone, result.Profile.Phone)

	app := &models.Application{
		ApplicationUUID: applicationUUID,
		JobID:           req.JobID,
		ApplicantName:   name,
		Email:           email,
		Phone:           phone,
		ResumeObjectKey: objectKey,
		ResumeMD5:       fileMD5,
		ExtractedText:   result.ExtractedText,
		ProfileJSON:     datatypes.JSON(profileJSON),
		ScoringJSON:     datatypes.JSON(scoringJSON),
		Score:           utils.Float64Ptr(result.Scoring.FinalScore),
		Status:          constants.StatusApplied,
		SourceChannel:   sourceChannel,
		AppliedAt:       time.Now(),
	}
	if req.ApplicantID != "" {
		app.ApplicantID = utils.StringPtr(req.ApplicantID)
	}
	return app, nil
}

// rollbackUpload 投递写库失败后的清理，尽力而为
func (h *ApplicationHandler) rollbackUpload(ctx context.Context, jobID, fileMD5, objectKey string) {
	h.rollbackFileMD5(ctx, jobID, fileMD5)
	if objectKey != "" && h.storage.MinIO != nil {
		if err := h.storage.MinIO.DeleteFile(ctx, objectKey); err != nil {
			logger.Warn().Err(err).Str("object_key", objectKey).Msg("回滚删除简历对象失败")
		}
	}
}

func (h *ApplicationHandler) rollbackFileMD5(ctx context.Context, jobID, fileMD5 string) {
	if h.storage.Redis == nil {
		return
	}
	if err := h.storage.Redis.RemoveFileMD5(ctx, jobID, fileMD5); err != nil {
		logger.Warn().Err(err).Str("md5", fileMD5).Str("job_id", jobID).Msg("回滚MD5登记失败")
	}
}

// GetApplication 按UUID读取单条投递，读路径统一过规范化器
func (h *ApplicationHandler) GetApplication(ctx context.Context, applicationUUID string) (*types.ApplicationRecord, error) {
	app, err := h.storage.MySQL.GetApplicationByUUID(ctx, applicationUUID)
	if err != nil {
		return nil, err
	}
	rec := h.normalizer.Normalize(ctx, app.ToRawRecord())
	rec.Score = displayScore(rec.Score)
	return &rec, nil
}

// ListApplications 分页列出全部投递
func (h *ApplicationHandler) ListApplications(ctx context.Context, page, pageSize int) ([]types.ApplicationRecord, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}
	apps, err := h.storage.MySQL.ListApplications(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, fmt.Errorf("查询投递列表失败: %w", err)
	}
	return h.normalizeRows(ctx, apps), nil
}

// ListApplicationsByJob 列出某岗位的全部投递，按分数倒序
func (h *ApplicationHandler) ListApplicationsByJob(ctx context.Context, jobID string) ([]types.ApplicationRecord, error) {
	apps, err := h.storage.MySQL.ListApplicationsByJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("查询岗位投递失败: %w", err)
	}
	return h.normalizeRows(ctx, apps), nil
}

// resumeURLExpiry 简历下载链接有效期
const resumeURLExpiry = 15 * time.Minute

// GetResumeDownloadURL 为投递的原始简历生成预签名下载链接
func (h *ApplicationHandler) GetResumeDownloadURL(ctx context.Context, applicationUUID string) (string, error) {
	if h.storage.MinIO == nil {
		return "", fmt.Errorf("未配置对象存储，无法下载简历")
	}
	app, err := h.storage.MySQL.GetApplicationByUUID(ctx, applicationUUID)
	if err != nil {
		return "", err
	}
	if app.ResumeObjectKey == "" {
		return "", gorm.ErrRecordNotFound
	}
	return h.storage.MinIO.GetPresignedURL(ctx, app.ResumeObjectKey, resumeURLExpiry)
}

// ListApplicationsByApplicant 列出某申请人的全部投递，按投递时间倒序
func (h *ApplicationHandler) ListApplicationsByApplicant(ctx context.Context, applicantID string) ([]types.ApplicationRecord, error) {
	if applicantID == "" {
		return nil, fmt.Errorf("applicant_id不能为空")
	}
	apps, err := h.storage.MySQL.ListApplicationsByApplicant(ctx, applicantID)
	if err != nil {
		return nil, fmt.Errorf("查询申请人投递失败: %w", err)
	}
	return h.normalizeRows(ctx, apps), nil
}

// UpdateApplicationStatus 推进投递状态
func (h *ApplicationHandler) UpdateApplicationStatus(ctx context.Context, applicationUUID, status string) error {
	if !constants.ValidStatuses[status] {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	return h.storage.MySQL.UpdateApplicationStatus(ctx, applicationUUID, status)
}

func (h *ApplicationHandler) normalizeRows(ctx context.Context, apps []models.Application) []types.ApplicationRecord {
	raws := make([]types.RawApplicationRecord, 0, len(apps))
	for i := range apps {
		raws = append(raws, apps[i].ToRawRecord())
	}
	records := h.normalizer.NormalizeAll(ctx, raws)
	for i := range records {
		// 展示刻度换算只发生在HTTP边界
		records[i].Score = displayScore(records[i].Score)
	}
	return records
}

// displayScore [0,1]内部分值换算到0-100展示刻度，保留一位小数
// 历史裸分值可能已经是0-100刻度，大于1的值原样保留
func displayScore(score float64) float64 {
	if score > 1 {
		return math.Round(score*10) / 10
	}
	return math.Round(score*1000) / 10
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
