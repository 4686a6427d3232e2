package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"resume-match-go/internal/types"
	"resume-match-go/pkg/utils"
)

// Applicant 申请人主表
type Applicant struct {
	ApplicantID string    `gorm:"type:char(36);primaryKey"`
	FullName    string    `gorm:"type:varchar(255)"`
	Email       string    `gorm:"type:varchar(255);uniqueIndex:idx_applicants_email_unique"`
	Phone       string    `gorm:"type:varchar(50)"`
	CreatedAt   time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt   time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (Applicant) TableName() string {
	return "applicants"
}

// Job 岗位信息表
type Job struct {
	JobID               string         `gorm:"type:char(36);primaryKey"`
	Title               string         `gorm:"type:varchar(255);not null"`
	Department          string         `gorm:"type:varchar(255)"`
	Location            string         `gorm:"type:varchar(255)"`
	Description         string         `gorm:"type:text;not null"`
	RequiredSkillsJSON  datatypes.JSON `gorm:"type:json"`
	PreferredSkillsJSON datatypes.JSON `gorm:"type:json"`
	MinYears            int            `gorm:"not null;default:0"`
	EducationLevel      string         `gorm:"type:varchar(20);default:'none'"`
	Status              string         `gorm:"type:varchar(50);default:'ACTIVE';index:idx_jobs_status"`
	CreatedAt           time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt           time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (Job) TableName() string {
	return "jobs"
}

// NewJobFromRequirements 用岗位要求组装一条岗位行，种子数据和测试使用
func NewJobFromRequirements(req types.JobRequirements) *Job {
	return &Job{
		JobID:               req.JobID,
		Title:               req.Title,
		Description:         req.Description,
		RequiredSkillsJSON:  utils.ConvertArrayToJSON(req.RequiredSkills),
		PreferredSkillsJSON: utils.ConvertArrayToJSON(req.PreferredSkills),
		MinYears:            req.MinYears,
		EducationLevel:      req.EducationLevel.String(),
		Status:              "ACTIVE",
	}
}

// Requirements 把岗位行转换为评分引擎需要的只读视图
func (j *Job) Requirements() types.JobRequirements {
	return types.JobRequirements{
		JobID:           j.JobID,
		Title:           j.Title,
		RequiredSkills:  decodeStringArray(j.RequiredSkillsJSON),
		PreferredSkills: decodeStringArray(j.PreferredSkillsJSON),
		MinYears:        j.MinYears,
		EducationLevel:  types.ParseEducationLevel(j.EducationLevel),
		Description:     j.Description,
	}
}

// Application 投递记录表
// (job_id, applicant_id)组合唯一约束阻止同一申请人重复投递同一岗位；
// applicant_id可空，匿名公开投递不受该约束限制(MySQL唯一索引允许多个NULL)
type Application struct {
	ApplicationUUID string  `gorm:"type:char(36);primaryKey"`
	JobID           string  `gorm:"type:char(36);not null;index:idx_applications_job_id;uniqueIndex:uq_applications_job_applicant,priority:1"`
	ApplicantID     *string `gorm:"type:char(36);index:idx_applications_applicant_id;uniqueIndex:uq_applications_job_applicant,priority:2"`

	// 历史遗留列，老数据里可能只有candidate_*字段有值
	LegacyCandidateID   string `gorm:"type:char(36);column:candidate_id"`
	LegacyCandidateName string `gorm:"type:varchar(255);column:candidate_name"`

	ApplicantName   string         `gorm:"type:varchar(255)"`
	Email           string         `gorm:"type:varchar(255)"`
	Phone           string         `gorm:"type:varchar(50)"`
	ResumeObjectKey string         `gorm:"type:varchar(1024)"`
	ResumeMD5       string         `gorm:"type:char(32);index:idx_applications_resume_md5"`
	ExtractedText   string         `gorm:"type:mediumtext"`
	ProfileJSON     datatypes.JSON `gorm:"type:json"`
	ScoringJSON     datatypes.JSON `gorm:"type:json"`
	Score           *float64       `gorm:"index:idx_applications_score"`
	Status          string         `gorm:"type:varchar(50);default:'Applied';index:idx_applications_status"`
	SourceChannel   string         `gorm:"type:varchar(100)"`
	AppliedAt       time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);index:idx_applications_applied_at"`
	UpdatedAt       time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`

	Job *Job `gorm:"foreignKey:JobID;references:JobID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (Application) TableName() string {
	return "applications"
}

// ToRawRecord 把数据库行转换为规范化器的输入形态
// 新旧字段一并带出，由规范化规则决定取谁
func (a *Application) ToRawRecord() types.RawApplicationRecord {
	raw := types.RawApplicationRecord{
		ApplicationUUID: a.ApplicationUUID,
		JobID:           a.JobID,
		CandidateID:     a.LegacyCandidateID,
		CandidateName:   a.LegacyCandidateName,
		ApplicantName:   a.ApplicantName,
		Email:           a.Email,
		Phone:           a.Phone,
		ResumeObjectKey: a.ResumeObjectKey,
		ExtractedText:   a.ExtractedText,
		Score:           a.Score,
		Status:          a.Status,
		AppliedAt:       a.AppliedAt,
	}
	if a.ApplicantID != nil {
		raw.ApplicantID = *a.ApplicantID
	}
	if a.Job != nil {
		raw.JobTitle = a.Job.Title
	}
	if len(a.ProfileJSON) > 0 {
		var profile types.ApplicantProfile
		if err := json.Unmarshal(a.ProfileJSON, &profile); err == nil {
			raw.Profile = &profile
		}
	}
	if len(a.ScoringJSON) > 0 {
		var scoring types.ScoreBreakdown
		if err := json.Unmarshal(a.ScoringJSON, &scoring); err == nil {
			raw.Scoring = &scoring
		}
	}
	return raw
}

func decodeStringArray(data datatypes.JSON) []string {
	if len(data) == 0 {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return []string{}
	}
	return out
}
