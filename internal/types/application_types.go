package types

import "time"

// EducationEntry 表示一条解析出的教育经历
type EducationEntry struct {
	Degree      string `json:"degree"`         // 学位关键字（原文形式，未做等级归一化）
	Institution string `json:"institution"`    // 学校/机构名称
	Year        int    `json:"year,omitempty"` // 毕业年份，0表示未解析出
}

// ExperienceEntry 表示一条解析出的工作经历
type ExperienceEntry struct {
	Title          string `json:"title"`                     // 职位名称
	Company        string `json:"company"`                   // 公司名称
	DurationMonths int    `json:"duration_months,omitempty"` // 持续时间（月），0表示日期未能解析
}

// ApplicantProfile 从简历原始文本中提取的结构化候选人信息
// 所有字段均允许为空：字段缺失是正常状态而不是错误
type ApplicantProfile struct {
	Name       string            `json:"name,omitempty"`
	Email      string            `json:"email,omitempty"`
	Phone      string            `json:"phone,omitempty"`
	Skills     []string          `json:"skills"`     // 归一化后的技能集合（小写、同义词合并、有序去重）
	Education  []EducationEntry  `json:"education"`  // 按出现顺序排列
	Experience []ExperienceEntry `json:"experience"` // 按出现顺序排列
}

// EmptyProfile 返回一个所有字段均为空但切片非nil的候选人信息
// 下游评分与序列化依赖"字段存在但为空"而不是nil
func EmptyProfile() ApplicantProfile {
	return ApplicantProfile{
		Skills:     []string{},
		Education:  []EducationEntry{},
		Experience: []ExperienceEntry{},
	}
}

// EducationLevel 教育程度的序数等级，用于学历比较
type EducationLevel int

const (
	EducationNone EducationLevel = iota
	EducationCertificate
	EducationBachelor
	EducationMaster
	EducationDoctorate
)

// String 返回等级的稳定字符串表示（持久化和配置中使用）
func (l EducationLevel) String() string {
	switch l {
	case EducationCertificate:
		return "certificate"
	case EducationBachelor:
		return "bachelor"
	case EducationMaster:
		return "master"
	case EducationDoctorate:
		return "doctorate"
	default:
		return "none"
	}
}

// ParseEducationLevel 将配置/存储中的字符串转换为等级，未知值按none处理
func ParseEducationLevel(s string) EducationLevel {
	switch s {
	case "certificate":
		return EducationCertificate
	case "bachelor":
		return EducationBachelor
	case "master":
		return EducationMaster
	case "doctorate":
		return EducationDoctorate
	default:
		return EducationNone
	}
}

// JobRequirements 岗位要求的只读视图，评分引擎的输入之一
// 由调用方从岗位存储读出后传入，流水线不会修改它
type JobRequirements struct {
	JobID           string         `json:"job_id,omitempty"`
	Title           string         `json:"title,omitempty"`
	RequiredSkills  []string       `json:"required_skills"`
	PreferredSkills []string       `json:"preferred_skills"`
	MinYears        int            `json:"min_years"`
	EducationLevel  EducationLevel `json:"education_level"`
	Description     string         `json:"description"` // 自由文本，用于语义相似度比较
}

// ScoreBreakdown 评分引擎的完整输出
// 生成后不再修改，原样嵌入投递记录持久化
type ScoreBreakdown struct {
	SkillScore      float64 `json:"skill_score"`
	ExperienceScore float64 `json:"experience_score"`
	EducationScore  float64 `json:"education_score"`
	SemanticScore   float64 `json:"semantic_score"`
	// FinalScore 恒等于四个分量按固定权重的加权和，范围[0,1]
	// 不允许独立赋值，否则评分不可复核
	FinalScore float64 `json:"final_score"`

	MatchedSkills []string `json:"matched_skills"` // 命中的必需技能
	MissingSkills []string `json:"missing_skills"` // 缺失的必需技能

	SkillCoverage      float64 `json:"skill_coverage"`      // |命中必需| / max(1,|必需|)
	ExperienceMatch    float64 `json:"experience_match"`    // 原始经验比例，封顶1.0
	SemanticSimilarity float64 `json:"semantic_similarity"` // 原始余弦相似度

	// Breakdown 每个分量一条面向审阅者的简短说明
	Breakdown map[string]string `json:"breakdown"`
}

// SubmissionResult 一次投递经过完整流水线后的产物
// 降级标志显式记录哪些阶段产出了零信息结果，替代旧实现里吞异常只打日志的做法
type SubmissionResult struct {
	ExtractedText string           `json:"extracted_text"`
	Profile       ApplicantProfile `json:"profile"`
	Scoring       ScoreBreakdown   `json:"scoring"`

	TextDegraded bool `json:"text_degraded"` // 文本提取失败或产出为空
	ProfileEmpty bool `json:"profile_empty"` // 结构化信息一项都没提取到
}

// RawApplicationRecord 从存储读出的、可能来自不同历史版本结构的投递记录
// 旧版本用candidate_*字段，新版本用applicant_*字段，两者可能同时存在
type RawApplicationRecord struct {
	ApplicationUUID string            `json:"application_uuid"`
	JobID           string            `json:"job_id"`
	ApplicantID     string            `json:"applicant_id,omitempty"`
	CandidateID     string            `json:"candidate_id,omitempty"` // 旧版字段名
	ApplicantName   string            `json:"applicant_name,omitempty"`
	CandidateName   string            `json:"candidate_name,omitempty"` // 旧版字段名
	Email           string            `json:"email,omitempty"`
	Phone           string            `json:"phone,omitempty"`
	JobTitle        string            `json:"job_title,omitempty"`
	ResumeObjectKey string            `json:"resume_object_key,omitempty"`
	ExtractedText   string            `json:"extracted_text,omitempty"`
	Profile         *ApplicantProfile `json:"profile,omitempty"`
	Scoring         *ScoreBreakdown   `json:"scoring,omitempty"`
	Score           *float64          `json:"score,omitempty"` // 旧版记录可能只有这个裸分值
	Status          string            `json:"status,omitempty"`
	AppliedAt       time.Time         `json:"applied_at"`
}

// ApplicationRecord 规范化后的投递记录，所有读取路径对外只暴露这个形态
type ApplicationRecord struct {
	ApplicationUUID string           `json:"application_uuid"`
	JobID           string           `json:"job_id"`
	ApplicantID     string           `json:"applicant_id,omitempty"` // 匿名投递时为空
	ApplicantName   string           `json:"applicant_name,omitempty"`
	Email           string           `json:"email,omitempty"`
	Phone           string           `json:"phone,omitempty"`
	JobTitle        string           `json:"job_title,omitempty"`
	ResumeObjectKey string           `json:"resume_object_key,omitempty"`
	ExtractedText   string           `json:"extracted_text,omitempty"`
	Profile         ApplicantProfile `json:"profile"`
	Scoring         ScoreBreakdown   `json:"scoring"`
	Score           float64          `json:"score"` // 与Scoring.FinalScore一致；旧记录无breakdown时取裸分值
	Status          string           `json:"status"`
	AppliedAt       time.Time        `json:"applied_at"`
}
