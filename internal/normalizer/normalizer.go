package normalizer

import (
	"context"
	"time"

	"resume-match-go/internal/constants"
	"resume-match-go/internal/logger"
	"resume-match-go/internal/types"
)

// IdentityStore 按申请人ID反查姓名的外部协作方
type IdentityStore interface {
	LookupName(ctx context.Context, applicantID string) (string, error)
}

// JobStore 岗位信息的外部协作方
type JobStore interface {
	LookupTitle(ctx context.Context, jobID string) (string, error)
	LookupRequirements(ctx context.Context, jobID string) (types.JobRequirements, error)
}

// DefaultLookupTimeout 单次外部查询的默认超时
const DefaultLookupTimeout = 2 * time.Second

// Normalizer 投递记录规范化器
// 历史上投递记录经历过几次结构调整，旧字段名(candidate_*)和裸分值
// 可能与新字段并存。所有读取路径统一经过这里收敛成规范形态。
// 契约：每个字段按固定顺序的规则列表取第一个命中值；纯字段规则不访问
// 网络；外部查询规则有超时兜底，查不到就置空，永不失败；幂等
type Normalizer struct {
	identity      IdentityStore
	jobs          JobStore
	lookupTimeout time.Duration
}

// NormalizerOption 规范化器配置选项
type NormalizerOption func(*Normalizer)

// WithIdentityStore 注入申请人信息查询实现
func WithIdentityStore(store IdentityStore) NormalizerOption {
	return func(n *Normalizer) {
		n.identity = store
	}
}

// WithJobStore 注入岗位信息查询实现
func WithJobStore(store JobStore) NormalizerOption {
	return func(n *Normalizer) {
		n.jobs = store
	}
}

// WithLookupTimeout 覆盖外部查询超时
func WithLookupTimeout(timeout time.Duration) NormalizerOption {
	return func(n *Normalizer) {
		if timeout > 0 {
			n.lookupTimeout = timeout
		}
	}
}

// NewNormalizer 创建规范化器，外部协作方可以为空（对应规则直接跳过）
func NewNormalizer(options ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		lookupTimeout: DefaultLookupTimeout,
	}
	for _, option := range options {
		option(n)
	}
	return n
}

// Normalize 把可能混有历史字段的原始记录收敛为规范记录
// 规则顺序即优先级，第一个非空值生效；所有字段缺失也能产出合法记录
func (n *Normalizer) Normalize(ctx context.Context, raw types.RawApplicationRecord) types.ApplicationRecord {
	rec := types.ApplicationRecord{
		ApplicationUUID: raw.ApplicationUUID,
		JobID:           raw.JobID,
		ResumeObjectKey: raw.ResumeObjectKey,
		ExtractedText:   raw.ExtractedText,
		AppliedAt:       raw.AppliedAt,
	}

	// 状态: raw.status > "Applied"
	rec.Status = firstNonEmpty(raw.Status, constants.StatusApplied)

	// 画像: 缺失时补全空画像，保证切片非nil
	if raw.Profile != nil {
		rec.Profile = *raw.Profile
	} else {
		rec.Profile = types.EmptyProfile()
	}
	ensureProfileSlices(&rec.Profile)

	// 联系方式: 记录自带 > 画像提取值
	rec.Email = firstNonEmpty(raw.Email, rec.Profile.Email)
	rec.Phone = firstNonEmpty(raw.Phone, rec.Profile.Phone)

	// 评分: 旧版裸分值 > 新版breakdown里的总分 > 0
	if raw.Scoring != nil {
		rec.Scoring = *raw.Scoring
	}
	ensureScoringSlices(&rec.Scoring)
	switch {
	case raw.Score != nil:
		rec.Score = *raw.Score
	case raw.Scoring != nil:
		rec.Score = raw.Scoring.FinalScore
	default:
		rec.Score = 0
	}

	// 申请人ID: 新字段 > 旧candidate字段
	rec.ApplicantID = firstNonEmpty(raw.ApplicantID, raw.CandidateID)

	// 申请人姓名: 新字段 > 旧字段 > 画像姓名 > 身份查询
	rec.ApplicantName = firstNonEmpty(raw.ApplicantName, raw.CandidateName, rec.Profile.Name)
	if rec.ApplicantName == "" && rec.ApplicantID != "" && n.identity != nil {
		rec.ApplicantName = n.lookupName(ctx, rec.ApplicantID)
	}

	// 岗位名称: 记录自带 > 岗位查询
	rec.JobTitle = raw.JobTitle
	if rec.JobTitle == "" && rec.JobID != "" && n.jobs != nil {
		rec.JobTitle = n.lookupTitle(ctx, rec.JobID)
	}

	return rec
}

// NormalizeAll 批量规范化，列表接口的读路径使用
func (n *Normalizer) NormalizeAll(ctx context.Context, raws []types.RawApplicationRecord) []types.ApplicationRecord {
	out := make([]types.ApplicationRecord, 0, len(raws))
	for _, raw := range raws {
		out = append(out, n.Normalize(ctx, raw))
	}
	return out
}

// lookupName 带超时的姓名反查，任何失败都降级为空
func (n *Normalizer) lookupName(ctx context.Context, applicantID string) string {
	lookupCtx, cancel := context.WithTimeout(ctx, n.lookupTimeout)
	defer cancel()

	name, err := n.identity.LookupName(lookupCtx, applicantID)
	if err != nil {
		logger.Debug().Err(err).Str("applicant_id", applicantID).Msg("申请人姓名反查失败，按空处理")
		return ""
	}
	return name
}

// lookupTitle 带超时的岗位名称反查，任何失败都降级为空
func (n *Normalizer) lookupTitle(ctx context.Context, jobID string) string {
	lookupCtx, cancel := context.WithTimeout(ctx, n.lookupTimeout)
	defer cancel()

	title, err := n.jobs.LookupTitle(lookupCtx, jobID)
	if err != nil {
		logger.Debug().Err(err).Str("job_id", jobID).Msg("岗位名称反查失败，按空处理")
		return ""
	}
	return title
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func ensureProfileSlices(p *types.ApplicantProfile) {
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Education == nil {
		p.Education = []types.EducationEntry{}
	}
	if p.Experience == nil {
		p.Experience = []types.ExperienceEntry{}
	}
}

func ensureScoringSlices(s *types.ScoreBreakdown) {
	if s.MatchedSkills == nil {
		s.MatchedSkills = []string{}
	}
	if s.MissingSkills == nil {
		s.MissingSkills = []string{}
	}
	if s.Breakdown == nil {
		s.Breakdown = map[string]string{}
	}
}
