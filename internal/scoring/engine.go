package scoring

import (
	"fmt"
	"sort"
	"strings"

	"resume-match-go/internal/logger"
	"resume-match-go/internal/types"
)

// 分量权重，固定不变保证历史分数可复核
// 修改权重等于换了一把尺子，旧分数就不可比了
const (
	DefaultSkillWeight      = 0.40
	DefaultExperienceWeight = 0.25
	DefaultEducationWeight  = 0.15
	DefaultSemanticWeight   = 0.20
)

// DefaultDurationMonths 无法解析出时长的经历条目按这个月数计入
const DefaultDurationMonths = 12

// Weights 四个分量的权重，各项之和应为1.0
type Weights struct {
	Skill      float64
	Experience float64
	Education  float64
	Semantic   float64
}

// Engine 确定性评分引擎
// 契约：相同的(画像, 文本, 岗位要求)输入产生逐位相同的输出；
// 永不panic，单个分量内部异常被捕获后该分量记0分，其余分量照常计算
type Engine struct {
	weights               Weights
	defaultDurationMonths int
	// 技能名归一化函数，默认只做小写化，可注入词表归一
	normalize func(string) string
}

// EngineOption 引擎配置选项
type EngineOption func(*Engine)

// WithWeights 覆盖分量权重
func WithWeights(w Weights) EngineOption {
	return func(e *Engine) {
		e.weights = w
	}
}

// WithDefaultDuration 覆盖未知时长经历的默认月数
func WithDefaultDuration(months int) EngineOption {
	return func(e *Engine) {
		if months > 0 {
			e.defaultDurationMonths = months
		}
	}
}

// WithSkillNormalizer 注入技能名归一化函数（通常来自技能词表）
func WithSkillNormalizer(fn func(string) string) EngineOption {
	return func(e *Engine) {
		if fn != nil {
			e.normalize = fn
		}
	}
}

// NewEngine 创建评分引擎
func NewEngine(options ...EngineOption) *Engine {
	e := &Engine{
		weights: Weights{
			Skill:      DefaultSkillWeight,
			Experience: DefaultExperienceWeight,
			Education:  DefaultEducationWeight,
			Semantic:   DefaultSemanticWeight,
		},
		defaultDurationMonths: DefaultDurationMonths,
		normalize: func(s string) string {
			return strings.ToLower(strings.TrimSpace(s))
		},
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Evaluate 对一份候选画像计算四个分量分和加权总分
// final_score恒等于四个分量的加权和，不会被独立赋值
func (e *Engine) Evaluate(profile types.ApplicantProfile, resumeText string, job types.JobRequirements) types.ScoreBreakdown {
	result := types.ScoreBreakdown{
		MatchedSkills: []string{},
		MissingSkills: []string{},
		Breakdown:     make(map[string]string),
	}

	e.scoreSkills(&result, profile, job)
	e.scoreExperience(&result, profile, job)
	e.scoreEducation(&result, profile, job)
	e.scoreSemantic(&result, resumeText, job)

	result.FinalScore = clamp01(e.weights.Skill*result.SkillScore +
		e.weights.Experience*result.ExperienceScore +
		e.weights.Education*result.EducationScore +
		e.weights.Semantic*result.SemanticScore)
	return result
}

// scoreSkills 技能分量
// matched/missing只针对必需技能，保证 matched ∪ missing == required；
// 倾向技能命中只以0.5权重计入加权命中率并写进说明文字
func (e *Engine) scoreSkills(result *types.ScoreBreakdown, profile types.ApplicantProfile, job types.JobRequirements) {
	defer e.recoverComponent(result, "skill", &result.SkillScore)

	candidate := make(map[string]bool)
	for _, s := range profile.Skills {
		if n := e.normalize(s); n != "" {
			candidate[n] = true
		}
	}

	required := normalizeUnique(job.RequiredSkills, e.normalize)
	// 与必需重复的倾向技能不再重复计分
	preferred := subtract(normalizeUnique(job.PreferredSkills, e.normalize), required)

	var matchedPreferred []string
	for _, s := range required {
		if candidate[s] {
			result.MatchedSkills = append(result.MatchedSkills, s)
		} else {
			result.MissingSkills = append(result.MissingSkills, s)
		}
	}
	for _, s := range preferred {
		if candidate[s] {
			matchedPreferred = append(matchedPreferred, s)
		}
	}

	if len(required) == 0 {
		result.SkillCoverage = 0
	} else {
		result.SkillCoverage = float64(len(result.MatchedSkills)) / float64(len(required))
	}

	// 必需命中按1.0计，倾向命中按0.5计
	totalWeight := float64(len(required)) + 0.5*float64(len(preferred))
	hitWeight := float64(len(result.MatchedSkills)) + 0.5*float64(len(matchedPreferred))

	switch {
	case totalWeight == 0:
		// 岗位没提任何技能要求，不因此扣分
		result.SkillScore = 1.0
	case len(required) == 0:
		// 只有倾向技能的岗位，基线0.7起按命中率加分
		result.SkillScore = clamp01(0.7 + 0.3*(hitWeight/totalWeight))
	default:
		weightedRatio := hitWeight / totalWeight
		result.SkillScore = clamp01(0.7*result.SkillCoverage + 0.3*weightedRatio)
	}

	rationale := fmt.Sprintf("命中%d/%d项必需技能", len(result.MatchedSkills), len(required))
	if len(matchedPreferred) > 0 {
		rationale += fmt.Sprintf("，另命中倾向技能: %s", strings.Join(matchedPreferred, ", "))
	}
	result.Breakdown["skill"] = rationale
}

// scoreExperience 经验分量
// 总月数达到要求得0.8，超出部分按1-0.2/ratio渐近趋向1.0
func (e *Engine) scoreExperience(result *types.ScoreBreakdown, profile types.ApplicantProfile, job types.JobRequirements) {
	defer e.recoverComponent(result, "experience", &result.ExperienceScore)

	totalMonths := 0
	for _, entry := range profile.Experience {
		if entry.DurationMonths > 0 {
			totalMonths += entry.DurationMonths
		} else {
			totalMonths += e.defaultDurationMonths
		}
	}

	if job.MinYears <= 0 {
		result.ExperienceScore = 1.0
		result.ExperienceMatch = 1.0
		result.Breakdown["experience"] = fmt.Sprintf("岗位无最低年限要求，候选人经验%d个月", totalMonths)
		return
	}

	requiredMonths := job.MinYears * 12
	ratio := float64(totalMonths) / float64(requiredMonths)
	result.ExperienceMatch = clamp01(ratio)
	if ratio <= 1 {
		result.ExperienceScore = clamp01(0.8 * ratio)
	} else {
		result.ExperienceScore = clamp01(1.0 - 0.2/ratio)
	}
	result.Breakdown["experience"] = fmt.Sprintf("经验%d个月，要求%d个月", totalMonths, requiredMonths)
}

// scoreEducation 学历分量，按序数等级差距阶梯折扣
func (e *Engine) scoreEducation(result *types.ScoreBreakdown, profile types.ApplicantProfile, job types.JobRequirements) {
	defer e.recoverComponent(result, "education", &result.EducationScore)

	if job.EducationLevel == types.EducationNone {
		result.EducationScore = 1.0
		result.Breakdown["education"] = "岗位无学历要求"
		return
	}

	highest := types.HighestEducation(profile.Education)
	if highest == types.EducationNone {
		// 有学历要求但一条学历都认不出来，不给阶梯分
		result.EducationScore = 0
		result.Breakdown["education"] = fmt.Sprintf("未识别出学历，要求%s", job.EducationLevel)
		return
	}

	gap := int(job.EducationLevel) - int(highest)
	switch {
	case gap <= 0:
		result.EducationScore = 1.0
	case gap == 1:
		result.EducationScore = 0.5
	case gap == 2:
		result.EducationScore = 0.25
	default:
		result.EducationScore = 0
	}
	result.Breakdown["education"] = fmt.Sprintf("候选人学历%s，要求%s", highest, job.EducationLevel)
}

// scoreSemantic 语义分量，简历全文与岗位描述的词频余弦相似度
func (e *Engine) scoreSemantic(result *types.ScoreBreakdown, resumeText string, job types.JobRequirements) {
	defer e.recoverComponent(result, "semantic", &result.SemanticScore)

	jobText := strings.TrimSpace(job.Description + " " + strings.Join(job.RequiredSkills, " "))
	result.SemanticSimilarity = semanticSimilarity(resumeText, jobText)
	result.SemanticScore = result.SemanticSimilarity
	result.Breakdown["semantic"] = fmt.Sprintf("文本相似度%.2f", result.SemanticSimilarity)
}

// recoverComponent 单分量的异常兜底，该分量记0并落一条说明
func (e *Engine) recoverComponent(result *types.ScoreBreakdown, name string, score *float64) {
	if r := recover(); r != nil {
		logger.Warn().Str("component", name).Interface("panic", r).Msg("评分分量异常，该分量按0分处理")
		*score = 0
		result.Breakdown[name] = "该分量计算异常，按0分处理"
	}
}

func normalizeUnique(skills []string, normalize func(string) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range skills {
		n := normalize(s)
		if n != "" && !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

func subtract(a, b []string) []string {
	drop := make(map[string]bool, len(b))
	for _, s := range b {
		drop[s] = true
	}
	var out []string
	for _, s := range a {
		if !drop[s] {
			out = append(out, s)
		}
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
