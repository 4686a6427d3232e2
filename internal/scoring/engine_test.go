package scoring

import (
	"strings"
	"testing"

	"resume-match-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 浮点比较容差
const delta = 1e-9

// TestEvaluateSkillCoverage 验证必需技能命中率和matched/missing的划分
func TestEvaluateSkillCoverage(t *testing.T) {
	engine := NewEngine()

	profile := types.ApplicantProfile{
		Skills: []string{"python", "sql"},
	}
	job := types.JobRequirements{
		RequiredSkills: []string{"python", "aws", "sql"},
	}

	result := engine.Evaluate(profile, "", job)

	assert.ElementsMatch(t, []string{"python", "sql"}, result.MatchedSkills, "命中技能不符")
	assert.ElementsMatch(t, []string{"aws"}, result.MissingSkills, "缺失技能不符")
	assert.InDelta(t, 2.0/3.0, result.SkillCoverage, delta, "必需技能覆盖率应为2/3")
	// 无倾向技能时加权命中率等于覆盖率
	assert.InDelta(t, 2.0/3.0, result.SkillScore, delta, "技能分应为0.7*2/3+0.3*2/3")

	// matched与missing的并集必须恰好等于归一化后的必需技能集合
	union := append(append([]string{}, result.MatchedSkills...), result.MissingSkills...)
	assert.ElementsMatch(t, []string{"python", "aws", "sql"}, union, "命中与缺失的并集应等于必需技能集合")
}

// TestEvaluateFinalScoreIsWeightedSum 验证总分恒等于四个分量的固定加权和
func TestEvaluateFinalScoreIsWeightedSum(t *testing.T) {
	engine := NewEngine()

	profile := types.ApplicantProfile{
		Skills: []string{"go", "mysql"},
		Education: []types.EducationEntry{
			{Degree: "Bachelor of Engineering", Institution: "某大学", Year: 2018},
		},
		Experience: []types.ExperienceEntry{
			{Title: "后端工程师", Company: "某科技公司", DurationMonths: 30},
		},
	}
	job := types.JobRequirements{
		RequiredSkills: []string{"go", "redis"},
		MinYears:       3,
		EducationLevel: types.EducationBachelor,
		Description:    "负责后端服务开发，使用go和redis构建高并发系统",
	}

	result := engine.Evaluate(profile, "后端工程师，熟悉go和mysql，参与高并发系统开发", job)

	expected := DefaultSkillWeight*result.SkillScore +
		DefaultExperienceWeight*result.ExperienceScore +
		DefaultEducationWeight*result.EducationScore +
		DefaultSemanticWeight*result.SemanticScore
	assert.InDelta(t, expected, result.FinalScore, delta, "总分必须等于分量加权和")
	assert.GreaterOrEqual(t, result.FinalScore, 0.0)
	assert.LessOrEqual(t, result.FinalScore, 1.0)
}

// TestEvaluateDeterministic 相同输入重复评分必须产生逐位相同的结果
func TestEvaluateDeterministic(t *testing.T) {
	engine := NewEngine()

	profile := types.ApplicantProfile{
		Name:   "张三",
		Skills: []string{"go", "kubernetes", "mysql"},
		Experience: []types.ExperienceEntry{
			{Title: "平台工程师", DurationMonths: 40},
			{Title: "运维工程师"}, // 时长未知
		},
		Education: []types.EducationEntry{{Degree: "硕士"}},
	}
	job := types.JobRequirements{
		RequiredSkills:  []string{"go", "docker", "kubernetes"},
		PreferredSkills: []string{"mysql"},
		MinYears:        2,
		EducationLevel:  types.EducationBachelor,
		Description:     "平台团队招聘工程师，要求熟悉go与容器编排",
	}
	text := "平台工程师，五年go开发经验，熟悉kubernetes与mysql"

	first := engine.Evaluate(profile, text, job)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, engine.Evaluate(profile, text, job), "第%d次评分结果与首次不一致", i+1)
	}
}

// TestEvaluateEmptyInputs 全空输入也要产出合法结果
func TestEvaluateEmptyInputs(t *testing.T) {
	engine := NewEngine()

	result := engine.Evaluate(types.EmptyProfile(), "", types.JobRequirements{})

	// 岗位没提任何要求时技能/经验/学历都不扣分，语义分对空文本为0
	assert.InDelta(t, 1.0, result.SkillScore, delta)
	assert.InDelta(t, 1.0, result.ExperienceScore, delta)
	assert.InDelta(t, 1.0, result.EducationScore, delta)
	assert.InDelta(t, 0.0, result.SemanticScore, delta)
	assert.InDelta(t, 0.0, result.SkillCoverage, delta, "必需技能为空时覆盖率按0记")
	assert.NotNil(t, result.MatchedSkills)
	assert.NotNil(t, result.MissingSkills)
	assert.Empty(t, result.MatchedSkills)
	assert.Empty(t, result.MissingSkills)
	assert.InDelta(t, 0.80, result.FinalScore, delta)
}

// TestEvaluatePreferredOnlySkills 岗位只有倾向技能时从0.7基线按命中率加分
func TestEvaluatePreferredOnlySkills(t *testing.T) {
	engine := NewEngine()

	profile := types.ApplicantProfile{Skills: []string{"docker"}}
	job := types.JobRequirements{
		PreferredSkills: []string{"docker", "kubernetes"},
	}

	result := engine.Evaluate(profile, "", job)

	// 命中1/2项倾向技能: 0.7 + 0.3*0.5
	assert.InDelta(t, 0.85, result.SkillScore, delta)
	assert.InDelta(t, 0.0, result.SkillCoverage, delta)
	assert.Empty(t, result.MatchedSkills, "倾向技能不计入matched")
	assert.Empty(t, result.MissingSkills)
}

// TestEvaluateExperienceShaping 经验分在达标前线性增长，超出后渐近趋向1.0
func TestEvaluateExperienceShaping(t *testing.T) {
	engine := NewEngine()
	job := types.JobRequirements{MinYears: 3} // 要求36个月

	cases := []struct {
		name          string
		months        int
		expectedScore float64
		expectedMatch float64
	}{
		{"half", 18, 0.4, 0.5},
		{"exact", 36, 0.8, 1.0},
		{"double", 72, 0.9, 1.0}, // 1 - 0.2/2
		{"quadruple", 144, 0.95, 1.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			profile := types.ApplicantProfile{
				Experience: []types.ExperienceEntry{{Title: "工程师", DurationMonths: tc.months}},
			}
			result := engine.Evaluate(profile, "", job)
			assert.InDelta(t, tc.expectedScore, result.ExperienceScore, delta, "经验分不符")
			assert.InDelta(t, tc.expectedMatch, result.ExperienceMatch, delta, "经验达标比例不符")
		})
	}
}

// TestEvaluateExperienceMonotone 经验分随月数单调不降，在达标点连续
func TestEvaluateExperienceMonotone(t *testing.T) {
	engine := NewEngine()
	job := types.JobRequirements{MinYears: 3}

	prevScore := -1.0
	for months := 1; months <= 120; months++ {
		profile := types.ApplicantProfile{
			Experience: []types.ExperienceEntry{{DurationMonths: months}},
		}
		score := engine.Evaluate(profile, "", job).ExperienceScore
		require.GreaterOrEqual(t, score, prevScore, "经验分在%d个月处出现回落", months)
		require.Less(t, score, 1.0, "有年限要求时经验分只能渐近1.0")
		prevScore = score
	}
}

// TestEvaluateExperienceUnknownDuration 时长未解析的经历按默认月数计入
func TestEvaluateExperienceUnknownDuration(t *testing.T) {
	engine := NewEngine(WithDefaultDuration(12))

	profile := types.ApplicantProfile{
		Experience: []types.ExperienceEntry{
			{Title: "工程师"}, // DurationMonths为0
			{Title: "实习生"},
		},
	}
	job := types.JobRequirements{MinYears: 3}

	result := engine.Evaluate(profile, "", job)

	// 两条未知时长按12个月各计: 24/36
	assert.InDelta(t, 24.0/36.0, result.ExperienceMatch, delta)
	assert.InDelta(t, 0.8*24.0/36.0, result.ExperienceScore, delta)
}

// TestEvaluateEducationLadder 学历按序数等级差距阶梯折扣
func TestEvaluateEducationLadder(t *testing.T) {
	engine := NewEngine()
	job := types.JobRequirements{EducationLevel: types.EducationMaster}

	cases := []struct {
		name     string
		degree   string
		expected float64
	}{
		{"doctorate", "PhD in Computer Science", 1.0},
		{"master", "硕士", 1.0},
		{"bachelor", "Bachelor of Science", 0.5},
		{"certificate", "大专", 0.25},
		{"unrecognized", "进修班", 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			profile := types.ApplicantProfile{
				Education: []types.EducationEntry{{Degree: tc.degree}},
			}
			result := engine.Evaluate(profile, "", job)
			assert.InDelta(t, tc.expected, result.EducationScore, delta)
		})
	}

	t.Run("no_education_entries", func(t *testing.T) {
		result := engine.Evaluate(types.EmptyProfile(), "", job)
		assert.InDelta(t, 0.0, result.EducationScore, delta, "有学历要求但无学历信息应记0分")
	})

	t.Run("no_requirement", func(t *testing.T) {
		result := engine.Evaluate(types.EmptyProfile(), "", types.JobRequirements{})
		assert.InDelta(t, 1.0, result.EducationScore, delta, "岗位无学历要求时不扣分")
	})
}

// TestEvaluateSemanticIdenticalText 简历文本与岗位描述完全相同时相似度为1
func TestEvaluateSemanticIdenticalText(t *testing.T) {
	engine := NewEngine()
	text := "负责分布式存储系统的设计与开发，优化查询性能"

	result := engine.Evaluate(types.EmptyProfile(), text, types.JobRequirements{Description: text})

	assert.InDelta(t, 1.0, result.SemanticScore, 1e-6)
	assert.InDelta(t, 1.0, result.SemanticSimilarity, 1e-6)
}

// TestEvaluateSemanticDisjointText 毫无交集的文本相似度为0
func TestEvaluateSemanticDisjointText(t *testing.T) {
	engine := NewEngine()

	result := engine.Evaluate(types.EmptyProfile(), "厨师 烘焙 西点",
		types.JobRequirements{Description: "database kernel storage"})

	assert.InDelta(t, 0.0, result.SemanticScore, delta)
}

// TestEvaluateSkillNormalizer 注入词表归一化后同义词应能互相命中
func TestEvaluateSkillNormalizer(t *testing.T) {
	aliases := map[string]string{
		"k8s":    "kubernetes",
		"golang": "go",
	}
	engine := NewEngine(WithSkillNormalizer(func(s string) string {
		s = strings.ToLower(strings.TrimSpace(s))
		if canonical, ok := aliases[s]; ok {
			return canonical
		}
		return s
	}))

	profile := types.ApplicantProfile{Skills: []string{"K8s", "Golang"}}
	job := types.JobRequirements{RequiredSkills: []string{"kubernetes", "go"}}

	result := engine.Evaluate(profile, "", job)

	assert.ElementsMatch(t, []string{"kubernetes", "go"}, result.MatchedSkills)
	assert.Empty(t, result.MissingSkills)
	assert.InDelta(t, 1.0, result.SkillScore, delta)
}

// TestEvaluateComponentPanicDegrades 单个分量异常时该分量记0，其余分量照常
func TestEvaluateComponentPanicDegrades(t *testing.T) {
	engine := NewEngine(WithSkillNormalizer(func(s string) string {
		panic("词表异常")
	}))

	profile := types.ApplicantProfile{
		Skills:    []string{"go"},
		Education: []types.EducationEntry{{Degree: "本科"}},
	}
	job := types.JobRequirements{
		RequiredSkills: []string{"go"},
		EducationLevel: types.EducationBachelor,
	}

	var result types.ScoreBreakdown
	require.NotPanics(t, func() {
		result = engine.Evaluate(profile, "", job)
	}, "分量内部panic不允许穿透Evaluate")

	assert.InDelta(t, 0.0, result.SkillScore, delta, "异常分量应记0分")
	assert.Contains(t, result.Breakdown["skill"], "异常")
	assert.InDelta(t, 1.0, result.EducationScore, delta, "其余分量应照常计算")
	assert.InDelta(t, 1.0, result.ExperienceScore, delta)
}

// TestNormalizeUniqueDedup 技能归一化去重并排序
func TestNormalizeUniqueDedup(t *testing.T) {
	out := normalizeUnique([]string{"Go", "go", " MySQL ", "", "redis"}, func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	})
	assert.Equal(t, []string{"go", "mysql", "redis"}, out)
}
