package parser

import (
	"testing"
	"time"

	"resume-match-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 固定折算基准，保证开口日期区间的测试结果可复现
var testReferenceDate = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

const sampleResume = `张三
john.smith@example.com
+86 138-0013-8000

Skills
Go, Python, C++, Node.js, K8s, MySQL

Work Experience
Backend Engineer, Acme Technologies
2019.07 - 2022.03
Software Engineer at Globex Inc
Apr 2022 - Present

Education
B.S. in Computer Science, Stanford University, 2019
`

// TestExtractProfileFullResume 对一份完整简历逐字段验证提取结果
func TestExtractProfileFullResume(t *testing.T) {
	extractor := NewProfileExtractor(WithReferenceDate(testReferenceDate))

	profile := extractor.ExtractProfile(sampleResume)

	assert.Equal(t, "张三", profile.Name, "姓名提取不符")
	assert.Equal(t, "john.smith@example.com", profile.Email, "邮箱提取不符")
	assert.Equal(t, "+86-138-0013-8000", profile.Phone, "电话归一化结果不符")

	// 技能只认词表词条，同义词归一到规范名(k8s -> kubernetes)，按字典序排列
	assert.Equal(t, []string{"c++", "go", "kubernetes", "mysql", "node.js", "python"}, profile.Skills)

	require.Len(t, profile.Education, 1)
	edu := profile.Education[0]
	assert.Equal(t, types.EducationBachelor, types.DetectEducationLevel(edu.Degree), "学位等级识别不符")
	assert.Equal(t, "Stanford University", edu.Institution)
	assert.Equal(t, 2019, edu.Year)

	require.Len(t, profile.Experience, 2)
	first := profile.Experience[0]
	assert.Equal(t, "Backend Engineer", first.Title)
	assert.Equal(t, "Acme Technologies", first.Company)
	assert.Equal(t, 32, first.DurationMonths, "2019.07到2022.03应折算32个月")

	second := profile.Experience[1]
	assert.Equal(t, "Software Engineer", second.Title)
	assert.Equal(t, "Globex Inc", second.Company)
	assert.Equal(t, 24, second.DurationMonths, "2022年4月至基准日期应折算24个月")
}

// TestExtractProfileDeterministic 相同文本重复提取结果必须一致
func TestExtractProfileDeterministic(t *testing.T) {
	extractor := NewProfileExtractor(WithReferenceDate(testReferenceDate))

	first := extractor.ExtractProfile(sampleResume)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, extractor.ExtractProfile(sampleResume), "第%d次提取结果与首次不一致", i+1)
	}
}

// TestExtractProfileEmptyText 空文本返回全空画像且切片非nil
func TestExtractProfileEmptyText(t *testing.T) {
	extractor := NewProfileExtractor()

	for _, text := range []string{"", "   ", "\n\t\n"} {
		profile := extractor.ExtractProfile(text)
		assert.Equal(t, types.EmptyProfile(), profile)
		assert.NotNil(t, profile.Skills)
		assert.NotNil(t, profile.Education)
		assert.NotNil(t, profile.Experience)
	}
}

// TestExtractProfileLabeledName 标注行姓名优先于开头行推断
func TestExtractProfileLabeledName(t *testing.T) {
	extractor := NewProfileExtractor()

	text := "Resume of a senior engineer\n姓名：李四\nEmail: li.si@example.com\n"
	profile := extractor.ExtractProfile(text)
	assert.Equal(t, "李四", profile.Name)

	text = "Name: Jane Doe\njane@example.com\n"
	profile = extractor.ExtractProfile(text)
	assert.Equal(t, "Jane Doe", profile.Name)
}

// TestExtractProfilePhoneNotYearRange 年份区间不能被误认成电话号码
func TestExtractProfilePhoneNotYearRange(t *testing.T) {
	extractor := NewProfileExtractor()

	text := "王五\n2018 - 2022 在某大学就读\n联系电话 13800138000\n"
	profile := extractor.ExtractProfile(text)
	assert.Equal(t, "13800138000", profile.Phone, "应跳过年份区间取真正的手机号")
}

// TestExtractProfileSkillSynonyms 多词技能和别名都要归一到规范名
func TestExtractProfileSkillSynonyms(t *testing.T) {
	extractor := NewProfileExtractor()

	text := "熟悉 golang 与 machine learning，有 nodejs 和 springboot 项目经验"
	profile := extractor.ExtractProfile(text)

	assert.Contains(t, profile.Skills, "go")
	assert.Contains(t, profile.Skills, "machine learning")
	assert.Contains(t, profile.Skills, "node.js")
	assert.Contains(t, profile.Skills, "spring")
	assert.NotContains(t, profile.Skills, "golang", "别名不应以原词形出现")
}

// TestExtractProfileChineseSections 中文章节标题同样能划分区块
func TestExtractProfileChineseSections(t *testing.T) {
	extractor := NewProfileExtractor(WithReferenceDate(testReferenceDate))

	text := `王小明
wang@example.com

教育背景
硕士 北京大学 2020

工作经历
后端工程师 | 字节网络
2020年7月 - 至今
`
	profile := extractor.ExtractProfile(text)

	require.Len(t, profile.Education, 1)
	assert.Equal(t, types.EducationMaster, types.DetectEducationLevel(profile.Education[0].Degree))
	assert.Equal(t, 2020, profile.Education[0].Year)

	require.Len(t, profile.Experience, 1)
	assert.Equal(t, "后端工程师", profile.Experience[0].Title)
	assert.Equal(t, "字节网络", profile.Experience[0].Company)
	// 2020年7月至2024年4月基准
	assert.Equal(t, 45, profile.Experience[0].DurationMonths)
}

// TestParseDateRange 各种日期区间写法的折算月数
func TestParseDateRange(t *testing.T) {
	extractor := NewProfileExtractor(WithReferenceDate(testReferenceDate))

	cases := []struct {
		name   string
		line   string
		months int
	}{
		{"numeric_with_month", "2019.07 - 2022.03", 32},
		{"numeric_year_only", "2019 - 2022", 36},
		{"chinese_open_ended", "2020年3月 - 至今", 49},
		{"month_name", "Jan 2020 - Mar 2023", 38},
		{"month_name_open_ended", "July 2019 - Present", 57},
		{"same_month", "2021.05 - 2021.05", 1}, // 至少记1个月
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			months, matched, ok := extractor.parseDateRange(tc.line)
			require.True(t, ok, "日期区间未被识别: %s", tc.line)
			assert.NotEmpty(t, matched)
			assert.Equal(t, tc.months, months)
		})
	}

	t.Run("not_a_range", func(t *testing.T) {
		_, _, ok := extractor.parseDateRange("负责订单系统的开发")
		assert.False(t, ok)
	})
}

// TestExtractExperienceTrailingTitle 末尾没有日期行的职位行按时长未知落一条
func TestExtractExperienceTrailingTitle(t *testing.T) {
	extractor := NewProfileExtractor()

	entries := extractor.extractExperience([]string{
		"Senior Software Engineer at Initech",
	})

	require.Len(t, entries, 1)
	assert.Equal(t, "Senior Software Engineer", entries[0].Title)
	assert.Equal(t, "Initech", entries[0].Company)
	assert.Equal(t, 0, entries[0].DurationMonths, "无日期的经历时长应为0")
}

// TestSplitTitleCompany 职位与公司的常见写法拆分
func TestSplitTitleCompany(t *testing.T) {
	cases := []struct {
		text    string
		title   string
		company string
	}{
		{"Software Engineer at Google", "Software Engineer", "Google"},
		{"Backend Engineer, Acme Technologies", "Backend Engineer", "Acme Technologies"},
		{"某某科技有限公司 | 高级工程师", "高级工程师", "某某科技有限公司"},
		{"Data Analyst", "Data Analyst", ""},
	}

	for _, tc := range cases {
		title, company := splitTitleCompany(tc.text)
		assert.Equal(t, tc.title, title, "职位拆分不符: %s", tc.text)
		assert.Equal(t, tc.company, company, "公司拆分不符: %s", tc.text)
	}
}
