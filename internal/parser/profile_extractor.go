package parser

import (
	"io"
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"resume-match-go/internal/types"
	"resume-match-go/pkg/utils"
)

// 基本信息与章节识别的正则，编译一次全局复用
var (
	emailRe = regexp.MustCompile(`(?i)[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

	// 兼容大陆手机号、带区号座机和国际格式
	phoneRe = regexp.MustCompile(`(?:\+?\d{1,3}[-. ]?)?(?:\(\d{2,4}\)[-. ]?)?\d{3,4}[-. ]?\d{3,4}(?:[-. ]?\d{3,4})?`)

	// 纯年份区间不是电话号码
	yearRangeRe = regexp.MustCompile(`^(19|20)\d{2}\s*\D{1,5}\s*(19|20)\d{2}$`)

	labeledNameRe = regexp.MustCompile(`(?i)^\s*(?:name|姓名)\s*[:：]\s*(\S.*)$`)
	latinNameRe   = regexp.MustCompile(`^[A-Z][A-Za-z'\-.]{0,19}(?: [A-Z][A-Za-z'\-.]{0,19}){1,3}$`)
	cjkNameRe     = regexp.MustCompile(`^[\p{Han}·]{2,4}$`)

	yearRe        = regexp.MustCompile(`(19|20)\d{2}`)
	institutionRe = regexp.MustCompile(`(?i)(university|college|institute|school|academy|大学|学院|学校)`)
	companyRe     = regexp.MustCompile(`(?i)(inc\.?|ltd\.?|llc|corp\.?|co\.,?|company|technolog(y|ies)|labs?|group|systems|solutions|软件|公司|集团|科技|网络|信息)`)
	jobTitleRe    = regexp.MustCompile(`(?i)(engineer|developer|programmer|manager|director|analyst|designer|consultant|architect|scientist|intern|lead|administrator|specialist|工程师|开发|经理|总监|架构师|分析师|顾问|实习)`)

	// 数字日期区间: "2019.07 - 2022.03"、"2019 - 2022"、"2020年3月 - 至今"
	numericRangeRe = regexp.MustCompile(`(?i)((?:19|20)\d{2})(?:\s*[./年-]\s*(\d{1,2})\s*月?)?\s*(?:[-–—~～]+|to|至)\s*(?:(present|now|current|至今|今)|((?:19|20)\d{2})(?:\s*[./年-]\s*(\d{1,2})\s*月?)?)`)

	// 英文月份日期区间: "Jan 2020 - Mar 2023"、"July 2019 - Present"
	monthNameRangeRe = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+((?:19|20)\d{2})\s*(?:[-–—~～]+|to|until)\s*(?:(present|now|current)|(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+((?:19|20)\d{2}))`)
)

var monthAbbrIndex = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// 章节标题识别，按书写顺序扫描划分简历区块
var sectionHeaderPatterns = []struct {
	section string
	re      *regexp.Regexp
}{
	// \b只对拉丁词生效，中文标题单独列在词边界断言之外
	{"education", regexp.MustCompile(`(?i)^\s*(?:(?:education|academic\s+(?:background|qualifications?))\b|教育背景|教育经历|学历)`)},
	{"experience", regexp.MustCompile(`(?i)^\s*(?:(?:(?:work|professional|employment)\s+(?:experience|history)|experience)\b|工作经历|工作经验|实习经历|项目与工作经历)`)},
	{"skills", regexp.MustCompile(`(?i)^\s*(?:(?:technical\s+)?skills?\b|专业技能|技能特长|技能)`)},
	{"projects", regexp.MustCompile(`(?i)^\s*(?:projects?\b|项目经历|项目经验)`)},
	{"other", regexp.MustCompile(`(?i)^\s*(?:(?:summary|objective|certifications?|awards?|languages?|interests?)\b|个人总结|自我评价|荣誉奖项|证书)`)},
}

// ProfileExtractor 申请人信息提取器
// 从纯文本简历中用规则和词表抽取结构化画像，不依赖任何外部服务。
// 契约：纯函数式，相同输入永远得到相同输出，且永不返回错误；
// 抽取不到的字段置空，技能只认词表内的词条，绝不凭空发明
type ProfileExtractor struct {
	vocabulary *SkillVocabulary
	// 开口日期区间("至今"/"present")的折算基准，保证结果可复现
	referenceDate time.Time
	logger        *log.Logger
}

// ProfileExtractorOption 提取器配置选项
type ProfileExtractorOption func(*ProfileExtractor)

// WithVocabulary 替换技能词表
func WithVocabulary(v *SkillVocabulary) ProfileExtractorOption {
	return func(e *ProfileExtractor) {
		if v != nil {
			e.vocabulary = v
		}
	}
}

// WithReferenceDate 固定开口日期区间的折算基准，测试中使用
func WithReferenceDate(t time.Time) ProfileExtractorOption {
	return func(e *ProfileExtractor) {
		e.referenceDate = t
	}
}

// WithProfileLogger 配置自定义日志记录器
func WithProfileLogger(logger *log.Logger) ProfileExtractorOption {
	return func(e *ProfileExtractor) {
		e.logger = logger
	}
}

// NewProfileExtractor 创建申请人信息提取器，默认使用内置技能词表
func NewProfileExtractor(options ...ProfileExtractorOption) *ProfileExtractor {
	e := &ProfileExtractor{
		vocabulary:    DefaultSkillVocabulary(),
		referenceDate: time.Now(),
		logger:        log.New(io.Discard, "", 0),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// ExtractProfile 从简历文本提取结构化画像
// 空文本或无法识别的文本返回全空画像，切片字段保证非nil
func (e *ProfileExtractor) ExtractProfile(text string) types.ApplicantProfile {
	profile := types.EmptyProfile()
	if strings.TrimSpace(text) == "" {
		return profile
	}

	lines := splitLines(text)

	profile.Email = e.extractEmail(text)
	profile.Phone = e.extractPhone(lines)
	profile.Name = e.extractName(lines)
	profile.Skills = e.matchSkills(utils.Tokenize(text))

	sections := splitSections(lines)
	profile.Education = e.extractEducation(sections["education"])
	profile.Experience = e.extractExperience(sections["experience"])

	e.logger.Printf("画像提取完成: skills=%d education=%d experience=%d",
		len(profile.Skills), len(profile.Education), len(profile.Experience))
	return profile
}

func (e *ProfileExtractor) extractEmail(text string) string {
	return emailRe.FindString(text)
}

// extractPhone 在前部行中找第一个像电话的数字串
// 过滤纯年份区间和位数不合理的候选
func (e *ProfileExtractor) extractPhone(lines []string) string {
	for _, line := range lines {
		for _, candidate := range phoneRe.FindAllString(line, -1) {
			candidate = strings.TrimSpace(candidate)
			digits := countDigits(candidate)
			if digits < 7 || digits > 15 {
				continue
			}
			if yearRangeRe.MatchString(candidate) {
				continue
			}
			return normalizePhone(candidate)
		}
	}
	return ""
}

// extractName 姓名识别
// 优先认"Name:"/"姓名:"这类标注行，其次在开头若干非空行里找像人名的行
func (e *ProfileExtractor) extractName(lines []string) string {
	for i, line := range lines {
		if i >= 10 {
			break
		}
		if m := labeledNameRe.FindStringSubmatch(line); m != nil {
			name := strings.TrimSpace(m[1])
			if name != "" && len([]rune(name)) <= 40 {
				return name
			}
		}
	}

	checked := 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		checked++
		if checked > 5 {
			break
		}
		if len([]rune(line)) > 40 {
			continue
		}
		if emailRe.MatchString(line) || strings.ContainsAny(line, "0123456789@") {
			continue
		}
		if _, isHeader := classifySectionHeader(line); isHeader {
			continue
		}
		if latinNameRe.MatchString(line) || cjkNameRe.MatchString(line) {
			return line
		}
	}
	return ""
}

// matchSkills 用词表在词元序列上做精确匹配
// 多词技能(machine learning等)按连续词元匹配，结果归一到规范名并排序
func (e *ProfileExtractor) matchSkills(tokens []string) []string {
	// 最多三个词元的n-gram集合
	grams := make(map[string]bool)
	for i := range tokens {
		gram := tokens[i]
		grams[gram] = true
		for n := 1; n < 3 && i+n < len(tokens); n++ {
			gram += " " + tokens[i+n]
			grams[gram] = true
		}
	}

	found := make(map[string]bool)
	for alias, canonical := range e.vocabulary.aliasIndex {
		key := strings.Join(utils.Tokenize(alias), " ")
		if key != "" && grams[key] {
			found[canonical] = true
		}
	}

	out := make([]string, 0, len(found))
	for s := range found {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// extractEducation 从教育章节行中抽取学历条目
func (e *ProfileExtractor) extractEducation(lines []string) []types.EducationEntry {
	entries := []types.EducationEntry{}
	var current *types.EducationEntry

	flush := func() {
		if current != nil && (current.Degree != "" || current.Institution != "") {
			entries = append(entries, *current)
		}
		current = nil
	}

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			flush()
			continue
		}

		degree := findDegreePhrase(line)
		if degree != "" {
			if current != nil && current.Degree != "" {
				flush()
			}
			if current == nil {
				current = &types.EducationEntry{}
			}
			current.Degree = degree
		}

		if institutionRe.MatchString(line) {
			if current != nil && current.Institution != "" && degree == "" {
				flush()
			}
			if current == nil {
				current = &types.EducationEntry{}
			}
			if current.Institution == "" {
				current.Institution = pickInstitution(line)
			}
		}

		if current != nil {
			if years := yearRe.FindAllString(line, -1); len(years) > 0 {
				if y, err := strconv.Atoi(years[len(years)-1]); err == nil {
					current.Year = y
				}
			}
		}
	}
	flush()
	return entries
}

// extractExperience 从工作章节行中抽取经历条目
// 带日期区间的行确定一段经历，职位和公司从同行剩余文字或相邻行补齐
func (e *ProfileExtractor) extractExperience(lines []string) []types.ExperienceEntry {
	entries := []types.ExperienceEntry{}
	prev := ""

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		months, matched, ok := e.parseDateRange(line)
		if ok {
			remainder := strings.TrimSpace(strings.Replace(line, matched, "", 1))
			remainder = strings.Trim(remainder, " -–—|,，·\t")

			entry := types.ExperienceEntry{DurationMonths: months}
			if remainder != "" {
				entry.Title, entry.Company = splitTitleCompany(remainder)
			}
			if entry.Title == "" && entry.Company == "" && prev != "" {
				entry.Title, entry.Company = splitTitleCompany(prev)
			} else if entry.Company == "" && prev != "" && companyRe.MatchString(prev) {
				entry.Company = prev
			} else if entry.Title == "" && prev != "" && jobTitleRe.MatchString(prev) {
				entry.Title = prev
			}
			entries = append(entries, entry)
			prev = ""
			continue
		}

		// 无日期但明显是职位行的，也记一条时长未知的经历
		if jobTitleRe.MatchString(line) && len([]rune(line)) < 80 {
			if _, isHeader := classifySectionHeader(line); !isHeader {
				prev = line
				continue
			}
		}
		prev = line
	}

	// 最后一个职位行若没等到日期行，按时长未知落一条
	if prev != "" && jobTitleRe.MatchString(prev) {
		if _, isHeader := classifySectionHeader(prev); !isHeader {
			title, company := splitTitleCompany(prev)
			if title != "" || company != "" {
				entries = append(entries, types.ExperienceEntry{Title: title, Company: company})
			}
		}
	}
	return entries
}

// parseDateRange 解析行内的日期区间，返回折算月数和命中的原文
// 开口区间按referenceDate折算，月份缺省时起点记1月、终点记1月
func (e *ProfileExtractor) parseDateRange(line string) (int, string, bool) {
	if m := monthNameRangeRe.FindStringSubmatch(line); m != nil {
		startMonth := monthAbbrIndex[strings.ToLower(m[1])]
		startYear, _ := strconv.Atoi(m[2])
		var endYear, endMonth int
		if m[3] != "" {
			endYear, endMonth = e.referenceDate.Year(), int(e.referenceDate.Month())
		} else {
			endMonth = monthAbbrIndex[strings.ToLower(m[4])]
			endYear, _ = strconv.Atoi(m[5])
		}
		return clampMonths(spanMonths(startYear, startMonth, endYear, endMonth)), monthNameRangeRe.FindString(line), true
	}

	if m := numericRangeRe.FindStringSubmatch(line); m != nil {
		startYear, _ := strconv.Atoi(m[1])
		startMonth := parseMonthNumber(m[2])
		var endYear, endMonth int
		if m[3] != "" {
			endYear, endMonth = e.referenceDate.Year(), int(e.referenceDate.Month())
		} else {
			endYear, _ = strconv.Atoi(m[4])
			endMonth = parseMonthNumber(m[5])
		}
		return clampMonths(spanMonths(startYear, startMonth, endYear, endMonth)), numericRangeRe.FindString(line), true
	}

	return 0, "", false
}

// splitTitleCompany 把一段文字拆成职位和公司
// 支持 "Software Engineer at Google"、"后端工程师 | 某某科技" 等常见写法
func splitTitleCompany(text string) (title, company string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ""
	}

	lower := strings.ToLower(text)
	if idx := strings.Index(lower, " at "); idx > 0 {
		return strings.TrimSpace(text[:idx]), strings.TrimSpace(text[idx+4:])
	}

	parts := splitSegments(text)
	if len(parts) == 1 {
		if companyRe.MatchString(parts[0]) && !jobTitleRe.MatchString(parts[0]) {
			return "", parts[0]
		}
		return parts[0], ""
	}

	first, second := parts[0], parts[1]
	switch {
	case companyRe.MatchString(second) && !companyRe.MatchString(first):
		return first, second
	case companyRe.MatchString(first) && !companyRe.MatchString(second):
		return second, first
	case jobTitleRe.MatchString(second) && !jobTitleRe.MatchString(first):
		return second, first
	default:
		return first, second
	}
}

// pickInstitution 从一行中挑出院校名所在的片段并清理年份
func pickInstitution(line string) string {
	for _, seg := range splitSegments(line) {
		if institutionRe.MatchString(seg) {
			cleaned := yearRe.ReplaceAllString(seg, "")
			return strings.Trim(cleaned, " -–—|,，·\t")
		}
	}
	cleaned := yearRe.ReplaceAllString(line, "")
	return strings.Trim(cleaned, " -–—|,，·\t")
}

// 学位关键词按从高到低匹配，返回命中的原文片段
var degreePhraseRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(ph\.?\s?d\.?|doctor(ate)?( of [a-z ]+)?)\b|博士`),
	regexp.MustCompile(`(?i)\b(master(['’]s)?( of [a-z ]+)?|m\.?sc\.?|mba|m\.?eng\.?)\b|硕士|研究生`),
	regexp.MustCompile(`(?i)\b(bachelor(['’]s)?( of [a-z ]+)?|b\.?sc\.?|b\.?s\b\.?|b\.?a\b\.?|b\.?eng\.?|undergraduate)|本科|学士`),
	regexp.MustCompile(`(?i)\b(certificate|diploma|associate)\b|大专|专科`),
}

func findDegreePhrase(line string) string {
	for _, re := range degreePhraseRes {
		if m := re.FindString(line); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

// splitSections 按章节标题把行划分到命名区块
// 标题之前的内容归入"header"区块，供姓名联系方式识别
func splitSections(lines []string) map[string][]string {
	sections := map[string][]string{}
	current := "header"
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if section, ok := classifySectionHeader(trimmed); ok {
			current = section
			continue
		}
		sections[current] = append(sections[current], line)
	}
	return sections
}

func classifySectionHeader(line string) (string, bool) {
	if line == "" || len([]rune(line)) > 40 {
		return "", false
	}
	for _, p := range sectionHeaderPatterns {
		if p.re.MatchString(line) {
			return p.section, true
		}
	}
	return "", false
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

// splitSegments 按常见分隔符把一行拆成片段
func splitSegments(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '|' || r == ',' || r == '，' || r == '·' || r == '、'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{strings.TrimSpace(text)}
	}
	return out
}

func spanMonths(sy, sm, ey, em int) int {
	if sm == 0 {
		sm = 1
	}
	if em == 0 {
		em = 1
	}
	return (ey-sy)*12 + (em - sm)
}

func clampMonths(m int) int {
	if m < 1 {
		return 1
	}
	// 超过50年的区间视为解析错位
	if m > 600 {
		return 600
	}
	return m
}

func parseMonthNumber(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 12 {
		return 0
	}
	return n
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// normalizePhone 归一化电话格式，保留前导加号，其余分隔符统一为连字符
func normalizePhone(s string) string {
	var sb strings.Builder
	lastSep := true
	for i, r := range s {
		switch {
		case unicode.IsDigit(r):
			sb.WriteRune(r)
			lastSep = false
		case r == '+' && i == 0:
			sb.WriteRune(r)
			lastSep = false
		default:
			if !lastSep {
				sb.WriteRune('-')
				lastSep = true
			}
		}
	}
	return strings.TrimRight(sb.String(), "-")
}
