package types

import "regexp"

// 学位关键词按等级从高到低排列，自由文本里先命中高学位
var degreeLevelPatterns = []struct {
	level EducationLevel
	re    *regexp.Regexp
}{
	{EducationDoctorate, regexp.MustCompile(`(?i)\b(ph\.?\s?d|doctor(ate)?)\b|博士`)},
	{EducationMaster, regexp.MustCompile(`(?i)\b(master|m\.?sc|mba|m\.?eng)\b|硕士|研究生`)},
	{EducationBachelor, regexp.MustCompile(`(?i)\b(bachelor|b\.?sc|b\.?s\b|b\.?a\b|b\.?eng|undergraduate)|本科|学士`)},
	{EducationCertificate, regexp.MustCompile(`(?i)\b(certificate|diploma|associate)\b|大专|专科`)},
}

// DetectEducationLevel 从自由文本学位描述推断教育等级
// "M.Sc. Computer Science"、"本科"这类写法都能识别，认不出返回none
func DetectEducationLevel(degree string) EducationLevel {
	for _, p := range degreeLevelPatterns {
		if p.re.MatchString(degree) {
			return p.level
		}
	}
	return EducationNone
}

// HighestEducation 取学历条目中的最高等级
func HighestEducation(entries []EducationEntry) EducationLevel {
	highest := EducationNone
	for _, entry := range entries {
		if level := DetectEducationLevel(entry.Degree); level > highest {
			highest = level
		}
	}
	return highest
}
