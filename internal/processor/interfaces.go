package processor

import (
	"context"

	"resume-match-go/internal/types"
)

// 流水线对各阶段只依赖这里的窄接口，测试时可以逐个替换桩实现

// TextExtractor 文档文本提取阶段
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte, filename string) (string, map[string]interface{})
}

// ProfileExtractor 结构化信息提取阶段
type ProfileExtractor interface {
	ExtractProfile(text string) types.ApplicantProfile
}

// MatchScorer 岗位匹配评分阶段
type MatchScorer interface {
	Evaluate(profile types.ApplicantProfile, resumeText string, job types.JobRequirements) types.ScoreBreakdown
}
