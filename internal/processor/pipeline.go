package processor

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"resume-match-go/internal/config"
	"resume-match-go/internal/parser"
	"resume-match-go/internal/scoring"
	"resume-match-go/internal/types"
)

// Components 聚合流水线的阶段组件，集中管理便于测试替换
type Components struct {
	TextExtractor    TextExtractor
	ProfileExtractor ProfileExtractor
	Scorer           MatchScorer
}

// Settings 纯配置项，不包含任何业务逻辑组件
type Settings struct {
	Debug  bool
	Logger *log.Logger
}

// Pipeline 投递处理流水线
// 提取文本 -> 提取画像 -> 评分，三个阶段依次执行。
// 契约：任一阶段产出零信息时后续阶段照常运转，最终总能返回一个
// 合法结果，降级情况通过结果上的标志位显式暴露而不是只打日志
type Pipeline struct {
	Components
	Settings
}

// PipelineOption 流水线配置选项
type PipelineOption func(*Pipeline)

// WithPipelineLogger 配置自定义日志记录器
func WithPipelineLogger(logger *log.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.Logger = logger
		}
	}
}

// WithDebug 开启调试日志
func WithDebug(debug bool) PipelineOption {
	return func(p *Pipeline) {
		p.Debug = debug
	}
}

// NewPipeline 从组件集合创建流水线，三个阶段组件都不能为空
func NewPipeline(components Components, options ...PipelineOption) (*Pipeline, error) {
	if components.TextExtractor == nil {
		return nil, fmt.Errorf("文本提取组件不能为空")
	}
	if components.ProfileExtractor == nil {
		return nil, fmt.Errorf("画像提取组件不能为空")
	}
	if components.Scorer == nil {
		return nil, fmt.Errorf("评分组件不能为空")
	}

	p := &Pipeline{
		Components: components,
		Settings: Settings{
			Logger: log.New(io.Discard, "", 0),
		},
	}
	for _, option := range options {
		option(p)
	}
	return p, nil
}

// NewPipelineFromConfig 按配置装配流水线
// extractor.type选择本地提取器或Tika，技能词表路径为空时用内置词表
func NewPipelineFromConfig(ctx context.Context, cfg *config.Config, options ...PipelineOption) (*Pipeline, error) {
	vocabulary, err := parser.LoadSkillVocabulary(cfg.Skills.VocabularyPath)
	if err != nil {
		return nil, fmt.Errorf("加载技能词表失败: %w", err)
	}

	var textExtractor TextExtractor
	switch cfg.Extractor.Type {
	case "tika":
		textExtractor = parser.NewTikaTextExtractor(cfg.Extractor.TikaServerURL,
			parser.WithTikaTimeout(time.Duration(cfg.Extractor.TikaTimeoutSeconds)*time.Second))
	default:
		textExtractor, err = parser.NewDefaultTextExtractor(ctx)
		if err != nil {
			return nil, fmt.Errorf("初始化文本提取器失败: %w", err)
		}
	}

	profileExtractor := parser.NewProfileExtractor(parser.WithVocabulary(vocabulary))

	engine := scoring.NewEngine(
		scoring.WithWeights(scoring.Weights{
			Skill:      cfg.Scoring.SkillWeight,
			Experience: cfg.Scoring.ExperienceWeight,
			Education:  cfg.Scoring.EducationWeight,
			Semantic:   cfg.Scoring.SemanticWeight,
		}),
		scoring.WithDefaultDuration(cfg.Scoring.DefaultDurationMonths),
		scoring.WithSkillNormalizer(vocabulary.Normalize),
	)

	return NewPipeline(Components{
		TextExtractor:    textExtractor,
		ProfileExtractor: profileExtractor,
		Scorer:           engine,
	}, options...)
}

// ProcessSubmission 处理一次投递
// 永不返回错误，降级情况记录在结果的标志位上：
// TextDegraded表示文本提取产出为空，ProfileEmpty表示一项结构化信息都没提出来
func (p *Pipeline) ProcessSubmission(ctx context.Context, data []byte, filename string, job types.JobRequirements) *types.SubmissionResult {
	start := time.Now()

	text, metadata := p.TextExtractor.ExtractText(ctx, data, filename)
	profile := p.ProfileExtractor.ExtractProfile(text)
	breakdown := p.Scorer.Evaluate(profile, text, job)

	result := &types.SubmissionResult{
		ExtractedText: text,
		Profile:       profile,
		Scoring:       breakdown,
		TextDegraded:  text == "",
		ProfileEmpty:  isProfileEmpty(profile),
	}

	if p.Debug {
		p.Logger.Printf("投递处理完成: file=%s meta=%v final=%.4f degraded=%v elapsed=%s",
			filename, metadata, breakdown.FinalScore, result.TextDegraded, time.Since(start))
	}
	return result
}

func isProfileEmpty(p types.ApplicantProfile) bool {
	return p.Name == "" && p.Email == "" && p.Phone == "" &&
		len(p.Skills) == 0 && len(p.Education) == 0 && len(p.Experience) == 0
}
