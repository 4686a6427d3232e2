package scoring

import (
	"math"

	"resume-match-go/pkg/utils"
)

// 语义比较时过滤掉的高频虚词，避免它们撑起虚假的相似度
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "have": true,
	"in": true, "is": true, "it": true, "of": true, "on": true, "or": true,
	"that": true, "the": true, "to": true, "was": true, "were": true,
	"will": true, "with": true, "we": true, "you": true, "your": true,
	"i": true, "my": true, "our": true, "this": true, "these": true,
	"not": true, "but": true, "can": true, "all": true, "其": true,
	"的": true, "了": true, "和": true, "与": true, "及": true, "在": true,
	"是": true, "有": true, "并": true, "等": true,
}

// termFrequency 统计去停用词后的词频向量
func termFrequency(text string) map[string]float64 {
	tf := make(map[string]float64)
	for _, tok := range utils.Tokenize(text) {
		if stopWords[tok] || len(tok) == 1 && tok >= "0" && tok <= "9" {
			continue
		}
		tf[tok]++
	}
	return tf
}

// cosineSimilarity 两个词频向量的余弦相似度，任一方为空向量时返回0
func cosineSimilarity(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for tok, wa := range a {
		normA += wa * wa
		if wb, ok := b[tok]; ok {
			dot += wa * wb
		}
	}
	for _, wb := range b {
		normB += wb * wb
	}
	if dot == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// 浮点误差可能略微越界
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

// semanticSimilarity 简历文本与岗位描述的词频余弦相似度
// 比技能精确匹配更宽松，能捕捉没按词表措辞的相关经验
func semanticSimilarity(resumeText, jobText string) float64 {
	return cosineSimilarity(termFrequency(resumeText), termFrequency(jobText))
}
