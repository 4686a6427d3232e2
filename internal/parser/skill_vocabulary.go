package parser

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// SkillEntry 词表中的一条技能：规范名加同义词/缩写
type SkillEntry struct {
	Canonical string   `yaml:"canonical"`
	Synonyms  []string `yaml:"synonyms"`
}

// SkillVocabulary 技能参考词表
// 技能识别只认词表内的词条，避免凭空捏造简历中不存在的技能
type SkillVocabulary struct {
	Entries []SkillEntry `yaml:"skills"`

	// alias -> canonical 的反查表，全部小写
	aliasIndex map[string]string
}

// skillVocabularyFile 外部词表文件的顶层结构
type skillVocabularyFile struct {
	Skills []SkillEntry `yaml:"skills"`
}

// NewSkillVocabulary 从词条列表构建词表并建立别名索引
func NewSkillVocabulary(entries []SkillEntry) *SkillVocabulary {
	v := &SkillVocabulary{
		Entries:    entries,
		aliasIndex: make(map[string]string),
	}
	for _, e := range entries {
		canonical := strings.ToLower(strings.TrimSpace(e.Canonical))
		if canonical == "" {
			continue
		}
		v.aliasIndex[canonical] = canonical
		for _, syn := range e.Synonyms {
			syn = strings.ToLower(strings.TrimSpace(syn))
			if syn != "" {
				v.aliasIndex[syn] = canonical
			}
		}
	}
	return v
}

// LoadSkillVocabulary 从YAML文件加载词表
// 路径为空时返回内置默认词表
func LoadSkillVocabulary(path string) (*SkillVocabulary, error) {
	if path == "" {
		return DefaultSkillVocabulary(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取技能词表失败: %w", err)
	}

	var file skillVocabularyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("解析技能词表失败: %w", err)
	}
	if len(file.Skills) == 0 {
		return nil, fmt.Errorf("技能词表为空: %s", path)
	}

	return NewSkillVocabulary(file.Skills), nil
}

// Normalize 把一个技能别名归一化为规范名
// 不在词表内的词原样返回小写形式
func (v *SkillVocabulary) Normalize(skill string) string {
	s := strings.ToLower(strings.TrimSpace(skill))
	if canonical, ok := v.aliasIndex[s]; ok {
		return canonical
	}
	return s
}

// NormalizeSet 归一化一组技能并按字典序去重排序
func (v *SkillVocabulary) NormalizeSet(skills []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range skills {
		n := v.Normalize(s)
		if n != "" && !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Strings(out)
	if out == nil {
		out = []string{}
	}
	return out
}

// DefaultSkillVocabulary 内置默认词表
// 生产环境建议通过skills.vocabulary_path挂载外部词表按岗位族维护
func DefaultSkillVocabulary() *SkillVocabulary {
	return NewSkillVocabulary([]SkillEntry{
		// 编程语言
		{Canonical: "go", Synonyms: []string{"golang"}},
		{Canonical: "python", Synonyms: []string{"python3"}},
		{Canonical: "java"},
		{Canonical: "javascript", Synonyms: []string{"js", "ecmascript"}},
		{Canonical: "typescript", Synonyms: []string{"ts"}},
		{Canonical: "c++", Synonyms: []string{"cpp"}},
		{Canonical: "c#", Synonyms: []string{"csharp"}},
		{Canonical: "c"},
		{Canonical: "rust"},
		{Canonical: "ruby"},
		{Canonical: "php"},
		{Canonical: "swift"},
		{Canonical: "kotlin"},
		{Canonical: "scala"},
		{Canonical: "r"},
		{Canonical: "matlab"},
		{Canonical: "shell", Synonyms: []string{"bash"}},
		// 前端
		{Canonical: "react", Synonyms: []string{"reactjs", "react.js"}},
		{Canonical: "vue", Synonyms: []string{"vuejs", "vue.js"}},
		{Canonical: "angular", Synonyms: []string{"angularjs"}},
		{Canonical: "html", Synonyms: []string{"html5"}},
		{Canonical: "css", Synonyms: []string{"css3"}},
		{Canonical: "node.js", Synonyms: []string{"nodejs", "node"}},
		{Canonical: "webpack"},
		// 后端与框架
		{Canonical: "spring", Synonyms: []string{"spring boot", "springboot", "spring cloud"}},
		{Canonical: "django"},
		{Canonical: "flask"},
		{Canonical: "fastapi"},
		{Canonical: "gin"},
		{Canonical: "grpc"},
		{Canonical: "graphql"},
		{Canonical: "rest", Synonyms: []string{"restful"}},
		// 数据库与存储
		{Canonical: "mysql"},
		{Canonical: "postgresql", Synonyms: []string{"postgres"}},
		{Canonical: "mongodb", Synonyms: []string{"mongo"}},
		{Canonical: "redis"},
		{Canonical: "elasticsearch", Synonyms: []string{"es"}},
		{Canonical: "sqlite"},
		{Canonical: "oracle"},
		{Canonical: "sql server", Synonyms: []string{"sqlserver", "mssql"}},
		{Canonical: "sql"},
		{Canonical: "kafka"},
		{Canonical: "rabbitmq"},
		// 云与运维
		{Canonical: "aws", Synonyms: []string{"amazon web services"}},
		{Canonical: "azure"},
		{Canonical: "gcp", Synonyms: []string{"google cloud"}},
		{Canonical: "docker"},
		{Canonical: "kubernetes", Synonyms: []string{"k8s"}},
		{Canonical: "terraform"},
		{Canonical: "jenkins"},
		{Canonical: "ci/cd", Synonyms: []string{"cicd"}},
		{Canonical: "linux"},
		{Canonical: "nginx"},
		{Canonical: "git"},
		// 数据与算法
		{Canonical: "machine learning", Synonyms: []string{"ml"}},
		{Canonical: "deep learning", Synonyms: []string{"dl"}},
		{Canonical: "nlp", Synonyms: []string{"natural language processing"}},
		{Canonical: "tensorflow"},
		{Canonical: "pytorch"},
		{Canonical: "pandas"},
		{Canonical: "numpy"},
		{Canonical: "spark"},
		{Canonical: "hadoop"},
		{Canonical: "tableau"},
		{Canonical: "excel"},
		// 协作
		{Canonical: "agile", Synonyms: []string{"scrum"}},
		{Canonical: "jira"},
	})
}
