package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSkillVocabularyNormalize 别名归一到规范名，词表外的词原样小写返回
func TestSkillVocabularyNormalize(t *testing.T) {
	v := DefaultSkillVocabulary()

	assert.Equal(t, "go", v.Normalize("Golang"))
	assert.Equal(t, "kubernetes", v.Normalize(" K8s "))
	assert.Equal(t, "c++", v.Normalize("CPP"))
	assert.Equal(t, "node.js", v.Normalize("NodeJS"))
	assert.Equal(t, "cobol", v.Normalize("COBOL"), "词表外的词应原样小写返回")
}

// TestSkillVocabularyNormalizeSet 归一化后去重排序，同义词收敛为一项
func TestSkillVocabularyNormalizeSet(t *testing.T) {
	v := DefaultSkillVocabulary()

	out := v.NormalizeSet([]string{"Golang", "go", "K8s", "kubernetes", "MySQL", ""})
	assert.Equal(t, []string{"go", "kubernetes", "mysql"}, out)

	assert.Equal(t, []string{}, v.NormalizeSet(nil), "空输入应返回非nil空切片")
}

// TestLoadSkillVocabularyFromYAML 从外部YAML文件加载词表
func TestLoadSkillVocabularyFromYAML(t *testing.T) {
	content := `skills:
  - canonical: go
    synonyms: [golang]
  - canonical: 数据分析
    synonyms: ["data analysis"]
`
	path := filepath.Join(t.TempDir(), "skills.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	v, err := LoadSkillVocabulary(path)
	require.NoError(t, err)
	assert.Len(t, v.Entries, 2)
	assert.Equal(t, "go", v.Normalize("golang"))
	assert.Equal(t, "数据分析", v.Normalize("Data Analysis"))
}

// TestLoadSkillVocabularyErrors 路径为空用内置词表，文件缺失或内容为空要报错
func TestLoadSkillVocabularyErrors(t *testing.T) {
	v, err := LoadSkillVocabulary("")
	require.NoError(t, err)
	assert.NotEmpty(t, v.Entries, "空路径应返回内置默认词表")

	_, err = LoadSkillVocabulary(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("skills: []\n"), 0o644))
	_, err = LoadSkillVocabulary(empty)
	assert.Error(t, err, "空词表应报错而不是静默返回")
}
