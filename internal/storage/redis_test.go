package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestFileMD5KeyScopedByJob 验证文件去重键按岗位隔离
// 同一份简历文件投不同岗位必须落在不同的去重键上，互不拦截
func TestFileMD5KeyScopedByJob(t *testing.T) {
	const md5Hex = "5d41402abc4b2a76b9719d911017c592"

	keyJobA := fileMD5RecordKey("job-backend-001", md5Hex)
	keyJobB := fileMD5RecordKey("job-frontend-002", md5Hex)

	assert.NotEqual(t, keyJobA, keyJobB, "同一文件投不同岗位应使用不同去重键")
	assert.Equal(t, keyJobA, fileMD5RecordKey("job-backend-001", md5Hex), "同岗位同文件的去重键应稳定")

	assert.True(t, strings.Contains(keyJobA, "job-backend-001"), "去重键应包含岗位ID")
	assert.True(t, strings.Contains(keyJobA, md5Hex), "去重键应包含文件MD5")
}

// TestFileMD5SetMemberScopedByJob 审计集合成员同样带岗位前缀
func TestFileMD5SetMemberScopedByJob(t *testing.T) {
	const md5Hex = "d41d8cd98f00b204e9800998ecf8427e"

	memberA := fileMD5SetMember("job-001", md5Hex)
	memberB := fileMD5SetMember("job-002", md5Hex)

	assert.NotEqual(t, memberA, memberB)
	assert.Equal(t, "job-001:"+md5Hex, memberA)
}
