package storage

import (
	"errors"
	"fmt"
	"testing"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// TestIsDuplicateKeyError 唯一约束冲突的两种表现形式都要识别
func TestIsDuplicateKeyError(t *testing.T) {
	assert.True(t, isDuplicateKeyError(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateKeyError(&gomysql.MySQLError{Number: 1062, Message: "Duplicate entry"}))
	assert.True(t, isDuplicateKeyError(fmt.Errorf("insert failed: %w",
		&gomysql.MySQLError{Number: 1062, Message: "Duplicate entry"})), "包装后的驱动错误也要识别")

	assert.False(t, isDuplicateKeyError(nil))
	assert.False(t, isDuplicateKeyError(errors.New("connection refused")))
	assert.False(t, isDuplicateKeyError(&gomysql.MySQLError{Number: 1045, Message: "Access denied"}))
}

// TestContentTypeForExt 按扩展名选择对象存储的Content-Type
func TestContentTypeForExt(t *testing.T) {
	assert.Equal(t, "application/pdf", contentTypeForExt(".pdf"))
	assert.Equal(t, "application/pdf", contentTypeForExt(".PDF"))
	assert.Equal(t, "application/msword", contentTypeForExt(".doc"))
	assert.Equal(t, "text/plain", contentTypeForExt(".txt"))
	assert.Equal(t, "application/octet-stream", contentTypeForExt(".xyz"))
}
