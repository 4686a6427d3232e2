package utils

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"

	"gorm.io/datatypes"
)

// StringPtr 返回字符串的指针
func StringPtr(s string) *string {
	return &s
}

// Float64Ptr 返回浮点数的指针
func Float64Ptr(f float64) *float64 {
	return &f
}

// CalculateMD5 计算字节切片的MD5摘要(十六进制小写)
func CalculateMD5(data []byte) string {
	hasher := md5.New()
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}

// ConvertArrayToJSON 字符串数组转JSON列值
// 序列化失败时返回空数组，调用方不需要处理错误
func ConvertArrayToJSON(arr []string) datatypes.JSON {
	if len(arr) == 0 {
		return datatypes.JSON("[]")
	}
	jsonBytes, err := json.Marshal(arr)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(jsonBytes)
}
