package constants

import "time"

// 投递记录的生命周期状态
// 初始状态为StatusApplied，后续状态由审阅人通过状态更新接口推进
const (
	StatusApplied            = "Applied"
	StatusUnderReview        = "Under Review"
	StatusShortlisted        = "Shortlisted"
	StatusInterviewScheduled = "Interview Scheduled"
	StatusSelected           = "Selected"
	StatusRejected           = "Rejected"
)

// ValidStatuses 状态更新接口允许的目标状态集合
var ValidStatuses = map[string]bool{
	StatusApplied:            true,
	StatusUnderReview:        true,
	StatusShortlisted:        true,
	StatusInterviewScheduled: true,
	StatusSelected:           true,
	StatusRejected:           true,
}

const (
	// JobCacheDuration 岗位要求缓存的过期时间
	JobCacheDuration = 24 * time.Hour

	// MD5RecordDefaultExpireDays 原始文件MD5去重记录的默认保留天数
	MD5RecordDefaultExpireDays = 30

	// DefaultSourceChannel 未指定来源渠道时的默认值
	DefaultSourceChannel = "web_upload"
)
