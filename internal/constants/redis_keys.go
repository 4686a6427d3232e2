package constants

// Redis Key 前缀和格式常量
// 统一命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// JobModulePrefix 岗位模块
	JobModulePrefix = "job"
	// FileModulePrefix 文件模块
	FileModulePrefix = "file"

	// KeyJobRequirements 岗位要求缓存 (STRING, JSON序列化)
	// 格式: app:job:requirements:{jobID}
	KeyJobRequirements = AppPrefix + ":" + JobModulePrefix + ":requirements:%s"

	// KeyFileMD5Set 原始简历文件MD5集合，用于快速去重 (SET)
	// 成员格式: {jobID}:{md5}
	KeyFileMD5Set = AppPrefix + ":" + FileModulePrefix + ":dedup_set"

	// KeyFileMD5Record 单个(岗位, MD5)组合的过期记录 (STRING)
	// 去重按岗位隔离，同一份简历投不同岗位不算重复
	// SET成员无法单独过期，用附属STRING键承载TTL，由清理任务对账
	// 格式: app:file:md5_record:{jobID}:{md5}
	KeyFileMD5Record = AppPrefix + ":" + FileModulePrefix + ":md5_record:%s:%s"
)
