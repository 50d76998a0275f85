// Package timeout defines centralized timeout constants for AI and booking operations.
// Package timeout 定义 AI 与预订操作的集中式超时常量。
package timeout

import "time"

// External collaborator constants.
// 外部协作者（LLM）常量。
const (
	// LLMCallTimeout bounds a single chat completion attempt.
	// LLMCallTimeout 是单次 LLM 调用的超时时间。
	LLMCallTimeout = 8 * time.Second

	// LLMMaxRetries is the number of attempts before falling back to the local parse.
	// LLMMaxRetries 是回退到本地解析前的最大尝试次数。
	LLMMaxRetries = 3

	// LLMRetryBaseDelay is doubled after every failed attempt.
	// LLMRetryBaseDelay 是重试退避的基础时长，每次失败后翻倍。
	LLMRetryBaseDelay = 500 * time.Millisecond

	// LLMRequestsPerSecond throttles outgoing calls to the vendor.
	LLMRequestsPerSecond = 2

	// SuggestionCacheTTL is how long an external suggestion may be reused for the same sentence.
	// SuggestionCacheTTL 是同一句子外部建议的缓存时长。
	SuggestionCacheTTL = 5 * time.Minute

	// SuggestionCacheSize is the maximum number of cached suggestions.
	SuggestionCacheSize = 256
)

// Booking store constants.
// 预订存储常量。
const (
	// StoreOperationTimeout bounds a single driver call.
	// StoreOperationTimeout 是单次存储驱动调用的超时时间。
	StoreOperationTimeout = 5 * time.Second

	// VenueLockTTL is the expiry of a distributed per-venue write lock.
	// VenueLockTTL 是分布式场地写锁的过期时间。
	VenueLockTTL = 10 * time.Second

	// VenueLockRetryInterval is the polling interval while waiting for a venue lock.
	VenueLockRetryInterval = 50 * time.Millisecond

	// MaxTruncateLength is the maximum length for truncating strings in logs.
	// MaxTruncateLength 是日志中字符串截断的最大长度。
	MaxTruncateLength = 200
)
