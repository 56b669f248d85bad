package types

import "time"

// StatsTypeItem 按 MIME 类型聚合的一项.
type StatsTypeItem struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
	Bytes int64  `json:"bytes"`
}

// StatsSummary 当前用户的存储统计.短 TTL 缓存，允许轻微滞后.
type StatsSummary struct {
	TotalFiles  int64           `json:"total_files"`
	ActiveFiles int64           `json:"active_files"`
	TrashFiles  int64           `json:"trash_files"`
	TotalBytes  int64           `json:"total_bytes"`
	ActiveBytes int64           `json:"active_bytes"`
	TrashBytes  int64           `json:"trash_bytes"`
	Folders     int64           `json:"folders"`
	TopTypes    []StatsTypeItem `json:"top_types,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
}
