package types

// ListFilesQuery 文件列表查询参数.
type ListFilesQuery struct {
	Status   string  `form:"status"    json:"status,omitempty" rule:"omitempty,oneof=active deleted"`
	IsPublic *bool   `form:"is_public" json:"is_public,omitempty"`
	Folder   *string `form:"folder"    json:"folder,omitempty"` // 未提供时不按文件夹过滤
	Limit    int     `form:"limit"     json:"limit,omitempty"`
	Offset   int     `form:"offset"    json:"offset,omitempty"`
}

// ListFilesResponse 文件列表响应，创建时间倒序.
type ListFilesResponse struct {
	Files  []FileInfo `json:"files"`
	Total  int64      `json:"total"` // 过滤条件下的总数，与分页无关
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}
