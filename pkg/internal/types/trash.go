package types

// TrashListResponse 回收站列表响应.
type TrashListResponse struct {
	Files []FileInfo `json:"files"`
	Total int64      `json:"total"`
}

// EmptyTrashResult 清空回收站时单个文件的结果.
type EmptyTrashResult struct {
	ID           string `json:"id"`
	OriginalName string `json:"original_name"`
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
}

// EmptyTrashResponse 清空回收站响应.逐个彻底删除，单个失败不中断其余.
type EmptyTrashResponse struct {
	Results []EmptyTrashResult `json:"results"`
	Purged  int                `json:"purged"`
	Failed  int                `json:"failed"`
}
