package dto

// ── 用户模块 DTO ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// SyncUserRequest 同步身份提供方用户（字段均可选，缺省取 Token 声明）
type SyncUserRequest struct {
	Email    string `json:"email"     binding:"omitempty,email"`
	Name     string `json:"name"      binding:"omitempty,max=100"`
	ImageURL string `json:"image_url" binding:"omitempty,url,max=500"`
}

// UpdateProfileRequest 更新个人画像请求
type UpdateProfileRequest struct {
	Name            *string `json:"name"             binding:"omitempty,min=1,max=100"`
	Age             *int    `json:"age"              binding:"omitempty,min=14,max=100"`
	Gender          *string `json:"gender"           binding:"omitempty,oneof=male female other"`
	YearsExperience *int    `json:"years_experience" binding:"omitempty,min=0,max=70"`
	JobType         *string `json:"job_type"         binding:"omitempty,max=100"`
	JobTitle        *string `json:"job_title"        binding:"omitempty,max=100"`
	Department      *string `json:"department"       binding:"omitempty,max=100"`
}
