package dto

// ── 团队模块 DTO ──

// CreateTeamRequest 创建团队
type CreateTeamRequest struct {
	Name        string   `json:"name"        binding:"required,min=1,max=100"`
	Description *string  `json:"description" binding:"omitempty,max=500"`
	MemberIDs   []string `json:"member_ids"  binding:"omitempty,max=500,dive,uuid"`
}

// UpdateTeamRequest 更新团队
type UpdateTeamRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// AddMemberRequest 添加成员
type AddMemberRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

// TeamResponse 团队信息
type TeamResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	MemberCount int     `json:"member_count"`
	CreatedAt   string  `json:"created_at"`
}

// TeamDetailResponse 团队详情（含成员）
type TeamDetailResponse struct {
	TeamResponse
	Members []UserResponse `json:"members"`
}

// AddMemberResponse 添加成员结果
type AddMemberResponse struct {
	Added bool `json:"added"` // false 表示已是成员
}
