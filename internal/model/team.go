package model

import "time"

// Team 团队表，对应 teams
type Team struct {
	TeamID      string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"team_id"`
	Name        string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Description *string `gorm:"type:text"                                      json:"description,omitempty"`
	BaseModel

	// 关联
	Members []TeamMember `gorm:"foreignKey:TeamID;references:TeamID" json:"members,omitempty"`
}

// TableName 指定表名
func (Team) TableName() string { return "teams" }

// TeamMember 团队成员表，对应 team_members（复合主键）
type TeamMember struct {
	TeamID    string    `gorm:"type:uuid;primaryKey"               json:"team_id"`
	UserID    string    `gorm:"type:uuid;primaryKey"               json:"user_id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (TeamMember) TableName() string { return "team_members" }
