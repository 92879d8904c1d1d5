package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/krunal16-c/saskhack/internal/model"
)

// TeamWithCount 团队及成员数
type TeamWithCount struct {
	model.Team
	MemberCount int64 `gorm:"column:member_count"`
}

// TeamRepository 团队数据访问接口
type TeamRepository interface {
	Create(ctx context.Context, team *model.Team) error
	GetByID(ctx context.Context, id string) (*model.Team, error)
	List(ctx context.Context) ([]TeamWithCount, error)
	Update(ctx context.Context, team *model.Team) error
	Delete(ctx context.Context, id string) error

	// AddMember 幂等添加成员，返回是否新增
	AddMember(ctx context.Context, teamID, userID string) (bool, error)
	// RemoveMember 返回是否确实移除
	RemoveMember(ctx context.Context, teamID, userID string) (bool, error)
	ListMembers(ctx context.Context, teamID string) ([]model.User, error)
}

type teamRepo struct {
	db *gorm.DB
}

// NewTeamRepo 创建 TeamRepository 实例
func NewTeamRepo(db *gorm.DB) TeamRepository {
	return &teamRepo{db: db}
}

func (r *teamRepo) Create(ctx context.Context, team *model.Team) error {
	return r.db.WithContext(ctx).Omit("Members").Create(team).Error
}

func (r *teamRepo) GetByID(ctx context.Context, id string) (*model.Team, error) {
	var team model.Team
	err := r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Members.User").
		Where("team_id = ?", id).
		First(&team).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepo) List(ctx context.Context) ([]TeamWithCount, error) {
	var teams []TeamWithCount
	err := r.db.WithContext(ctx).
		Model(&model.Team{}).
		Select("teams.*, (SELECT COUNT(*) FROM team_members tm WHERE tm.team_id = teams.team_id) AS member_count").
		Order("teams.name ASC").
		Scan(&teams).Error
	return teams, err
}

func (r *teamRepo) Update(ctx context.Context, team *model.Team) error {
	return r.db.WithContext(ctx).
		Model(team).
		Where("team_id = ?", team.TeamID).
		Updates(map[string]interface{}{
			"name":        team.Name,
			"description": team.Description,
			"updated_by":  team.UpdatedBy,
		}).Error
}

func (r *teamRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("team_id = ?", id).
		Delete(&model.Team{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *teamRepo) AddMember(ctx context.Context, teamID, userID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.TeamMember{TeamID: teamID, UserID: userID})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *teamRepo) RemoveMember(ctx context.Context, teamID, userID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&model.TeamMember{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *teamRepo) ListMembers(ctx context.Context, teamID string) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN team_members tm ON tm.user_id = users.user_id").
		Where("tm.team_id = ?", teamID).
		Order("users.created_at ASC").
		Find(&users).Error
	return users, err
}
