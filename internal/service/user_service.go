package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/krunal16-c/saskhack/internal/dto"
	"github.com/krunal16-c/saskhack/internal/model"
	"github.com/krunal16-c/saskhack/internal/repository"
)

// ── 用户模块业务错误 ──

var (
	ErrUserNotFound    = errors.New("用户不存在")
	ErrUserEmailAbsent = errors.New("缺少邮箱：Token 与请求体均未提供")
)

// Identity 经身份提供方 Token 校验后的调用者身份
type Identity struct {
	ExternalID string
	Email      string
	Name       string
	Role       string
}

// UserService 用户业务接口
type UserService interface {
	// Sync 为当前身份创建本地画像（已存在时原样返回）
	Sync(ctx context.Context, id Identity, req *dto.SyncUserRequest) (*dto.SyncUserResponse, error)
	GetMe(ctx context.Context, externalID string) (*dto.UserResponse, error)
	UpdateMe(ctx context.Context, externalID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────────────── Sync ──────────────────────

func (s *userService) Sync(ctx context.Context, id Identity, req *dto.SyncUserRequest) (*dto.SyncUserResponse, error) {
	email := id.Email
	if email == "" {
		email = req.Email
	}
	if email == "" {
		return nil, ErrUserEmailAbsent
	}

	name := id.Name
	if name == "" {
		name = req.Name
	}

	user := &model.User{
		ExternalID: id.ExternalID,
		Email:      email,
		Name:       optionalString(name),
		ImageURL:   optionalString(req.ImageURL),
		Role:       normalizeRole(id.Role),
	}

	created, err := s.repo.User.CreateIfAbsent(ctx, user)
	if err != nil {
		s.logger.Error("同步用户失败", zap.String("external_id", id.ExternalID), zap.Error(err))
		return nil, err
	}

	// 冲突时 user 未被回填，重新读取已存在的记录
	stored, err := s.repo.User.GetByExternalID(ctx, id.ExternalID)
	if err != nil {
		s.logger.Error("读取同步用户失败", zap.String("external_id", id.ExternalID), zap.Error(err))
		return nil, err
	}

	if created {
		s.logger.Info("新用户已同步", zap.String("user_id", stored.UserID), zap.String("external_id", id.ExternalID))
	}

	return &dto.SyncUserResponse{User: toUserResponse(stored), Created: created}, nil
}

// ────────────────────── GetMe / UpdateMe ──────────────────────

func (s *userService) GetMe(ctx context.Context, externalID string) (*dto.UserResponse, error) {
	user, err := resolveUser(ctx, s.repo, externalID)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) UpdateMe(ctx context.Context, externalID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := resolveUser(ctx, s.repo, externalID)
	if err != nil {
		return nil, err
	}

	// 仅更新非 nil 字段
	if req.Name != nil {
		user.Name = req.Name
	}
	if req.Age != nil {
		user.Age = req.Age
	}
	if req.Gender != nil {
		user.Gender = req.Gender
	}
	if req.YearsExperience != nil {
		user.YearsExperience = req.YearsExperience
	}
	if req.JobType != nil {
		user.JobType = req.JobType
	}
	if req.JobTitle != nil {
		user.JobTitle = req.JobTitle
	}
	if req.Department != nil {
		user.Department = req.Department
	}
	user.UpdatedBy = &user.UserID

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新画像失败", zap.String("user_id", user.UserID), zap.Error(err))
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// ────────────────────── GetByID / List ──────────────────────

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, req.Keyword, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.UserResponse, len(users))
	for i := range users {
		list[i] = toUserResponse(&users[i])
	}
	return list, total, nil
}

// ── 内部方法 ──

// resolveUser 按身份提供方 ID 查找本地用户
func resolveUser(ctx context.Context, repo *repository.Repository, externalID string) (*model.User, error) {
	user, err := repo.User.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// actorID 将调用者外部 ID 解析为本地用户 ID，未同步时返回 nil
func actorID(ctx context.Context, repo *repository.Repository, externalID string) *string {
	if externalID == "" {
		return nil
	}
	user, err := repo.User.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil
	}
	return &user.UserID
}

func normalizeRole(role string) string {
	switch role {
	case model.RoleManager, model.RoleAdmin:
		return role
	default:
		return model.RoleWorker
	}
}
