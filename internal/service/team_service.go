package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/krunal16-c/saskhack/internal/dto"
	"github.com/krunal16-c/saskhack/internal/model"
	"github.com/krunal16-c/saskhack/internal/repository"
)

// ── 团队模块业务错误 ──

var (
	ErrTeamNotFound       = errors.New("团队不存在")
	ErrTeamMemberNotFound = errors.New("该用户不是团队成员")
	ErrTeamMemberInvalid  = errors.New("成员列表包含不存在的用户")
)

// TeamService 团队业务接口
type TeamService interface {
	List(ctx context.Context) ([]dto.TeamResponse, error)
	Create(ctx context.Context, req *dto.CreateTeamRequest, callerExternalID string) (*dto.TeamDetailResponse, error)
	GetByID(ctx context.Context, id string) (*dto.TeamDetailResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateTeamRequest, callerExternalID string) (*dto.TeamDetailResponse, error)
	Delete(ctx context.Context, id string) error
	// AddMember 幂等添加，已是成员时 Added=false
	AddMember(ctx context.Context, teamID string, req *dto.AddMemberRequest) (*dto.AddMemberResponse, error)
	RemoveMember(ctx context.Context, teamID, userID string) error
}

type teamService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTeamService 创建 TeamService 实例
func NewTeamService(repo *repository.Repository, logger *zap.Logger) TeamService {
	return &teamService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *teamService) List(ctx context.Context) ([]dto.TeamResponse, error) {
	teams, err := s.repo.Team.List(ctx)
	if err != nil {
		s.logger.Error("查询团队列表失败", zap.Error(err))
		return nil, err
	}

	list := make([]dto.TeamResponse, len(teams))
	for i, t := range teams {
		list[i] = toTeamResponse(&t.Team, int(t.MemberCount))
	}
	return list, nil
}

// ────────────────────── Create ──────────────────────

func (s *teamService) Create(ctx context.Context, req *dto.CreateTeamRequest, callerExternalID string) (*dto.TeamDetailResponse, error) {
	memberIDs := uniqueStrings(req.MemberIDs)
	if len(memberIDs) > 0 {
		users, err := s.repo.User.GetByIDs(ctx, memberIDs)
		if err != nil {
			return nil, err
		}
		if len(users) != len(memberIDs) {
			return nil, ErrTeamMemberInvalid
		}
	}

	team := &model.Team{
		Name:        req.Name,
		Description: req.Description,
	}
	team.CreatedBy = actorID(ctx, s.repo, callerExternalID)
	team.UpdatedBy = team.CreatedBy

	// 团队与初始成员在同一事务中写入
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	txRepo := s.repo.WithTx(tx)

	if err := txRepo.Team.Create(ctx, team); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("创建团队失败", zap.String("name", req.Name), zap.Error(err))
		return nil, err
	}
	for _, uid := range memberIDs {
		if _, err := txRepo.Team.AddMember(ctx, team.TeamID, uid); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			s.logger.Error("添加初始成员失败", zap.String("team_id", team.TeamID), zap.String("user_id", uid), zap.Error(err))
			return nil, err
		}
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			return nil, err
		}
	}

	s.logger.Info("团队已创建", zap.String("team_id", team.TeamID), zap.Int("members", len(memberIDs)))
	return s.GetByID(ctx, team.TeamID)
}

// ────────────────────── GetByID / Update / Delete ──────────────────────

func (s *teamService) GetByID(ctx context.Context, id string) (*dto.TeamDetailResponse, error) {
	team, err := s.getTeam(ctx, id)
	if err != nil {
		return nil, err
	}

	members := make([]dto.UserResponse, 0, len(team.Members))
	for _, m := range team.Members {
		if m.User != nil {
			members = append(members, toUserResponse(m.User))
		}
	}

	return &dto.TeamDetailResponse{
		TeamResponse: toTeamResponse(team, len(members)),
		Members:      members,
	}, nil
}

func (s *teamService) Update(ctx context.Context, id string, req *dto.UpdateTeamRequest, callerExternalID string) (*dto.TeamDetailResponse, error) {
	team, err := s.getTeam(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		team.Name = *req.Name
	}
	if req.Description != nil {
		team.Description = req.Description
	}
	team.UpdatedBy = actorID(ctx, s.repo, callerExternalID)

	if err := s.repo.Team.Update(ctx, team); err != nil {
		s.logger.Error("更新团队失败", zap.String("team_id", id), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *teamService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Team.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamNotFound
		}
		s.logger.Error("删除团队失败", zap.String("team_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("团队已删除", zap.String("team_id", id))
	return nil
}

// ────────────────────── 成员 ──────────────────────

func (s *teamService) AddMember(ctx context.Context, teamID string, req *dto.AddMemberRequest) (*dto.AddMemberResponse, error) {
	if _, err := s.getTeam(ctx, teamID); err != nil {
		return nil, err
	}
	if _, err := s.repo.User.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	added, err := s.repo.Team.AddMember(ctx, teamID, req.UserID)
	if err != nil {
		s.logger.Error("添加成员失败", zap.String("team_id", teamID), zap.String("user_id", req.UserID), zap.Error(err))
		return nil, err
	}
	return &dto.AddMemberResponse{Added: added}, nil
}

func (s *teamService) RemoveMember(ctx context.Context, teamID, userID string) error {
	removed, err := s.repo.Team.RemoveMember(ctx, teamID, userID)
	if err != nil {
		s.logger.Error("移除成员失败", zap.String("team_id", teamID), zap.String("user_id", userID), zap.Error(err))
		return err
	}
	if !removed {
		return ErrTeamMemberNotFound
	}
	return nil
}

// ── 内部方法 ──

func (s *teamService) getTeam(ctx context.Context, id string) (*model.Team, error) {
	team, err := s.repo.Team.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		s.logger.Error("查询团队失败", zap.String("team_id", id), zap.Error(err))
		return nil, err
	}
	return team, nil
}

func toTeamResponse(t *model.Team, memberCount int) dto.TeamResponse {
	return dto.TeamResponse{
		ID:          t.TeamID,
		Name:        t.Name,
		Description: t.Description,
		MemberCount: memberCount,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
}

func uniqueStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, v := range in {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
