//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/krunal16-c/saskhack/internal/model"
	"github.com/krunal16-c/saskhack/internal/repository"
	"github.com/krunal16-c/saskhack/pkg/database"
	pkgerrors "github.com/krunal16-c/saskhack/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=safety password=safety_password dbname=safety_first_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "迁移失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func setupUser(t *testing.T) (*model.User, func()) {
	t.Helper()
	user := &model.User{
		ExternalID: fmt.Sprintf("idp_%d", time.Now().UnixNano()),
		Email:      fmt.Sprintf("worker%d@example.com", time.Now().UnixNano()),
		Role:       model.RoleWorker,
	}
	created, err := repository.NewRepository(testDB).User.CreateIfAbsent(context.Background(), user)
	if err != nil || !created {
		t.Fatalf("创建用户失败: created=%v err=%v", created, err)
	}
	return user, func() {
		testDB.Where("user_id = ?", user.UserID).Delete(&model.User{})
	}
}

func newSubmission(userID string, day time.Time, score int) *model.DailySubmission {
	return &model.DailySubmission{
		UserID:             userID,
		Date:               day,
		ShiftDurationHours: 8,
		FatigueLevel:       5,
		PPEItemsRequired:   2,
		PPEItemsUsed:       1,
		PPEComplianceRate:  0.5,
		HazardExposures:    datatypes.NewJSONType(map[string]float64{"noise": 4}),
		Symptoms:           datatypes.NewJSONType([]string{}),
		RuleBasedScore:     score,
		RiskScore:          score,
		ScoreSource:        model.ScoreSourceRule,
		SubmittedAt:        time.Now(),
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Upsert
// ═══════════════════════════════════════════════════════════

func TestSubmissionUpsert_ReplacesSameDay(t *testing.T) {
	user, cleanup := setupUser(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	day := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	if err := repo.Submission.Upsert(ctx, newSubmission(user.UserID, day, 20)); err != nil {
		t.Fatalf("第一次提交失败: %v", err)
	}
	first, _ := repo.Submission.GetByUserAndDate(ctx, user.UserID, day)

	if err := repo.Submission.Upsert(ctx, newSubmission(user.UserID, day, 45)); err != nil {
		t.Fatalf("重复提交失败: %v", err)
	}

	subs, err := repo.Submission.ListByUser(ctx, user.UserID, day.AddDate(0, 0, -90), 0)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("同一天应只有一条记录，实际=%d", len(subs))
	}
	if subs[0].RiskScore != 45 {
		t.Errorf("期望覆盖后分数=45，实际=%d", subs[0].RiskScore)
	}
	if !subs[0].SubmittedAt.Equal(first.SubmittedAt) {
		t.Errorf("submitted_at 应保留首次提交时间")
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Optimistic Lock
// ═══════════════════════════════════════════════════════════

func TestOptimisticLock_User_ConflictDetected(t *testing.T) {
	user, cleanup := setupUser(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	copy1, _ := repo.User.GetByID(ctx, user.UserID)
	copy2, _ := repo.User.GetByID(ctx, user.UserID)

	title := "Welder"
	copy1.JobTitle = &title
	if err := repo.User.Update(ctx, copy1); err != nil {
		t.Fatalf("第一次更新应成功: %v", err)
	}

	copy2.JobTitle = &title
	if err := repo.User.Update(ctx, copy2); err != pkgerrors.ErrOptimisticLock {
		t.Errorf("期望 ErrOptimisticLock，得到: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Transaction
// ═══════════════════════════════════════════════════════════

func TestTransaction_Rollback(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx 失败: %v", err)
	}

	team := &model.Team{Name: fmt.Sprintf("测试团队-%d", time.Now().UnixNano())}
	if err := repo.WithTx(tx).Team.Create(ctx, team); err != nil {
		tx.Rollback()
		t.Fatalf("事务内创建团队失败: %v", err)
	}
	tx.Rollback()

	if _, err := repo.Team.GetByID(ctx, team.TeamID); err == nil {
		testDB.Where("team_id = ?", team.TeamID).Delete(&model.Team{})
		t.Fatal("期望回滚后查不到团队，但实际查到了")
	}
}

func TestTeamMembers_AddIsIdempotent(t *testing.T) {
	user, cleanup := setupUser(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	team := &model.Team{Name: fmt.Sprintf("测试团队-%d", time.Now().UnixNano())}
	if err := repo.Team.Create(ctx, team); err != nil {
		t.Fatalf("创建团队失败: %v", err)
	}
	defer repo.Team.Delete(ctx, team.TeamID)

	added, err := repo.Team.AddMember(ctx, team.TeamID, user.UserID)
	if err != nil || !added {
		t.Fatalf("首次添加应成功: added=%v err=%v", added, err)
	}
	added, err = repo.Team.AddMember(ctx, team.TeamID, user.UserID)
	if err != nil || added {
		t.Errorf("重复添加应幂等: added=%v err=%v", added, err)
	}

	members, _ := repo.Team.ListMembers(ctx, team.TeamID)
	if len(members) != 1 {
		t.Errorf("期望 1 名成员，实际=%d", len(members))
	}
}
