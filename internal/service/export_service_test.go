package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/krunal16-c/saskhack/internal/model"
)

// ── 测试辅助 ──

func setupTestExportService() (ExportService, *mockRepos) {
	repo, mocks := newMockRepository()
	clk := fixedClock()
	logger := zap.NewNop()
	dashboard := NewDashboardService(repo, clk, logger)
	return NewExportService(repo, dashboard, clk, logger), mocks
}

// ── ExportTeam 测试 ──

func TestExportService_ExportTeam_NotFound(t *testing.T) {
	svc, _ := setupTestExportService()

	_, _, err := svc.ExportTeam(context.Background(), "team-missing")
	if !errors.Is(err, ErrTeamNotFound) {
		t.Errorf("期望 ErrTeamNotFound，实际: %v", err)
	}
}

func TestExportService_ExportTeam_Success(t *testing.T) {
	svc, mocks := setupTestExportService()
	mocks.user.add(&model.User{UserID: "uid-a", ExternalID: "idp_a", Email: "a@example.com", Name: ptr("Alex")})
	mocks.user.add(&model.User{UserID: "uid-b", ExternalID: "idp_b", Email: "b@example.com", Name: ptr("Bo")})
	_ = mocks.team.Create(context.Background(), &model.Team{TeamID: "team-1", Name: "North Site/Crew A"})
	_, _ = mocks.team.AddMember(context.Background(), "team-1", "uid-a")
	_, _ = mocks.team.AddMember(context.Background(), "team-1", "uid-b")
	seedDetailed(mocks.submission, "uid-a", 0, 20, 3, false, map[string]float64{})
	seedDetailed(mocks.submission, "uid-b", 0, 75, 8, true, map[string]float64{"noise": 6})

	buf, filename, err := svc.ExportTeam(context.Background(), "team-1")
	if err != nil {
		t.Fatalf("ExportTeam 应成功: %v", err)
	}
	if filename != "team_North_Site_Crew_A_2026-10-15.xlsx" {
		t.Errorf("文件名不符合预期: %s", filename)
	}
	if buf == nil || buf.Len() == 0 {
		t.Fatal("导出内容不应为空")
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("导出内容应为合法 xlsx: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if strings.Join(sheets, ",") != "Metrics,Workers,Daily Trend" {
		t.Errorf("工作表不符合预期: %v", sheets)
	}

	title, _ := f.GetCellValue("Metrics", "A1")
	if !strings.Contains(title, "North Site/Crew A") {
		t.Errorf("指标页标题应包含团队名: %s", title)
	}
	total, _ := f.GetCellValue("Metrics", "B2")
	if total != "2" {
		t.Errorf("期望总人数 2，实际=%s", total)
	}

	rows, err := f.GetRows("Workers")
	if err != nil {
		t.Fatalf("读取员工页失败: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("期望表头 + 2 行，实际=%d", len(rows))
	}
	// 按最近风险分降序
	if rows[1][0] != "Bo" || rows[1][5] != "high" || rows[1][8] != "Yes" {
		t.Errorf("首行应为风险最高的员工: %v", rows[1])
	}

	trend, _ := f.GetRows("Daily Trend")
	if len(trend) != 8 {
		t.Errorf("趋势页期望表头 + 7 行，实际=%d", len(trend))
	}
}

func TestSafeFilename(t *testing.T) {
	tests := map[string]string{
		"Crew A":      "Crew_A",
		"  ":          "team",
		`a/b\c"d`:     "a_b_cd",
		"Night Shift": "Night_Shift",
	}
	for in, want := range tests {
		if got := safeFilename(in); got != want {
			t.Errorf("safeFilename(%q) = %q，期望 %q", in, got, want)
		}
	}
}
