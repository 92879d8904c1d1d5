package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/krunal16-c/saskhack/internal/dto"
	"github.com/krunal16-c/saskhack/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportTeam 导出团队看板为 Excel，返回内容与建议文件名
	ExportTeam(ctx context.Context, teamID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo      *repository.Repository
	dashboard DashboardService
	clock     clock
	logger    *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, dashboard DashboardService, clk clock, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, dashboard: dashboard, clock: clk, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportTeam 导出团队看板
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "Metrics"：团队汇总指标
//   - Sheet "Workers"：每名员工一行，按最近风险分降序
//   - Sheet "Daily Trend"：近 7 日风险与 PPE 合规趋势

func (s *exportService) ExportTeam(ctx context.Context, teamID string) (*bytes.Buffer, string, error) {
	team, err := s.repo.Team.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrTeamNotFound
		}
		s.logger.Error("查询团队失败", zap.String("team_id", teamID), zap.Error(err))
		return nil, "", err
	}

	board, err := s.dashboard.Team(ctx, teamID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	today := s.clock.Today().Format(time.DateOnly)

	if err := writeMetricsSheet(f, headerStyle, team.Name, today, board.Metrics); err != nil {
		s.logger.Error("写入指标页失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	if err := writeWorkersSheet(f, headerStyle, board.Users); err != nil {
		s.logger.Error("写入员工页失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	if err := writeTrendSheet(f, headerStyle, board.Charts); err != nil {
		s.logger.Error("写入趋势页失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")
	if idx, err := f.GetSheetIndex("Metrics"); err == nil {
		f.SetActiveSheet(idx)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("team_%s_%s.xlsx", safeFilename(team.Name), today)
	s.logger.Info("团队看板已导出", zap.String("team_id", teamID), zap.Int("workers", len(board.Users)))
	return buf, filename, nil
}

func writeMetricsSheet(f *excelize.File, headerStyle int, teamName, today string, m dto.MetricsResponse) error {
	const sheet = "Metrics"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	f.SetColWidth(sheet, "A", "A", 28)
	f.SetColWidth(sheet, "B", "B", 14)

	// 标题行
	f.SetCellValue(sheet, "A1", fmt.Sprintf("%s (%s)", teamName, today))
	f.MergeCell(sheet, "A1", "B1")
	f.SetCellStyle(sheet, "A1", "B1", headerStyle)

	rows := []struct {
		label string
		value int
	}{
		{"Total workers", m.TotalUsers},
		{"Active workers (7d)", m.ActiveUsers},
		{"Forms today", m.TotalFormsToday},
		{"Forms this week", m.TotalFormsThisWeek},
		{"Average risk today", m.AvgRiskToday},
		{"Average risk this week", m.AvgRiskWeek},
		{"High-risk workers", m.HighRiskUsers},
		{"Incidents this month", m.IncidentsThisMonth},
		{"PPE compliance %", m.ComplianceRate},
	}
	for i, r := range rows {
		row := i + 2
		f.SetCellValue(sheet, cell("A", row), r.label)
		f.SetCellValue(sheet, cell("B", row), r.value)
	}
	return nil
}

var workerColumns = []struct {
	title string
	width float64
}{
	{"Name", 20},
	{"Email", 28},
	{"Job title", 18},
	{"Department", 18},
	{"Latest risk", 12},
	{"Risk level", 12},
	{"Avg risk 7d", 12},
	{"Forms this week", 16},
	{"Submitted today", 16},
	{"Avg PPE %", 12},
	{"Forms (30d)", 12},
	{"Incidents (30d)", 16},
}

func writeWorkersSheet(f *excelize.File, headerStyle int, users []dto.WorkerRowResponse) error {
	const sheet = "Workers"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	for i, c := range workerColumns {
		col := colName(i)
		f.SetColWidth(sheet, col, col, c.width)
		f.SetCellValue(sheet, cell(col, 1), c.title)
	}
	f.SetCellStyle(sheet, "A1", cell(colName(len(workerColumns)-1), 1), headerStyle)

	for i, u := range users {
		row := i + 2
		values := []interface{}{
			u.Name,
			u.Email,
			u.JobTitle,
			u.Department,
			u.LatestRiskScore,
			u.RiskLevel,
			u.AvgRisk7d,
			u.FormsThisWeek,
			yesNo(u.HasSubmittedToday),
			u.AvgPPECompliance,
			u.TotalForms,
			u.IncidentsReported,
		}
		for j, v := range values {
			f.SetCellValue(sheet, cell(colName(j), row), v)
		}
	}
	return nil
}

func writeTrendSheet(f *excelize.File, headerStyle int, c dto.ChartsResponse) error {
	const sheet = "Daily Trend"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	f.SetColWidth(sheet, "A", "A", 14)
	f.SetColWidth(sheet, "B", "D", 16)

	f.SetCellValue(sheet, "A1", "Date")
	f.SetCellValue(sheet, "B1", "Avg risk")
	f.SetCellValue(sheet, "C1", "Forms")
	f.SetCellValue(sheet, "D1", "PPE compliance %")
	f.SetCellStyle(sheet, "A1", "D1", headerStyle)

	compliance := make(map[string]int, len(c.PPEComplianceTrend))
	for _, p := range c.PPEComplianceTrend {
		compliance[p.Date] = p.Compliance
	}
	for i, p := range c.DailyRiskTrend {
		row := i + 2
		f.SetCellValue(sheet, cell("A", row), p.Date)
		f.SetCellValue(sheet, cell("B", row), p.AvgRisk)
		f.SetCellValue(sheet, cell("C", row), p.FormCount)
		f.SetCellValue(sheet, cell("D", row), compliance[p.Date])
	}
	return nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// safeFilename 替换文件名中的空白与路径分隔符
func safeFilename(name string) string {
	r := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", "\"", "")
	if out := r.Replace(strings.TrimSpace(name)); out != "" {
		return out
	}
	return "team"
}
