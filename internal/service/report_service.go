package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"animal-care-clinic/internal/dto"
	"animal-care-clinic/internal/model"
	"animal-care-clinic/internal/repository"
)

var (
	ErrInvalidPeriod  = errors.New("统计周期无效")
	ErrExportGenerate = errors.New("生成报表文件失败")
)

// ReportService 统计报表业务接口
type ReportService interface {
	Monthly(ctx context.Context, req *dto.MonthlyReportRequest) (*dto.MonthlyReportResponse, error)
	// ExportMonthly 月报 Excel，返回文件内容与文件名
	ExportMonthly(ctx context.Context, req *dto.MonthlyReportRequest) (*bytes.Buffer, string, error)
	Dashboard(ctx context.Context) (*dto.DashboardResponse, error)
}

type reportService struct {
	repo   *repository.Repository
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewReportService 创建 ReportService 实例；loc 为诊所时区，决定“当月”与“今天”
func NewReportService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &reportService{repo: repo, loc: loc, now: time.Now, logger: logger}
}

// ────────────────────── Monthly ──────────────────────

func (s *reportService) Monthly(ctx context.Context, req *dto.MonthlyReportRequest) (*dto.MonthlyReportResponse, error) {
	year, month, err := s.period(req)
	if err != nil {
		return nil, err
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	counts, err := s.repo.Report.AppointmentStatusCounts(ctx, from, to)
	if err != nil {
		s.logger.Error("统计预约状态失败", zap.Int("year", year), zap.Int("month", month), zap.Error(err))
		return nil, err
	}
	workloads, err := s.repo.Report.VetWorkloads(ctx, from, to)
	if err != nil {
		s.logger.Error("统计兽医工作量失败", zap.Int("year", year), zap.Int("month", month), zap.Error(err))
		return nil, err
	}

	resp := &dto.MonthlyReportResponse{
		Year:         year,
		Month:        month,
		VetWorkloads: make([]dto.VetWorkloadItem, 0, len(workloads)),
	}
	for _, c := range counts {
		resp.TotalAppointments += c.Count
		switch c.Status {
		case model.AppointmentBooked:
			resp.BookedCount = c.Count
		case model.AppointmentCancelled:
			resp.CancelledCount = c.Count
		case model.AppointmentCompleted:
			resp.CompletedCount = c.Count
		}
	}
	for _, w := range workloads {
		resp.VetWorkloads = append(resp.VetWorkloads, dto.VetWorkloadItem{
			VeterinarianID:   w.VeterinarianID,
			VeterinarianName: w.VeterinarianName,
			VisitCount:       w.VisitCount,
		})
	}
	return resp, nil
}

// ────────────────────── ExportMonthly ──────────────────────

func (s *reportService) ExportMonthly(ctx context.Context, req *dto.MonthlyReportRequest) (*bytes.Buffer, string, error) {
	report, err := s.Monthly(ctx, req)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// Summary
	const summary = "Summary"
	f.SetSheetName("Sheet1", summary)
	f.SetColWidth(summary, "A", "A", 24)
	f.SetColWidth(summary, "B", "B", 14)
	f.SetCellValue(summary, "A1", fmt.Sprintf("%d-%02d 月度报表", report.Year, report.Month))
	f.MergeCell(summary, "A1", "B1")
	f.SetCellStyle(summary, "A1", "B1", headerStyle)
	summaryRows := [][2]interface{}{
		{"预约总数", report.TotalAppointments},
		{"已预约", report.BookedCount},
		{"已取消", report.CancelledCount},
		{"已完成", report.CompletedCount},
	}
	for i, r := range summaryRows {
		f.SetCellValue(summary, cell("A", i+2), r[0])
		f.SetCellValue(summary, cell("B", i+2), r[1])
	}

	// Workload
	const workload = "Workload"
	if _, err := f.NewSheet(workload); err != nil {
		s.logger.Error("创建工作表失败", zap.Error(err))
		return nil, "", ErrExportGenerate
	}
	f.SetColWidth(workload, "A", "A", 10)
	f.SetColWidth(workload, "B", "B", 28)
	f.SetColWidth(workload, "C", "C", 12)
	f.SetCellValue(workload, "A1", "兽医编号")
	f.SetCellValue(workload, "B1", "兽医")
	f.SetCellValue(workload, "C1", "就诊数")
	f.SetCellStyle(workload, "A1", "C1", headerStyle)
	for i, w := range report.VetWorkloads {
		row := i + 2
		f.SetCellValue(workload, cell("A", row), w.VeterinarianID)
		f.SetCellValue(workload, cell("B", row), w.VeterinarianName)
		f.SetCellValue(workload, cell("C", row), w.VisitCount)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerate
	}

	filename := fmt.Sprintf("monthly_report_%d_%02d.xlsx", report.Year, report.Month)
	return buf, filename, nil
}

// ────────────────────── Dashboard ──────────────────────

func (s *reportService) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	counts, err := s.repo.Report.DashboardCounts(ctx)
	if err != nil {
		s.logger.Error("查询首页统计失败", zap.Error(err))
		return nil, err
	}

	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	appts, err := s.repo.Appointment.ListByDate(ctx, today)
	if err != nil {
		s.logger.Error("查询今日预约失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.DashboardResponse{
		TotalAnimals:       counts.Animals,
		TotalOwners:        counts.Owners,
		TotalAppointments:  counts.Appointments,
		AvailableSlots:     counts.AvailableSlots,
		TodaysAppointments: make([]dto.AppointmentResponse, 0, len(appts)),
	}
	for i := range appts {
		resp.TodaysAppointments = append(resp.TodaysAppointments, *toAppointmentResponse(&appts[i]))
	}
	return resp, nil
}

// ── 内部辅助方法 ──

// period 缺省为诊所时区的当月
func (s *reportService) period(req *dto.MonthlyReportRequest) (int, int, error) {
	now := s.now().In(s.loc)
	year, month := req.Year, req.Month
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	if month < 1 || month > 12 || year < 2000 || year > 9999 {
		return 0, 0, ErrInvalidPeriod
	}
	return year, month, nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
