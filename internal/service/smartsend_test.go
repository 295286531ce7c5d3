package service_test

import (
	"errors"
	"testing"
	"time"

	appErrors "github.com/guestlane/guestlane-backend/internal/errors"
	"github.com/guestlane/guestlane-backend/internal/model"
	"github.com/guestlane/guestlane-backend/internal/service"
)

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("bad timestamp %s: %v", value, err)
	}
	return ts
}

func TestIsSendableWeekdayWindow(t *testing.T) {
	window := &service.Window{
		Days:        []int{1, 2, 3, 4, 5}, // Mon-Fri
		StartMinute: 9 * 60,
		EndMinute:   17 * 60,
	}

	cases := []struct {
		name string
		now  string
		want bool
	}{
		{"wednesday noon", "2024-01-03T12:00:00Z", true},
		{"saturday noon", "2024-01-06T12:00:00Z", false},
		{"wednesday before window", "2024-01-03T08:00:00Z", false},
		{"wednesday at open", "2024-01-03T09:00:00Z", true},
		{"wednesday at close", "2024-01-03T17:00:00Z", true},
		{"wednesday after close", "2024-01-03T17:01:00Z", false},
	}
	for _, tc := range cases {
		got := service.IsSendable(window, mustParse(t, tc.now))
		if got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestIsSendableNilWindowAlwaysTrue(t *testing.T) {
	if !service.IsSendable(nil, mustParse(t, "2024-01-06T03:00:00Z")) {
		t.Errorf("nil window must not gate sending")
	}
}

func TestValidateScheduleWindowRejectsMidnightWrap(t *testing.T) {
	err := service.ValidateScheduleWindow([]int{1, 2}, "22:00", "06:00")
	var invalid *appErrors.ErrInvalidWindow
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidWindow, got %v", err)
	}
}

func TestValidateScheduleWindowRejectsBadInput(t *testing.T) {
	cases := []struct {
		name       string
		days       []int
		start, end string
	}{
		{"empty days", []int{}, "09:00", "17:00"},
		{"day out of range", []int{7}, "09:00", "17:00"},
		{"bad start time", []int{1}, "9am", "17:00"},
		{"bad end time", []int{1}, "09:00", "25:00"},
	}
	for _, tc := range cases {
		err := service.ValidateScheduleWindow(tc.days, tc.start, tc.end)
		var invalid *appErrors.ErrInvalidWindow
		if !errors.As(err, &invalid) {
			t.Errorf("%s: expected InvalidWindow, got %v", tc.name, err)
		}
	}
}

func TestValidateCampaignScheduleDisabledIsAlwaysValid(t *testing.T) {
	s := &model.CampaignSchedule{CampaignID: "camp-1", Enabled: false}
	if err := service.ValidateCampaignSchedule(s); err != nil {
		t.Errorf("disabled schedule should not be validated, got %v", err)
	}
}

func TestResolveWindowGlobalOverridesForPremium(t *testing.T) {
	premium := &model.Campaign{ID: "camp-1", Plan: model.PlanPremium}
	basic := &model.Campaign{ID: "camp-2", Plan: model.PlanBasic}
	cs := &model.CampaignSchedule{Enabled: true, Days: []int{1}, StartTime: "08:00", EndTime: "12:00"}
	gs := &model.GlobalSchedule{Days: []int{2}, StartTime: "10:00", EndTime: "14:00"}

	w := service.ResolveWindow(premium, cs, gs)
	if w == nil || w.StartMinute != 10*60 {
		t.Fatalf("premium campaign should use the global window, got %+v", w)
	}

	w = service.ResolveWindow(basic, cs, gs)
	if w == nil || w.StartMinute != 8*60 {
		t.Fatalf("basic campaign should use its own window, got %+v", w)
	}
}

func TestResolveWindowUngated(t *testing.T) {
	basic := &model.Campaign{ID: "camp-2", Plan: model.PlanBasic}
	disabled := &model.CampaignSchedule{Enabled: false, Days: []int{1}, StartTime: "08:00", EndTime: "12:00"}

	if w := service.ResolveWindow(basic, disabled, nil); w != nil {
		t.Errorf("disabled schedule should leave the campaign ungated, got %+v", w)
	}
	if w := service.ResolveWindow(basic, nil, nil); w != nil {
		t.Errorf("missing schedule should leave the campaign ungated, got %+v", w)
	}
}
