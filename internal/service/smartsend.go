// internal/service/smartsend.go
package service

import (
    "fmt"
    "strconv"
    "strings"
    "time"

    appErrors "github.com/guestlane/guestlane-backend/internal/errors"
    "github.com/guestlane/guestlane-backend/internal/model"
)

// Window is an effective Smart Send window after resolution: the days and the
// minute-of-day range (inclusive on both ends) during which sending is
// permitted. All values are UTC; conversion from the user's timezone happened
// once, when the configuration was saved.
type Window struct {
    Days        []int
    StartMinute int
    EndMinute   int
}

// ParseWallClock parses an "HH:MM" wall-clock string into a minute of day.
func ParseWallClock(s string) (int, error) {
    parts := strings.SplitN(s, ":", 2)
    if len(parts) != 2 {
        return 0, fmt.Errorf("expected HH:MM, got %q", s)
    }
    h, err := strconv.Atoi(parts[0])
    if err != nil || h < 0 || h > 23 {
        return 0, fmt.Errorf("bad hour in %q", s)
    }
    m, err := strconv.Atoi(parts[1])
    if err != nil || m < 0 || m > 59 {
        return 0, fmt.Errorf("bad minute in %q", s)
    }
    return h*60 + m, nil
}

// ValidateScheduleWindow checks a window configuration at write time. A window
// that wraps midnight (end before start) is rejected here and never persisted.
func ValidateScheduleWindow(days []int, startTime, endTime string) error {
    if len(days) == 0 {
        return appErrors.NewInvalidWindow("days must not be empty")
    }
    for _, d := range days {
        if d < 0 || d > 6 {
            return appErrors.NewInvalidWindow(fmt.Sprintf("day %d out of range 0-6", d))
        }
    }
    start, err := ParseWallClock(startTime)
    if err != nil {
        return appErrors.NewInvalidWindow(err.Error())
    }
    end, err := ParseWallClock(endTime)
    if err != nil {
        return appErrors.NewInvalidWindow(err.Error())
    }
    if end < start {
        return appErrors.NewInvalidWindow("window must not wrap midnight")
    }
    return nil
}

// ValidateCampaignSchedule applies write-time validation to a campaign
// schedule. A disabled schedule is always acceptable.
func ValidateCampaignSchedule(s *model.CampaignSchedule) error {
    if !s.Enabled {
        return nil
    }
    return ValidateScheduleWindow(s.Days, s.StartTime, s.EndTime)
}

// windowFrom assumes the schedule was validated when written.
func windowFrom(days []int, startTime, endTime string) *Window {
    start, err := ParseWallClock(startTime)
    if err != nil {
        return nil
    }
    end, err := ParseWallClock(endTime)
    if err != nil {
        return nil
    }
    return &Window{Days: days, StartMinute: start, EndMinute: end}
}

// ResolveWindow picks the effective window for a campaign. The global
// schedule, when configured, takes precedence for premium campaigns; otherwise
// the campaign's own schedule applies when enabled. A nil result means the
// campaign is ungated and approved pitches go out immediately.
func ResolveWindow(campaign *model.Campaign, cs *model.CampaignSchedule, gs *model.GlobalSchedule) *Window {
    if campaign != nil && campaign.IsPremium() && gs != nil {
        return windowFrom(gs.Days, gs.StartTime, gs.EndTime)
    }
    if cs != nil && cs.Enabled {
        return windowFrom(cs.Days, cs.StartTime, cs.EndTime)
    }
    return nil
}

// IsSendable reports whether sending is permitted at the given instant. It is
// pure and safe to call at arbitrary frequency. A nil window means no gating.
func IsSendable(w *Window, now time.Time) bool {
    if w == nil {
        return true
    }
    utc := now.UTC()
    day := int(utc.Weekday())
    inDay := false
    for _, d := range w.Days {
        if d == day {
            inDay = true
            break
        }
    }
    if !inDay {
        return false
    }
    minute := utc.Hour()*60 + utc.Minute()
    return minute >= w.StartMinute && minute <= w.EndMinute
}
