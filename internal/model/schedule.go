// internal/model/schedule.go
package model

// CampaignSchedule is the per-campaign Smart Send window. Times are wall-clock
// "HH:MM" strings, already normalized to UTC when the configuration was saved.
type CampaignSchedule struct {
    CampaignID string `db:"campaign_id" json:"campaign_id"`
    Enabled    bool   `db:"enabled" json:"enabled"`
    Days       []int  `db:"days" json:"days"` // 0=Sunday .. 6=Saturday
    StartTime  string `db:"start_time" json:"start_time"`
    EndTime    string `db:"end_time" json:"end_time"`
}

// GlobalSchedule is the process-wide window applied to premium campaigns.
// It has no enabled flag: when configured it is always active.
type GlobalSchedule struct {
    Days      []int  `db:"days" json:"days"`
    StartTime string `db:"start_time" json:"start_time"`
    EndTime   string `db:"end_time" json:"end_time"`
}
