package repository

import (
    "database/sql"

    "github.com/lib/pq"

    "github.com/guestlane/guestlane-backend/internal/model"
)

type ScheduleRepositoryInterface interface {
    GetCampaignSchedule(campaignID string) (*model.CampaignSchedule, error)
    UpsertCampaignSchedule(s *model.CampaignSchedule) error
    GetGlobalSchedule() (*model.GlobalSchedule, error)
    UpsertGlobalSchedule(s *model.GlobalSchedule) error
}

type ScheduleRepository struct {
    DB *sql.DB
}

func (r *ScheduleRepository) GetCampaignSchedule(campaignID string) (*model.CampaignSchedule, error) {
    query := `
        SELECT campaign_id, enabled, days, start_time, end_time
        FROM campaign_schedules WHERE campaign_id=$1
    `
    var s model.CampaignSchedule
    var days pq.Int64Array
    err := r.DB.QueryRow(query, campaignID).Scan(&s.CampaignID, &s.Enabled, &days, &s.StartTime, &s.EndTime)
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, nil
        }
        return nil, err
    }
    s.Days = int64sToInts(days)
    return &s, nil
}

func (r *ScheduleRepository) UpsertCampaignSchedule(s *model.CampaignSchedule) error {
    query := `
        INSERT INTO campaign_schedules (campaign_id, enabled, days, start_time, end_time)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (campaign_id) DO UPDATE
        SET enabled=EXCLUDED.enabled, days=EXCLUDED.days,
            start_time=EXCLUDED.start_time, end_time=EXCLUDED.end_time
    `
    _, err := r.DB.Exec(query, s.CampaignID, s.Enabled, intsToInt64s(s.Days), s.StartTime, s.EndTime)
    return err
}

// The global schedule is a single row keyed by id=1.
func (r *ScheduleRepository) GetGlobalSchedule() (*model.GlobalSchedule, error) {
    query := `SELECT days, start_time, end_time FROM global_schedule WHERE id=1`
    var s model.GlobalSchedule
    var days pq.Int64Array
    err := r.DB.QueryRow(query).Scan(&days, &s.StartTime, &s.EndTime)
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, nil
        }
        return nil, err
    }
    s.Days = int64sToInts(days)
    return &s, nil
}

func (r *ScheduleRepository) UpsertGlobalSchedule(s *model.GlobalSchedule) error {
    query := `
        INSERT INTO global_schedule (id, days, start_time, end_time)
        VALUES (1, $1, $2, $3)
        ON CONFLICT (id) DO UPDATE
        SET days=EXCLUDED.days, start_time=EXCLUDED.start_time, end_time=EXCLUDED.end_time
    `
    _, err := r.DB.Exec(query, intsToInt64s(s.Days), s.StartTime, s.EndTime)
    return err
}

func int64sToInts(in pq.Int64Array) []int {
    out := make([]int, len(in))
    for i, v := range in {
        out[i] = int(v)
    }
    return out
}

func intsToInt64s(in []int) pq.Int64Array {
    out := make(pq.Int64Array, len(in))
    for i, v := range in {
        out[i] = int64(v)
    }
    return out
}

var _ ScheduleRepositoryInterface = (*ScheduleRepository)(nil)
