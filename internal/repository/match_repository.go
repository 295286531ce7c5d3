package repository

import (
    "database/sql"

    "github.com/guestlane/guestlane-backend/internal/model"
)

// MatchRepositoryInterface defines the read-only view the engine has of
// campaign<->podcast matches.
type MatchRepositoryInterface interface {
    GetByID(id string) (*model.Match, error)
    ListByCampaign(campaignID string, limit int) ([]*model.Match, error)
}

type MatchRepository struct {
    DB *sql.DB
}

func (r *MatchRepository) GetByID(id string) (*model.Match, error) {
    query := `
        SELECT id, campaign_id, podcast_name, host_name, host_email, created_at
        FROM matches WHERE id=$1
    `
    var m model.Match
    err := r.DB.QueryRow(query, id).Scan(&m.ID, &m.CampaignID, &m.PodcastName, &m.HostName, &m.HostEmail, &m.CreatedAt)
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, nil
        }
        return nil, err
    }
    return &m, nil
}

func (r *MatchRepository) ListByCampaign(campaignID string, limit int) ([]*model.Match, error) {
    query := `
        SELECT id, campaign_id, podcast_name, host_name, host_email, created_at
        FROM matches WHERE campaign_id=$1
        ORDER BY created_at ASC LIMIT $2
    `
    rows, err := r.DB.Query(query, campaignID, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    matches := []*model.Match{}
    for rows.Next() {
        m := &model.Match{}
        if err := rows.Scan(&m.ID, &m.CampaignID, &m.PodcastName, &m.HostName, &m.HostEmail, &m.CreatedAt); err != nil {
            return nil, err
        }
        matches = append(matches, m)
    }
    return matches, rows.Err()
}

var _ MatchRepositoryInterface = (*MatchRepository)(nil)
