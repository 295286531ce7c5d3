package repository

import (
    "database/sql"

    appErrors "github.com/guestlane/guestlane-backend/internal/errors"
    "github.com/guestlane/guestlane-backend/internal/model"
)

type CampaignRepositoryInterface interface {
    GetByID(id string) (*model.Campaign, error)
}

type CampaignRepository struct {
    DB *sql.DB
}

func (r *CampaignRepository) GetByID(id string) (*model.Campaign, error) {
    query := `
        SELECT id, name, plan, status, created_at, updated_at
        FROM campaigns WHERE id=$1
    `
    var c model.Campaign
    err := r.DB.QueryRow(query, id).Scan(&c.ID, &c.Name, &c.Plan, &c.Status, &c.CreatedAt, &c.UpdatedAt)
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, appErrors.NewCampaignNotFound(id)
        }
        return nil, err
    }
    return &c, nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
