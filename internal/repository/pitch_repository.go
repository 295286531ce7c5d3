package repository

import (
    "database/sql"
    "time"

    appErrors "github.com/guestlane/guestlane-backend/internal/errors"
    "github.com/guestlane/guestlane-backend/internal/model"
)

type PitchRepositoryInterface interface {
    Create(p *model.Pitch) error
    GetByID(id string) (*model.Pitch, error)

    // Sequence queries. "Non-failed" is the load-bearing qualifier: failed
    // pitches stay around for audit but never count toward the sequence.
    ExistsNonFailed(matchID string, tier model.SequenceType) (bool, error)
    GetNonFailed(matchID string, tier model.SequenceType) (*model.Pitch, error)
    CountNonFailedFollowUps(matchID string) (int, error)

    // Guarded transitions. Each updates status only when the row is still in
    // the expected state and reports whether a row was moved, so concurrent
    // writers cannot double-apply a transition.
    TransitionStatus(id, from, to string) (bool, error)
    MarkApproved(id string, at time.Time) (bool, error)
    MarkSent(id, providerMessageID string, at time.Time) (bool, error)
    MarkFailed(id, reason string) (bool, error)

    // Scheduler feeds.
    ListApproved(limit int) ([]*model.Pitch, error)
    ListReadyToSend(limit int) ([]*model.Pitch, error)

    GetCampaignStats(campaignID string) (map[string]int, error)
}

type PitchRepository struct {
    DB *sql.DB
}

func (r *PitchRepository) Create(p *model.Pitch) error {
    p.CreatedAt = time.Now().UTC()
    query := `
        INSERT INTO pitches (id, match_id, campaign_id, sequence_type, parent_pitch_id,
                             status, template_id, subject, body, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
    _, err := r.DB.Exec(query,
        p.ID, p.MatchID, p.CampaignID, p.SequenceType, p.ParentPitchID,
        p.Status, p.TemplateID, p.Subject, p.Body, p.CreatedAt,
    )
    return err
}

func (r *PitchRepository) GetByID(id string) (*model.Pitch, error) {
    query := `
        SELECT id, match_id, campaign_id, sequence_type, parent_pitch_id, status,
               template_id, subject, body, last_error, provider_message_id,
               created_at, approved_at, sent_at
        FROM pitches WHERE id=$1
    `
    var p model.Pitch
    err := r.DB.QueryRow(query, id).Scan(
        &p.ID, &p.MatchID, &p.CampaignID, &p.SequenceType, &p.ParentPitchID, &p.Status,
        &p.TemplateID, &p.Subject, &p.Body, &p.LastError, &p.ProviderMessageID,
        &p.CreatedAt, &p.ApprovedAt, &p.SentAt,
    )
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, appErrors.NewPitchNotFound(id)
        }
        return nil, err
    }
    return &p, nil
}

func (r *PitchRepository) ExistsNonFailed(matchID string, tier model.SequenceType) (bool, error) {
    query := `
        SELECT 1 FROM pitches
        WHERE match_id=$1 AND sequence_type=$2 AND status <> 'failed'
        LIMIT 1
    `
    var tmp int
    err := r.DB.QueryRow(query, matchID, tier).Scan(&tmp)
    if err != nil {
        if err == sql.ErrNoRows {
            return false, nil
        }
        return false, err
    }
    return true, nil
}

func (r *PitchRepository) GetNonFailed(matchID string, tier model.SequenceType) (*model.Pitch, error) {
    query := `
        SELECT id, match_id, campaign_id, sequence_type, parent_pitch_id, status,
               template_id, subject, body, last_error, provider_message_id,
               created_at, approved_at, sent_at
        FROM pitches
        WHERE match_id=$1 AND sequence_type=$2 AND status <> 'failed'
        LIMIT 1
    `
    var p model.Pitch
    err := r.DB.QueryRow(query, matchID, tier).Scan(
        &p.ID, &p.MatchID, &p.CampaignID, &p.SequenceType, &p.ParentPitchID, &p.Status,
        &p.TemplateID, &p.Subject, &p.Body, &p.LastError, &p.ProviderMessageID,
        &p.CreatedAt, &p.ApprovedAt, &p.SentAt,
    )
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, nil
        }
        return nil, err
    }
    return &p, nil
}

func (r *PitchRepository) CountNonFailedFollowUps(matchID string) (int, error) {
    query := `
        SELECT COUNT(*) FROM pitches
        WHERE match_id=$1 AND sequence_type <> 'initial' AND status <> 'failed'
    `
    var count int
    if err := r.DB.QueryRow(query, matchID).Scan(&count); err != nil {
        return 0, err
    }
    return count, nil
}

// TransitionStatus moves a pitch from one status to another only if it is
// still in the expected state. The WHERE guard is what keeps transitions
// single-writer even without an application-level lock.
func (r *PitchRepository) TransitionStatus(id, from, to string) (bool, error) {
    res, err := r.DB.Exec(`UPDATE pitches SET status=$1 WHERE id=$2 AND status=$3`, to, id, from)
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    return n == 1, err
}

func (r *PitchRepository) MarkApproved(id string, at time.Time) (bool, error) {
    res, err := r.DB.Exec(`
        UPDATE pitches SET status='approved', approved_at=$1
        WHERE id=$2 AND status='pending_approval'
    `, at, id)
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    return n == 1, err
}

func (r *PitchRepository) MarkSent(id, providerMessageID string, at time.Time) (bool, error) {
    res, err := r.DB.Exec(`
        UPDATE pitches SET status='sent', sent_at=$1, provider_message_id=$2
        WHERE id=$3 AND status='ready_to_send'
    `, at, providerMessageID, id)
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    return n == 1, err
}

func (r *PitchRepository) MarkFailed(id, reason string) (bool, error) {
    res, err := r.DB.Exec(`
        UPDATE pitches SET status='failed', last_error=$1
        WHERE id=$2 AND status NOT IN ('sent', 'failed')
    `, reason, id)
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    return n == 1, err
}

func (r *PitchRepository) ListApproved(limit int) ([]*model.Pitch, error) {
    return r.listByStatus("approved", limit)
}

func (r *PitchRepository) ListReadyToSend(limit int) ([]*model.Pitch, error) {
    return r.listByStatus("ready_to_send", limit)
}

func (r *PitchRepository) listByStatus(status string, limit int) ([]*model.Pitch, error) {
    query := `
        SELECT id, match_id, campaign_id, sequence_type, parent_pitch_id, status,
               template_id, subject, body, last_error, provider_message_id,
               created_at, approved_at, sent_at
        FROM pitches WHERE status=$1 ORDER BY created_at ASC LIMIT $2
    `
    rows, err := r.DB.Query(query, status, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    pitches := []*model.Pitch{}
    for rows.Next() {
        p := &model.Pitch{}
        if err := rows.Scan(
            &p.ID, &p.MatchID, &p.CampaignID, &p.SequenceType, &p.ParentPitchID, &p.Status,
            &p.TemplateID, &p.Subject, &p.Body, &p.LastError, &p.ProviderMessageID,
            &p.CreatedAt, &p.ApprovedAt, &p.SentAt,
        ); err != nil {
            return nil, err
        }
        pitches = append(pitches, p)
    }
    return pitches, rows.Err()
}

func (r *PitchRepository) GetCampaignStats(campaignID string) (map[string]int, error) {
    query := `SELECT status, COUNT(*) FROM pitches WHERE campaign_id=$1 GROUP BY status`
    rows, err := r.DB.Query(query, campaignID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    stats := map[string]int{
        "draft": 0, "pending_approval": 0, "approved": 0,
        "ready_to_send": 0, "sent": 0, "failed": 0,
    }
    for rows.Next() {
        var status string
        var count int
        if err := rows.Scan(&status, &count); err != nil {
            return nil, err
        }
        stats[status] = count
    }
    return stats, rows.Err()
}

var _ PitchRepositoryInterface = (*PitchRepository)(nil)
