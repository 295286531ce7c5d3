package repository

import (
    "database/sql"

    "github.com/guestlane/guestlane-backend/internal/model"
)

type AccountRepositoryInterface interface {
    ListActive() ([]*model.SendingAccount, error)
    ReserveSlot(accountID string) (bool, error)
    ResetDailyCounters(day string) error
}

type AccountRepository struct {
    DB *sql.DB
}

func (r *AccountRepository) ListActive() ([]*model.SendingAccount, error) {
    query := `
        SELECT id, email, is_active, daily_send_limit, sends_today, created_at
        FROM sending_accounts
        WHERE is_active = TRUE
        ORDER BY id ASC
    `
    rows, err := r.DB.Query(query)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    accounts := []*model.SendingAccount{}
    for rows.Next() {
        a := &model.SendingAccount{}
        if err := rows.Scan(&a.ID, &a.Email, &a.IsActive, &a.DailySendLimit, &a.SendsToday, &a.CreatedAt); err != nil {
            return nil, err
        }
        accounts = append(accounts, a)
    }
    return accounts, rows.Err()
}

// ReserveSlot consumes one send slot for the account. The capacity check and
// the increment happen in a single UPDATE, so two concurrent callers can never
// both take the last slot: exactly one sees an affected row.
func (r *AccountRepository) ReserveSlot(accountID string) (bool, error) {
    res, err := r.DB.Exec(`
        UPDATE sending_accounts
        SET sends_today = sends_today + 1
        WHERE id = $1 AND is_active = TRUE AND sends_today < daily_send_limit
    `, accountID)
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    return n == 1, err
}

// ResetDailyCounters zeroes sends_today for every account not yet stamped
// with the given UTC day. The day guard lives in the row itself, so a
// scheduler restarted after midnight still clears the previous day's counters
// and repeated calls within one day are no-ops.
func (r *AccountRepository) ResetDailyCounters(day string) error {
    _, err := r.DB.Exec(`
        UPDATE sending_accounts
        SET sends_today = 0, last_reset_day = $1
        WHERE last_reset_day IS NULL OR last_reset_day <> $1
    `, day)
    return err
}

var _ AccountRepositoryInterface = (*AccountRepository)(nil)
