// internal/model/sending_account.go
package model

import "time"

// SendingAccount is a shared outbound mailbox with a daily send quota.
// sends_today is reset to 0 at the start of each UTC day and is only ever
// incremented through the allocator's reservation path.
type SendingAccount struct {
    ID             string    `db:"id" json:"id"`
    Email          string    `db:"email" json:"email"`
    IsActive       bool      `db:"is_active" json:"is_active"`
    DailySendLimit int       `db:"daily_send_limit" json:"daily_send_limit"`
    SendsToday     int       `db:"sends_today" json:"sends_today"`
    CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// HasCapacity reports whether the account can take another send today.
func (a *SendingAccount) HasCapacity() bool {
    return a.IsActive && a.SendsToday < a.DailySendLimit
}

// Utilization is sends_today / daily_send_limit, used for account selection.
func (a *SendingAccount) Utilization() float64 {
    if a.DailySendLimit <= 0 {
        return 1
    }
    return float64(a.SendsToday) / float64(a.DailySendLimit)
}
