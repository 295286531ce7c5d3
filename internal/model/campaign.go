// internal/model/campaign.go
package model

import "time"

// Client plans. Premium campaigns are sent under the global Smart Send
// schedule instead of their own.
const (
    PlanFree    = "free"
    PlanBasic   = "basic"
    PlanPremium = "premium"
)

type Campaign struct {
    ID        string     `db:"id" json:"id"`
    Name      string     `db:"name" json:"name"`
    Plan      string     `db:"plan" json:"plan"`
    Status    string     `db:"status" json:"status"`
    CreatedAt time.Time  `db:"created_at" json:"created_at"`
    UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

func (c *Campaign) IsPremium() bool {
    return c.Plan == PlanPremium
}
