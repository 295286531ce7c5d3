// internal/model/pitch.go
package model

import "time"

// SequenceType is the position of a pitch in its follow-up chain.
type SequenceType string

const (
    SequenceInitial   SequenceType = "initial"
    SequenceFollowUp1 SequenceType = "follow_up_1"
    SequenceFollowUp2 SequenceType = "follow_up_2"
    SequenceFollowUp3 SequenceType = "follow_up_3"
    SequenceFollowUp4 SequenceType = "follow_up_4" // terminal tier, no auto-escalation past this
)

// FollowUpTier returns the follow-up sequence type for tier n (1-4).
func FollowUpTier(n int) (SequenceType, bool) {
    switch n {
    case 1:
        return SequenceFollowUp1, true
    case 2:
        return SequenceFollowUp2, true
    case 3:
        return SequenceFollowUp3, true
    case 4:
        return SequenceFollowUp4, true
    }
    return "", false
}

// TierNumber returns 0 for initial, 1-4 for follow-ups, -1 for unknown values.
func TierNumber(s SequenceType) int {
    switch s {
    case SequenceInitial:
        return 0
    case SequenceFollowUp1:
        return 1
    case SequenceFollowUp2:
        return 2
    case SequenceFollowUp3:
        return 3
    case SequenceFollowUp4:
        return 4
    }
    return -1
}

// Pitch statuses. A pitch only ever moves through named transitions,
// never by direct status assignment.
const (
    StatusDraft           = "draft"
    StatusPendingApproval = "pending_approval"
    StatusApproved        = "approved"
    StatusReadyToSend     = "ready_to_send"
    StatusSent            = "sent"
    StatusFailed          = "failed"
)

type Pitch struct {
    ID                string       `db:"id" json:"id"`
    MatchID           string       `db:"match_id" json:"match_id"`
    CampaignID        string       `db:"campaign_id" json:"campaign_id"`
    SequenceType      SequenceType `db:"sequence_type" json:"sequence_type"`
    ParentPitchID     *string      `db:"parent_pitch_id" json:"parent_pitch_id,omitempty"`
    Status            string       `db:"status" json:"status"`
    TemplateID        string       `db:"template_id" json:"template_id"`
    Subject           string       `db:"subject" json:"subject"`
    Body              string       `db:"body" json:"body"`
    LastError         string       `db:"last_error,omitempty" json:"last_error,omitempty"`
    ProviderMessageID string       `db:"provider_message_id,omitempty" json:"provider_message_id,omitempty"`
    CreatedAt         time.Time    `db:"created_at" json:"created_at"`
    ApprovedAt        *time.Time   `db:"approved_at" json:"approved_at,omitempty"`
    SentAt            *time.Time   `db:"sent_at" json:"sent_at,omitempty"`
}
