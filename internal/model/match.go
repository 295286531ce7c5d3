// internal/model/match.go
package model

import "time"

// Match is a campaign<->podcast pairing. Matches are owned by the matching
// workflow; the outreach engine only reads them.
type Match struct {
    ID          string    `db:"id" json:"id"`
    CampaignID  string    `db:"campaign_id" json:"campaign_id"`
    PodcastName string    `db:"podcast_name" json:"podcast_name"`
    HostName    string    `db:"host_name" json:"host_name"`
    HostEmail   string    `db:"host_email" json:"host_email"`
    CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
