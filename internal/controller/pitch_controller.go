// internal/controller/pitch_controller.go
package controller

import (
    "encoding/json"
    "net/http"
    "strconv"

    "github.com/go-chi/chi/v5"

    appErrors "github.com/guestlane/guestlane-backend/internal/errors"
    "github.com/guestlane/guestlane-backend/internal/model"
    "github.com/guestlane/guestlane-backend/internal/repository"
    "github.com/guestlane/guestlane-backend/internal/service"
)

// PitchController exposes the sequencing engine to the UI layer. The caller's
// role and plan arrive via headers; authentication itself lives upstream.
type PitchController struct {
    Pitches   *service.PitchService
    Bulk      *service.BulkOrchestrator
    Dispatch  *service.DispatchService
    PitchRepo repository.PitchRepositoryInterface
    Gate      service.CapabilityGate
}

func writeJSON(w http.ResponseWriter, v interface{}) {
    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
    http.Error(w, err.Error(), appErrors.HTTPStatus(err))
}

// allowAI gates the generation endpoints on the caller's plan.
func (c *PitchController) allowAI(w http.ResponseWriter, r *http.Request) bool {
    if !c.Gate.CanUseAI(r.Header.Get("X-User-Plan")) {
        http.Error(w, "plan does not include AI pitch generation", http.StatusForbidden)
        return false
    }
    return true
}

// GeneratePitch creates the initial pitch for a match.
func (c *PitchController) GeneratePitch(w http.ResponseWriter, r *http.Request) {
    if !c.allowAI(w, r) {
        return
    }
    var body struct {
        MatchID    string `json:"match_id"`
        TemplateID string `json:"template_id"`
    }
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        http.Error(w, "invalid body", http.StatusBadRequest)
        return
    }

    pitch, err := c.Pitches.CreateInitial(body.MatchID, body.TemplateID, r.Header.Get("X-User-Role"))
    if err != nil {
        writeError(w, err)
        return
    }

    writeJSON(w, map[string]interface{}{
        "pitch_id":      pitch.ID,
        "status":        pitch.Status,
        "sequence_type": pitch.SequenceType,
    })
}

// PreviewTemplate renders a template fill without creating a pitch.
func (c *PitchController) PreviewTemplate(w http.ResponseWriter, r *http.Request) {
    if !c.allowAI(w, r) {
        return
    }
    var body struct {
        MatchID    string `json:"match_id"`
        TemplateID string `json:"template_id"`
    }
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        http.Error(w, "invalid body", http.StatusBadRequest)
        return
    }

    subject, pitchBody, err := c.Pitches.Preview(body.MatchID, body.TemplateID)
    if err != nil {
        writeError(w, err)
        return
    }

    writeJSON(w, map[string]interface{}{
        "subject": subject,
        "body":    pitchBody,
    })
}

// GenerateFollowUp creates the next follow-up for a match; the tier is
// computed server-side from the persisted sequence.
func (c *PitchController) GenerateFollowUp(w http.ResponseWriter, r *http.Request) {
    if !c.allowAI(w, r) {
        return
    }
    matchID := chi.URLParam(r, "id")

    var body struct {
        TemplateID   string  `json:"template_id"`
        SequenceType *string `json:"sequence_type"`
    }
    // body is optional for this endpoint
    _ = json.NewDecoder(r.Body).Decode(&body)

    var requestedTier *model.SequenceType
    if body.SequenceType != nil {
        tier := model.SequenceType(*body.SequenceType)
        requestedTier = &tier
    }

    pitch, err := c.Pitches.CreateFollowUp(matchID, requestedTier, body.TemplateID, r.Header.Get("X-User-Role"))
    if err != nil {
        writeError(w, err)
        return
    }

    writeJSON(w, map[string]interface{}{
        "pitch_id":      pitch.ID,
        "status":        pitch.Status,
        "sequence_type": pitch.SequenceType,
        "template_id":   pitch.TemplateID,
    })
}

// BulkGenerate creates initial pitches for many matches at once.
func (c *PitchController) BulkGenerate(w http.ResponseWriter, r *http.Request) {
    if !c.allowAI(w, r) {
        return
    }
    var body struct {
        MatchIDs   []string `json:"match_ids"`
        TemplateID string   `json:"template_id"`
    }
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        http.Error(w, "invalid body", http.StatusBadRequest)
        return
    }

    result := c.Bulk.BulkGenerate(body.MatchIDs, body.TemplateID, r.Header.Get("X-User-Role"))
    writeJSON(w, result)
}

// BulkApprove approves many pitches with per-item outcomes.
func (c *PitchController) BulkApprove(w http.ResponseWriter, r *http.Request) {
    var body struct {
        PitchIDs []string `json:"pitch_ids"`
        Notes    string   `json:"notes"`
    }
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        http.Error(w, "invalid body", http.StatusBadRequest)
        return
    }

    result := c.Bulk.BulkApprove(body.PitchIDs, body.Notes)
    writeJSON(w, result)
}

// BulkGenerateFollowUps advances a campaign's matches that sit at the filter
// tier to their next follow-up.
func (c *PitchController) BulkGenerateFollowUps(w http.ResponseWriter, r *http.Request) {
    if !c.allowAI(w, r) {
        return
    }
    campaignID := chi.URLParam(r, "id")

    filter := model.SequenceType(r.URL.Query().Get("pitch_type_filter"))
    if model.TierNumber(filter) < 0 {
        http.Error(w, "invalid pitch_type_filter", http.StatusBadRequest)
        return
    }
    limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

    result, err := c.Bulk.BulkGenerateFollowUps(campaignID, filter, limit, r.Header.Get("X-User-Role"))
    if err != nil {
        writeError(w, err)
        return
    }
    writeJSON(w, result)
}

// SendPitch dispatches a single ready pitch through the provider.
func (c *PitchController) SendPitch(w http.ResponseWriter, r *http.Request) {
    pitchID := chi.URLParam(r, "id")

    var body struct {
        RecipientEmail string `json:"recipient_email"`
    }
    // body is optional for this endpoint
    _ = json.NewDecoder(r.Body).Decode(&body)

    providerMessageID, err := c.Dispatch.SendPitch(pitchID, body.RecipientEmail)
    if err != nil {
        writeError(w, err)
        return
    }

    writeJSON(w, map[string]interface{}{
        "pitch_id":            pitchID,
        "provider_message_id": providerMessageID,
    })
}

// SendBatch dispatches many ready pitches with per-item outcomes.
func (c *PitchController) SendBatch(w http.ResponseWriter, r *http.Request) {
    var body struct {
        PitchGenIDs []string `json:"pitch_gen_ids"`
    }
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        http.Error(w, "invalid body", http.StatusBadRequest)
        return
    }

    outcomes := c.Dispatch.SendBatch(body.PitchGenIDs)
    writeJSON(w, map[string]interface{}{
        "results": outcomes,
    })
}

// CampaignStats returns per-status pitch counts for a campaign.
func (c *PitchController) CampaignStats(w http.ResponseWriter, r *http.Request) {
    campaignID := chi.URLParam(r, "id")

    stats, err := c.PitchRepo.GetCampaignStats(campaignID)
    if err != nil {
        writeError(w, err)
        return
    }

    writeJSON(w, map[string]interface{}{
        "campaign_id": campaignID,
        "stats":       stats,
    })
}
