// internal/service/pitch_service.go
package service

import (
    "fmt"
    "log"
    "sync"
    "time"

    "github.com/google/uuid"

    appErrors "github.com/guestlane/guestlane-backend/internal/errors"
    "github.com/guestlane/guestlane-backend/internal/model"
    "github.com/guestlane/guestlane-backend/internal/repository"
)

// PitchService owns the lifecycle of pitch sequences. All status changes go
// through its named transitions; nothing else writes Pitch.Status.
type PitchService struct {
    PitchRepo    repository.PitchRepositoryInterface
    MatchRepo    repository.MatchRepositoryInterface
    CampaignRepo repository.CampaignRepositoryInterface
    ScheduleRepo repository.ScheduleRepositoryInterface
    Generator    ContentGenerator
    Gate         CapabilityGate

    locks lockMap
}

// lockMap serializes work per key (match id for creation, pitch id for
// transitions) so concurrent callers cannot race the same sequence.
type lockMap struct {
    mu    sync.Mutex
    locks map[string]*sync.Mutex
}

func (l *lockMap) lock(key string) func() {
    l.mu.Lock()
    if l.locks == nil {
        l.locks = make(map[string]*sync.Mutex)
    }
    m, ok := l.locks[key]
    if !ok {
        m = &sync.Mutex{}
        l.locks[key] = m
    }
    l.mu.Unlock()

    m.Lock()
    return m.Unlock
}

// entryStatus maps the caller's role to the status a freshly generated pitch
// starts in: admin/staff pitches skip the approval queue, members queue for
// approval, anything else lands as a draft.
func (s *PitchService) entryStatus(role string) string {
    if role == "" {
        return model.StatusDraft
    }
    if s.Gate.IsPrivileged(role) {
        return model.StatusApproved
    }
    return model.StatusPendingApproval
}

// CreateInitial generates and persists the first pitch of a match's sequence.
func (s *PitchService) CreateInitial(matchID, templateID, role string) (*model.Pitch, error) {
    match, err := s.MatchRepo.GetByID(matchID)
    if err != nil {
        return nil, err
    }
    if match == nil {
        return nil, fmt.Errorf("match %s not found", matchID)
    }

    unlock := s.locks.lock("match:" + matchID)
    defer unlock()

    exists, err := s.PitchRepo.ExistsNonFailed(matchID, model.SequenceInitial)
    if err != nil {
        return nil, err
    }
    if exists {
        return nil, appErrors.NewDuplicatePitch(matchID, string(model.SequenceInitial))
    }

    if templateID == "" {
        templateID = "default"
    }
    subject, body, err := s.Generator.Generate(match, templateID)
    if err != nil {
        // nothing persisted on generator failure
        return nil, appErrors.NewGeneratorError(matchID, err)
    }

    p := &model.Pitch{
        ID:           uuid.NewString(),
        MatchID:      matchID,
        CampaignID:   match.CampaignID,
        SequenceType: model.SequenceInitial,
        Status:       s.entryStatus(role),
        TemplateID:   templateID,
        Subject:      subject,
        Body:         body,
    }
    if p.Status == model.StatusApproved {
        now := time.Now().UTC()
        p.ApprovedAt = &now
    }
    if err := s.PitchRepo.Create(p); err != nil {
        return nil, err
    }
    if p.Status == model.StatusApproved {
        s.promote(p)
    }
    return p, nil
}

// CreateFollowUp generates the next follow-up for a match. When no tier is
// requested it is derived from the count of existing non-failed follow-ups,
// so a failed attempt at some tier never blocks regenerating that tier.
func (s *PitchService) CreateFollowUp(matchID string, requestedTier *model.SequenceType, templateOverride, role string) (*model.Pitch, error) {
    match, err := s.MatchRepo.GetByID(matchID)
    if err != nil {
        return nil, err
    }
    if match == nil {
        return nil, fmt.Errorf("match %s not found", matchID)
    }

    unlock := s.locks.lock("match:" + matchID)
    defer unlock()

    hasInitial, err := s.PitchRepo.ExistsNonFailed(matchID, model.SequenceInitial)
    if err != nil {
        return nil, err
    }
    if !hasInitial {
        return nil, appErrors.NewNoInitialPitch(matchID)
    }

    var tier model.SequenceType
    if requestedTier != nil {
        n := model.TierNumber(*requestedTier)
        if n < 1 || n > 4 {
            return nil, fmt.Errorf("%s is not a follow-up tier", *requestedTier)
        }
        tier = *requestedTier
    } else {
        count, err := s.PitchRepo.CountNonFailedFollowUps(matchID)
        if err != nil {
            return nil, err
        }
        if count >= 4 {
            return nil, appErrors.NewSequenceExhausted(matchID)
        }
        tier, _ = model.FollowUpTier(count + 1)
    }

    exists, err := s.PitchRepo.ExistsNonFailed(matchID, tier)
    if err != nil {
        return nil, err
    }
    if exists {
        return nil, appErrors.NewDuplicatePitch(matchID, string(tier))
    }

    // the immediately preceding tier must exist and be non-failed
    prevTier := model.SequenceInitial
    if n := model.TierNumber(tier); n > 1 {
        prevTier, _ = model.FollowUpTier(n - 1)
    }
    parent, err := s.PitchRepo.GetNonFailed(matchID, prevTier)
    if err != nil {
        return nil, err
    }
    if parent == nil {
        return nil, fmt.Errorf("match %s has no non-failed %s pitch to follow", matchID, prevTier)
    }

    templateID := templateOverride
    if templateID == "" {
        templateID = TemplateForTier(tier)
    }
    subject, body, err := s.Generator.Generate(match, templateID)
    if err != nil {
        return nil, appErrors.NewGeneratorError(matchID, err)
    }

    p := &model.Pitch{
        ID:            uuid.NewString(),
        MatchID:       matchID,
        CampaignID:    match.CampaignID,
        SequenceType:  tier,
        ParentPitchID: &parent.ID,
        Status:        s.entryStatus(role),
        TemplateID:    templateID,
        Subject:       subject,
        Body:          body,
    }
    if p.Status == model.StatusApproved {
        now := time.Now().UTC()
        p.ApprovedAt = &now
    }
    if err := s.PitchRepo.Create(p); err != nil {
        return nil, err
    }
    if p.Status == model.StatusApproved {
        s.promote(p)
    }
    return p, nil
}

// Preview runs the generator without persisting anything.
func (s *PitchService) Preview(matchID, templateID string) (subject, body string, err error) {
    match, err := s.MatchRepo.GetByID(matchID)
    if err != nil {
        return "", "", err
    }
    if match == nil {
        return "", "", fmt.Errorf("match %s not found", matchID)
    }
    if templateID == "" {
        templateID = "default"
    }
    subject, body, err = s.Generator.Generate(match, templateID)
    if err != nil {
        return "", "", appErrors.NewGeneratorError(matchID, err)
    }
    return subject, body, nil
}

// Approve moves pending_approval -> approved, then releases the pitch for
// immediate sending when the owning campaign has no Smart Send gating.
func (s *PitchService) Approve(pitchID string) (*model.Pitch, error) {
    unlock := s.locks.lock("pitch:" + pitchID)
    defer unlock()

    p, err := s.PitchRepo.GetByID(pitchID)
    if err != nil {
        return nil, err
    }

    now := time.Now().UTC()
    ok, err := s.PitchRepo.MarkApproved(pitchID, now)
    if err != nil {
        return nil, err
    }
    if !ok {
        return nil, appErrors.NewInvalidTransition(pitchID, p.Status, model.StatusApproved)
    }
    p.Status = model.StatusApproved
    p.ApprovedAt = &now

    s.promote(p)
    return p, nil
}

// promote attempts the approved -> ready_to_send hop. The pitch is already
// persisted, so a failure here is logged and left to the scheduler's next
// tick rather than failing the caller's request.
func (s *PitchService) promote(p *model.Pitch) {
    if err := s.maybeMarkReady(p); err != nil {
        log.Println("⚠️ could not promote pitch", p.ID, "to ready_to_send:", err)
    }
}

// maybeMarkReady promotes an approved pitch straight to ready_to_send when
// its campaign is ungated. Gated pitches wait for the scheduler's next
// in-window tick.
func (s *PitchService) maybeMarkReady(p *model.Pitch) error {
    campaign, err := s.CampaignRepo.GetByID(p.CampaignID)
    if err != nil {
        return err
    }
    cs, err := s.ScheduleRepo.GetCampaignSchedule(p.CampaignID)
    if err != nil {
        return err
    }
    var gs *model.GlobalSchedule
    if campaign.IsPremium() {
        gs, err = s.ScheduleRepo.GetGlobalSchedule()
        if err != nil {
            return err
        }
    }
    if ResolveWindow(campaign, cs, gs) != nil {
        return nil
    }
    ok, err := s.PitchRepo.TransitionStatus(p.ID, model.StatusApproved, model.StatusReadyToSend)
    if err != nil {
        return err
    }
    if ok {
        p.Status = model.StatusReadyToSend
    }
    return nil
}

// MarkReady moves approved -> ready_to_send. Called by the scheduler once a
// gated pitch's window opens.
func (s *PitchService) MarkReady(pitchID string) error {
    unlock := s.locks.lock("pitch:" + pitchID)
    defer unlock()

    ok, err := s.PitchRepo.TransitionStatus(pitchID, model.StatusApproved, model.StatusReadyToSend)
    if err != nil {
        return err
    }
    if !ok {
        p, gerr := s.PitchRepo.GetByID(pitchID)
        if gerr != nil {
            return gerr
        }
        return appErrors.NewInvalidTransition(pitchID, p.Status, model.StatusReadyToSend)
    }
    return nil
}

// MarkSent records a completed provider send. Only valid from ready_to_send,
// after a capacity slot was reserved.
func (s *PitchService) MarkSent(pitchID, providerMessageID string) error {
    unlock := s.locks.lock("pitch:" + pitchID)
    defer unlock()

    ok, err := s.PitchRepo.MarkSent(pitchID, providerMessageID, time.Now().UTC())
    if err != nil {
        return err
    }
    if !ok {
        p, gerr := s.PitchRepo.GetByID(pitchID)
        if gerr != nil {
            return gerr
        }
        return appErrors.NewInvalidTransition(pitchID, p.Status, model.StatusSent)
    }
    return nil
}

// MarkFailed parks a pitch in the failed terminal state. The pitch is kept
// for audit; retrying means creating a fresh pitch with a new id.
func (s *PitchService) MarkFailed(pitchID, reason string) error {
    unlock := s.locks.lock("pitch:" + pitchID)
    defer unlock()

    ok, err := s.PitchRepo.MarkFailed(pitchID, reason)
    if err != nil {
        return err
    }
    if !ok {
        p, gerr := s.PitchRepo.GetByID(pitchID)
        if gerr != nil {
            return gerr
        }
        return appErrors.NewInvalidTransition(pitchID, p.Status, model.StatusFailed)
    }
    return nil
}
