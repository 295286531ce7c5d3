// internal/service/dispatch_service.go
package service

import (
    "log"
    "sync"

    appErrors "github.com/guestlane/guestlane-backend/internal/errors"
    "github.com/guestlane/guestlane-backend/internal/model"
    "github.com/guestlane/guestlane-backend/internal/repository"
)

// DispatchService performs the actual provider send for ready pitches:
// reserve a capacity slot, send, record the outcome. A reservation is spent
// the moment it is granted; a provider failure marks the pitch failed without
// refunding the slot.
type DispatchService struct {
    Pitches   *PitchService
    PitchRepo repository.PitchRepositoryInterface
    MatchRepo repository.MatchRepositoryInterface
    Allocator *Allocator
    Sender    EmailSender

    Concurrency int
}

// SendOutcome is the per-item result of a batch dispatch.
type SendOutcome struct {
    PitchID           string `json:"pitch_id"`
    ProviderMessageID string `json:"provider_message_id,omitempty"`
    Error             string `json:"error,omitempty"`
}

// SendPitch dispatches one ready_to_send pitch. recipientOverride, when
// non-empty, replaces the match's host email.
func (d *DispatchService) SendPitch(pitchID, recipientOverride string) (string, error) {
    p, err := d.PitchRepo.GetByID(pitchID)
    if err != nil {
        return "", err
    }
    if p.Status != model.StatusReadyToSend {
        return "", appErrors.NewInvalidTransition(pitchID, p.Status, model.StatusSent)
    }

    recipient := recipientOverride
    if recipient == "" {
        match, err := d.MatchRepo.GetByID(p.MatchID)
        if err != nil {
            return "", err
        }
        if match == nil {
            return "", appErrors.NewPitchNotFound(pitchID)
        }
        recipient = match.HostEmail
    }

    res, err := d.Allocator.Acquire()
    if err != nil {
        // capacity errors are retryable on the scheduler's next tick
        return "", err
    }

    providerMessageID, err := d.Sender.Send(res.AccountID, recipient, p.Subject, p.Body)
    if err != nil {
        // slot stays consumed: the attempt cost us quota either way
        if ferr := d.Pitches.MarkFailed(pitchID, err.Error()); ferr != nil {
            log.Println("⚠️ failed to mark pitch failed:", ferr)
        }
        return "", appErrors.NewProviderError(pitchID, err)
    }

    if err := d.Pitches.MarkSent(pitchID, providerMessageID); err != nil {
        return providerMessageID, err
    }
    return providerMessageID, nil
}

// SendBatch dispatches many ready pitches with per-item outcomes; one pitch's
// failure never stops the rest.
func (d *DispatchService) SendBatch(pitchIDs []string) []SendOutcome {
    n := d.Concurrency
    if n <= 0 {
        n = defaultBulkConcurrency
    }

    outcomes := make([]SendOutcome, len(pitchIDs))
    sem := make(chan struct{}, n)
    var wg sync.WaitGroup
    for i := range pitchIDs {
        wg.Add(1)
        sem <- struct{}{}
        go func(i int) {
            defer wg.Done()
            defer func() { <-sem }()

            id := pitchIDs[i]
            msgID, err := d.SendPitch(id, "")
            if err != nil {
                outcomes[i] = SendOutcome{PitchID: id, Error: err.Error()}
                return
            }
            outcomes[i] = SendOutcome{PitchID: id, ProviderMessageID: msgID}
        }(i)
    }
    wg.Wait()
    return outcomes
}
