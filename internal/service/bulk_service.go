// internal/service/bulk_service.go
package service

import (
    "log"
    "sync"

    "github.com/guestlane/guestlane-backend/internal/model"
    "github.com/guestlane/guestlane-backend/internal/queue"
    "github.com/guestlane/guestlane-backend/internal/repository"
)

// BulkItemError carries the per-item error detail of a failed bulk item.
type BulkItemError struct {
    ID    string `json:"id"`
    Error string `json:"error"`
}

// BulkItemSkip explains why an item was not applicable. Skipped is not an
// error: callers retrying a batch rely on the distinction.
type BulkItemSkip struct {
    ID     string `json:"id"`
    Reason string `json:"reason"`
}

// BulkOperationResult aggregates per-item outcomes of one batch. Every input
// item lands in exactly one of the three buckets.
type BulkOperationResult struct {
    Total      int             `json:"total"`
    Successful []string        `json:"successful_ids"`
    Failed     []BulkItemError `json:"failed_ids"`
    Skipped    []BulkItemSkip  `json:"skipped_ids"`
}

// BulkOrchestrator fans bulk operations out over a bounded worker pool. One
// item's failure never aborts the batch; outcomes are reported per item and
// assembled in input order.
type BulkOrchestrator struct {
    Pitches   *PitchService
    PitchRepo repository.PitchRepositoryInterface
    MatchRepo repository.MatchRepositoryInterface
    Queue     queue.Queue

    // Concurrency bounds in-flight calls to the generator and provider.
    Concurrency int
}

const defaultBulkConcurrency = 5

type itemOutcome struct {
    id         string
    err        error
    skipReason string
}

// BulkGenerate creates an initial pitch for every match in the batch.
func (b *BulkOrchestrator) BulkGenerate(matchIDs []string, templateID, role string) *BulkOperationResult {
    outcomes := make([]itemOutcome, len(matchIDs))
    b.runPool(len(matchIDs), func(i int) {
        matchID := matchIDs[i]
        p, err := b.Pitches.CreateInitial(matchID, templateID, role)
        if err != nil {
            outcomes[i] = itemOutcome{id: matchID, err: err}
            return
        }
        outcomes[i] = itemOutcome{id: p.ID}
    })
    return b.finish("bulk_generate", outcomes)
}

// BulkApprove approves every pitch in the batch. Items already past
// pending_approval are reported as failed with the transition error so the
// caller can tell "already done" from "succeeded".
func (b *BulkOrchestrator) BulkApprove(pitchIDs []string, notes string) *BulkOperationResult {
    if notes != "" {
        log.Println("📝 bulk approve notes:", notes)
    }
    outcomes := make([]itemOutcome, len(pitchIDs))
    b.runPool(len(pitchIDs), func(i int) {
        id := pitchIDs[i]
        if _, err := b.Pitches.Approve(id); err != nil {
            outcomes[i] = itemOutcome{id: id, err: err}
            return
        }
        outcomes[i] = itemOutcome{id: id}
    })
    return b.finish("bulk_approve", outcomes)
}

// BulkGenerateFollowUps creates the next-tier follow-up for up to limit
// matches of a campaign whose sequence currently sits at sourceTier. Matches
// not at that tier are skipped, not failed; matches that already advanced are
// skipped with "already has follow-up", which makes re-running the batch
// affect only previously failed or skipped matches.
func (b *BulkOrchestrator) BulkGenerateFollowUps(campaignID string, sourceTier model.SequenceType, limit int, role string) (*BulkOperationResult, error) {
    if limit <= 0 {
        limit = 50
    }
    matches, err := b.MatchRepo.ListByCampaign(campaignID, limit)
    if err != nil {
        return nil, err
    }

    nextNum := model.TierNumber(sourceTier) + 1
    nextTier, hasNext := model.FollowUpTier(nextNum)

    outcomes := make([]itemOutcome, len(matches))
    b.runPool(len(matches), func(i int) {
        m := matches[i]
        atTier, err := b.PitchRepo.ExistsNonFailed(m.ID, sourceTier)
        if err != nil {
            outcomes[i] = itemOutcome{id: m.ID, err: err}
            return
        }
        if !atTier {
            outcomes[i] = itemOutcome{id: m.ID, skipReason: "no pitch at tier " + string(sourceTier)}
            return
        }
        if !hasNext {
            outcomes[i] = itemOutcome{id: m.ID, skipReason: "sequence already at terminal tier"}
            return
        }
        advanced, err := b.PitchRepo.ExistsNonFailed(m.ID, nextTier)
        if err != nil {
            outcomes[i] = itemOutcome{id: m.ID, err: err}
            return
        }
        if advanced {
            outcomes[i] = itemOutcome{id: m.ID, skipReason: "already has follow-up"}
            return
        }
        tier := nextTier
        p, err := b.Pitches.CreateFollowUp(m.ID, &tier, "", role)
        if err != nil {
            outcomes[i] = itemOutcome{id: m.ID, err: err}
            return
        }
        outcomes[i] = itemOutcome{id: p.ID}
    })
    return b.finish("bulk_generate_followups", outcomes), nil
}

func (b *BulkOrchestrator) runPool(total int, work func(i int)) {
    n := b.Concurrency
    if n <= 0 {
        n = defaultBulkConcurrency
    }
    sem := make(chan struct{}, n)
    var wg sync.WaitGroup
    for i := 0; i < total; i++ {
        wg.Add(1)
        sem <- struct{}{}
        go func(i int) {
            defer wg.Done()
            defer func() { <-sem }()
            work(i)
        }(i)
    }
    wg.Wait()
}

// finish assembles the aggregate in input order and publishes one batch event
// for downstream read-models, replacing per-call-site cache busting.
func (b *BulkOrchestrator) finish(kind string, outcomes []itemOutcome) *BulkOperationResult {
    result := &BulkOperationResult{
        Total:      len(outcomes),
        Successful: []string{},
        Failed:     []BulkItemError{},
        Skipped:    []BulkItemSkip{},
    }
    for _, o := range outcomes {
        switch {
        case o.err != nil:
            result.Failed = append(result.Failed, BulkItemError{ID: o.id, Error: o.err.Error()})
        case o.skipReason != "":
            result.Skipped = append(result.Skipped, BulkItemSkip{ID: o.id, Reason: o.skipReason})
        default:
            result.Successful = append(result.Successful, o.id)
        }
    }

    if b.Queue != nil {
        event := queue.PitchBatchCompleted{Kind: kind, IDs: result.Successful}
        if err := b.Queue.Publish(queue.TopicPitchBatches, event); err != nil {
            log.Println("⚠️ failed to publish batch event:", err)
        }
    }
    return result
}
