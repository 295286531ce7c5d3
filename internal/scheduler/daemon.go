// internal/scheduler/daemon.go
package scheduler

import (
    "log"
    "time"

    "github.com/guestlane/guestlane-backend/internal/model"
    "github.com/guestlane/guestlane-backend/internal/repository"
    "github.com/guestlane/guestlane-backend/internal/service"
)

// SendPublisher hands ready pitches to the dispatch pipeline.
type SendPublisher interface {
    PublishSend(pitchID string) error
}

// Daemon is the single periodic background task of the engine. Each tick it
// resets daily counters on UTC day rollover, promotes approved pitches whose
// Smart Send window is open, and queues open-window ready pitches for
// dispatch. It holds no state machine logic of its own.
type Daemon struct {
    PitchRepo    repository.PitchRepositoryInterface
    CampaignRepo repository.CampaignRepositoryInterface
    ScheduleRepo repository.ScheduleRepositoryInterface
    AccountRepo  repository.AccountRepositoryInterface
    Pitches      *service.PitchService
    Publisher    SendPublisher

    Interval  time.Duration // default 60s
    BatchSize int           // default 100
    Now       func() time.Time

    lastResetDay string
}

func (d *Daemon) interval() time.Duration {
    if d.Interval > 0 {
        return d.Interval
    }
    return 60 * time.Second
}

func (d *Daemon) batchSize() int {
    if d.BatchSize > 0 {
        return d.BatchSize
    }
    return 100
}

func (d *Daemon) now() time.Time {
    if d.Now != nil {
        return d.Now()
    }
    return time.Now()
}

// Run ticks until stop is closed.
func (d *Daemon) Run(stop <-chan struct{}) {
    ticker := time.NewTicker(d.interval())
    defer ticker.Stop()

    d.Tick()
    for {
        select {
        case <-stop:
            return
        case <-ticker.C:
            d.Tick()
        }
    }
}

// Tick runs one scheduling pass. Errors on individual pitches are logged and
// left for the next tick; a tick never aborts part-way because of one item.
func (d *Daemon) Tick() {
    now := d.now().UTC()

    d.maybeResetCounters(now)
    windows := newWindowCache(d.CampaignRepo, d.ScheduleRepo)
    d.promoteApproved(now, windows)
    d.dispatchReady(now, windows)
}

// maybeResetCounters zeroes account counters once per UTC day. The repository
// stamps each row with the reset day, so the first tick after a restart also
// clears counters left over from a previous day; lastResetDay only spares the
// database a no-op UPDATE on every later tick.
func (d *Daemon) maybeResetCounters(now time.Time) {
    day := now.Format("2006-01-02")
    if day == d.lastResetDay {
        return
    }
    if err := d.AccountRepo.ResetDailyCounters(day); err != nil {
        log.Println("⚠️ failed to reset daily send counters:", err)
        return
    }
    log.Println("✅ daily send counters reset for", day)
    d.lastResetDay = day
}

func (d *Daemon) promoteApproved(now time.Time, windows *windowCache) {
    approved, err := d.PitchRepo.ListApproved(d.batchSize())
    if err != nil {
        log.Println("⚠️ failed to list approved pitches:", err)
        return
    }
    for _, p := range approved {
        w, err := windows.forCampaign(p.CampaignID)
        if err != nil {
            log.Println("⚠️ failed to resolve window for campaign", p.CampaignID, ":", err)
            continue
        }
        if !service.IsSendable(w, now) {
            continue
        }
        if err := d.Pitches.MarkReady(p.ID); err != nil {
            log.Println("⚠️ failed to mark pitch ready:", err)
        }
    }
}

func (d *Daemon) dispatchReady(now time.Time, windows *windowCache) {
    if !d.poolHasCapacity() {
        // retryable-later: the next tick re-attempts
        log.Println("⏳ sending pool exhausted, deferring dispatch")
        return
    }

    ready, err := d.PitchRepo.ListReadyToSend(d.batchSize())
    if err != nil {
        log.Println("⚠️ failed to list ready pitches:", err)
        return
    }
    for _, p := range ready {
        w, err := windows.forCampaign(p.CampaignID)
        if err != nil {
            log.Println("⚠️ failed to resolve window for campaign", p.CampaignID, ":", err)
            continue
        }
        if !service.IsSendable(w, now) {
            continue
        }
        if err := d.Publisher.PublishSend(p.ID); err != nil {
            log.Println("⚠️ failed to queue pitch", p.ID, "for dispatch:", err)
        }
    }
}

func (d *Daemon) poolHasCapacity() bool {
    accounts, err := d.AccountRepo.ListActive()
    if err != nil {
        log.Println("⚠️ failed to list sending accounts:", err)
        return false
    }
    for _, a := range accounts {
        if a.HasCapacity() {
            return true
        }
    }
    return false
}

// windowCache resolves each campaign's effective window once per tick.
type windowCache struct {
    campaigns repository.CampaignRepositoryInterface
    schedules repository.ScheduleRepositoryInterface

    global       *model.GlobalSchedule
    globalLoaded bool
    resolved     map[string]*service.Window
}

func newWindowCache(c repository.CampaignRepositoryInterface, s repository.ScheduleRepositoryInterface) *windowCache {
    return &windowCache{campaigns: c, schedules: s, resolved: map[string]*service.Window{}}
}

func (wc *windowCache) forCampaign(campaignID string) (*service.Window, error) {
    if w, ok := wc.resolved[campaignID]; ok {
        return w, nil
    }
    campaign, err := wc.campaigns.GetByID(campaignID)
    if err != nil {
        return nil, err
    }
    cs, err := wc.schedules.GetCampaignSchedule(campaignID)
    if err != nil {
        return nil, err
    }
    var gs *model.GlobalSchedule
    if campaign.IsPremium() {
        if !wc.globalLoaded {
            wc.global, err = wc.schedules.GetGlobalSchedule()
            if err != nil {
                return nil, err
            }
            wc.globalLoaded = true
        }
        gs = wc.global
    }
    w := service.ResolveWindow(campaign, cs, gs)
    wc.resolved[campaignID] = w
    return w, nil
}
