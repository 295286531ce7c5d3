// internal/service/allocator.go
package service

import (
    "sort"
    "time"

    "github.com/google/uuid"

    appErrors "github.com/guestlane/guestlane-backend/internal/errors"
    "github.com/guestlane/guestlane-backend/internal/model"
    "github.com/guestlane/guestlane-backend/internal/repository"
)

// Allocator hands out send slots from the shared sending-account pool without
// letting any account exceed its daily quota. The actual capacity check and
// increment are a single atomic UPDATE in the repository; the allocator only
// decides which account to try.
type Allocator struct {
    Accounts repository.AccountRepositoryInterface
}

// Reservation is proof that one send slot was consumed. A reservation is
// never rolled back: an attempted send counts against the quota whether or
// not the provider accepted it.
type Reservation struct {
    ID         string
    AccountID  string
    ReservedAt time.Time
}

// SelectAccount picks the active account with the lowest utilization ratio
// among those that still have capacity. Ties break by account id ascending so
// selection is deterministic.
func (a *Allocator) SelectAccount() (*model.SendingAccount, error) {
    pool, err := a.Accounts.ListActive()
    if err != nil {
        return nil, err
    }
    eligible := eligibleByUtilization(pool)
    if len(eligible) == 0 {
        return nil, appErrors.NewNoCapacityAvailable()
    }
    return eligible[0], nil
}

// Reserve consumes a slot on the given account. Fails with CapacityExceeded
// when the account filled up between selection and reservation.
func (a *Allocator) Reserve(accountID string) (*Reservation, error) {
    ok, err := a.Accounts.ReserveSlot(accountID)
    if err != nil {
        return nil, err
    }
    if !ok {
        return nil, appErrors.NewCapacityExceeded(accountID)
    }
    return &Reservation{
        ID:         uuid.NewString(),
        AccountID:  accountID,
        ReservedAt: time.Now().UTC(),
    }, nil
}

// Acquire selects and reserves in one call. When a reservation loses the race
// for an account's last slot it moves on to the next eligible account instead
// of giving up.
func (a *Allocator) Acquire() (*Reservation, error) {
    pool, err := a.Accounts.ListActive()
    if err != nil {
        return nil, err
    }
    for _, acct := range eligibleByUtilization(pool) {
        res, err := a.Reserve(acct.ID)
        if err != nil {
            if appErrors.IsRetryable(err) {
                continue
            }
            return nil, err
        }
        return res, nil
    }
    return nil, appErrors.NewNoCapacityAvailable()
}

func eligibleByUtilization(pool []*model.SendingAccount) []*model.SendingAccount {
    eligible := []*model.SendingAccount{}
    for _, acct := range pool {
        if acct.HasCapacity() {
            eligible = append(eligible, acct)
        }
    }
    sort.Slice(eligible, func(i, j int) bool {
        ui, uj := eligible[i].Utilization(), eligible[j].Utilization()
        if ui != uj {
            return ui < uj
        }
        return eligible[i].ID < eligible[j].ID
    })
    return eligible
}
