// internal/errors/errors.go
package appErrors

import (
    "errors"
    "fmt"
    "net/http"
)

// ErrDuplicatePitch: a non-failed pitch already exists for the requested
// (match, tier). Not retried, surfaced to the caller.
type ErrDuplicatePitch struct {
    MatchID string
    Tier    string
}

func (e *ErrDuplicatePitch) Error() string {
    return fmt.Sprintf("pitch already exists for match %s at tier %s", e.MatchID, e.Tier)
}

func NewDuplicatePitch(matchID, tier string) error {
    return &ErrDuplicatePitch{MatchID: matchID, Tier: tier}
}

// ErrNoInitialPitch: a follow-up was requested for a match with no initial pitch.
type ErrNoInitialPitch struct {
    MatchID string
}

func (e *ErrNoInitialPitch) Error() string {
    return fmt.Sprintf("match %s has no initial pitch", e.MatchID)
}

func NewNoInitialPitch(matchID string) error {
    return &ErrNoInitialPitch{MatchID: matchID}
}

// ErrSequenceExhausted: the match already reached the terminal follow-up tier.
type ErrSequenceExhausted struct {
    MatchID string
}

func (e *ErrSequenceExhausted) Error() string {
    return fmt.Sprintf("follow-up sequence exhausted for match %s", e.MatchID)
}

func NewSequenceExhausted(matchID string) error {
    return &ErrSequenceExhausted{MatchID: matchID}
}

// ErrInvalidTransition: the state machine rejected a transition from the
// pitch's current state.
type ErrInvalidTransition struct {
    PitchID string
    From    string
    To      string
}

func (e *ErrInvalidTransition) Error() string {
    return fmt.Sprintf("pitch %s cannot move from %s to %s", e.PitchID, e.From, e.To)
}

func NewInvalidTransition(pitchID, from, to string) error {
    return &ErrInvalidTransition{PitchID: pitchID, From: from, To: to}
}

// ErrNoCapacityAvailable: no sending account in the pool has a free slot.
// Retryable on the scheduler's next tick.
type ErrNoCapacityAvailable struct{}

func (e *ErrNoCapacityAvailable) Error() string {
    return "no sending account with remaining capacity"
}

func NewNoCapacityAvailable() error {
    return &ErrNoCapacityAvailable{}
}

// ErrCapacityExceeded: the chosen account hit its daily limit between
// selection and reservation. Retryable on the scheduler's next tick.
type ErrCapacityExceeded struct {
    AccountID string
}

func (e *ErrCapacityExceeded) Error() string {
    return fmt.Sprintf("sending account %s is at its daily limit", e.AccountID)
}

func NewCapacityExceeded(accountID string) error {
    return &ErrCapacityExceeded{AccountID: accountID}
}

// ErrInvalidWindow: a Smart Send configuration was rejected at write time.
// Never persisted.
type ErrInvalidWindow struct {
    Reason string
}

func (e *ErrInvalidWindow) Error() string {
    return "invalid smart send window: " + e.Reason
}

func NewInvalidWindow(reason string) error {
    return &ErrInvalidWindow{Reason: reason}
}

// ErrProvider: the email provider failed after a capacity slot was already
// consumed. The slot is not refunded.
type ErrProvider struct {
    PitchID string
    Cause   error
}

func (e *ErrProvider) Error() string {
    return fmt.Sprintf("provider send failed for pitch %s: %v", e.PitchID, e.Cause)
}

func (e *ErrProvider) Unwrap() error { return e.Cause }

func NewProviderError(pitchID string, cause error) error {
    return &ErrProvider{PitchID: pitchID, Cause: cause}
}

// ErrGenerator: the content generator failed; no pitch is persisted.
type ErrGenerator struct {
    MatchID string
    Cause   error
}

func (e *ErrGenerator) Error() string {
    return fmt.Sprintf("content generation failed for match %s: %v", e.MatchID, e.Cause)
}

func (e *ErrGenerator) Unwrap() error { return e.Cause }

func NewGeneratorError(matchID string, cause error) error {
    return &ErrGenerator{MatchID: matchID, Cause: cause}
}

// ErrPitchNotFound is a sentinel error
type ErrPitchNotFound struct {
    PitchID string
}

func (e *ErrPitchNotFound) Error() string {
    return fmt.Sprintf("pitch %s not found", e.PitchID)
}

func NewPitchNotFound(id string) error {
    return &ErrPitchNotFound{PitchID: id}
}

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
    CampaignID string
}

func (e *ErrCampaignNotFound) Error() string {
    return fmt.Sprintf("campaign %s not found", e.CampaignID)
}

func NewCampaignNotFound(id string) error {
    return &ErrCampaignNotFound{CampaignID: id}
}

// IsRetryable reports whether the error is a transient capacity condition the
// scheduler should re-attempt on its next tick.
func IsRetryable(err error) bool {
    var noCap *ErrNoCapacityAvailable
    var exceeded *ErrCapacityExceeded
    return errors.As(err, &noCap) || errors.As(err, &exceeded)
}

// HTTPStatus maps domain errors to response codes for the REST surface.
func HTTPStatus(err error) int {
    var (
        dup       *ErrDuplicatePitch
        noInit    *ErrNoInitialPitch
        exhausted *ErrSequenceExhausted
        invalid   *ErrInvalidTransition
        window    *ErrInvalidWindow
        notFound  *ErrPitchNotFound
        campaign  *ErrCampaignNotFound
    )
    switch {
    case errors.As(err, &dup):
        return http.StatusConflict
    case errors.As(err, &invalid):
        return http.StatusConflict
    case errors.As(err, &noInit), errors.As(err, &exhausted):
        return http.StatusUnprocessableEntity
    case errors.As(err, &window):
        return http.StatusBadRequest
    case errors.As(err, &notFound), errors.As(err, &campaign):
        return http.StatusNotFound
    case IsRetryable(err):
        return http.StatusTooManyRequests
    }
    return http.StatusInternalServerError
}
