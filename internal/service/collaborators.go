// internal/service/collaborators.go
package service

import (
    "fmt"
    "math/rand"

    "github.com/guestlane/guestlane-backend/internal/model"
)

// ContentGenerator produces a pitch subject and body for a match. Backed by
// the AI drafting service in production; the engine only depends on this
// contract.
type ContentGenerator interface {
    Generate(match *model.Match, templateID string) (subject, body string, err error)
}

// EmailSender delivers one message through a provider (Nylas in production)
// and returns the provider-side message id.
type EmailSender interface {
    Send(accountID, to, subject, body string) (providerMessageID string, err error)
}

// CapabilityGate collapses the per-plan/per-role checks into one place,
// consumed uniformly by single-item and bulk code paths.
type CapabilityGate interface {
    CanUseAI(plan string) bool
    IsPrivileged(role string) bool
}

// PlanGate is the default gate: AI drafting requires a paid plan, and
// admin/staff roles skip the approval queue.
type PlanGate struct{}

func (PlanGate) CanUseAI(plan string) bool {
    return plan == model.PlanBasic || plan == model.PlanPremium
}

func (PlanGate) IsPrivileged(role string) bool {
    return role == "admin" || role == "staff"
}

//////////////////////////
// Mock collaborators   //
//////////////////////////

// MockGenerator fills canned subject/body templates with match data. Used by
// the dev binaries until the real drafting service is wired in.
type MockGenerator struct{}

var mockTemplates = map[string][2]string{
    "default":       {"Guest pitch for {podcast_name}", "Hi {host_name}, I'd love to introduce a guest for {podcast_name}."},
    TemplateGentle:  {"Following up on {podcast_name}", "Hi {host_name}, just floating my earlier note back to the top of your inbox."},
    TemplateValue:   {"An angle for {podcast_name}", "Hi {host_name}, here's a topic your listeners might enjoy."},
    TemplateUrgent:  {"Closing the loop on {podcast_name}", "Hi {host_name}, we're finalizing this month's placements."},
    TemplateBreakup: {"Last note about {podcast_name}", "Hi {host_name}, I'll stop reaching out after this one."},
}

func (MockGenerator) Generate(match *model.Match, templateID string) (string, string, error) {
    tpl, ok := mockTemplates[templateID]
    if !ok {
        tpl = mockTemplates["default"]
    }
    data := MatchPlaceholders(match)
    return RenderTemplate(tpl[0], data), RenderTemplate(tpl[1], data), nil
}

// MockEmailSender simulates a provider with 90% success
type MockEmailSender struct{}

func (MockEmailSender) Send(accountID, to, subject, body string) (string, error) {
    if rand.Float64() < 0.9 {
        return fmt.Sprintf("mock-%d", rand.Int63()), nil
    }
    return "", fmt.Errorf("mock provider rejected the message")
}
