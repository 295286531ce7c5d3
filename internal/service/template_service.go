// internal/service/template_service.go
package service

import (
    "strings"

    "github.com/guestlane/guestlane-backend/internal/model"
)

func RenderTemplate(template string, data map[string]string) string {
    result := template
    for k, v := range data {
        value := v
        if value == "" {
            value = "<unknown>"
        }
        result = strings.ReplaceAll(result, "{"+k+"}", value)
    }
    return result
}

// MatchPlaceholders exposes a match's fields for template filling.
func MatchPlaceholders(m *model.Match) map[string]string {
    return map[string]string{
        "podcast_name": m.PodcastName,
        "host_name":    m.HostName,
    }
}

// Follow-up template ids by escalation tone. The tier of a follow-up picks its
// template: 1 gentle nudge, 2 value add, 3 urgency, 4 breakup.
const (
    TemplateGentle  = "gentle"
    TemplateValue   = "value"
    TemplateUrgent  = "urgent"
    TemplateBreakup = "breakup"
)

// TemplateForTier maps a follow-up sequence type to its auto-selected template.
func TemplateForTier(tier model.SequenceType) string {
    switch tier {
    case model.SequenceFollowUp1:
        return TemplateGentle
    case model.SequenceFollowUp2:
        return TemplateValue
    case model.SequenceFollowUp3:
        return TemplateUrgent
    case model.SequenceFollowUp4:
        return TemplateBreakup
    }
    return ""
}
