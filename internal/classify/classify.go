// Package classify decides the disposition of an item against the
// configured alerting policy: alert now, hold for the digest, or drop.
package classify

import (
	"fmt"
	"strings"

	"secalerts/internal/domain"
)

// DefaultUrgentKeywords are built-in high-signal terms indicating active
// exploitation. Copied into Policy by config loading so tests can swap
// the table out.
var DefaultUrgentKeywords = []string{"rce", "auth bypass", "exploited", "wormable", "mass scanning"}

// Policy is the configuration bundle the classifier evaluates against.
type Policy struct {
	Keywords          []string
	DenyKeywords      []string
	MinSeverity       float64
	AlwaysAlertSource string
	UrgentKeywords    []string
}

// Classify decides whether an item is alert-worthy. Rules are evaluated
// in a fixed order because the order determines the reported reason:
// deny keywords veto everything, then the always-alert source, then the
// severity threshold, then urgent-keyword escalation, then plain
// keyword matches.
func Classify(item domain.Item, policy Policy) domain.Outcome {
	text := matchText(item)

	for _, deny := range policy.DenyKeywords {
		if deny != "" && strings.Contains(text, strings.ToLower(deny)) {
			return domain.Outcome{
				Decision: domain.DecisionDrop,
				Reason:   fmt.Sprintf("Matched deny keyword: %s", deny),
			}
		}
	}

	if policy.AlwaysAlertSource != "" && strings.EqualFold(item.Source, policy.AlwaysAlertSource) {
		return domain.Outcome{
			Decision: domain.DecisionAlert,
			Reason:   fmt.Sprintf("%s item (always alert)", item.Source),
		}
	}

	if item.Category == domain.CategoryCVE && item.Severity != nil {
		if *item.Severity >= policy.MinSeverity {
			return domain.Outcome{
				Decision: domain.DecisionAlert,
				Reason:   fmt.Sprintf("CVSS %g >= %g", *item.Severity, policy.MinSeverity),
			}
		}
	}

	for _, urgent := range policy.UrgentKeywords {
		if urgent == "" || !strings.Contains(text, strings.ToLower(urgent)) {
			continue
		}
		for _, kw := range policy.Keywords {
			if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
				return domain.Outcome{
					Decision: domain.DecisionAlert,
					Reason:   fmt.Sprintf("Urgent keyword match: %s + %s", urgent, kw),
				}
			}
		}
	}

	for _, kw := range policy.Keywords {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			return domain.Outcome{
				Decision: domain.DecisionAlert,
				Reason:   fmt.Sprintf("Keyword match: %s", kw),
			}
		}
	}

	return domain.Outcome{Decision: domain.DecisionDrop, Reason: "No matching criteria"}
}

// ShouldDigest decides whether a non-alert item belongs in the digest
// bucket: CVEs below the severity threshold and news items qualify when
// they match a keyword, and deny keywords veto here too.
func ShouldDigest(item domain.Item, policy Policy) bool {
	text := matchText(item)

	for _, deny := range policy.DenyKeywords {
		if deny != "" && strings.Contains(text, strings.ToLower(deny)) {
			return false
		}
	}

	if item.Category == domain.CategoryCVE && item.Severity != nil {
		if *item.Severity < policy.MinSeverity {
			return anyKeyword(text, policy.Keywords)
		}
		return false
	}

	if item.Category == domain.CategoryNews {
		return anyKeyword(text, policy.Keywords)
	}

	return false
}

func anyKeyword(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func matchText(item domain.Item) string {
	return strings.ToLower(item.Title + " " + item.Summary)
}
