// Package rules holds the rule-based red-flag checks run against posting
// text. Each rule carries a stable ID and severity so matches can be
// persisted as fraud indicators, not just display strings.
package rules

import (
	"regexp"
	"strings"

	"github.com/verijob/verijob/internal/model"
)

// Severity levels attached to stored indicators.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Rule is a single red-flag check. Match reports whether the rule fires on
// the given text; lower is the lower-cased text, precomputed once per scan.
type Rule struct {
	ID       string
	Severity string
	Message  string
	Match    func(text, lower string) bool
}

var salaryRes = []*regexp.Regexp{
	regexp.MustCompile(`\$\d{3,4}/week`),
	regexp.MustCompile(`\$\d{4,}/day`),
	regexp.MustCompile(`earn \$\d{3,4}`),
}

var (
	freeMailRe        = regexp.MustCompile(`(?i)\b(gmail\.com|yahoo\.com|outlook\.com)\b`)
	personalDetailsRe = regexp.MustCompile(`(?i)(send\s+details|send\s+resume|contact\s+info|personal\s+information)`)
	tooGoodRe         = regexp.MustCompile(`(?i)(work from home|easy money|no experience required.*high pay)`)
)

var suspiciousTLDs = []string{".xyz", ".top", ".club", ".work", ".space", ".online", ".tk", ".ml"}

var urgencyWords = []string{"urgent", "immediate", "asap", "hurry", "limited time", "act now"}

// ruleSet is ordered; matches come back in this order.
var ruleSet = []Rule{
	{
		ID:       "contact_messenger",
		Severity: SeverityHigh,
		Message:  "Asks to contact on Telegram/WhatsApp.",
		Match: func(text, lower string) bool {
			return strings.Contains(text, "Telegram") || strings.Contains(text, "WhatsApp")
		},
	},
	{
		ID:       "salary_no_experience",
		Severity: SeverityHigh,
		Message:  "Unrealistic salary for no experience.",
		Match: func(text, lower string) bool {
			return strings.Contains(lower, "no experience") && strings.Contains(lower, "high salary")
		},
	},
	{
		ID:       "upfront_details",
		Severity: SeverityMedium,
		Message:  "Requests personal info upfront.",
		Match: func(text, lower string) bool {
			return strings.Contains(lower, "send your details to")
		},
	},
	{
		ID:       "crypto_payment",
		Severity: SeverityHigh,
		Message:  "Mentions Bitcoin or crypto payments.",
		Match: func(text, lower string) bool {
			return strings.Contains(text, "Bitcoin") || strings.Contains(lower, "crypto")
		},
	},
	{
		ID:       "free_mail_domain",
		Severity: SeverityMedium,
		Message:  "Uses free/public email instead of company domain.",
		Match: func(text, lower string) bool {
			return freeMailRe.MatchString(text)
		},
	},
	{
		ID:       "unrealistic_salary",
		Severity: SeverityHigh,
		Message:  "Unrealistic salary offered (e.g., $3000/week)",
		Match: func(text, lower string) bool {
			for _, re := range salaryRes {
				if re.MatchString(text) {
					return true
				}
			}
			return false
		},
	},
	{
		ID:       "personal_details_request",
		Severity: SeverityMedium,
		Message:  "Asking for personal details or resume upfront",
		Match: func(text, lower string) bool {
			return personalDetailsRe.MatchString(text)
		},
	},
	{
		ID:       "suspicious_domain",
		Severity: SeverityMedium,
		Message:  "Suspicious domain in website URL",
		Match: func(text, lower string) bool {
			for _, tld := range suspiciousTLDs {
				if strings.Contains(text, tld) {
					return true
				}
			}
			return false
		},
	},
	{
		ID:       "urgency_tactics",
		Severity: SeverityLow,
		Message:  "Uses urgency tactics to pressure quick decisions",
		Match: func(text, lower string) bool {
			for _, w := range urgencyWords {
				if strings.Contains(lower, w) {
					return true
				}
			}
			return false
		},
	},
	{
		ID:       "too_good_to_be_true",
		Severity: SeverityMedium,
		Message:  "Too good to be true work-from-home offer",
		Match: func(text, lower string) bool {
			return tooGoodRe.MatchString(text)
		},
	},
}

// Check runs every rule against text and returns the matches in rule order.
func Check(text string) []model.RedFlag {
	lower := strings.ToLower(text)
	var flags []model.RedFlag
	for _, r := range ruleSet {
		if r.Match(text, lower) {
			flags = append(flags, model.RedFlag{
				RuleID:   r.ID,
				Severity: r.Severity,
				Message:  r.Message,
			})
		}
	}
	return flags
}

// Count returns how many rules exist; used by tests and scoring sanity checks.
func Count() int { return len(ruleSet) }
