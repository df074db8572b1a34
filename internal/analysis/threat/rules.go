package threat

import (
	"regexp"

	"github.com/zhouzirui/raadhya/backend/internal/model/security"
)

// Category is the threat taxonomy reported as an event type.
type Category string

const (
	CategoryNone          Category = "none"
	CategoryInappropriate Category = "inappropriate_content"
	CategoryScam          Category = "potential_scam"
	CategoryPhishing      Category = "information_phishing"
	CategoryMaliciousCode Category = "malicious_code"
)

// Rule is one entry of the priority-ordered screening list.
// Exactly one of Pattern or AllOf is set.
type Rule struct {
	ID       string
	Category Category
	Severity security.Severity
	Block    bool

	// Pattern is matched against the raw text.
	Pattern *regexp.Regexp
	// AllOf lists lower-case substrings that must all appear in the lower-cased text.
	AllOf []string
}

// DefaultRules returns the screening rules in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		// Inappropriate content
		{
			ID:       "explicit-content",
			Category: CategoryInappropriate,
			Severity: security.SeverityHigh,
			Block:    true,
			Pattern:  regexp.MustCompile(`(?i)\b(?:nude|naked|sexual|explicit|porn|xxx)\b`),
		},
		{
			ID:       "hacking-malware",
			Category: CategoryInappropriate,
			Severity: security.SeverityHigh,
			Block:    true,
			Pattern:  regexp.MustCompile(`(?i)\b(?:hack|exploit|virus|malware|scam)\b`),
		},
		{
			ID:       "violence",
			Category: CategoryInappropriate,
			Severity: security.SeverityHigh,
			Block:    true,
			Pattern:  regexp.MustCompile(`(?i)\b(?:kill|murder|violence|threat|harm)\b`),
		},
		{
			ID:       "illegal-activity",
			Category: CategoryInappropriate,
			Severity: security.SeverityHigh,
			Block:    true,
			Pattern:  regexp.MustCompile(`(?i)\b(?:drugs|illegal|stolen|fraud)\b`),
		},

		// Scams
		{
			ID:       "financial-scam",
			Category: CategoryScam,
			Severity: security.SeverityCritical,
			Block:    true,
			Pattern:  regexp.MustCompile(`(?i)\b(?:send money|wire transfer|bitcoin|crypto|urgent|lottery|prince|inheritance)\b`),
		},
		{
			ID:       "phishing-lure",
			Category: CategoryScam,
			Severity: security.SeverityCritical,
			Block:    true,
			Pattern:  regexp.MustCompile(`(?i)\b(?:click here|verify account|suspended|expire|immediate action)\b`),
		},

		// Credential fishing
		{
			ID:       "credential-request",
			Category: CategoryPhishing,
			Severity: security.SeverityHigh,
			Block:    true,
			AllOf:    []string{"password", "give"},
		},
	}
}
