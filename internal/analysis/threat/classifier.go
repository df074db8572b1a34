// Package threat screens free text against a fixed, ordered list of rules.
// The first matching rule decides the verdict; nothing is scored or combined.
package threat

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/raadhya/backend/internal/model/security"
)

// Verdict is the screening result for one piece of text.
type Verdict struct {
	IsThreat    bool              `json:"isThreat"`
	ThreatType  Category          `json:"threatType"`
	Severity    security.Severity `json:"severity"`
	ShouldBlock bool              `json:"shouldBlock"`
	RuleID      string            `json:"ruleId,omitempty"`
}

// Clean is returned when no rule matches.
var Clean = Verdict{
	IsThreat:    false,
	ThreatType:  CategoryNone,
	Severity:    security.SeverityLow,
	ShouldBlock: false,
}

// Classifier evaluates rules in order. It is safe for concurrent use.
type Classifier struct {
	rules []Rule
}

// NewClassifier validates rules and keeps their order.
func NewClassifier(rules []Rule) (*Classifier, error) {
	for i, rule := range rules {
		if rule.ID == "" {
			return nil, fmt.Errorf("rule %d: id is required", i)
		}
		if (rule.Pattern == nil) == (len(rule.AllOf) == 0) {
			return nil, fmt.Errorf("rule %s: exactly one of pattern or allOf must be set", rule.ID)
		}
		if !rule.Severity.Valid() {
			return nil, fmt.Errorf("rule %s: invalid severity %q", rule.ID, rule.Severity)
		}
		if rule.Category == "" || rule.Category == CategoryNone {
			return nil, fmt.Errorf("rule %s: category is required", rule.ID)
		}
	}
	return &Classifier{rules: append([]Rule(nil), rules...)}, nil
}

// Default returns a classifier over DefaultRules.
func Default() *Classifier {
	return &Classifier{rules: DefaultRules()}
}

// Rules returns a copy of the rule list in evaluation order.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Classify returns the verdict of the first matching rule, or Clean.
func (c *Classifier) Classify(text string) Verdict {
	lowered := strings.ToLower(text)
	for _, rule := range c.rules {
		if !rule.matches(text, lowered) {
			continue
		}
		return Verdict{
			IsThreat:    true,
			ThreatType:  rule.Category,
			Severity:    rule.Severity,
			ShouldBlock: rule.Block,
			RuleID:      rule.ID,
		}
	}
	return Clean
}

func (r Rule) matches(text, lowered string) bool {
	if r.Pattern != nil {
		return r.Pattern.MatchString(text)
	}
	for _, word := range r.AllOf {
		if !strings.Contains(lowered, word) {
			return false
		}
	}
	return true
}
