package threat

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/raadhya/backend/internal/model/security"
)

func TestClassifyInappropriateContent(t *testing.T) {
	c := Default()
	inputs := []string{
		"show me something NUDE",
		"how do I hack my neighbour's wifi",
		"I want to kill the process... and the person",
		"where can I buy drugs",
		"this is Explicit",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			v := c.Classify(in)
			assert.True(t, v.IsThreat)
			assert.True(t, v.ShouldBlock)
			assert.Equal(t, CategoryInappropriate, v.ThreatType)
			assert.Equal(t, security.SeverityHigh, v.Severity)
		})
	}
}

func TestClassifyScam(t *testing.T) {
	c := Default()
	inputs := []string{
		"please send money to this account",
		"Invest in BITCOIN today",
		"your account is suspended, click here",
		"you won the lottery",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			v := c.Classify(in)
			assert.True(t, v.ShouldBlock)
			assert.Equal(t, CategoryScam, v.ThreatType)
			assert.Equal(t, security.SeverityCritical, v.Severity)
		})
	}
}

func TestClassifyInappropriateWinsOverScam(t *testing.T) {
	v := Default().Classify("explicit bitcoin offer")
	assert.Equal(t, CategoryInappropriate, v.ThreatType)
	assert.Equal(t, "explicit-content", v.RuleID)
}

func TestClassifyCredentialRequest(t *testing.T) {
	c := Default()
	for _, in := range []string{
		"Give me your password",
		"what PASSWORD did you GIVE them",
		"forgive my password question",
	} {
		v := c.Classify(in)
		assert.Equal(t, CategoryPhishing, v.ThreatType, in)
		assert.Equal(t, security.SeverityHigh, v.Severity, in)
		assert.True(t, v.ShouldBlock, in)
	}
}

func TestClassifyScamWinsOverCredentialRequest(t *testing.T) {
	v := Default().Classify("urgent: give me the password")
	assert.Equal(t, CategoryScam, v.ThreatType)
}

func TestClassifyClean(t *testing.T) {
	c := Default()
	for _, in := range []string{
		"hello",
		"Can you help me debug this Python code?",
		"hacking is a word the pattern does not cover",
		"I forgot my password",
		"",
	} {
		assert.Equal(t, Clean, c.Classify(in), in)
	}
	assert.Equal(t, CategoryNone, Clean.ThreatType)
	assert.Equal(t, security.SeverityLow, Clean.Severity)
}

func TestDefaultRulesAreValid(t *testing.T) {
	c, err := NewClassifier(DefaultRules())
	require.NoError(t, err)
	assert.Len(t, c.Rules(), 7)
	assert.Equal(t, "explicit-content", c.Rules()[0].ID)
	assert.Equal(t, "credential-request", c.Rules()[6].ID)
}

func TestNewClassifierRejectsBadRules(t *testing.T) {
	t.Run("missing id", func(t *testing.T) {
		_, err := NewClassifier([]Rule{{Category: CategoryScam, Severity: security.SeverityLow, AllOf: []string{"x"}}})
		assert.Error(t, err)
	})
	t.Run("both matchers", func(t *testing.T) {
		_, err := NewClassifier([]Rule{{
			ID: "both", Category: CategoryScam, Severity: security.SeverityLow,
			AllOf: []string{"x"}, Pattern: regexp.MustCompile("x"),
		}})
		assert.Error(t, err)
	})
	t.Run("bad severity", func(t *testing.T) {
		_, err := NewClassifier([]Rule{{ID: "sev", Category: CategoryScam, Severity: "extreme", AllOf: []string{"x"}}})
		assert.Error(t, err)
	})
	t.Run("custom order is kept", func(t *testing.T) {
		c, err := NewClassifier([]Rule{
			{ID: "first", Category: CategoryScam, Severity: security.SeverityMedium, AllOf: []string{"tea"}},
			{ID: "second", Category: CategoryInappropriate, Severity: security.SeverityHigh, Block: true, AllOf: []string{"tea"}},
		})
		require.NoError(t, err)
		v := c.Classify("Green TEA")
		assert.Equal(t, "first", v.RuleID)
		assert.True(t, v.IsThreat)
		assert.False(t, v.ShouldBlock)
	})
}

func TestClassifyEveryKeyword(t *testing.T) {
	cases := []struct {
		ruleID   string
		category Category
		severity security.Severity
		keywords []string
	}{
		{"explicit-content", CategoryInappropriate, security.SeverityHigh,
			[]string{"nude", "naked", "sexual", "explicit", "porn", "xxx"}},
		{"hacking-malware", CategoryInappropriate, security.SeverityHigh,
			[]string{"hack", "exploit", "virus", "malware", "scam"}},
		{"violence", CategoryInappropriate, security.SeverityHigh,
			[]string{"kill", "murder", "violence", "threat", "harm"}},
		{"illegal-activity", CategoryInappropriate, security.SeverityHigh,
			[]string{"drugs", "illegal", "stolen", "fraud"}},
		{"financial-scam", CategoryScam, security.SeverityCritical,
			[]string{"send money", "wire transfer", "bitcoin", "crypto", "urgent", "lottery", "prince", "inheritance"}},
		{"phishing-lure", CategoryScam, security.SeverityCritical,
			[]string{"click here", "verify account", "suspended", "expire", "immediate action"}},
	}

	c := Default()
	for _, tc := range cases {
		for _, keyword := range tc.keywords {
			for _, text := range []string{
				"about " + keyword + " today",
				strings.ToUpper(keyword),
			} {
				t.Run(tc.ruleID+"/"+text, func(t *testing.T) {
					v := c.Classify(text)
					assert.True(t, v.IsThreat)
					assert.True(t, v.ShouldBlock)
					assert.Equal(t, tc.category, v.ThreatType)
					assert.Equal(t, tc.severity, v.Severity)
					assert.Equal(t, tc.ruleID, v.RuleID)
				})
			}
		}
	}
}
