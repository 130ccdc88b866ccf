package validation

import (
	"fmt"
	"strings"

	"github.com/arbportal/feedback-portal/modules/feedback/domain/payload"
	"github.com/arbportal/feedback-portal/modules/feedback/domain/schemadef"
)

// Violation is one rule failure. Violations never block staging; they block
// confirm until resolved or overridden.
type Violation struct {
	Rule    string   `json:"rule"`
	Fields  []string `json:"fields"`
	Message string   `json:"message"`
}

// Condition holds when the field carries one of the listed values,
// compared case-insensitively. A missing or blank field never matches.
type Condition struct {
	Field string
	AnyOf []string
}

func (c Condition) holds(p payload.Payload) bool {
	v, ok := p.Get(c.Field)
	if !ok || v.Blank() {
		return false
	}
	if v.Kind() != payload.KindString {
		return false
	}
	for _, want := range c.AnyOf {
		if strings.EqualFold(v.Str(), want) {
			return true
		}
	}
	return false
}

// RequirementRule expresses a contingent-field requirement: when every
// condition holds, each listed field must be populated.
type RequirementRule struct {
	Name    string
	When    []Condition
	Require []string
}

// TemporalRule expresses cross-field ordering: when both fields are present,
// Earlier must not be after Later.
type TemporalRule struct {
	Name    string
	Earlier string
	Later   string
}

// RuleSet is the declarative rule table for one sector. Rules are evaluated
// independently in no particular order; all violations are collected so the
// user sees every problem in one pass.
type RuleSet struct {
	Sector       schemadef.Sector
	Requirements []RequirementRule
	Temporal     []TemporalRule
}

func (rs RuleSet) Evaluate(p payload.Payload) []Violation {
	var violations []Violation

	for _, rule := range rs.Requirements {
		all := true
		for _, cond := range rule.When {
			if !cond.holds(p) {
				all = false
				break
			}
		}
		if !all {
			continue
		}
		var missing []string
		for _, field := range rule.Require {
			v, ok := p.Get(field)
			if !ok || v.Blank() {
				missing = append(missing, field)
			}
		}
		if len(missing) > 0 {
			violations = append(violations, Violation{
				Rule:    rule.Name,
				Fields:  missing,
				Message: fmt.Sprintf("rule %s requires %s to be populated", rule.Name, strings.Join(missing, ", ")),
			})
		}
	}

	for _, rule := range rs.Temporal {
		earlier, okE := p.Get(rule.Earlier)
		later, okL := p.Get(rule.Later)
		if !okE || !okL {
			continue
		}
		if earlier.Kind() != payload.KindDatetime || later.Kind() != payload.KindDatetime {
			continue
		}
		if earlier.Time().After(later.Time()) {
			violations = append(violations, Violation{
				Rule:    rule.Name,
				Fields:  []string{rule.Earlier, rule.Later},
				Message: fmt.Sprintf("%s must not be after %s", rule.Earlier, rule.Later),
			})
		}
	}

	return violations
}
