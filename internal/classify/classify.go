// Package classify assigns a triage category to a message based on its
// subject line.
package classify

import (
	"strings"

	"github.com/nhle/mail-triage/internal/model"
)

// Rule maps a keyword group to a category. Rules are evaluated in
// order; the first group with a matching keyword wins.
type Rule struct {
	Category model.Category
	Keywords []string
}

// DefaultRules is the shipped keyword table. The priority order
// (Finance, then Work, then Promotions) is the contract; the exact
// keyword membership is configuration.
var DefaultRules = []Rule{
	{model.CategoryFinance, []string{"invoice", "payment", "bill"}},
	{model.CategoryWork, []string{"meeting", "schedule", "project"}},
	{model.CategoryPromotions, []string{"offer", "discount", "promotion"}},
}

// Categorize matches subject against DefaultRules. Matching is
// case-insensitive substring; no match yields Others.
func Categorize(subject string) model.Category {
	return CategorizeWith(DefaultRules, subject)
}

// CategorizeWith matches subject against the given ordered rules.
func CategorizeWith(rules []Rule, subject string) model.Category {
	lower := strings.ToLower(subject)
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Category
			}
		}
	}
	return model.CategoryOthers
}
