/**
 * @description
 * This file defines membership plans and the validation applied before an
 * admin replaces the plan list. The stored list is only ever swapped
 * wholesale after the full payload validates.
 */
package domain

import (
	"fmt"
	"strings"
)

// MembershipPlan is one entry in the facility's pricing table.
type MembershipPlan struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Credits    int    `json:"credits"`
	PriceCents int    `json:"price_cents"`
}

// ValidationError reports every failing field of a rejected payload.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, ", ")
}

// ValidatePlans checks a full replacement payload. It returns a
// *ValidationError enumerating every failing field, or nil when the payload
// is acceptable. An empty list is rejected outright.
func ValidatePlans(plans []MembershipPlan) error {
	if len(plans) == 0 {
		return &ValidationError{Fields: []string{"memberships: must contain at least one plan"}}
	}

	var fields []string
	seen := make(map[string]bool, len(plans))
	for i, p := range plans {
		if strings.TrimSpace(p.ID) == "" {
			fields = append(fields, fmt.Sprintf("memberships[%d].id: must not be empty", i))
		} else if seen[p.ID] {
			fields = append(fields, fmt.Sprintf("memberships[%d].id: duplicate id %q", i, p.ID))
		} else {
			seen[p.ID] = true
		}
		if strings.TrimSpace(p.Name) == "" {
			fields = append(fields, fmt.Sprintf("memberships[%d].name: must not be empty", i))
		}
		if p.Credits < 0 {
			fields = append(fields, fmt.Sprintf("memberships[%d].credits: must not be negative", i))
		}
		if p.PriceCents < 0 {
			fields = append(fields, fmt.Sprintf("memberships[%d].price_cents: must not be negative", i))
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
