/**
 * @description
 * This file defines coach profiles shown on the public site. Admins replace
 * the coach list wholesale, mirroring the membership plan flow.
 */
package domain

import (
	"fmt"
	"strings"
)

// Coach is one staff profile in the public roster.
type Coach struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Bio      string `json:"bio"`
	PhotoURL string `json:"photo_url"`
}

// ValidateCoaches checks a full replacement payload. It returns a
// *ValidationError enumerating every failing field, or nil when the payload
// is acceptable. An empty roster is allowed.
func ValidateCoaches(coaches []Coach) error {
	var fields []string
	seen := make(map[string]bool, len(coaches))
	for i, c := range coaches {
		if strings.TrimSpace(c.ID) == "" {
			fields = append(fields, fmt.Sprintf("coaches[%d].id: must not be empty", i))
		} else if seen[c.ID] {
			fields = append(fields, fmt.Sprintf("coaches[%d].id: duplicate id %q", i, c.ID))
		} else {
			seen[c.ID] = true
		}
		if strings.TrimSpace(c.Name) == "" {
			fields = append(fields, fmt.Sprintf("coaches[%d].name: must not be empty", i))
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
