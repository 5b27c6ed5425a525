package domain

import (
	"strings"
	"testing"
)

func TestValidatePlansAcceptsValidPayload(t *testing.T) {
	plans := []MembershipPlan{
		{ID: "drop-in", Name: "Drop In", Credits: 1, PriceCents: 2500},
		{ID: "monthly-8", Name: "8 Sessions / Month", Credits: 8, PriceCents: 16000},
	}
	if err := ValidatePlans(plans); err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}
}

func TestValidatePlansRejectsEmptyList(t *testing.T) {
	err := ValidatePlans(nil)
	if err == nil {
		t.Fatal("expected error for empty list")
	}
}

func TestValidatePlansEnumeratesEveryFailingField(t *testing.T) {
	plans := []MembershipPlan{
		{ID: "", Name: "", Credits: -1, PriceCents: 2500},
		{ID: "ok", Name: "Fine", Credits: 4, PriceCents: -100},
		{ID: "ok", Name: "Duplicate", Credits: 4, PriceCents: 100},
	}

	err := ValidatePlans(plans)
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}

	wantFields := []string{
		"memberships[0].id",
		"memberships[0].name",
		"memberships[0].credits",
		"memberships[1].price_cents",
		"memberships[2].id",
	}
	if len(ve.Fields) != len(wantFields) {
		t.Fatalf("expected %d failing fields, got %d: %v", len(wantFields), len(ve.Fields), ve.Fields)
	}
	for i, prefix := range wantFields {
		if !strings.HasPrefix(ve.Fields[i], prefix) {
			t.Errorf("field %d: expected prefix %q, got %q", i, prefix, ve.Fields[i])
		}
	}
}
