package deal

import (
	"testing"
	"time"

	"github.com/mirrordesk/mirrordesk/internal/domain/model/record"
)

func TestNew(t *testing.T) {
	d, err := New("Acme renewal", 1200, "qualified")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if d.RecordID() != "" {
		t.Errorf("Expected empty id before create, got %q", d.RecordID())
	}

	if d.Name != "Acme renewal" {
		t.Errorf("Expected name 'Acme renewal', got %q", d.Name)
	}

	if d.Amount != 1200 {
		t.Errorf("Expected amount 1200, got %v", d.Amount)
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := New("", 100, "qualified"); err == nil {
		t.Error("Expected error for empty name")
	}

	if _, err := New("Acme", -1, "qualified"); err == nil {
		t.Error("Expected error for negative amount")
	}
}

func TestClone_Independent(t *testing.T) {
	d := &Deal{ID: "d1", Name: "Acme", Amount: 100, StageID: "qualified", Tags: []string{"hot"}}
	c := d.Clone()

	c.Name = "changed"
	c.Tags[0] = "cold"

	if d.Name != "Acme" {
		t.Error("Clone should not share the name field")
	}
	if d.Tags[0] != "hot" {
		t.Error("Clone should not share the tags slice")
	}
}

func TestApply(t *testing.T) {
	closeDate := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)
	d := &Deal{ID: "d1", Name: "Acme", Amount: 100, StageID: "qualified"}

	patched := d.Apply(record.Patch{
		"name":                "Acme Corp",
		"amount":              250.5,
		"stage_id":            "negotiation",
		"expected_close_date": closeDate,
		"tags":                []string{"enterprise"},
		"unknown_key":         "ignored",
	})

	if patched.Name != "Acme Corp" || patched.Amount != 250.5 || patched.StageID != "negotiation" {
		t.Errorf("Patch not applied: %+v", patched)
	}
	if !patched.ExpectedCloseDate.Equal(closeDate) {
		t.Errorf("Expected close date %v, got %v", closeDate, patched.ExpectedCloseDate)
	}
	if len(patched.Tags) != 1 || patched.Tags[0] != "enterprise" {
		t.Errorf("Expected tags [enterprise], got %v", patched.Tags)
	}

	// Original untouched
	if d.Name != "Acme" || d.Amount != 100 {
		t.Error("Apply must not mutate the receiver")
	}
}

func TestApply_DecodedJSONValues(t *testing.T) {
	// Values decoded from a JSON patch arrive as float64 / []any.
	d := &Deal{ID: "d1", Name: "Acme", Amount: 100}

	patched := d.Apply(record.Patch{
		"amount": float64(300),
		"tags":   []any{"a", "b"},
	})

	if patched.Amount != 300 {
		t.Errorf("Expected amount 300, got %v", patched.Amount)
	}
	if len(patched.Tags) != 2 {
		t.Errorf("Expected 2 tags, got %v", patched.Tags)
	}
}

func TestEquals(t *testing.T) {
	a := &Deal{ID: "d1", Name: "Acme", Amount: 100, Tags: []string{"x"}}
	b := a.Clone()

	if !a.Equals(b) {
		t.Error("Clone should equal original")
	}

	b.Amount = 101
	if a.Equals(b) {
		t.Error("Different amounts should not be equal")
	}

	if a.Equals(nil) {
		t.Error("Nil should not be equal")
	}
}
