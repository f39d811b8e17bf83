package core

import (
	"testing"
)

func TestAction_Valid(t *testing.T) {
	tests := []struct {
		action Action
		want   bool
	}{
		{ActionApprove, true},
		{ActionBlock, true},
		{Action(""), false},
		{Action("delete"), false},
		{Action("BLOCK"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			if got := tt.action.Valid(); got != tt.want {
				t.Errorf("Action(%q).Valid() = %v, want %v", tt.action, got, tt.want)
			}
		})
	}
}

func TestInitialStatus(t *testing.T) {
	tests := []struct {
		alertType AlertType
		want      AlertStatus
	}{
		{AlertTypeEmergency, StatusEmergency},
		{AlertTypeMessage, StatusPending},
		{AlertTypeCall, StatusPending},
		{AlertType("voicemail"), StatusPending},
	}

	for _, tt := range tests {
		t.Run(string(tt.alertType), func(t *testing.T) {
			if got := InitialStatus(tt.alertType); got != tt.want {
				t.Errorf("InitialStatus(%q) = %v, want %v", tt.alertType, got, tt.want)
			}
		})
	}
}

func TestAlert_IsResolved(t *testing.T) {
	a := &Alert{Status: StatusPending}
	if a.IsResolved() {
		t.Error("pending alert should not be resolved")
	}
	a.Status = StatusResolved
	if !a.IsResolved() {
		t.Error("resolved alert should report resolved")
	}
}

func TestDefaultSafeContacts(t *testing.T) {
	contacts := DefaultSafeContacts()

	if len(contacts) != 3 {
		t.Fatalf("len(DefaultSafeContacts()) = %d, want 3", len(contacts))
	}
	for i, c := range contacts {
		if c.ID != i+1 {
			t.Errorf("contacts[%d].ID = %d, want %d", i, c.ID, i+1)
		}
		if c.Name == "" || c.Phone == "" {
			t.Errorf("contacts[%d] has empty fields: %+v", i, c)
		}
	}

	// Each call returns a fresh slice
	contacts[0].Name = "changed"
	if DefaultSafeContacts()[0].Name == "changed" {
		t.Error("DefaultSafeContacts should not share state between calls")
	}
}
