package donations

import (
	"fmt"
	"testing"
	"time"
)

func TestNewDonor(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 30, 0, 0, time.FixedZone("AEDT", 11*60*60))

	tests := []struct {
		name       string
		inName     string
		inAmount   float64
		wantName   string
		wantAmount float64
	}{
		{"named donor", "Jane", 25, "Jane", 25},
		{"missing name falls back", "", 10.5, "Anonymous", 10.5},
		{"negative amount clamps to zero", "Sam", -3, "Sam", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDonor(tt.inName, tt.inAmount, at)

			if d.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", d.Name, tt.wantName)
			}
			if d.Amount != tt.wantAmount {
				t.Errorf("Amount = %v, want %v", d.Amount, tt.wantAmount)
			}
			if d.Time.Location() != time.UTC || !d.Time.Equal(at) {
				t.Errorf("Time = %v, want %v in UTC", d.Time, at)
			}
		})
	}
}

func TestLogPrepend(t *testing.T) {
	var log Log
	for i := 0; i < 3; i++ {
		log = log.Prepend(Donor{Name: fmt.Sprintf("donor-%d", i)}, 0)
	}

	if len(log) != 3 {
		t.Fatalf("expected 3 donors, got %d", len(log))
	}
	if log[0].Name != "donor-2" || log[2].Name != "donor-0" {
		t.Errorf("expected newest first, got %+v", log)
	}
}

func TestLogPrependCapsAtLimit(t *testing.T) {
	log := Log{}
	for i := 0; i < MaxDonors+25; i++ {
		log = log.Prepend(Donor{Name: fmt.Sprintf("donor-%d", i)}, MaxDonors)

		if len(log) > MaxDonors {
			t.Fatalf("log grew to %d entries", len(log))
		}
	}

	if len(log) != MaxDonors {
		t.Fatalf("expected %d donors, got %d", MaxDonors, len(log))
	}

	newest := fmt.Sprintf("donor-%d", MaxDonors+24)
	if log[0].Name != newest {
		t.Errorf("log[0] = %q, want %q", log[0].Name, newest)
	}

	oldestKept := "donor-25"
	if log[MaxDonors-1].Name != oldestKept {
		t.Errorf("last entry = %q, want %q", log[MaxDonors-1].Name, oldestKept)
	}
}

func TestLogPrependDoesNotMutateReceiver(t *testing.T) {
	original := Log{{Name: "a"}, {Name: "b"}}

	_ = original.Prepend(Donor{Name: "c"}, 2)

	if original[0].Name != "a" || original[1].Name != "b" {
		t.Errorf("receiver was modified: %+v", original)
	}
}
