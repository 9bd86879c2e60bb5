package schedule

import (
	"testing"
	"time"

	"github.com/trezcool/ratiba/core"
)

func TestNewSession_Validate(t *testing.T) {
	date := time.Date(2024, time.March, 18, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		ns        NewSession
		wantField string // "" means valid
	}{
		{
			name: "valid",
			ns:   NewSession{TemplateID: "tpl-1", Date: date, StartTime: "08:00", EndTime: "09:00"},
		},
		{
			name: "clock times trimmed",
			ns:   NewSession{TemplateID: "tpl-1", Date: date, StartTime: " 08:00 ", EndTime: "09:00"},
		},
		{
			name:      "malformed start time",
			ns:        NewSession{TemplateID: "tpl-1", Date: date, StartTime: "8am", EndTime: "09:00"},
			wantField: "start_time",
		},
		{
			name:      "malformed end time",
			ns:        NewSession{TemplateID: "tpl-1", Date: date, StartTime: "08:00", EndTime: "25:00"},
			wantField: "end_time",
		},
		{
			name:      "zero duration",
			ns:        NewSession{TemplateID: "tpl-1", Date: date, StartTime: "09:00", EndTime: "09:00"},
			wantField: "end_time",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ns.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				if tt.ns.StartTime != "08:00" {
					t.Errorf("Validate() StartTime = %q, want %q", tt.ns.StartTime, "08:00")
				}
				return
			}

			vErr, ok := err.(*core.ValidationError)
			if !ok {
				t.Fatalf("Validate() error = %T(%v), want *core.ValidationError", err, err)
			}
			if len(vErr.Fields) != 1 || vErr.Fields[0].Field != tt.wantField {
				t.Errorf("Validate() fields = %+v, want field %q", vErr.Fields, tt.wantField)
			}
		})
	}
}

func TestUpdateSession_Validate(t *testing.T) {
	t.Run("zero fields pass", func(t *testing.T) {
		us := UpdateSession{}
		if err := us.Validate(); err != nil {
			t.Fatalf("Validate() error = %v, want nil", err)
		}
	})

	t.Run("malformed start time", func(t *testing.T) {
		us := UpdateSession{StartTime: "late"}
		err := us.Validate()
		vErr, ok := err.(*core.ValidationError)
		if !ok {
			t.Fatalf("Validate() error = %T(%v), want *core.ValidationError", err, err)
		}
		if len(vErr.Fields) != 1 || vErr.Fields[0].Field != "start_time" {
			t.Errorf("Validate() fields = %+v, want field %q", vErr.Fields, "start_time")
		}
	})
}
