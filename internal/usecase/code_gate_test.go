package usecase

import (
	"strings"
	"testing"
	"time"

	"github.com/navellino/concierge-backend/internal/domain/entity"
)

func TestCodeGate(t *testing.T) {
	day := func(hhmm string) time.Time {
		tt, err := time.Parse("2006-01-02 15:04", "2025-12-10 "+hhmm)
		if err != nil {
			t.Fatalf("bad fixture time %q: %v", hhmm, err)
		}
		return tt
	}

	tests := []struct {
		name        string
		now         time.Time
		authorized  string
		checkinTime string
		wantAllow   bool
	}{
		{"not authorized blocks at any hour", day("23:59"), "no", "14:00", false},
		{"not authorized even past checkin time", day("18:00"), "", "14:00", false},
		{"authorized but before checkin time", day("11:00"), "yes", "14:00", false},
		{"authorized at checkin time", day("14:00"), "yes", "14:00", true},
		{"authorized after checkin time", day("14:01"), "yes", "14:00", true},
		{"default checkin time applies", day("11:59"), "yes", "", false},
		{"default checkin time passed", day("12:00"), "yes", "", true},
		{"case insensitive authorization flag", day("15:00"), "YES", "14:00", true},
		{"unparsable checkin time denies", day("23:00"), "yes", "mezzogiorno", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := entity.BookingRecord{
				Authorized:  tc.authorized,
				CheckinTime: tc.checkinTime,
			}
			msg, allow := CodeGate(tc.now, rec)
			if allow != tc.wantAllow {
				t.Fatalf("allow = %v, want %v (msg %q)", allow, tc.wantAllow, msg)
			}
			if allow && msg != "" {
				t.Errorf("allowed gate should carry no message, got %q", msg)
			}
			if !allow && msg == "" {
				t.Error("denied gate should explain itself")
			}
		})
	}
}

func TestCodeGateDenialMentionsTime(t *testing.T) {
	rec := entity.BookingRecord{Authorized: "yes", CheckinTime: "15:30"}
	now, _ := time.Parse("2006-01-02 15:04", "2025-12-10 09:00")
	msg, allow := CodeGate(now, rec)
	if allow {
		t.Fatal("gate should deny before checkin time")
	}
	if !strings.Contains(msg, "15:30") {
		t.Errorf("denial should quote the release time, got %q", msg)
	}
}
