package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/navellino/concierge-backend/internal/domain/entity"
)

const defaultCheckinTime = "12:00"

// CodeGate decides whether the door code may be disclosed right now.
// It returns ("", true) when disclosure is permitted, otherwise a
// denial message for the guest. The gate denies until the host has
// authorized the booking and, on the arrival day, until the check-in
// time has passed. An unparsable check-in time denies disclosure.
func CodeGate(now time.Time, rec entity.BookingRecord) (string, bool) {
	if strings.ToLower(rec.Authorized) != "yes" {
		return "Il self check-in non è ancora autorizzato dall'host.", false
	}

	hhmm := rec.CheckinTime
	if hhmm == "" {
		hhmm = defaultCheckinTime
	}
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return "Non riesco a verificare l'orario di check-in, chiedi all'host il codice porta.", false
	}
	release := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	if now.Before(release) {
		return fmt.Sprintf("Posso condividere il codice dalle %s del giorno di arrivo.", hhmm), false
	}
	return "", true
}
