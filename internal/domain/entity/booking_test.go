package entity

import "testing"

func TestRecordFromMap_KnownAndExtraColumns(t *testing.T) {
	rec := RecordFromMap(map[string]string{
		ColPropertyID:     "CT-01",
		ColCheckinDate:    "2025-12-10",
		ColGuestLastName:  "Rossi",
		"cleaning_fee":    "30",
		"portal_room_ref": "A-12",
	})
	if rec.PropertyID != "CT-01" || rec.CheckinDate != "2025-12-10" || rec.GuestLastName != "Rossi" {
		t.Errorf("known columns wrong: %+v", rec)
	}
	if rec.Extra["cleaning_fee"] != "30" || rec.Extra["portal_room_ref"] != "A-12" {
		t.Errorf("extra columns lost: %v", rec.Extra)
	}
}

func TestToMap_RoundTrip(t *testing.T) {
	in := map[string]string{
		ColPropertyID:    "CT-01",
		ColCheckinDate:   "2025-12-10",
		ColGuestLastName: "Rossi",
		ColAICalls:       "3",
		"cleaning_fee":   "30",
	}
	out := RecordFromMap(in).ToMap()
	for col, want := range in {
		if out[col] != want {
			t.Errorf("out[%q] = %q, want %q", col, out[col], want)
		}
	}
	// Unset known columns read as empty, not absent.
	if v, ok := out[ColGuestEmail]; !ok || v != "" {
		t.Errorf("guest_email = (%q, %v)", v, ok)
	}
}

func TestMissingGuestDetails(t *testing.T) {
	complete := BookingRecord{GuestFirstName: "Mario", GuestLastName: "Rossi", GuestEmail: "m@example.com"}
	if complete.MissingGuestDetails() {
		t.Error("complete record flagged incomplete")
	}
	for _, rec := range []BookingRecord{
		{GuestLastName: "Rossi", GuestEmail: "m@example.com"},
		{GuestFirstName: "Mario", GuestEmail: "m@example.com"},
		{GuestFirstName: "Mario", GuestLastName: "Rossi"},
	} {
		if !rec.MissingGuestDetails() {
			t.Errorf("record %+v should be incomplete", rec)
		}
	}
}
