package entity

// Booking status values
const (
	StatusPending = "pending"
	StatusReady   = "ready"
)

// Column names of the bookings sheet header. The header row of the
// backing sheet is authoritative; these constants name the columns the
// application understands.
const (
	ColPropertyID     = "property_id"
	ColBookingRef     = "booking_ref"
	ColSourcePortal   = "source_portal"
	ColCheckinDate    = "checkin_date"
	ColCheckinTime    = "checkin_time"
	ColCheckoutDate   = "checkout_date"
	ColCheckoutTime   = "checkout_time"
	ColGuestFirstName = "guest_first_name"
	ColGuestLastName  = "guest_last_name"
	ColGuestEmail     = "guest_email"
	ColGuestPhone     = "guest_phone"
	ColLocale         = "locale"
	ColStatus         = "status"
	ColAuthorized     = "authorized"
	ColWifiCoupon     = "wifi_coupon"
	ColCheckinCode    = "checkin_code"
	ColNotes          = "notes"
	ColAICalls        = "ai_calls"
)

// BookingRecord is one reservation row. All fields are string valued;
// an absent column reads as the empty string. Columns outside the known
// set land in Extra so nothing from the sheet header is lost.
type BookingRecord struct {
	PropertyID     string
	BookingRef     string
	SourcePortal   string
	CheckinDate    string
	CheckinTime    string
	CheckoutDate   string
	CheckoutTime   string
	GuestFirstName string
	GuestLastName  string
	GuestEmail     string
	GuestPhone     string
	Locale         string
	Status         string
	Authorized     string
	WifiCoupon     string
	CheckinCode    string
	Notes          string
	AICalls        string
	Extra          map[string]string
}

// RecordFromMap builds a BookingRecord from a header-keyed row.
func RecordFromMap(values map[string]string) BookingRecord {
	rec := BookingRecord{}
	for col, v := range values {
		switch col {
		case ColPropertyID:
			rec.PropertyID = v
		case ColBookingRef:
			rec.BookingRef = v
		case ColSourcePortal:
			rec.SourcePortal = v
		case ColCheckinDate:
			rec.CheckinDate = v
		case ColCheckinTime:
			rec.CheckinTime = v
		case ColCheckoutDate:
			rec.CheckoutDate = v
		case ColCheckoutTime:
			rec.CheckoutTime = v
		case ColGuestFirstName:
			rec.GuestFirstName = v
		case ColGuestLastName:
			rec.GuestLastName = v
		case ColGuestEmail:
			rec.GuestEmail = v
		case ColGuestPhone:
			rec.GuestPhone = v
		case ColLocale:
			rec.Locale = v
		case ColStatus:
			rec.Status = v
		case ColAuthorized:
			rec.Authorized = v
		case ColWifiCoupon:
			rec.WifiCoupon = v
		case ColCheckinCode:
			rec.CheckinCode = v
		case ColNotes:
			rec.Notes = v
		case ColAICalls:
			rec.AICalls = v
		default:
			if rec.Extra == nil {
				rec.Extra = make(map[string]string)
			}
			rec.Extra[col] = v
		}
	}
	return rec
}

// ToMap returns the record as a header-keyed map, Extra included.
func (r BookingRecord) ToMap() map[string]string {
	m := map[string]string{
		ColPropertyID:     r.PropertyID,
		ColBookingRef:     r.BookingRef,
		ColSourcePortal:   r.SourcePortal,
		ColCheckinDate:    r.CheckinDate,
		ColCheckinTime:    r.CheckinTime,
		ColCheckoutDate:   r.CheckoutDate,
		ColCheckoutTime:   r.CheckoutTime,
		ColGuestFirstName: r.GuestFirstName,
		ColGuestLastName:  r.GuestLastName,
		ColGuestEmail:     r.GuestEmail,
		ColGuestPhone:     r.GuestPhone,
		ColLocale:         r.Locale,
		ColStatus:         r.Status,
		ColAuthorized:     r.Authorized,
		ColWifiCoupon:     r.WifiCoupon,
		ColCheckinCode:    r.CheckinCode,
		ColNotes:          r.Notes,
		ColAICalls:        r.AICalls,
	}
	for col, v := range r.Extra {
		m[col] = v
	}
	return m
}

// MissingGuestDetails reports whether the row still lacks any of the
// guest identity fields a self-registration must provide.
func (r BookingRecord) MissingGuestDetails() bool {
	return r.GuestFirstName == "" || r.GuestLastName == "" || r.GuestEmail == ""
}
