package kb

// Typed accessors over well-known sections. Each falls back through
// FindSection, so a property or locale variant that is missing still
// resolves to the generic content.

// CheckinInfo describes the check-in window for a property.
type CheckinInfo struct {
	Start string
	End   string
	Text  string
}

// CheckoutInfo describes the checkout rule for a property.
type CheckoutInfo struct {
	Time string
	Text string
}

// EmergencyInfo carries the host contact for emergencies.
type EmergencyInfo struct {
	HostPhone string
	Text      string
}

// Checkin returns the CHECKIN section with its KV defaults applied.
func (i *Index) Checkin(propertyID, lang string) (CheckinInfo, bool) {
	s, ok := i.FindSection("CHECKIN", propertyID, lang)
	if !ok {
		return CheckinInfo{}, false
	}
	info := CheckinInfo{
		Start: s.KV["START"],
		End:   s.KV["END"],
		Text:  s.KV["TEXT"],
	}
	if info.Start == "" {
		info.Start = "12:00"
	}
	if info.End == "" {
		info.End = "22:00"
	}
	if info.Text == "" {
		info.Text = s.Text
	}
	return info, true
}

// Checkout returns the CHECKOUT section with its KV defaults applied.
func (i *Index) Checkout(propertyID, lang string) (CheckoutInfo, bool) {
	s, ok := i.FindSection("CHECKOUT", propertyID, lang)
	if !ok {
		return CheckoutInfo{}, false
	}
	info := CheckoutInfo{Time: s.KV["TIME"], Text: s.KV["TEXT"]}
	if info.Time == "" {
		info.Time = "10:00"
	}
	if info.Text == "" {
		info.Text = s.Text
	}
	return info, true
}

// Emergency returns the EMERGENCY section.
func (i *Index) Emergency(propertyID, lang string) (EmergencyInfo, bool) {
	s, ok := i.FindSection("EMERGENCY", propertyID, lang)
	if !ok {
		return EmergencyInfo{}, false
	}
	info := EmergencyInfo{HostPhone: s.KV["HOST_PHONE"], Text: s.KV["TEXT"]}
	if info.Text == "" {
		info.Text = s.Text
	}
	return info, true
}

// Restaurants returns the bullet items of the RESTAURANTS section.
func (i *Index) Restaurants(propertyID, lang string) []string {
	s, ok := i.FindSection("RESTAURANTS", propertyID, lang)
	if !ok {
		return nil
	}
	return s.Items
}
