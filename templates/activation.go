// Package templates renders the notification emails sent to guests
// and hosts.
package templates

import (
	"fmt"

	"github.com/navellino/concierge-backend/internal/domain/entity"
)

// ActivationEmail renders the concierge activation email for a guest,
// localized to it (default), en or es.
func ActivationEmail(rec entity.BookingRecord, locale string) (subject, html string) {
	name := rec.GuestFirstName
	if name == "" {
		name = rec.GuestLastName
	}
	code := orDash(rec.CheckinCode)
	wifi := orDash(rec.WifiCoupon)
	notes := rec.Notes

	switch locale {
	case "en":
		if name == "" {
			name = "Guest"
		}
		subject = "Your concierge is active – Welcome!"
		html = fmt.Sprintf(`<p>Hi %s,</p>
<p>Your concierge has been activated. Here are your details:</p>
<ul>
  <li><b>Check-in</b>: %s %s</li>
  <li><b>Door code</b>: %s</li>
  <li><b>Wi-Fi coupon</b>: %s</li>
</ul>
%s<p>If you need anything, just reply to this email.</p>
<p>Enjoy your stay!</p>`,
			name, rec.CheckinDate, rec.CheckinTime, code, wifi, notesBlock("Notes", notes))
	case "es":
		if name == "" {
			name = "Huésped"
		}
		subject = "Tu concierge está activo – ¡Bienvenido!"
		html = fmt.Sprintf(`<p>Hola %s,</p>
<p>Tu servicio de concierge ha sido activado. Aquí están tus datos:</p>
<ul>
  <li><b>Check-in</b>: %s %s</li>
  <li><b>Código de la puerta</b>: %s</li>
  <li><b>Cupón Wi-Fi</b>: %s</li>
</ul>
%s<p>Para cualquier cosa, responde a este correo.</p>
<p>¡Disfruta tu estancia!</p>`,
			name, rec.CheckinDate, rec.CheckinTime, code, wifi, notesBlock("Notas", notes))
	default:
		if name == "" {
			name = "Ospite"
		}
		subject = "Il tuo concierge è attivo – Benvenuto!"
		html = fmt.Sprintf(`<p>Ciao %s,</p>
<p>Il tuo concierge è stato attivato. Ecco i tuoi dettagli:</p>
<ul>
  <li><b>Check-in</b>: %s %s</li>
  <li><b>Codice porta</b>: %s</li>
  <li><b>Coupon Wi-Fi</b>: %s</li>
</ul>
%s<p>Per qualsiasi necessità rispondi a questa email.</p>
<p>Buon soggiorno!</p>`,
			name, rec.CheckinDate, rec.CheckinTime, code, wifi, notesBlock("Note", notes))
	}
	return subject, html
}

// HostAuthorizationEmail renders the notification asking the host to
// authorize a newly registered guest.
func HostAuthorizationEmail(rec entity.BookingRecord) (subject, html string) {
	guest := fmt.Sprintf("%s %s", rec.GuestFirstName, rec.GuestLastName)
	subject = fmt.Sprintf("Nuova registrazione ospite: %s", guest)
	html = fmt.Sprintf(`<p>Un ospite ha completato la registrazione:</p>
<ul>
  <li><b>Ospite</b>: %s</li>
  <li><b>Proprietà</b>: %s</li>
  <li><b>Arrivo</b>: %s</li>
  <li><b>Partenza</b>: %s</li>
  <li><b>Email</b>: %s</li>
  <li><b>Telefono</b>: %s</li>
</ul>
<p>Accedi al foglio prenotazioni per autorizzare il self check-in e impostare codice porta e coupon Wi-Fi.</p>`,
		guest, rec.PropertyID, rec.CheckinDate, rec.CheckoutDate, rec.GuestEmail, rec.GuestPhone)
	return subject, html
}

func orDash(v string) string {
	if v == "" {
		return "—"
	}
	return v
}

func notesBlock(label, notes string) string {
	if notes == "" {
		return ""
	}
	return fmt.Sprintf("<p><i>%s:</i> %s</p>\n", label, notes)
}
