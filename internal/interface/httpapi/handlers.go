package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/navellino/concierge-backend/internal/domain/entity"
	"github.com/navellino/concierge-backend/internal/usecase"
	"github.com/navellino/concierge-backend/templates"
)

type chatRequest struct {
	Message       string `json:"message"`
	PropertyID    string `json:"propertyId"`
	Locale        string `json:"locale"`
	ArrivalDate   string `json:"arrival_date"`
	DepartureDate string `json:"departure_date"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	GuestEmail    string `json:"guest_email"`
	Phone         string `json:"phone"`
	FirstContact  bool   `json:"first_contact"`
}

type chatResponse struct {
	Text   string `json:"text"`
	UsedAI bool   `json:"used_ai"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.PropertyID == "" {
		req.PropertyID = s.defaultPropertyID
	}

	resp := s.orchestrator.Handle(r.Context(), usecase.ChatRequest{
		Message:       req.Message,
		PropertyID:    req.PropertyID,
		Locale:        req.Locale,
		ArrivalDate:   req.ArrivalDate,
		DepartureDate: req.DepartureDate,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.GuestEmail,
		Phone:         req.Phone,
		FirstContact:  req.FirstContact,
	})
	writeJSON(w, http.StatusOK, chatResponse{Text: resp.Text, UsedAI: resp.UsedAI})
}

type matchGuestRequest struct {
	ArrivalDate string `json:"arrival_date"`
	LastName    string `json:"last_name"`
	FirstName   string `json:"first_name"`
	PropertyID  string `json:"property_id"`
}

type matchGuestResponse struct {
	Status   string            `json:"status"`
	Message  string            `json:"message,omitempty"`
	RowIndex int               `json:"row_index,omitempty"`
	Data     map[string]string `json:"data,omitempty"`
}

func (s *Server) handleMatchGuest(w http.ResponseWriter, r *http.Request) {
	var req matchGuestRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pos, _, count, err := s.matcher.FindBooking(r.Context(), req.ArrivalDate, req.LastName, req.FirstName, req.PropertyID)
	if err != nil {
		s.logger.Error("Match guest failed", "error", err)
		s.metrics.ErrorsCount.WithLabelValues("match_guest").Inc()
		writeJSON(w, http.StatusInternalServerError, matchGuestResponse{Status: "error", Message: "lookup failed"})
		return
	}
	switch {
	case count == 0:
		writeJSON(w, http.StatusOK, matchGuestResponse{Status: "not_found", Message: "Nessuna prenotazione trovata."})
	case count > 1:
		writeJSON(w, http.StatusOK, matchGuestResponse{
			Status:  "ambiguous",
			Message: fmt.Sprintf("Sono state trovate %d prenotazioni: specifica anche nome o property_id.", count),
		})
	default:
		// Re-read the live row before answering.
		live, err := s.matcher.ReadRow(r.Context(), pos)
		if err != nil {
			s.logger.Error("Match guest re-read failed", "position", pos, "error", err)
			writeJSON(w, http.StatusInternalServerError, matchGuestResponse{Status: "error", Message: "lookup failed"})
			return
		}
		writeJSON(w, http.StatusOK, matchGuestResponse{Status: "ok", RowIndex: pos, Data: live.ToMap()})
	}
}

type guestRegisterRequest struct {
	ArrivalDate  string `json:"arrival_date"`
	LastName     string `json:"last_name"`
	FirstName    string `json:"first_name"`
	GuestEmail   string `json:"guest_email"`
	PropertyID   string `json:"property_id"`
	Locale       string `json:"locale"`
	Phone        string `json:"phone"`
	CheckoutDate string `json:"checkout_date"`
	Notes        string `json:"notes"`
}

type guestRegisterResponse struct {
	Status       string            `json:"status"`
	Action       string            `json:"action,omitempty"`
	Message      string            `json:"message,omitempty"`
	Data         map[string]string `json:"data,omitempty"`
	Notification string            `json:"notification,omitempty"`
}

func (s *Server) handleGuestRegister(w http.ResponseWriter, r *http.Request) {
	var req guestRegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.PropertyID == "" {
		req.PropertyID = s.defaultPropertyID
	}
	if req.Locale == "" {
		req.Locale = "it"
	}

	payload := map[string]string{
		entity.ColPropertyID:     req.PropertyID,
		entity.ColCheckinDate:    req.ArrivalDate,
		entity.ColCheckoutDate:   req.CheckoutDate,
		entity.ColGuestLastName:  req.LastName,
		entity.ColGuestFirstName: req.FirstName,
		entity.ColGuestEmail:     req.GuestEmail,
		entity.ColGuestPhone:     req.Phone,
		entity.ColLocale:         req.Locale,
		entity.ColNotes:          usecase.MergePhoneNote(req.Notes, req.Phone),
		entity.ColStatus:         entity.StatusPending,
		entity.ColAuthorized:     "no",
	}

	result, err := s.matcher.UpsertBooking(r.Context(), req.ArrivalDate, req.LastName, req.FirstName, payload)
	if err != nil {
		var ambiguous *usecase.AmbiguousMatchError
		if errors.As(err, &ambiguous) {
			writeJSON(w, http.StatusConflict, guestRegisterResponse{
				Status:  "ambiguous",
				Message: fmt.Sprintf("Trovate %d prenotazioni per quei dati: contatta l'host.", ambiguous.Count),
			})
			return
		}
		s.logger.Error("Guest register failed", "error", err)
		s.metrics.ErrorsCount.WithLabelValues("guest_register").Inc()
		writeJSON(w, http.StatusInternalServerError, guestRegisterResponse{Status: "error", Message: "registration failed"})
		return
	}

	notification := s.notifyHost(result.Record)
	writeJSON(w, http.StatusOK, guestRegisterResponse{
		Status:       "ok",
		Action:       result.Action,
		Data:         result.Record.ToMap(),
		Notification: notification,
	})
}

// notifyHost emails the host list about the registration. Delivery
// problems come back as status text; the record write stands either
// way.
func (s *Server) notifyHost(rec entity.BookingRecord) string {
	if len(s.hostEmails) == 0 {
		return "Email host non configurata: nessuna notifica inviata."
	}
	subject, html := templates.HostAuthorizationEmail(rec)
	for _, email := range s.hostEmails {
		if err := s.sender.Send(email, subject, html); err != nil {
			s.logger.Error("Host notification failed", "to", email, "error", err)
			return fmt.Sprintf("Errore invio email host: %v", err)
		}
		s.metrics.EmailsSent.Inc()
	}
	return fmt.Sprintf("Notifica inviata all'host (%s).", strings.Join(s.hostEmails, ", "))
}

type hostAuthorizeRequest struct {
	ArrivalDate string `json:"arrival_date"`
	LastName    string `json:"last_name"`
	FirstName   string `json:"first_name"`
	CheckinCode string `json:"checkin_code"`
	WifiCoupon  string `json:"wifi_coupon"`
	Notes       string `json:"notes"`
}

type hostAuthorizeResponse struct {
	Status   string            `json:"status"`
	Message  string            `json:"message,omitempty"`
	RowIndex int               `json:"row_index,omitempty"`
	Data     map[string]string `json:"data,omitempty"`
}

func (s *Server) handleHostAuthorize(w http.ResponseWriter, r *http.Request) {
	var req hostAuthorizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := s.matcher.AuthorizeGuest(r.Context(), req.ArrivalDate, req.LastName, req.FirstName, req.CheckinCode, req.WifiCoupon, req.Notes)
	if err != nil {
		s.logger.Error("Host authorize failed", "error", err)
		s.metrics.ErrorsCount.WithLabelValues("host_authorize").Inc()
		writeJSON(w, http.StatusInternalServerError, hostAuthorizeResponse{Status: "error", Message: "authorization failed"})
		return
	}
	if result.Status != usecase.AuthorizeOK {
		writeJSON(w, http.StatusOK, hostAuthorizeResponse{Status: result.Status, Message: result.Message})
		return
	}

	message := s.notifyGuest(result.Record)
	writeJSON(w, http.StatusOK, hostAuthorizeResponse{
		Status:   result.Status,
		Message:  message,
		RowIndex: result.Position,
		Data:     result.Record.ToMap(),
	})
}

// notifyGuest sends the activation email when the guest left an
// address.
func (s *Server) notifyGuest(rec entity.BookingRecord) string {
	guestEmail := strings.TrimSpace(rec.GuestEmail)
	if guestEmail == "" {
		return "Nessuna email guest disponibile"
	}
	locale := strings.ToLower(rec.Locale)
	subject, html := templates.ActivationEmail(rec, locale)
	if err := s.sender.Send(guestEmail, subject, html); err != nil {
		s.logger.Error("Guest activation email failed", "to", guestEmail, "error", err)
		return fmt.Sprintf("Email non inviata: %v", err)
	}
	s.metrics.EmailsSent.Inc()
	return "Email inviata a " + guestEmail
}
