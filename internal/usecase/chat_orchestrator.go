package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/navellino/concierge-backend/internal/domain/entity"
	"github.com/navellino/concierge-backend/internal/domain/repository"
	"github.com/navellino/concierge-backend/internal/interface/kb"
	"github.com/navellino/concierge-backend/pkg/logger"
	"github.com/navellino/concierge-backend/pkg/metrics"
)

// ChatRequest is one incoming guest message with whatever identity
// hints the widget collected.
type ChatRequest struct {
	Message       string
	PropertyID    string
	Locale        string
	ArrivalDate   string
	DepartureDate string
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	FirstContact  bool
}

// ChatResponse is the assembled answer.
type ChatResponse struct {
	Text   string
	UsedAI bool
}

const aiFallbackMessage = "Mi dispiace, al momento non riesco a rispondere. Riprova tra poco o contatta l'host."

const aiBudgetMessage = "Hai raggiunto il limite di domande per questa prenotazione. Per altre richieste contatta direttamente l'host."

// ChatOrchestrator sequences the per-message decision flow:
// registration fast paths, record lookup, knowledge retrieval, local
// rule-based answers, and AI generation as the last resort. The door
// code gate applies across every path.
type ChatOrchestrator struct {
	matcher   *BookingMatcher
	knowledge repository.KnowledgeIndex
	responder repository.Responder
	chatLogs  repository.ChatLogRepository
	logger    logger.Logger
	metrics   *metrics.Metrics

	now func() time.Time
}

// NewChatOrchestrator wires the chat flow.
func NewChatOrchestrator(
	matcher *BookingMatcher,
	knowledge repository.KnowledgeIndex,
	responder repository.Responder,
	chatLogs repository.ChatLogRepository,
	log logger.Logger,
	m *metrics.Metrics,
) *ChatOrchestrator {
	return &ChatOrchestrator{
		matcher:   matcher,
		knowledge: knowledge,
		responder: responder,
		chatLogs:  chatLogs,
		logger:    log,
		metrics:   m,
		now:       time.Now,
	}
}

// Handle runs the decision sequence for one message. It never returns
// an error to the guest: every failure path degrades to a fixed
// message.
func (o *ChatOrchestrator) Handle(ctx context.Context, req ChatRequest) ChatResponse {
	start := o.now()
	if req.PropertyID == "" {
		req.PropertyID = "CT-01"
	}
	if req.Locale == "" {
		req.Locale = "it"
	}

	resp := o.dispatch(ctx, req)

	o.metrics.ChatsHandled.Inc()
	o.metrics.ChatLatency.Observe(o.now().Sub(start).Seconds())
	o.logExchange(req, resp)
	return resp
}

func (o *ChatOrchestrator) dispatch(ctx context.Context, req ChatRequest) ChatResponse {
	if req.FirstContact {
		return o.handleFirstContact(ctx, req)
	}
	if req.ArrivalDate != "" && req.DepartureDate != "" && req.LastName == "" {
		return o.handleDatesOnly(ctx, req)
	}
	if req.ArrivalDate != "" && req.DepartureDate != "" &&
		req.FirstName != "" && req.LastName != "" && req.Email != "" && req.Phone != "" {
		return o.handleRegistration(ctx, req)
	}
	return o.handleQuestion(ctx, req)
}

// handleFirstContact branches purely on whether any incomplete
// bookings exist for the property; no record lookup beyond that.
func (o *ChatOrchestrator) handleFirstContact(ctx context.Context, req ChatRequest) ChatResponse {
	incomplete, err := o.matcher.ListIncompleteBookings(ctx, req.PropertyID)
	if err != nil {
		o.logger.Error("First-contact lookup failed", "error", err)
		o.metrics.ErrorsCount.WithLabelValues("first_contact").Inc()
	}
	if len(incomplete) > 0 {
		return ChatResponse{Text: "Benvenuto! Per completare la registrazione dimmi le date del soggiorno (arrivo e partenza)."}
	}
	return ChatResponse{Text: "Benvenuto! Sono il concierge della struttura: chiedimi pure di wifi, check-in, parcheggio o consigli sulla zona."}
}

// handleDatesOnly resolves the booking by date pair and either asks
// for the missing guest details or confirms an existing registration.
func (o *ChatOrchestrator) handleDatesOnly(ctx context.Context, req ChatRequest) ChatResponse {
	_, rec, count, err := o.matcher.FindBookingByDates(ctx, req.ArrivalDate, req.DepartureDate, req.PropertyID, false)
	if err != nil {
		o.logger.Error("Lookup by dates failed", "error", err)
		o.metrics.ErrorsCount.WithLabelValues("find_by_dates").Inc()
		return ChatResponse{Text: aiFallbackMessage}
	}
	switch {
	case count == 0:
		return ChatResponse{Text: "Non trovo una prenotazione con quelle date. Controlla le date di arrivo e partenza e riprova."}
	case count > 1:
		return ChatResponse{Text: "Ho trovato più prenotazioni con quelle date: indicami anche il cognome per favore."}
	}
	if rec.MissingGuestDetails() {
		return ChatResponse{Text: "Ho trovato la tua prenotazione! Per completare la registrazione mandami nome, cognome, email e telefono."}
	}
	name := strings.TrimSpace(rec.GuestFirstName + " " + rec.GuestLastName)
	return ChatResponse{Text: fmt.Sprintf("La prenotazione di %s risulta già registrata. Come posso aiutarti?", name)}
}

// handleRegistration completes a self-registration: one match by
// dates gets the guest fields written in place, merging the phone note
// into notes idempotently.
func (o *ChatOrchestrator) handleRegistration(ctx context.Context, req ChatRequest) ChatResponse {
	pos, rec, count, err := o.matcher.FindBookingByDates(ctx, req.ArrivalDate, req.DepartureDate, req.PropertyID, false)
	if err != nil {
		o.logger.Error("Registration lookup failed", "error", err)
		o.metrics.ErrorsCount.WithLabelValues("registration").Inc()
		return ChatResponse{Text: aiFallbackMessage}
	}
	switch {
	case count == 0:
		return ChatResponse{Text: "Non trovo una prenotazione con quelle date: controlla i dati e riprova."}
	case count > 1:
		return ChatResponse{Text: "Ho trovato più prenotazioni con quelle date: contatta l'host per completare la registrazione."}
	}

	notes := MergePhoneNote(rec.Notes, req.Phone)
	payload := map[string]string{
		entity.ColGuestFirstName: req.FirstName,
		entity.ColGuestLastName:  req.LastName,
		entity.ColGuestEmail:     req.Email,
		entity.ColGuestPhone:     req.Phone,
		entity.ColLocale:         req.Locale,
		entity.ColNotes:          notes,
	}
	if err := o.matcher.store.Update(ctx, pos, payload); err != nil {
		o.logger.Error("Registration update failed", "position", pos, "error", err)
		o.metrics.ErrorsCount.WithLabelValues("registration").Inc()
		return ChatResponse{Text: aiFallbackMessage}
	}
	o.metrics.RowsWritten.Inc()
	return ChatResponse{Text: fmt.Sprintf("Grazie %s, la registrazione è completa! L'host riceverà i tuoi dati e ti autorizzerà al self check-in.", req.FirstName)}
}

// MergePhoneNote appends the guest phone line to notes unless the
// exact line is already present.
func MergePhoneNote(notes, phone string) string {
	if phone == "" {
		return notes
	}
	phoneNote := "Telefono ospite: " + phone
	if strings.Contains(notes, phoneNote) {
		return notes
	}
	if notes == "" {
		return phoneNote
	}
	return notes + "\n" + phoneNote
}

// handleQuestion is the general flow: best-effort booking lookup,
// knowledge retrieval, local answer, then AI generation.
func (o *ChatOrchestrator) handleQuestion(ctx context.Context, req ChatRequest) ChatResponse {
	var booking entity.BookingRecord
	var position int
	hasBooking := false
	if req.ArrivalDate != "" && req.LastName != "" {
		pos, rec, count, err := o.matcher.FindBooking(ctx, req.ArrivalDate, req.LastName, req.FirstName, req.PropertyID)
		if err != nil {
			o.logger.Warn("Best-effort booking lookup failed", "error", err)
		} else if count == 1 {
			booking = *rec
			position = pos
			hasBooking = true
		}
	}

	snippets := o.knowledge.SnippetsFor(req.Message, req.PropertyID, req.Locale, 6)

	if hasBooking && asksForDoorCode(req.Message) {
		if denial, ok := CodeGate(o.now(), booking); !ok {
			return ChatResponse{Text: denial}
		}
		return ChatResponse{Text: fmt.Sprintf("Il codice della porta è %s. Buon soggiorno!", booking.CheckinCode)}
	}

	if local := AnswerFromSnippets(req.Message, snippets); local != "" {
		if req.Locale != "it" {
			return o.translate(ctx, req, local)
		}
		return ChatResponse{Text: local}
	}

	if hasBooking && !CanUseAI(booking) {
		return ChatResponse{Text: aiBudgetMessage}
	}

	// Never hand the door code to the generator while the gate denies.
	if hasBooking {
		if _, ok := CodeGate(o.now(), booking); !ok {
			booking.CheckinCode = ""
		}
	}

	nowT := o.now()
	text, err := o.responder.Generate(ctx, req.Message, repository.ResponderContext{
		Snippets:   snippets,
		Booking:    booking,
		HasBooking: hasBooking,
		PropertyID: req.PropertyID,
		Locale:     req.Locale,
		Season:     kb.Season(nowT),
		Daypart:    kb.Daypart(nowT),
	})
	if err != nil {
		o.logger.Error("AI generation failed", "error", err)
		o.metrics.ErrorsCount.WithLabelValues("ai_generate").Inc()
		return ChatResponse{Text: aiFallbackMessage}
	}
	o.metrics.AICallsTotal.Inc()
	if hasBooking {
		if err := o.matcher.IncrementAICalls(ctx, position, booking); err != nil {
			o.logger.Warn("Could not increment AI call counter", "position", position, "error", err)
		}
	}
	return ChatResponse{Text: text, UsedAI: true}
}

// translate passes a local answer through the generator as a literal
// translation request, keeping embedded codes and numbers intact.
func (o *ChatOrchestrator) translate(ctx context.Context, req ChatRequest, local string) ChatResponse {
	nowT := o.now()
	prompt := fmt.Sprintf("Translate this into %s, keep all codes and numbers identical:\n%s", req.Locale, local)
	text, err := o.responder.Generate(ctx, prompt, repository.ResponderContext{
		PropertyID: req.PropertyID,
		Locale:     req.Locale,
		Season:     kb.Season(nowT),
		Daypart:    kb.Daypart(nowT),
	})
	if err != nil {
		o.logger.Warn("Translation failed, serving the original", "error", err)
		return ChatResponse{Text: local}
	}
	o.metrics.AICallsTotal.Inc()
	return ChatResponse{Text: text, UsedAI: true}
}

// AnswerFromSnippets tries a deterministic answer from the retrieved
// snippets without involving the generator. Today it covers the wifi
// keyword family; the matching snippet is returned verbatim.
func AnswerFromSnippets(userMsg string, snippets []string) string {
	msg := strings.ToLower(userMsg)
	if strings.Contains(msg, "wifi") || strings.Contains(msg, "wi-fi") || strings.Contains(msg, "password") {
		for _, sn := range snippets {
			lower := strings.ToLower(sn)
			if strings.Contains(lower, "wifi") || strings.Contains(lower, "wi-fi") {
				return strings.TrimSpace(sn)
			}
		}
	}
	return ""
}

func asksForDoorCode(msg string) bool {
	m := strings.ToLower(msg)
	for _, kw := range []string{"codice", "door code", "codigo", "código"} {
		if strings.Contains(m, kw) {
			return true
		}
	}
	return false
}

// logExchange persists the outcome best effort; a failed save never
// aborts the response.
func (o *ChatOrchestrator) logExchange(req ChatRequest, resp ChatResponse) {
	entry := &entity.ChatLog{
		Timestamp:  o.now(),
		PropertyID: req.PropertyID,
		Locale:     req.Locale,
		GuestMsg:   req.Message,
		BotMsg:     resp.Text,
		UsedAI:     resp.UsedAI,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := o.chatLogs.Save(ctx, entry); err != nil {
			o.logger.Warn("Chat log save failed", "error", err)
		}
	}()
}
