package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/navellino/concierge-backend/internal/domain/entity"
	"github.com/navellino/concierge-backend/internal/domain/repository"
	"github.com/navellino/concierge-backend/internal/interface/kb"
)

const orchestratorKB = `# WIFI
@property:CT-01 @lang:it
SSID: CasaTramonto
PASSWORD: sunset2024

# WIFI
@property:CT-01 @lang:en
SSID: CasaTramonto
PASSWORD: sunset2024

# CHECKIN
@property:CT-01 @lang:it
START: 14:00
Le chiavi sono nella cassetta accanto alla porta.
`

type fakeResponder struct {
	mu     sync.Mutex
	reply  string
	err    error
	calls  []string
	lastRC repository.ResponderContext
}

func (r *fakeResponder) Generate(ctx context.Context, userMsg string, rc repository.ResponderContext) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, userMsg)
	r.lastRC = rc
	return r.reply, r.err
}

func (r *fakeResponder) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type fakeChatLogs struct {
	saved chan *entity.ChatLog
}

func newFakeChatLogs() *fakeChatLogs {
	return &fakeChatLogs{saved: make(chan *entity.ChatLog, 8)}
}

func (f *fakeChatLogs) Save(ctx context.Context, log *entity.ChatLog) error {
	f.saved <- log
	return nil
}

func (f *fakeChatLogs) waitForLog(t *testing.T) *entity.ChatLog {
	t.Helper()
	select {
	case entry := <-f.saved:
		return entry
	case <-time.After(2 * time.Second):
		t.Fatal("chat log was never saved")
		return nil
	}
}

func newTestOrchestrator(store *fakeStore, responder *fakeResponder, logs *fakeChatLogs) *ChatOrchestrator {
	matcher := NewBookingMatcher(store, testLogger(), testMetrics)
	knowledge := kb.NewIndex(orchestratorKB, testLogger())
	o := NewChatOrchestrator(matcher, knowledge, responder, logs, testLogger(), testMetrics)
	// A fixed clock past the default check-in time keeps gate
	// behavior deterministic.
	fixed, _ := time.Parse("2006-01-02 15:04", "2025-12-10 18:00")
	o.now = func() time.Time { return fixed }
	return o
}

func authorizedRow() map[string]string {
	row := rossiRow()
	row[entity.ColAuthorized] = "yes"
	row[entity.ColCheckinTime] = "14:00"
	row[entity.ColCheckinCode] = "9876"
	return row
}

func TestHandle_WifiAnsweredLocally(t *testing.T) {
	responder := &fakeResponder{reply: "should not be used"}
	logs := newFakeChatLogs()
	o := newTestOrchestrator(newFakeStore(rossiRow()), responder, logs)

	resp := o.Handle(context.Background(), ChatRequest{
		Message:    "Qual è la password del wifi?",
		PropertyID: "CT-01",
		Locale:     "it",
	})
	if resp.UsedAI {
		t.Error("wifi answer must come from the knowledge file, not AI")
	}
	if !strings.Contains(resp.Text, "sunset2024") {
		t.Errorf("answer should carry the password, got %q", resp.Text)
	}
	if responder.callCount() != 0 {
		t.Errorf("responder called %d times, want 0", responder.callCount())
	}
	entry := logs.waitForLog(t)
	if entry.UsedAI || entry.GuestMsg == "" {
		t.Errorf("log entry = %+v", entry)
	}
}

func TestHandle_WifiTranslatedForForeignLocale(t *testing.T) {
	responder := &fakeResponder{reply: "The wifi password is sunset2024."}
	o := newTestOrchestrator(newFakeStore(), responder, newFakeChatLogs())

	resp := o.Handle(context.Background(), ChatRequest{
		Message: "what is the wifi password?",
		Locale:  "en",
	})
	if !resp.UsedAI {
		t.Error("foreign-locale answer goes through the translator")
	}
	if resp.Text != "The wifi password is sunset2024." {
		t.Errorf("text = %q", resp.Text)
	}
	if responder.callCount() != 1 || !strings.Contains(responder.calls[0], "Translate this into en") {
		t.Errorf("translation prompt missing, calls = %v", responder.calls)
	}
}

func TestHandle_TranslationFailureServesOriginal(t *testing.T) {
	responder := &fakeResponder{err: errors.New("quota exceeded")}
	o := newTestOrchestrator(newFakeStore(), responder, newFakeChatLogs())

	resp := o.Handle(context.Background(), ChatRequest{
		Message: "wifi password please",
		Locale:  "en",
	})
	if resp.UsedAI {
		t.Error("failed translation must not claim AI was used")
	}
	if !strings.Contains(resp.Text, "sunset2024") {
		t.Errorf("original snippet expected, got %q", resp.Text)
	}
}

func TestHandle_FirstContact(t *testing.T) {
	incomplete := map[string]string{
		entity.ColPropertyID:  "CT-01",
		entity.ColCheckinDate: "2025-12-20",
	}
	o := newTestOrchestrator(newFakeStore(incomplete), &fakeResponder{}, newFakeChatLogs())

	resp := o.Handle(context.Background(), ChatRequest{FirstContact: true})
	if !strings.Contains(resp.Text, "date del soggiorno") {
		t.Errorf("incomplete booking should trigger the registration invite, got %q", resp.Text)
	}

	o = newTestOrchestrator(newFakeStore(rossiRow()), &fakeResponder{}, newFakeChatLogs())
	resp = o.Handle(context.Background(), ChatRequest{FirstContact: true})
	if !strings.Contains(resp.Text, "concierge") {
		t.Errorf("fully registered property should get the generic welcome, got %q", resp.Text)
	}
}

func TestHandle_DatesOnly(t *testing.T) {
	incomplete := map[string]string{
		entity.ColPropertyID:   "CT-01",
		entity.ColCheckinDate:  "2025-12-20",
		entity.ColCheckoutDate: "2025-12-23",
	}
	o := newTestOrchestrator(newFakeStore(rossiRow(), incomplete), &fakeResponder{}, newFakeChatLogs())

	// No booking with those dates.
	resp := o.Handle(context.Background(), ChatRequest{ArrivalDate: "2026-01-01", DepartureDate: "2026-01-05"})
	if !strings.Contains(resp.Text, "Non trovo") {
		t.Errorf("text = %q", resp.Text)
	}

	// Incomplete booking found: ask for guest details.
	resp = o.Handle(context.Background(), ChatRequest{ArrivalDate: "20/12/2025", DepartureDate: "23/12/2025"})
	if !strings.Contains(resp.Text, "nome, cognome") {
		t.Errorf("text = %q", resp.Text)
	}

	// Complete booking found: confirm instead.
	resp = o.Handle(context.Background(), ChatRequest{ArrivalDate: "10/12/2025", DepartureDate: "13/12/2025"})
	if !strings.Contains(resp.Text, "già registrata") {
		t.Errorf("text = %q", resp.Text)
	}
}

func TestHandle_RegistrationWritesRow(t *testing.T) {
	incomplete := map[string]string{
		entity.ColPropertyID:   "CT-01",
		entity.ColCheckinDate:  "2025-12-20",
		entity.ColCheckoutDate: "2025-12-23",
	}
	store := newFakeStore(incomplete)
	o := newTestOrchestrator(store, &fakeResponder{}, newFakeChatLogs())

	req := ChatRequest{
		ArrivalDate:   "2025-12-20",
		DepartureDate: "2025-12-23",
		FirstName:     "Anna",
		LastName:      "Verdi",
		Email:         "anna@example.com",
		Phone:         "+39 333 0000000",
		Locale:        "it",
	}
	resp := o.Handle(context.Background(), req)
	if !strings.Contains(resp.Text, "registrazione è completa") {
		t.Fatalf("text = %q", resp.Text)
	}

	rec, err := store.Read(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.GuestFirstName != "Anna" || rec.GuestEmail != "anna@example.com" {
		t.Errorf("guest fields not written: %+v", rec)
	}
	if !strings.Contains(rec.Notes, "Telefono ospite: +39 333 0000000") {
		t.Errorf("phone note missing from notes: %q", rec.Notes)
	}

	// Registering again must not duplicate the phone note.
	o.Handle(context.Background(), req)
	rec, _ = store.Read(context.Background(), 2)
	if strings.Count(rec.Notes, "Telefono ospite") != 1 {
		t.Errorf("phone note duplicated: %q", rec.Notes)
	}
}

func TestMergePhoneNote(t *testing.T) {
	tests := []struct {
		notes, phone, want string
	}{
		{"", "", ""},
		{"culla richiesta", "", "culla richiesta"},
		{"", "+39 1", "Telefono ospite: +39 1"},
		{"culla", "+39 1", "culla\nTelefono ospite: +39 1"},
		{"culla\nTelefono ospite: +39 1", "+39 1", "culla\nTelefono ospite: +39 1"},
	}
	for _, tc := range tests {
		if got := MergePhoneNote(tc.notes, tc.phone); got != tc.want {
			t.Errorf("MergePhoneNote(%q, %q) = %q, want %q", tc.notes, tc.phone, got, tc.want)
		}
	}
}

func TestHandle_DoorCodeGate(t *testing.T) {
	responder := &fakeResponder{reply: "irrelevant"}
	o := newTestOrchestrator(newFakeStore(authorizedRow()), responder, newFakeChatLogs())

	resp := o.Handle(context.Background(), ChatRequest{
		Message:     "mi serve il codice della porta",
		ArrivalDate: "2025-12-10",
		LastName:    "Rossi",
	})
	if !strings.Contains(resp.Text, "9876") {
		t.Errorf("authorized guest past check-in time should get the code, got %q", resp.Text)
	}
	if responder.callCount() != 0 {
		t.Error("door code disclosure must not involve the generator")
	}

	unauthorized := authorizedRow()
	unauthorized[entity.ColAuthorized] = "no"
	o = newTestOrchestrator(newFakeStore(unauthorized), responder, newFakeChatLogs())
	resp = o.Handle(context.Background(), ChatRequest{
		Message:     "door code?",
		ArrivalDate: "2025-12-10",
		LastName:    "Rossi",
	})
	if strings.Contains(resp.Text, "9876") {
		t.Errorf("unauthorized guest must never see the code, got %q", resp.Text)
	}
}

func TestHandle_CodeScrubbedFromAIContext(t *testing.T) {
	unauthorized := authorizedRow()
	unauthorized[entity.ColAuthorized] = "no"
	responder := &fakeResponder{reply: "una risposta"}
	o := newTestOrchestrator(newFakeStore(unauthorized), responder, newFakeChatLogs())

	// A generic question still reaches the generator, but the gated
	// code must not travel with the booking context.
	o.Handle(context.Background(), ChatRequest{
		Message:     "dove posso parcheggiare?",
		ArrivalDate: "2025-12-10",
		LastName:    "Rossi",
	})
	if responder.callCount() != 1 {
		t.Fatalf("responder calls = %d, want 1", responder.callCount())
	}
	if responder.lastRC.Booking.CheckinCode != "" {
		t.Errorf("check-in code leaked into the AI context: %q", responder.lastRC.Booking.CheckinCode)
	}
	if !responder.lastRC.HasBooking {
		t.Error("booking context should still be attached")
	}
}

func TestHandle_AIBudgetExhausted(t *testing.T) {
	row := authorizedRow()
	row[entity.ColAICalls] = "8"
	responder := &fakeResponder{reply: "irrelevant"}
	o := newTestOrchestrator(newFakeStore(row), responder, newFakeChatLogs())

	resp := o.Handle(context.Background(), ChatRequest{
		Message:     "consigli per una gita in barca?",
		ArrivalDate: "2025-12-10",
		LastName:    "Rossi",
	})
	if resp.Text != aiBudgetMessage {
		t.Errorf("text = %q, want the budget message", resp.Text)
	}
	if responder.callCount() != 0 {
		t.Error("exhausted budget must not call the generator")
	}
}

func TestHandle_AIPathIncrementsCounter(t *testing.T) {
	row := authorizedRow()
	row[entity.ColAICalls] = "2"
	store := newFakeStore(row)
	responder := &fakeResponder{reply: "Ecco qualche consiglio."}
	o := newTestOrchestrator(store, responder, newFakeChatLogs())

	resp := o.Handle(context.Background(), ChatRequest{
		Message:     "cosa posso visitare in zona?",
		ArrivalDate: "2025-12-10",
		LastName:    "Rossi",
	})
	if !resp.UsedAI || resp.Text != "Ecco qualche consiglio." {
		t.Fatalf("resp = %+v", resp)
	}
	rec, _ := store.Read(context.Background(), 2)
	if rec.AICalls != "3" {
		t.Errorf("ai_calls = %q, want 3", rec.AICalls)
	}
	if responder.lastRC.Season == "" || responder.lastRC.Daypart == "" {
		t.Errorf("season/daypart missing from context: %+v", responder.lastRC)
	}
}

func TestHandle_AIFailureDegradesToFallback(t *testing.T) {
	responder := &fakeResponder{err: errors.New("backend down")}
	o := newTestOrchestrator(newFakeStore(), responder, newFakeChatLogs())

	resp := o.Handle(context.Background(), ChatRequest{Message: "domanda qualunque"})
	if resp.Text != aiFallbackMessage || resp.UsedAI {
		t.Errorf("resp = %+v", resp)
	}
}

func TestHandle_DefaultsPropertyAndLocale(t *testing.T) {
	logs := newFakeChatLogs()
	o := newTestOrchestrator(newFakeStore(), &fakeResponder{reply: "ok"}, logs)

	o.Handle(context.Background(), ChatRequest{Message: "ciao"})
	entry := logs.waitForLog(t)
	if entry.PropertyID != "CT-01" || entry.Locale != "it" {
		t.Errorf("defaults not applied: %+v", entry)
	}
}
