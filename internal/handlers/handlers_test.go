package handlers

import (
	"context"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Rahul24325/BgmiTournamentBot5/internal/config"
	"github.com/Rahul24325/BgmiTournamentBot5/internal/models"
	"github.com/Rahul24325/BgmiTournamentBot5/internal/service"
	"github.com/Rahul24325/BgmiTournamentBot5/internal/wizard"
)

const (
	adminID = int64(1000)
	userID  = int64(42)
	tid     = "64f000000000000000000001"
)

// sentMessage is one outbound call captured by the mock bot.
type sentMessage struct {
	chatID int64
	text   string
}

// mockBot records what the handlers send and can fail selected chats.
type mockBot struct {
	sent      []sentMessage
	failChats map[int64]bool
	order     *[]string
}

func (m *mockBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	var chatID int64
	var text string
	switch v := c.(type) {
	case tgbotapi.MessageConfig:
		chatID, text = v.ChatID, v.Text
	case tgbotapi.EditMessageTextConfig:
		chatID, text = v.ChatID, v.Text
	}
	if m.order != nil {
		*m.order = append(*m.order, "send")
	}
	if m.failChats[chatID] {
		return tgbotapi.Message{}, &tgbotapi.Error{Code: 403, Message: "Forbidden: bot was blocked by the user"}
	}
	m.sent = append(m.sent, sentMessage{chatID: chatID, text: text})
	return tgbotapi.Message{}, nil
}

func (m *mockBot) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (m *mockBot) GetChatMember(tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error) {
	return tgbotapi.ChatMember{Status: "member"}, nil
}

func (m *mockBot) lastTo(chatID int64) string {
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].chatID == chatID {
			return m.sent[i].text
		}
	}
	return ""
}

// stubRepo is an in-memory service.Repository good enough for handler
// flows: one tournament, a user table and a payment map.
type stubRepo struct {
	tournament *models.Tournament
	users      map[int64]*models.User
	payments   map[int64]*models.Payment

	created     *models.Tournament
	updates     []map[string]interface{}
	updateOrder *[]string
}

func newStubRepo() *stubRepo {
	oid, _ := primitive.ObjectIDFromHex(tid)
	return &stubRepo{
		tournament: &models.Tournament{
			ID:       oid,
			Name:     "Test Cup",
			EntryFee: 100,
			Type:     models.TournamentSquad,
			Status:   models.StatusActive,
		},
		users:    map[int64]*models.User{},
		payments: map[int64]*models.Payment{},
	}
}

func (r *stubRepo) UpsertUser(_ context.Context, id int64, username, firstName string) error {
	if _, ok := r.users[id]; !ok {
		r.users[id] = &models.User{UserID: id, Username: username, FirstName: firstName}
	}
	return nil
}

func (r *stubRepo) GetUser(_ context.Context, id int64) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return u, nil
}

func (r *stubRepo) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *stubRepo) SetUserMembership(_ context.Context, id int64, isMember bool) error {
	if u, ok := r.users[id]; ok {
		u.IsMember = isMember
	}
	return nil
}

func (r *stubRepo) IncTournamentsJoined(_ context.Context, id int64) error { return nil }

func (r *stubRepo) CreateTournament(_ context.Context, t *models.Tournament) (string, error) {
	r.created = t
	return tid, nil
}

func (r *stubRepo) GetTournament(_ context.Context, id string) (*models.Tournament, error) {
	if r.tournament == nil || id != r.tournament.HexID() {
		return nil, models.ErrNotFound
	}
	copied := *r.tournament
	return &copied, nil
}

func (r *stubRepo) ActiveTournaments(_ context.Context) ([]models.Tournament, error) {
	if r.tournament == nil || r.tournament.Status != models.StatusActive {
		return nil, nil
	}
	return []models.Tournament{*r.tournament}, nil
}

func (r *stubRepo) UpdateTournament(_ context.Context, id string, update map[string]interface{}) error {
	if r.tournament == nil || id != r.tournament.HexID() {
		return models.ErrNotFound
	}
	r.updates = append(r.updates, update)
	if r.updateOrder != nil {
		*r.updateOrder = append(*r.updateOrder, "update")
	}
	return nil
}

func (r *stubRepo) DeleteTournament(_ context.Context, id string) error {
	if r.tournament == nil || id != r.tournament.HexID() {
		return models.ErrNotFound
	}
	r.tournament = nil
	return nil
}

func (r *stubRepo) AddParticipant(_ context.Context, id string, uid int64) error {
	r.tournament.Participants = append(r.tournament.Participants, uid)
	return nil
}

func (r *stubRepo) ConfirmParticipant(_ context.Context, id string, uid int64) error {
	for _, existing := range r.tournament.ConfirmedPlayers {
		if existing == uid {
			return nil
		}
	}
	r.tournament.ConfirmedPlayers = append(r.tournament.ConfirmedPlayers, uid)
	return nil
}

func (r *stubRepo) CreatePayment(_ context.Context, uid int64, _ string, amount int) error {
	r.payments[uid] = &models.Payment{UserID: uid, TournamentID: tid, Amount: amount, Status: models.PaymentPending}
	return nil
}

func (r *stubRepo) GetUserPayment(_ context.Context, uid int64, _ string) (*models.Payment, error) {
	p, ok := r.payments[uid]
	if !ok {
		return nil, models.ErrNotFound
	}
	return p, nil
}

func (r *stubRepo) UpdatePaymentStatus(_ context.Context, uid int64, _ string, status string) error {
	p, ok := r.payments[uid]
	if !ok {
		return models.ErrNotFound
	}
	p.Status = status
	return nil
}

func (r *stubRepo) EarningsSince(context.Context, time.Time) (int, int, error) { return 0, 0, nil }

func (r *stubRepo) AddWinners(context.Context, string, []models.Winner) error { return nil }

func (r *stubRepo) TournamentWinners(context.Context, string) (*models.WinnerRecord, error) {
	return nil, models.ErrNotFound
}

func (r *stubRepo) CompleteStaleTournaments(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func newTestHandler(repo *stubRepo) (*BotHandler, *mockBot) {
	bot := &mockBot{failChats: map[int64]bool{}}
	cfg := &config.Config{
		Bot: config.BotConfig{
			AdminID:       adminID,
			AdminUsername: "@host",
			ChannelID:     -100500,
			ChannelURL:    "https://t.me/testchannel",
		},
		Payments: config.PaymentsConfig{UPIID: "host@upi"},
	}
	h := NewBotHandler(bot, service.NewService(repo), cfg)
	return h, bot
}

func commandMessage(from int64, text string) *tgbotapi.Message {
	cmdLen := len(text)
	if i := strings.IndexByte(text, ' '); i >= 0 {
		cmdLen = i
	}
	return &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: from, UserName: "tester", FirstName: "Tester"},
		Chat:      &tgbotapi.Chat{ID: from},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}},
	}
}

func textMessage(from int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: from, UserName: "tester", FirstName: "Tester"},
		Chat:      &tgbotapi.Chat{ID: from},
		Text:      text,
	}
}

func callback(from int64, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:   "cb1",
		From: &tgbotapi.User{ID: from, UserName: "tester"},
		Data: data,
		Message: &tgbotapi.Message{
			MessageID: 2,
			Chat:      &tgbotapi.Chat{ID: from},
		},
	}
}

func TestAdminCommandRejectedForNonAdmin(t *testing.T) {
	h, bot := newTestHandler(newStubRepo())

	h.HandleUpdate(tgbotapi.Update{Message: commandMessage(userID, "/createtournamentsolo")})

	if _, ok := h.sessions.Get(userID); ok {
		t.Error("unauthorized user got a wizard session")
	}
	if got := bot.lastTo(userID); !strings.Contains(got, "not authorized") {
		t.Errorf("expected rejection, got %q", got)
	}
}

func TestCreateTournamentWizardEndToEnd(t *testing.T) {
	repo := newStubRepo()
	h, bot := newTestHandler(repo)

	h.HandleUpdate(tgbotapi.Update{Message: commandMessage(adminID, "/createtournamentsquad")})
	if _, ok := h.sessions.Get(adminID); !ok {
		t.Fatal("admin command did not open a session")
	}

	for _, in := range []string{"Friday Night Scrims", "25/12/2025", "8:00 PM", "100", "5000", "Erangel", "host@upi"} {
		h.HandleUpdate(tgbotapi.Update{Message: textMessage(adminID, in)})
	}

	if repo.created == nil {
		t.Fatal("tournament was not created")
	}
	if repo.created.Name != "Friday Night Scrims" || repo.created.EntryFee != 100 || repo.created.PrizePool != 5000 {
		t.Errorf("created tournament wrong: %+v", repo.created)
	}
	if _, ok := h.sessions.Get(adminID); ok {
		t.Error("session survived the commit")
	}
	if got := bot.lastTo(adminID); !strings.Contains(got, "Created Successfully") {
		t.Errorf("missing summary, got %q", got)
	}
}

func TestCreateTournamentWizardReprompts(t *testing.T) {
	h, bot := newTestHandler(newStubRepo())

	h.HandleUpdate(tgbotapi.Update{Message: commandMessage(adminID, "/createtournamentsquad")})
	h.HandleUpdate(tgbotapi.Update{Message: textMessage(adminID, "ab")})

	s, ok := h.sessions.Get(adminID)
	if !ok {
		t.Fatal("session gone after rejected input")
	}
	if s.Step != wizard.StepName {
		t.Errorf("step moved after rejected input: %d", s.Step)
	}
	if got := bot.lastTo(adminID); !strings.Contains(got, "at least 3 characters") {
		t.Errorf("missing re-prompt, got %q", got)
	}
}

func TestRoomBroadcastPersistsBeforeDelivery(t *testing.T) {
	repo := newStubRepo()
	repo.tournament.ConfirmedPlayers = []int64{42, 43, 44}

	h, bot := newTestHandler(repo)
	bot.failChats[44] = true

	h.HandleUpdate(tgbotapi.Update{Message: commandMessage(adminID, "/sendroom")})
	h.HandleUpdate(tgbotapi.Update{CallbackQuery: callback(adminID, "select_tournament_room_"+tid)})
	h.HandleUpdate(tgbotapi.Update{Message: textMessage(adminID, "9912")})

	// Track ordering only for the final step, where persist and delivery
	// both happen.
	var order []string
	repo.updateOrder = &order
	bot.order = &order

	h.HandleUpdate(tgbotapi.Update{Message: textMessage(adminID, "secret")})

	if len(repo.updates) != 1 {
		t.Fatalf("expected one tournament update, got %d", len(repo.updates))
	}
	u := repo.updates[0]
	if u["room_id"] != "9912" || u["room_password"] != "secret" || u["room_details_sent"] != true {
		t.Errorf("persisted credentials wrong: %v", u)
	}
	if len(order) < 2 || order[0] != "update" {
		t.Errorf("credentials not persisted before delivery: %v", order)
	}

	report := bot.lastTo(adminID)
	if !strings.Contains(report, "Sent to: 2") || !strings.Contains(report, "Failed: 1") {
		t.Errorf("delivery report wrong:\n%s", report)
	}
	if got := bot.lastTo(42); !strings.Contains(got, "9912") || !strings.Contains(got, "secret") {
		t.Errorf("player did not get credentials: %q", got)
	}
}

func TestPaidFlowNotifiesAdmin(t *testing.T) {
	repo := newStubRepo()
	repo.tournament.Participants = []int64{userID}

	h, bot := newTestHandler(repo)

	h.HandleUpdate(tgbotapi.Update{Message: commandMessage(userID, "/paid")})

	p, ok := repo.payments[userID]
	if !ok || p.Status != models.PaymentPending || p.Amount != 100 {
		t.Fatalf("claim not recorded: %+v", p)
	}
	if got := bot.lastTo(adminID); !strings.Contains(got, "PAYMENT REQUEST") {
		t.Errorf("admin not notified: %q", got)
	}
	if got := bot.lastTo(userID); !strings.Contains(got, "Payment notification sent") {
		t.Errorf("user not acknowledged: %q", got)
	}

	// A second /paid finds nothing pending to claim.
	h.HandleUpdate(tgbotapi.Update{Message: commandMessage(userID, "/paid")})
	if got := bot.lastTo(userID); !strings.Contains(got, "No pending payments") {
		t.Errorf("duplicate claim not rejected: %q", got)
	}
}

func TestPaymentDecisionConfirms(t *testing.T) {
	repo := newStubRepo()
	repo.tournament.Participants = []int64{userID}
	repo.payments[userID] = &models.Payment{UserID: userID, TournamentID: tid, Amount: 100, Status: models.PaymentPending}

	h, bot := newTestHandler(repo)

	h.HandleUpdate(tgbotapi.Update{CallbackQuery: callback(adminID, "confirm_payment_42_"+tid)})

	if repo.payments[userID].Status != models.PaymentConfirmed {
		t.Errorf("payment status %q", repo.payments[userID].Status)
	}
	if len(repo.tournament.ConfirmedPlayers) != 1 || repo.tournament.ConfirmedPlayers[0] != userID {
		t.Errorf("confirmed players %v", repo.tournament.ConfirmedPlayers)
	}
	if got := bot.lastTo(userID); !strings.Contains(got, "Payment Confirmed") {
		t.Errorf("player not notified: %q", got)
	}
}

func TestPaymentDecisionRequiresAdmin(t *testing.T) {
	repo := newStubRepo()
	repo.payments[userID] = &models.Payment{UserID: userID, TournamentID: tid, Status: models.PaymentPending}

	h, _ := newTestHandler(repo)

	h.HandleUpdate(tgbotapi.Update{CallbackQuery: callback(userID, "confirm_payment_42_"+tid)})

	if repo.payments[userID].Status != models.PaymentPending {
		t.Errorf("non-admin changed payment status to %q", repo.payments[userID].Status)
	}
}

func TestCancelEndsSession(t *testing.T) {
	h, bot := newTestHandler(newStubRepo())

	h.HandleUpdate(tgbotapi.Update{Message: commandMessage(adminID, "/createtournamentsolo")})
	h.HandleUpdate(tgbotapi.Update{Message: commandMessage(adminID, "/cancel")})

	if _, ok := h.sessions.Get(adminID); ok {
		t.Error("session survived /cancel")
	}
	if got := bot.lastTo(adminID); !strings.Contains(got, "cancelled") {
		t.Errorf("missing cancel ack: %q", got)
	}

	// Cancelling with nothing open is harmless.
	h.HandleUpdate(tgbotapi.Update{Message: commandMessage(adminID, "/cancel")})
}

func TestDeclareWinnersFlow(t *testing.T) {
	repo := newStubRepo()
	h, bot := newTestHandler(repo)

	h.HandleUpdate(tgbotapi.Update{Message: commandMessage(adminID, "/declarewinners")})
	h.HandleUpdate(tgbotapi.Update{CallbackQuery: callback(adminID, "declare_winners_"+tid)})
	for _, line := range []string{"@alpha 25 500", "@bravo 18 300", "@charlie 12 200"} {
		h.HandleUpdate(tgbotapi.Update{Message: textMessage(adminID, line)})
	}

	var completed bool
	for _, u := range repo.updates {
		if u["status"] == models.StatusCompleted {
			completed = true
		}
	}
	if !completed {
		t.Error("tournament was not completed")
	}
	if got := bot.lastTo(h.cfg.Bot.ChannelID); !strings.Contains(got, "🥇 @alpha") {
		t.Errorf("channel announcement wrong: %q", got)
	}
	if got := bot.lastTo(adminID); !strings.Contains(got, "declared successfully") {
		t.Errorf("admin ack wrong: %q", got)
	}
}

func TestMembershipVerification(t *testing.T) {
	repo := newStubRepo()
	repo.users[userID] = &models.User{UserID: userID, Username: "tester"}

	h, bot := newTestHandler(repo)

	h.HandleUpdate(tgbotapi.Update{CallbackQuery: callback(userID, "verify_membership")})

	if !repo.users[userID].IsMember {
		t.Error("membership flag not set")
	}
	if got := bot.lastTo(userID); !strings.Contains(got, "Membership Verified") {
		t.Errorf("missing verification notice: %q", got)
	}
}
