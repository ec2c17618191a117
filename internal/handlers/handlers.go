package handlers

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Rahul24325/BgmiTournamentBot5/internal/config"
	"github.com/Rahul24325/BgmiTournamentBot5/internal/format"
	"github.com/Rahul24325/BgmiTournamentBot5/internal/logger"
	"github.com/Rahul24325/BgmiTournamentBot5/internal/service"
	"github.com/Rahul24325/BgmiTournamentBot5/internal/wizard"
)

const errGeneric = "❌ An error occurred. Please try again."

// botAPI is the slice of tgbotapi.BotAPI the handlers use. Narrowed so
// tests can run without the network.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetChatMember(cfg tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

type BotHandler struct {
	bot      botAPI
	service  *service.Service
	cfg      *config.Config
	sessions *wizard.Store
}

func NewBotHandler(bot botAPI, svc *service.Service, cfg *config.Config) *BotHandler {
	return &BotHandler{
		bot:      bot,
		service:  svc,
		cfg:      cfg,
		sessions: wizard.NewStore(),
	}
}

func (h *BotHandler) HandleUpdate(update tgbotapi.Update) {
	ctx := context.Background()

	if update.Message != nil {
		h.handleMessage(ctx, update.Message)
	}

	if update.CallbackQuery != nil {
		h.handleCallbackQuery(ctx, update.CallbackQuery)
	}
}

func (h *BotHandler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil {
		return
	}

	if err := h.service.RegisterUser(ctx, message.From.ID, message.From.UserName, message.From.FirstName); err != nil {
		logger.Errorf("error registering user %d: %v", message.From.ID, err)
	}

	if message.IsCommand() {
		switch message.Command() {
		case "start":
			h.handleStart(ctx, message)
		case "paid":
			h.handlePaid(ctx, message)
		case "confirm":
			h.handleConfirmByHandle(ctx, message)
		case "decline":
			h.handleDeclineByHandle(ctx, message)
		case "createtournamentsolo":
			h.handleCreateTournament(ctx, message, "solo")
		case "createtournamentsquad":
			h.handleCreateTournament(ctx, message, "squad")
		case "sendroom":
			h.handleSendRoom(ctx, message)
		case "listplayers":
			h.handleListPlayers(ctx, message)
		case "declarewinners":
			h.handleDeclareWinners(ctx, message)
		case "clear":
			h.handleClearTournament(ctx, message)
		case "today":
			h.handleEarnings(ctx, message, service.PeriodToday)
		case "thisweek":
			h.handleEarnings(ctx, message, service.PeriodWeek)
		case "thismonth":
			h.handleEarnings(ctx, message, service.PeriodMonth)
		case "cancel":
			h.handleCancel(message)
		case "debug":
			h.handleDebug(message)
		case "help":
			h.reply(message.Chat.ID, format.HelpMessage(h.cfg.Bot.AdminUsername, h.cfg.Bot.ChannelURL))
		}
		return
	}

	// Mid-wizard text input from the session owner.
	if s, ok := h.sessions.Get(message.From.ID); ok {
		h.handleWizardInput(ctx, message, s)
	}
}

func (h *BotHandler) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	data := query.Data

	switch {
	case data == "verify_membership":
		h.handleMembershipVerification(ctx, query)
	case data == "main_menu":
		h.editText(query, format.MainMenuMessage, format.MainMenuKeyboard())
	case data == "active_tournaments":
		h.showActiveTournaments(ctx, query)
	case data == "terms_conditions":
		h.editText(query, format.TermsMessage, format.BackToMenuKeyboard())
	case data == "help":
		h.editText(query, format.HelpMessage(h.cfg.Bot.AdminUsername, h.cfg.Bot.ChannelURL), format.BackToMenuKeyboard())
	case data == "rules":
		h.editText(query, format.RulesMessage, format.BackToMenuKeyboard())
	case data == "disclaimer":
		h.editText(query, format.DisclaimerMessage, format.BackToMenuKeyboard())
	case data == "no_tournaments":
		h.editPlain(query, "🚫 No active tournaments available at the moment.")
	case strings.HasPrefix(data, "view_tournament_"):
		h.showTournamentDetails(ctx, query, strings.TrimPrefix(data, "view_tournament_"))
	case strings.HasPrefix(data, "join_tournament_"):
		h.handleTournamentJoin(ctx, query, strings.TrimPrefix(data, "join_tournament_"))
	case strings.HasPrefix(data, "confirm_payment_"):
		h.handlePaymentDecision(ctx, query, strings.TrimPrefix(data, "confirm_payment_"), true)
	case strings.HasPrefix(data, "decline_payment_"):
		h.handlePaymentDecision(ctx, query, strings.TrimPrefix(data, "decline_payment_"), false)
	case data == "prize_kill" || data == "prize_rank":
		h.handlePrizeTypeSelection(query, strings.TrimPrefix(data, "prize_"))
	case strings.HasPrefix(data, "select_tournament_room_"):
		h.handleWizardTournamentSelection(ctx, query, strings.TrimPrefix(data, "select_tournament_room_"), wizard.KindSendRoom)
	case strings.HasPrefix(data, "declare_winners_"):
		h.handleWizardTournamentSelection(ctx, query, strings.TrimPrefix(data, "declare_winners_"), wizard.KindDeclareWinners)
	case strings.HasPrefix(data, "list_players_"):
		h.showPlayerList(ctx, query, strings.TrimPrefix(data, "list_players_"))
	case strings.HasPrefix(data, "clear_tournament_"):
		h.confirmClearTournament(ctx, query, strings.TrimPrefix(data, "clear_tournament_"))
	case strings.HasPrefix(data, "confirm_clear_"):
		h.executeClearTournament(ctx, query, strings.TrimPrefix(data, "confirm_clear_"))
	case data == "cancel_clear":
		h.answerCallback(query, "")
		h.editPlain(query, "❌ *Tournament clear cancelled.*")
	case strings.HasPrefix(data, "post_tournament_"):
		h.handleTournamentPost(ctx, query, strings.TrimPrefix(data, "post_tournament_"))
	case strings.HasPrefix(data, "cancel_tournament_"):
		h.handleTournamentCancel(ctx, query, strings.TrimPrefix(data, "cancel_tournament_"))
	}
}

func (h *BotHandler) handleStart(ctx context.Context, message *tgbotapi.Message) {
	user, err := h.service.GetUser(ctx, message.From.ID)
	if err != nil {
		logger.Errorf("error loading user %d: %v", message.From.ID, err)
		h.reply(message.Chat.ID, errGeneric)
		return
	}

	if user.IsMember {
		h.replyWithKeyboard(message.Chat.ID, format.MainMenuMessage, format.MainMenuKeyboard())
		return
	}
	h.replyWithKeyboard(message.Chat.ID, format.WelcomeMessage(h.cfg.Bot.ChannelURL), format.ChannelJoinKeyboard(h.cfg.Bot.ChannelURL))
}

func (h *BotHandler) handleMembershipVerification(ctx context.Context, query *tgbotapi.CallbackQuery) {
	h.answerCallback(query, "")
	userID := query.From.ID

	member, err := h.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: h.cfg.Bot.ChannelID,
			UserID: userID,
		},
	})
	if err != nil {
		h.editText(query,
			"❌ *Membership verification failed!*\n\nPlease make sure you've joined our channel and try again.",
			format.ChannelJoinKeyboard(h.cfg.Bot.ChannelURL))
		return
	}

	switch member.Status {
	case "member", "administrator", "creator":
		if err := h.service.MarkMember(ctx, userID); err != nil {
			logger.Errorf("error marking member %d: %v", userID, err)
		}
		h.editText(query, format.MainMenuMessage, format.MainMenuKeyboard())
		h.send(userID, "✅ *Membership Verified!*\n\nWelcome to our BGMI Tournament community! 🎮")
	default:
		h.editText(query,
			"❌ *Not a member yet!*\n\nPlease join our channel first, then click 'I've Joined'.",
			format.ChannelJoinKeyboard(h.cfg.Bot.ChannelURL))
	}
}

func (h *BotHandler) showActiveTournaments(ctx context.Context, query *tgbotapi.CallbackQuery) {
	h.answerCallback(query, "")

	tournaments, err := h.service.ActiveTournaments(ctx)
	if err != nil {
		logger.Errorf("error loading tournaments: %v", err)
		h.editPlain(query, "❌ Error loading tournaments. Please try again.")
		return
	}

	if len(tournaments) == 0 {
		h.editText(query,
			"🚫 *No Active Tournaments*\n\nThere are no active tournaments at the moment. Check back later!",
			format.BackToMenuKeyboard())
		return
	}

	h.editText(query,
		"🎮 *ACTIVE TOURNAMENTS*\n\nSelect a tournament to view details:",
		format.TournamentListKeyboard(tournaments))
}

func (h *BotHandler) showTournamentDetails(ctx context.Context, query *tgbotapi.CallbackQuery, tournamentID string) {
	h.answerCallback(query, "")

	t, err := h.service.GetTournament(ctx, tournamentID)
	if err != nil {
		h.editText(query,
			"❌ *Tournament Not Found*\n\nThis tournament may have ended or been removed.",
			format.BackToMenuKeyboard())
		return
	}

	h.editText(query, format.TournamentMessage(t), format.TournamentKeyboard(tournamentID))
}

func (h *BotHandler) handleTournamentJoin(ctx context.Context, query *tgbotapi.CallbackQuery, tournamentID string) {
	userID := query.From.ID

	t, paymentStatus, err := h.service.JoinTournament(ctx, tournamentID, userID)
	if err != nil {
		logger.Errorf("error joining tournament %s for %d: %v", tournamentID, userID, err)
		h.answerCallback(query, "❌ Error processing join request. Please try again.")
		return
	}

	switch paymentStatus {
	case "confirmed":
		h.answerCallback(query, "✅ You're already confirmed for this tournament!")
		return
	case "pending":
		h.answerCallback(query, "⏳ Your payment is pending admin approval.")
		return
	}

	instructions := format.PaymentInstructions(t, h.cfg.Payments.UPIID, h.cfg.Bot.AdminUsername)
	if err := h.send(userID, instructions); err != nil {
		// Blocked bot or no private chat yet: fall back to the shared chat.
		h.editPlain(query,
			"❌ *Cannot send private message!*\n\nPlease start a private chat with the bot first, then try joining again.\n\n"+instructions)
		return
	}
	h.answerCallback(query, "📱 Payment instructions sent to your private chat!")
}

func (h *BotHandler) handleCancel(message *tgbotapi.Message) {
	h.sessions.End(message.From.ID)
	h.reply(message.Chat.ID, "❌ Action cancelled.")
}

func (h *BotHandler) handleDebug(message *tgbotapi.Message) {
	from := message.From
	h.reply(message.Chat.ID, format.DebugInfo(
		from.ID, from.UserName, from.FirstName,
		h.cfg.Bot.AdminID, h.isAdmin(from.ID)))
}

// isAdmin is the authorization gate: a single identifier comparison,
// failing closed.
func (h *BotHandler) isAdmin(userID int64) bool {
	return userID != 0 && userID == h.cfg.Bot.AdminID
}

// Outbound helpers. All parse as Markdown, matching the message texts.

func (h *BotHandler) send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := h.bot.Send(msg)
	return err
}

func (h *BotHandler) reply(chatID int64, text string) {
	if err := h.send(chatID, text); err != nil {
		logger.Errorf("error sending message to %d: %v", chatID, err)
	}
}

func (h *BotHandler) replyWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = keyboard
	if _, err := h.bot.Send(msg); err != nil {
		logger.Errorf("error sending message to %d: %v", chatID, err)
	}
}

func (h *BotHandler) editText(query *tgbotapi.CallbackQuery, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	if query.Message == nil {
		return
	}
	edit := tgbotapi.NewEditMessageTextAndMarkup(query.Message.Chat.ID, query.Message.MessageID, text, keyboard)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := h.bot.Send(edit); err != nil {
		logger.Errorf("error editing message: %v", err)
	}
}

func (h *BotHandler) editPlain(query *tgbotapi.CallbackQuery, text string) {
	if query.Message == nil {
		return
	}
	edit := tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := h.bot.Send(edit); err != nil {
		logger.Errorf("error editing message: %v", err)
	}
}

func (h *BotHandler) answerCallback(query *tgbotapi.CallbackQuery, text string) {
	callback := tgbotapi.NewCallback(query.ID, text)
	if _, err := h.bot.Request(callback); err != nil {
		logger.Errorf("error answering callback: %v", err)
	}
}
