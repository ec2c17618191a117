package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Rahul24325/BgmiTournamentBot5/internal/format"
	"github.com/Rahul24325/BgmiTournamentBot5/internal/logger"
	"github.com/Rahul24325/BgmiTournamentBot5/internal/models"
	"github.com/Rahul24325/BgmiTournamentBot5/internal/wizard"
)

const errUnauthorized = "❌ You are not authorized to use this command."

// handleCreateTournament enters the creation wizard, silently replacing
// any wizard the admin already has open.
func (h *BotHandler) handleCreateTournament(_ context.Context, message *tgbotapi.Message, tournamentType string) {
	if !h.isAdmin(message.From.ID) {
		logger.Warnf("unauthorized tournament creation attempt from user %d", message.From.ID)
		h.reply(message.Chat.ID, errUnauthorized)
		return
	}

	h.sessions.Begin(message.From.ID, wizard.KindCreateTournament, tournamentType)

	if tournamentType == models.TournamentSolo {
		h.reply(message.Chat.ID, "🎮 *Creating Solo Tournament*\n\n📝 Please enter the tournament name:")
	} else {
		h.reply(message.Chat.ID, "👥 *Creating Squad Tournament*\n\n📝 Please enter the tournament name:")
	}
}

// handleSendRoom enters the room-credential wizard.
func (h *BotHandler) handleSendRoom(ctx context.Context, message *tgbotapi.Message) {
	h.startTournamentSelection(ctx, message, wizard.KindSendRoom,
		"🎮 *Select Tournament to Send Room Details:*", "select_tournament_room_", "🎮", true)
}

// handleDeclareWinners enters the winner-declaration wizard.
func (h *BotHandler) handleDeclareWinners(ctx context.Context, message *tgbotapi.Message) {
	h.startTournamentSelection(ctx, message, wizard.KindDeclareWinners,
		"🏆 *Select Tournament to Declare Winners:*", "declare_winners_", "🏆", false)
}

func (h *BotHandler) startTournamentSelection(ctx context.Context, message *tgbotapi.Message, kind wizard.Kind, prompt, prefix, emoji string, withCounts bool) {
	if !h.isAdmin(message.From.ID) {
		h.reply(message.Chat.ID, errUnauthorized)
		return
	}

	tournaments, err := h.service.ActiveTournaments(ctx)
	if err != nil {
		logger.Errorf("error loading tournaments: %v", err)
		h.reply(message.Chat.ID, errGeneric)
		return
	}
	if len(tournaments) == 0 {
		h.reply(message.Chat.ID, "❌ No active tournaments found.")
		return
	}

	h.sessions.Begin(message.From.ID, kind, "")
	h.replyWithKeyboard(message.Chat.ID, prompt,
		format.TournamentSelectKeyboard(tournaments, prefix, emoji, withCounts))
}

// handleWizardTournamentSelection consumes the tournament button for the
// room and winner wizards.
func (h *BotHandler) handleWizardTournamentSelection(ctx context.Context, query *tgbotapi.CallbackQuery, tournamentID string, kind wizard.Kind) {
	h.answerCallback(query, "")

	if !h.isAdmin(query.From.ID) {
		return
	}

	s, ok := h.sessions.Get(query.From.ID)
	if !ok || s.Kind != kind {
		h.editPlain(query, "❌ This selection has expired. Run the command again.")
		return
	}

	t, err := h.service.GetTournament(ctx, tournamentID)
	if err != nil {
		h.sessions.End(query.From.ID)
		h.editPlain(query, "❌ Tournament not found.")
		return
	}

	if err := s.SelectTournament(tournamentID); err != nil {
		h.editPlain(query, "❌ This selection has expired. Run the command again.")
		return
	}

	switch kind {
	case wizard.KindSendRoom:
		h.editPlain(query, fmt.Sprintf("🎮 *Tournament:* %s\n\n🆔 Please enter the Room ID:", t.Name))
	case wizard.KindDeclareWinners:
		h.editPlain(query, fmt.Sprintf("🏆 *Tournament:* %s\n\n🥇 Please enter 1st place details:\nFormat: @username points prize_amount\nExample: @player1 25 500", t.Name))
	}
}

// handlePrizeTypeSelection consumes the solo prize-mode button.
func (h *BotHandler) handlePrizeTypeSelection(query *tgbotapi.CallbackQuery, prizeType string) {
	h.answerCallback(query, "")

	if !h.isAdmin(query.From.ID) {
		return
	}

	s, ok := h.sessions.Get(query.From.ID)
	if !ok {
		h.editPlain(query, "❌ This selection has expired. Run the command again.")
		return
	}
	if err := s.SelectPrizeType(prizeType); err != nil {
		h.editPlain(query, "❌ Unknown selection.")
		return
	}

	label := "Rank Based"
	if prizeType == models.PrizeKill {
		label = "Kill Based"
	}
	h.editPlain(query, fmt.Sprintf("✅ Prize Type: *%s*\n\n🎁 Please enter the total prize pool amount (₹):", label))
}

// handleWizardInput advances the owner's wizard with one message of text.
// Validation failures re-prompt the same step; a finished wizard commits
// exactly once.
func (h *BotHandler) handleWizardInput(ctx context.Context, message *tgbotapi.Message, s *wizard.Session) {
	if err := s.Advance(message.Text); err != nil {
		h.reply(message.Chat.ID, rejectMessage(err))
		return
	}

	if s.Done() {
		h.sessions.End(message.From.ID)
		switch s.Kind {
		case wizard.KindCreateTournament:
			h.commitTournament(ctx, message, s)
		case wizard.KindSendRoom:
			h.commitRoomDetails(ctx, message, s)
		case wizard.KindDeclareWinners:
			h.commitWinners(ctx, message, s)
		}
		return
	}

	text, keyboard := h.promptFor(s)
	if keyboard != nil {
		h.replyWithKeyboard(message.Chat.ID, text, *keyboard)
	} else {
		h.reply(message.Chat.ID, text)
	}
}

// rejectMessage maps a validation error to its precise re-prompt.
func rejectMessage(err error) string {
	switch {
	case errors.Is(err, wizard.ErrNameTooShort):
		return "❌ Tournament name must be at least 3 characters long. Please try again:"
	case errors.Is(err, wizard.ErrDateTooShort):
		return "❌ Please enter a valid date in DD/MM/YYYY format:"
	case errors.Is(err, wizard.ErrNotANumber), errors.Is(err, wizard.ErrNegativeNumber):
		return "❌ Please enter a valid amount (numbers only):"
	case errors.Is(err, wizard.ErrWinnerTokenCount):
		return "❌ Invalid format. Please use:\n@username points prize_amount\nExample: @player1 25 500"
	case errors.Is(err, wizard.ErrWinnerNotNumeric):
		return "❌ Points and prize must be numbers. Please try again:"
	case errors.Is(err, wizard.ErrSelectionRequired):
		return "❌ Please use the buttons above to continue."
	default:
		return "❌ Please enter a valid value:"
	}
}

// promptFor renders the prompt for the step the session just moved to.
func (h *BotHandler) promptFor(s *wizard.Session) (string, *tgbotapi.InlineKeyboardMarkup) {
	t := &s.Tournament

	switch s.Step {
	case wizard.StepDate:
		return fmt.Sprintf("✅ Tournament Name: *%s*\n\n📅 Please enter the date (format: DD/MM/YYYY):", t.Name), nil
	case wizard.StepTime:
		return fmt.Sprintf("✅ Date: *%s*\n\n🕐 Please enter the time (format: HH:MM AM/PM):", t.Date), nil
	case wizard.StepEntryFee:
		return fmt.Sprintf("✅ Time: *%s*\n\n💰 Please enter the entry fee amount (₹):", t.Time), nil
	case wizard.StepPrizeType:
		kb := format.PrizeTypeKeyboard()
		return fmt.Sprintf("✅ Entry Fee: *%s*\n\n🎁 Please select prize type:", format.Currency(t.EntryFee)), &kb
	case wizard.StepPrizePool:
		return fmt.Sprintf("✅ Entry Fee: *%s*\n\n🎁 Please enter the total prize pool amount (₹):", format.Currency(t.EntryFee)), nil
	case wizard.StepMap:
		return fmt.Sprintf("✅ Prize Pool: *%s*\n\n🗺️ Please enter the map name:", format.Currency(t.PrizePool)), nil
	case wizard.StepUPIID:
		return fmt.Sprintf("✅ Map: *%s*\n\n💳 Please enter UPI ID for payments:", t.Map), nil
	case wizard.StepRoomPassword:
		return fmt.Sprintf("✅ Room ID: *%s*\n\n🔑 Please enter the Room Password:", s.RoomID), nil
	case wizard.StepSecondPlace:
		w := s.Winners[len(s.Winners)-1]
		return fmt.Sprintf("✅ 1st Place: @%s - %d pts - %s\n\n🥈 Please enter 2nd place details:", w.Username, w.Points, format.Currency(w.Prize)), nil
	case wizard.StepThirdPlace:
		w := s.Winners[len(s.Winners)-1]
		return fmt.Sprintf("✅ 2nd Place: @%s - %d pts - %s\n\n🥉 Please enter 3rd place details:", w.Username, w.Points, format.Currency(w.Prize)), nil
	default:
		return "❌ Something went wrong. Use /cancel and start over.", nil
	}
}

// commitTournament persists the assembled creation draft in one operation.
func (h *BotHandler) commitTournament(ctx context.Context, message *tgbotapi.Message, s *wizard.Session) {
	t := s.Tournament

	tournamentID, err := h.service.CreateTournament(ctx, &t)
	if err != nil {
		logger.Errorf("error creating tournament: %v", err)
		h.reply(message.Chat.ID, "❌ Error creating tournament. Please try again.")
		return
	}

	h.replyWithKeyboard(message.Chat.ID, format.CreationSummary(&t), format.PostActionsKeyboard(tournamentID))
}

// commitRoomDetails persists the credentials, then broadcasts them to
// every confirmed player. One failed delivery never aborts the rest.
func (h *BotHandler) commitRoomDetails(ctx context.Context, message *tgbotapi.Message, s *wizard.Session) {
	t, err := h.service.GetTournament(ctx, s.RoomTournamentID)
	if err != nil {
		h.reply(message.Chat.ID, "❌ Tournament not found.")
		return
	}

	if len(t.ConfirmedPlayers) == 0 {
		h.reply(message.Chat.ID, "❌ No confirmed players found for this tournament.")
		return
	}

	// Credentials are stored before delivery so failures do not lose them.
	if err := h.service.SetRoomDetails(ctx, s.RoomTournamentID, s.RoomID, s.RoomPassword); err != nil {
		logger.Errorf("error saving room details for %s: %v", s.RoomTournamentID, err)
		h.reply(message.Chat.ID, "❌ Error saving room details.")
		return
	}

	tournamentTime := fmt.Sprintf("%s at %s", fallback(t.Date, "TBD"), fallback(t.Time, "TBD"))
	roomMessage := format.RoomDetailsMessage(s.RoomID, s.RoomPassword, tournamentTime)
	sent, failed := h.broadcast(t.ConfirmedPlayers, roomMessage)

	h.reply(message.Chat.ID, format.RoomDeliveryReport(t, s.RoomID, s.RoomPassword, sent, failed))
}

// commitWinners persists the podium, completes the tournament and posts
// the announcement to the channel.
func (h *BotHandler) commitWinners(ctx context.Context, message *tgbotapi.Message, s *wizard.Session) {
	t, err := h.service.DeclareWinners(ctx, s.WinnerTournamentID, s.Winners)
	if err != nil {
		logger.Errorf("error declaring winners for %s: %v", s.WinnerTournamentID, err)
		h.reply(message.Chat.ID, "❌ Error declaring winners.")
		return
	}

	announcement := format.WinnerAnnouncement(s.Winners, t.Name)

	if err := h.send(h.cfg.Bot.ChannelID, announcement); err != nil {
		logger.Errorf("error posting winners to channel: %v", err)
		h.reply(message.Chat.ID, fmt.Sprintf("✅ *Winners declared!*\n\n%s\n\n❌ Could not post to channel. Please post manually.", announcement))
		return
	}

	h.reply(message.Chat.ID, fmt.Sprintf("✅ *Winners declared successfully!*\n\n%s\n\n📢 Announcement posted to channel.", announcement))
}

// broadcast fans a message out to every recipient, counting outcomes.
func (h *BotHandler) broadcast(recipients []int64, text string) (sent, failed int) {
	for _, userID := range recipients {
		if err := h.send(userID, text); err != nil {
			logger.Warnf("failed to deliver broadcast to user %d: %v", userID, err)
			failed++
			continue
		}
		sent++
	}
	return sent, failed
}

// handleListPlayers shows the tournament picker for the roster view.
func (h *BotHandler) handleListPlayers(ctx context.Context, message *tgbotapi.Message) {
	if !h.isAdmin(message.From.ID) {
		h.reply(message.Chat.ID, errUnauthorized)
		return
	}

	tournaments, err := h.service.ActiveTournaments(ctx)
	if err != nil {
		logger.Errorf("error loading tournaments: %v", err)
		h.reply(message.Chat.ID, errGeneric)
		return
	}
	if len(tournaments) == 0 {
		h.reply(message.Chat.ID, "❌ No active tournaments found.")
		return
	}

	h.replyWithKeyboard(message.Chat.ID, "👥 *Select Tournament to View Players:*",
		format.TournamentSelectKeyboard(tournaments, "list_players_", "👥", true))
}

func (h *BotHandler) showPlayerList(ctx context.Context, query *tgbotapi.CallbackQuery, tournamentID string) {
	h.answerCallback(query, "")

	if !h.isAdmin(query.From.ID) {
		return
	}

	t, err := h.service.GetTournament(ctx, tournamentID)
	if err != nil {
		h.editPlain(query, "❌ Tournament not found.")
		return
	}

	var users []models.User
	for _, userID := range t.ConfirmedPlayers {
		u, err := h.service.GetUser(ctx, userID)
		if err != nil {
			continue
		}
		users = append(users, *u)
	}

	h.editPlain(query, fmt.Sprintf("🎮 *%s*\n\n%s",
		fallback(t.Name, "Tournament"), format.PlayerList(t.ConfirmedPlayers, users)))
}

// handleClearTournament shows the picker for manually closing a
// tournament.
func (h *BotHandler) handleClearTournament(ctx context.Context, message *tgbotapi.Message) {
	if !h.isAdmin(message.From.ID) {
		h.reply(message.Chat.ID, errUnauthorized)
		return
	}

	tournaments, err := h.service.ActiveTournaments(ctx)
	if err != nil {
		logger.Errorf("error loading tournaments: %v", err)
		h.reply(message.Chat.ID, errGeneric)
		return
	}
	if len(tournaments) == 0 {
		h.reply(message.Chat.ID, "❌ No active tournaments found.")
		return
	}

	h.replyWithKeyboard(message.Chat.ID, "🗑️ *Select Tournament to Clear:*",
		format.TournamentSelectKeyboard(tournaments, "clear_tournament_", "🗑️", false))
}

func (h *BotHandler) confirmClearTournament(ctx context.Context, query *tgbotapi.CallbackQuery, tournamentID string) {
	h.answerCallback(query, "")

	if !h.isAdmin(query.From.ID) {
		return
	}

	t, err := h.service.GetTournament(ctx, tournamentID)
	if err != nil {
		h.editPlain(query, "❌ Tournament not found.")
		return
	}

	h.editText(query,
		fmt.Sprintf("⚠️ *Confirm Tournament Clear*\n\n🎮 *Tournament:* %s\n\n❗ The tournament will be marked completed and removed from the active list.", fallback(t.Name, "Unknown")),
		format.ClearConfirmKeyboard(tournamentID))
}

func (h *BotHandler) executeClearTournament(ctx context.Context, query *tgbotapi.CallbackQuery, tournamentID string) {
	h.answerCallback(query, "")

	if !h.isAdmin(query.From.ID) {
		return
	}

	if err := h.service.CompleteTournament(ctx, tournamentID); err != nil {
		h.editPlain(query, "❌ *Error clearing tournament.*")
		return
	}
	h.editPlain(query, "✅ *Tournament cleared.*")
}

// handleEarnings renders the per-period collection report.
func (h *BotHandler) handleEarnings(ctx context.Context, message *tgbotapi.Message, period string) {
	if !h.isAdmin(message.From.ID) {
		logger.Warnf("unauthorized earnings request from user %d", message.From.ID)
		h.reply(message.Chat.ID, errUnauthorized)
		return
	}

	total, count, err := h.service.Earnings(ctx, period)
	if err != nil {
		logger.Errorf("error generating %s earnings report: %v", period, err)
		h.reply(message.Chat.ID, "❌ Error generating earnings report.")
		return
	}

	h.reply(message.Chat.ID, format.EarningsReport(period, total, count, time.Now()))
}

// handleTournamentPost pushes the announcement for a just-created
// tournament to the channel.
func (h *BotHandler) handleTournamentPost(ctx context.Context, query *tgbotapi.CallbackQuery, tournamentID string) {
	h.answerCallback(query, "")

	if !h.isAdmin(query.From.ID) {
		return
	}

	t, err := h.service.GetTournament(ctx, tournamentID)
	if err != nil {
		h.editPlain(query, "❌ Tournament not found.")
		return
	}

	msg := tgbotapi.NewMessage(h.cfg.Bot.ChannelID, format.TournamentPost(t))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = format.TournamentKeyboard(tournamentID)
	if _, err := h.bot.Send(msg); err != nil {
		logger.Errorf("error posting tournament to channel: %v", err)
		h.editPlain(query, "❌ *Error posting to channel.*\n\nTournament created but could not post to channel.")
		return
	}

	h.editPlain(query, "✅ *Tournament posted to channel successfully!*\n\n📢 Users can now join the tournament.")
}

// handleTournamentCancel deletes a tournament right after creation.
func (h *BotHandler) handleTournamentCancel(ctx context.Context, query *tgbotapi.CallbackQuery, tournamentID string) {
	h.answerCallback(query, "")

	if !h.isAdmin(query.From.ID) {
		return
	}

	if err := h.service.CancelTournament(ctx, tournamentID); err != nil {
		h.editPlain(query, "❌ *Error cancelling tournament.*")
		return
	}
	h.editPlain(query, "❌ *Tournament cancelled and deleted.*")
}

func fallback(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
