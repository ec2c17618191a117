package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Rahul24325/BgmiTournamentBot5/internal/format"
	"github.com/Rahul24325/BgmiTournamentBot5/internal/logger"
	"github.com/Rahul24325/BgmiTournamentBot5/internal/models"
)

// handlePaid records a payment claim for the tournament the user joined.
// With several open joins the user is told to contact the admin instead
// of guessing which one they paid for.
func (h *BotHandler) handlePaid(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID

	tournaments, err := h.service.PendingClaimTournaments(ctx, userID)
	if err != nil {
		logger.Errorf("error loading pending claims for %d: %v", userID, err)
		h.reply(message.Chat.ID, errGeneric)
		return
	}

	if len(tournaments) == 0 {
		h.reply(message.Chat.ID,
			"❌ *No pending payments found!*\n\nYou haven't joined any tournament, or your payment is already being processed.")
		return
	}

	if len(tournaments) > 1 {
		var b strings.Builder
		b.WriteString("⚠️ *Multiple tournaments found!*\n\nYou have joined:\n")
		for _, t := range tournaments {
			fmt.Fprintf(&b, "• %s\n", t.Name)
		}
		fmt.Fprintf(&b, "\nPlease contact %s to confirm which payment you made.", h.cfg.Bot.AdminUsername)
		h.reply(message.Chat.ID, b.String())
		return
	}

	t := tournaments[0]
	user, err := h.service.GetUser(ctx, userID)
	if err != nil {
		logger.Errorf("error loading user %d: %v", userID, err)
		h.reply(message.Chat.ID, errGeneric)
		return
	}

	if err := h.service.SubmitPaymentClaim(ctx, userID, &t); err != nil {
		if errors.Is(err, models.ErrAlreadyClaimed) {
			h.reply(message.Chat.ID, "⏳ *Your payment is already being processed.*\n\nPlease wait for admin confirmation.")
			return
		}
		logger.Errorf("error submitting payment claim for %d: %v", userID, err)
		h.reply(message.Chat.ID, errGeneric)
		return
	}

	h.notifyAdminOfPayment(user, &t)

	h.reply(message.Chat.ID, fmt.Sprintf(
		"✅ *Payment notification sent!*\n\n🎮 Tournament: %s\n⏳ Please wait for admin confirmation.\n\nYou'll receive a message once your payment is verified.",
		t.Name))
}

func (h *BotHandler) notifyAdminOfPayment(user *models.User, t *models.Tournament) {
	msg := tgbotapi.NewMessage(h.cfg.Bot.AdminID, format.PaymentRequestMessage(user, t))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = format.AdminPaymentKeyboard(user.UserID, t.HexID())
	if _, err := h.bot.Send(msg); err != nil {
		logger.Errorf("error notifying admin of payment from %d: %v", user.UserID, err)
	}
}

// handleConfirmByHandle confirms a pending payment by @username, for
// admins working from the payment screenshot instead of the buttons.
func (h *BotHandler) handleConfirmByHandle(ctx context.Context, message *tgbotapi.Message) {
	if !h.isAdmin(message.From.ID) {
		h.reply(message.Chat.ID, errUnauthorized)
		return
	}

	username := strings.TrimPrefix(strings.TrimSpace(message.CommandArguments()), "@")
	if username == "" {
		h.reply(message.Chat.ID, "Usage: /confirm @username")
		return
	}

	user, t, err := h.service.ConfirmPaymentByHandle(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			h.reply(message.Chat.ID, fmt.Sprintf("❌ No pending payment found for @%s.", username))
			return
		}
		logger.Errorf("error confirming payment for @%s: %v", username, err)
		h.reply(message.Chat.ID, errGeneric)
		return
	}

	h.reply(h.cfg.Bot.AdminID, fmt.Sprintf("✅ Payment confirmed for @%s in *%s*.", username, t.Name))
	if err := h.send(user.UserID, format.PaymentConfirmedNotice(t.Name)); err != nil {
		logger.Warnf("could not notify user %d of confirmation: %v", user.UserID, err)
	}
}

// handleDeclineByHandle declines a pending payment by @username.
func (h *BotHandler) handleDeclineByHandle(ctx context.Context, message *tgbotapi.Message) {
	if !h.isAdmin(message.From.ID) {
		h.reply(message.Chat.ID, errUnauthorized)
		return
	}

	username := strings.TrimPrefix(strings.TrimSpace(message.CommandArguments()), "@")
	if username == "" {
		h.reply(message.Chat.ID, "Usage: /decline @username")
		return
	}

	user, t, err := h.service.DeclinePaymentByHandle(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			h.reply(message.Chat.ID, fmt.Sprintf("❌ No pending payment found for @%s.", username))
			return
		}
		logger.Errorf("error declining payment for @%s: %v", username, err)
		h.reply(message.Chat.ID, errGeneric)
		return
	}

	h.reply(h.cfg.Bot.AdminID, fmt.Sprintf("❌ Payment declined for @%s in *%s*.", username, t.Name))
	if err := h.send(user.UserID, format.PaymentDeclinedNotice(t.Name, h.cfg.Bot.AdminUsername)); err != nil {
		logger.Warnf("could not notify user %d of decline: %v", user.UserID, err)
	}
}

// handlePaymentDecision resolves the admin's inline confirm/decline
// button. The payload carries "<userID>_<tournamentID>".
func (h *BotHandler) handlePaymentDecision(ctx context.Context, query *tgbotapi.CallbackQuery, payload string, approve bool) {
	if !h.isAdmin(query.From.ID) {
		h.answerCallback(query, "❌ Not authorized.")
		return
	}
	h.answerCallback(query, "")

	parts := strings.SplitN(payload, "_", 2)
	if len(parts) != 2 {
		h.editPlain(query, "❌ *Invalid payment reference.*")
		return
	}
	userID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		h.editPlain(query, "❌ *Invalid payment reference.*")
		return
	}
	tournamentID := parts[1]

	var t *models.Tournament
	if approve {
		t, err = h.service.ConfirmPayment(ctx, userID, tournamentID)
	} else {
		t, err = h.service.DeclinePayment(ctx, userID, tournamentID)
	}
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			h.editPlain(query, "❌ *Error processing payment.*\n\nPayment may not exist or was already processed.")
			return
		}
		logger.Errorf("error processing payment decision for %d/%s: %v", userID, tournamentID, err)
		h.editPlain(query, "❌ *Error processing payment.*")
		return
	}

	if approve {
		h.editPlain(query, fmt.Sprintf("✅ *Payment Confirmed*\n\n👤 User ID: `%d`\n🎮 Tournament: %s\n\nPlayer has been added to the tournament.", userID, t.Name))
		if err := h.send(userID, format.PaymentConfirmedNotice(t.Name)); err != nil {
			logger.Warnf("could not notify user %d of confirmation: %v", userID, err)
		}
		return
	}

	h.editPlain(query, fmt.Sprintf("❌ *Payment Declined*\n\n👤 User ID: `%d`\n🎮 Tournament: %s", userID, t.Name))
	if err := h.send(userID, format.PaymentDeclinedNotice(t.Name, h.cfg.Bot.AdminUsername)); err != nil {
		logger.Warnf("could not notify user %d of decline: %v", userID, err)
	}
}
