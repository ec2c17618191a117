package format

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Rahul24325/BgmiTournamentBot5/internal/models"
)

func MainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎯 Active Tournaments", "active_tournaments"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📜 Terms & Conditions", "terms_conditions"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❓ Help", "help"),
		),
	)
}

func ChannelJoinKeyboard(channelURL string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📢 Join Channel", channelURL),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ I've Joined", "verify_membership"),
		),
	)
}

func BackToMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Back to Menu", "main_menu"),
		),
	)
}

// TournamentKeyboard offers the join action on a tournament view.
func TournamentKeyboard(tournamentID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Join Now", "join_tournament_"+tournamentID),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📜 Rules", "rules"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚠️ Disclaimer", "disclaimer"),
		),
	)
}

// TournamentListKeyboard lists active tournaments for users to browse.
func TournamentListKeyboard(tournaments []models.Tournament) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := range tournaments {
		t := &tournaments[i]
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎮 "+t.Name, "view_tournament_"+t.HexID()),
		))
	}
	if len(rows) == 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚫 No Active Tournaments", "no_tournaments"),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Back to Menu", "main_menu"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// TournamentSelectKeyboard builds an admin selection list with the given
// callback prefix. The label shows the confirmed player count when
// withCounts is set.
func TournamentSelectKeyboard(tournaments []models.Tournament, prefix, emoji string, withCounts bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := range tournaments {
		t := &tournaments[i]
		label := fmt.Sprintf("%s %s", emoji, t.Name)
		if withCounts {
			label = fmt.Sprintf("%s %s (%d players)", emoji, t.Name, len(t.ConfirmedPlayers))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, prefix+t.HexID()),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// AdminPaymentKeyboard offers confirm/decline on a payment request.
func AdminPaymentKeyboard(userID int64, tournamentID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm",
				fmt.Sprintf("confirm_payment_%d_%s", userID, tournamentID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Decline",
				fmt.Sprintf("decline_payment_%d_%s", userID, tournamentID)),
		),
	)
}

// PrizeTypeKeyboard offers the solo prize-mode fork.
func PrizeTypeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💀 Kill Based Prize", "prize_kill"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏆 Rank Based Prize", "prize_rank"),
		),
	)
}

// PostActionsKeyboard follows a successful tournament creation.
func PostActionsKeyboard(tournamentID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📢 Post to Channel", "post_tournament_"+tournamentID),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "cancel_tournament_"+tournamentID),
		),
	)
}

// ClearConfirmKeyboard asks for confirmation before closing a tournament.
func ClearConfirmKeyboard(tournamentID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm Clear", "confirm_clear_"+tournamentID),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "cancel_clear"),
		),
	)
}
