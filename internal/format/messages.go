// Package format renders domain records into Telegram message text and
// inline keyboards. Everything here is pure: no storage, no transport.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Rahul24325/BgmiTournamentBot5/internal/models"
)

// Currency renders an amount as Indian rupees with thousands separators.
func Currency(amount int) string {
	return "₹" + groupDigits(amount)
}

func groupDigits(n int) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}

	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return sign + s
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return sign + b.String()
}

func WelcomeMessage(channelURL string) string {
	return fmt.Sprintf(`🎮 *Welcome to Official BGMI Tournament Manager* 🎮

🔥 Get ready for epic battles and amazing prizes! 🔥

⚠️ *IMPORTANT*: You must join our official channel to continue:
👉 %s

After joining, click the button below to verify your membership! 👇`, channelURL)
}

const MainMenuMessage = `🏆 *Welcome to BGMI Tournament Hub* 🏆

Choose an option below:

🎯 *Active Tournaments* - Join ongoing tournaments
📜 *Terms & Conditions* - Read our rules
❓ *Help* - Contact admin support`

const RulesMessage = `📜 *TOURNAMENT RULES*

1️⃣ No emulator players allowed
2️⃣ No teaming, hacking, or glitching
3️⃣ Kill + Rank = Points calculation
4️⃣ Room closes on time. Be punctual!
5️⃣ Follow admin instructions
6️⃣ Respectful behavior required

🚫 *Violation of rules leads to immediate disqualification*`

const DisclaimerMessage = `⚠️ *DISCLAIMER*

🚫 No refunds after room details are shared
📶 Admin not responsible for lag/disconnection issues
🔒 Cheaters will be banned permanently
💰 Prize distribution as per tournament rules
✅ By joining, you accept all rules & risks

*Proceed at your own discretion!*`

const TermsMessage = `📋 *TERMS & CONDITIONS*

1. *Payment*: Entry fee must be paid before confirmation
2. *Refunds*: No refunds once room details are shared
3. *Fair Play*: Any form of cheating results in ban
4. *Communication*: Official announcements via this bot only
5. *Disputes*: Admin decision is final
6. *Privacy*: Your data is secure with us

By participating, you agree to these terms.`

func HelpMessage(adminUsername, channelURL string) string {
	return fmt.Sprintf(`❓ *HELP & SUPPORT*

For any assistance, contact our admin:
👤 *Admin:* %s

📞 *Common Issues:*
• Payment not confirmed: Contact admin with screenshot
• Tournament questions: Ask in admin chat
• Technical issues: Report to admin

⏰ *Response Time:* Usually within 2-4 hours

📱 *Bot Commands:*
• /start - Start the bot
• /paid - Confirm payment made

🔗 *Useful Links:*
• Channel: %s
• Admin: %s`, adminUsername, channelURL, adminUsername)
}

// orDefault fills missing optional fields instead of failing.
func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// TournamentMessage renders the details view a user sees before joining.
func TournamentMessage(t *models.Tournament) string {
	return fmt.Sprintf(`🎮 *TOURNAMENT ALERT*

🏆 *%s*
📅 *Date:* %s
🕘 *Time:* %s
📍 *Map:* %s
🎯 *Type:* %s
💰 *Entry Fee:* %s
🎁 *Prize Pool:* %s

👇 *Click to Join*`,
		orDefault(t.Name, "Unnamed Tournament"),
		orDefault(t.Date, "TBD"),
		orDefault(t.Time, "TBD"),
		orDefault(t.Map, "TBD"),
		titleCase(orDefault(t.Type, models.TournamentSolo)),
		Currency(t.EntryFee),
		Currency(t.PrizePool),
	)
}

// TournamentPost renders the channel announcement.
func TournamentPost(t *models.Tournament) string {
	return fmt.Sprintf(`🔥🎮 *TOURNAMENT ALERT* 🎮🔥

🏆 *%s*
📅 *Date:* %s
🕘 *Time:* %s
📍 *Map:* %s
🎯 *Mode:* %s
💰 *Entry Fee:* %s
🎁 *Prize Pool:* %s

⚡ *LIMITED SLOTS AVAILABLE* ⚡

🎯 *How to Join:*
1️⃣ Click "Join Now" button
2️⃣ Pay entry fee via UPI
3️⃣ Send payment screenshot
4️⃣ Get confirmation from admin

🏅 *Prize Distribution:*
🥇 1st Place - 50%% of prize pool
🥈 2nd Place - 30%% of prize pool
🥉 3rd Place - 20%% of prize pool

⚠️ *Rules & Conditions Apply*

👇 *JOIN NOW* 👇`,
		orDefault(t.Name, "Epic Tournament"),
		orDefault(t.Date, "TBD"),
		orDefault(t.Time, "TBD"),
		orDefault(t.Map, "TBD"),
		titleCase(orDefault(t.Type, models.TournamentSolo)),
		Currency(t.EntryFee),
		Currency(t.PrizePool),
	)
}

// CreationSummary renders the admin-facing summary after the creation
// wizard commits.
func CreationSummary(t *models.Tournament) string {
	var prizeLine string
	if t.Type == models.TournamentSolo && t.PrizeType == models.PrizeKill {
		prizeLine = fmt.Sprintf("🏆 *Kills:* %s per kill", Currency(t.PrizePool))
	} else {
		prizeLine = fmt.Sprintf("🎁 *Prize Pool:* %s", Currency(t.PrizePool))
	}

	return fmt.Sprintf(`✅ *Tournament Created Successfully!*

📋 *Summary:*
🎮 *Name:* %s
📅 *Date:* %s
🕐 *Time:* %s
💰 *Entry Fee:* %s
%s
🗺️ *Map:* %s
💳 *UPI:* %s

What would you like to do?`,
		t.Name, t.Date, t.Time, Currency(t.EntryFee), prizeLine, t.Map, t.UPIID)
}

// PaymentInstructions is sent privately after a join.
func PaymentInstructions(t *models.Tournament, upiID, adminUsername string) string {
	return fmt.Sprintf(`💰 *PAYMENT INSTRUCTIONS*

🎮 *Tournament:* %s
💵 *Amount:* %s
💳 *UPI ID:* `+"`%s`"+`

📱 *Steps:*
1️⃣ Pay %s to the UPI ID above
2️⃣ Take a screenshot of payment
3️⃣ Send the screenshot to %s
4️⃣ Use /paid command after payment

⚠️ *Important:* Payment confirmation is manual. Please be patient.`,
		orDefault(t.Name, "Tournament"), Currency(t.EntryFee), upiID,
		Currency(t.EntryFee), adminUsername)
}

// PaymentRequestMessage notifies the admin about a fresh claim.
func PaymentRequestMessage(user *models.User, t *models.Tournament) string {
	return fmt.Sprintf(`🧾 *PAYMENT REQUEST*

👤 *Player:* @%s (%s)
🎮 *Tournament:* %s
💰 *Amount:* %s
🔄 *Status:* Awaiting Confirmation

Use buttons below to approve or decline.`,
		orDefault(user.Username, "no_username"),
		orDefault(user.FirstName, "User"),
		orDefault(t.Name, "Unknown Tournament"),
		Currency(t.EntryFee))
}

// RoomDetailsMessage is broadcast to every confirmed player.
func RoomDetailsMessage(roomID, roomPassword, tournamentTime string) string {
	return fmt.Sprintf(`🎮 *ROOM DETAILS*

🆔 *Room ID:* `+"`%s`"+`
🔑 *Password:* `+"`%s`"+`
🕘 *Time:* %s

⚠️ *IMPORTANT:*
• Do not share these details
• No refunds after room details are sent
• Be punctual - room closes on time`,
		roomID, roomPassword, tournamentTime)
}

// RoomDeliveryReport summarizes the broadcast for the admin.
func RoomDeliveryReport(t *models.Tournament, roomID, roomPassword string, sent, failed int) string {
	return fmt.Sprintf(`✅ *Room Details Sent Successfully!*

🎮 *Tournament:* %s
🆔 *Room ID:* %s
🔑 *Password:* %s

📊 *Delivery Status:*
✅ Sent to: %d players
❌ Failed: %d players

⚠️ *Important:* No refunds will be given after room details are shared.`,
		orDefault(t.Name, "Unknown"), roomID, roomPassword, sent, failed)
}

// WinnerAnnouncement renders the podium in rank order.
func WinnerAnnouncement(winners []models.Winner, tournamentName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏆 *TOURNAMENT WINNERS*\n🎮 *%s*\n\n", orDefault(tournamentName, "Tournament"))

	medals := []string{"🥇", "🥈", "🥉"}
	for i, w := range winners {
		if i >= len(medals) {
			break
		}
		fmt.Fprintf(&b, "%s @%s — %d pts — %s\n", medals[i], w.Username, w.Points, Currency(w.Prize))
	}

	b.WriteString("\n🎉 *Congratulations to all winners!*")
	return b.String()
}

// PlayerList renders confirmed players, falling back to raw IDs when the
// account record is missing.
func PlayerList(confirmed []int64, users []models.User) string {
	if len(confirmed) == 0 {
		return "🚫 No confirmed players yet."
	}

	byID := make(map[int64]*models.User, len(users))
	for i := range users {
		byID[users[i].UserID] = &users[i]
	}

	var b strings.Builder
	b.WriteString("👥 *CONFIRMED PLAYERS*\n\n")
	for i, userID := range confirmed {
		if u, ok := byID[userID]; ok {
			fmt.Fprintf(&b, "%d. @%s (%s)\n", i+1,
				orDefault(u.Username, "No username"),
				orDefault(u.FirstName, "User"))
		} else {
			fmt.Fprintf(&b, "%d. User ID: %d\n", i+1, userID)
		}
	}
	return b.String()
}

// EarningsReport renders the per-period collection summary.
func EarningsReport(period string, totalAmount, totalPayments int, now time.Time) string {
	periodText := map[string]string{
		"today": "TODAY'S",
		"week":  "THIS WEEK'S",
		"month": "THIS MONTH'S",
	}[period]
	if periodText == "" {
		periodText = "TOTAL"
	}

	average := 0
	if totalPayments > 0 {
		average = totalAmount / totalPayments
	}

	return fmt.Sprintf(`💰 *%s EARNINGS REPORT*

💵 *Total Collection:* %s
📊 *Total Payments:* %d
📈 *Average per Payment:* %s

📅 *Generated:* %s`,
		periodText, Currency(totalAmount), totalPayments, Currency(average),
		now.Format("02/01/2006 03:04 PM"))
}

// PaymentConfirmedNotice is sent to the player.
func PaymentConfirmedNotice(tournamentName string) string {
	return fmt.Sprintf(`✅ *Payment Confirmed!*

🎮 You're confirmed for *%s*

🏠 Room details will be shared before match time.

🎯 Good luck!`, orDefault(tournamentName, "Tournament"))
}

// PaymentDeclinedNotice is sent to the player.
func PaymentDeclinedNotice(tournamentName, adminUsername string) string {
	return fmt.Sprintf(`❌ *Payment Declined*

🎮 Tournament: *%s*

📞 Please contact %s for assistance.

💡 Make sure you've sent the correct payment screenshot.`,
		orDefault(tournamentName, "Tournament"), adminUsername)
}

// DebugInfo reports the caller's identity and admin status.
func DebugInfo(userID int64, username, firstName string, adminID int64, isAdmin bool) string {
	adminText := "No"
	if isAdmin {
		adminText = "Yes"
	}
	return fmt.Sprintf(`🔍 *DEBUG INFO*

👤 *User ID:* %d
🏷️ *Username:* @%s
📝 *First Name:* %s
🔧 *Admin ID:* %d
✅ *Is Admin:* %s

*For admin access, your User ID must match the configured Admin ID.*`,
		userID, orDefault(username, "No username"), orDefault(firstName, "No name"),
		adminID, adminText)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
