package format

import (
	"strings"
	"testing"
	"time"

	"github.com/Rahul24325/BgmiTournamentBot5/internal/models"
)

func TestCurrency(t *testing.T) {
	cases := []struct {
		amount int
		want   string
	}{
		{0, "₹0"},
		{50, "₹50"},
		{100, "₹100"},
		{1000, "₹1,000"},
		{25000, "₹25,000"},
		{1234567, "₹1,234,567"},
		{-1500, "₹-1,500"},
	}
	for _, tc := range cases {
		if got := Currency(tc.amount); got != tc.want {
			t.Errorf("Currency(%d) = %q, want %q", tc.amount, got, tc.want)
		}
	}
}

func TestCreationSummaryHasEveryField(t *testing.T) {
	d := &models.Tournament{
		Name:      "Friday Night Scrims",
		Date:      "25/12/2025",
		Time:      "8:00 PM",
		EntryFee:  100,
		PrizePool: 5000,
		Map:       "Erangel",
		UPIID:     "host@upi",
		Type:      models.TournamentSquad,
	}

	got := CreationSummary(d)
	for _, want := range []string{
		"Friday Night Scrims", "25/12/2025", "8:00 PM",
		"₹100", "₹5,000", "Erangel", "host@upi",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
}

func TestCreationSummaryKillPrizeLine(t *testing.T) {
	d := &models.Tournament{
		Name: "Solo Showdown", Type: models.TournamentSolo,
		PrizeType: models.PrizeKill, PrizePool: 50,
	}
	if got := CreationSummary(d); !strings.Contains(got, "per kill") {
		t.Errorf("kill-based summary missing per-kill line:\n%s", got)
	}

	d.PrizeType = models.PrizeRank
	if got := CreationSummary(d); !strings.Contains(got, "Prize Pool") {
		t.Errorf("rank-based summary missing prize pool line:\n%s", got)
	}
}

func TestTournamentMessageDefaults(t *testing.T) {
	got := TournamentMessage(&models.Tournament{})
	if !strings.Contains(got, "Unnamed Tournament") {
		t.Errorf("missing name fallback:\n%s", got)
	}
	if strings.Count(got, "TBD") != 3 {
		t.Errorf("expected TBD for date, time and map:\n%s", got)
	}
}

func TestWinnerAnnouncementRankOrder(t *testing.T) {
	winners := []models.Winner{
		{Position: 1, Username: "alpha", Points: 25, Prize: 500},
		{Position: 2, Username: "bravo", Points: 18, Prize: 300},
		{Position: 3, Username: "charlie", Points: 12, Prize: 200},
	}

	got := WinnerAnnouncement(winners, "Test Cup")

	gold := strings.Index(got, "🥇 @alpha")
	silver := strings.Index(got, "🥈 @bravo")
	bronze := strings.Index(got, "🥉 @charlie")
	if gold < 0 || silver < 0 || bronze < 0 {
		t.Fatalf("missing medal lines:\n%s", got)
	}
	if !(gold < silver && silver < bronze) {
		t.Errorf("medal lines out of order:\n%s", got)
	}
	if !strings.Contains(got, "₹500") {
		t.Errorf("missing prize amount:\n%s", got)
	}
}

func TestPlayerListFallsBackToID(t *testing.T) {
	confirmed := []int64{42, 99}
	users := []models.User{{UserID: 42, Username: "alpha", FirstName: "Al"}}

	got := PlayerList(confirmed, users)
	if !strings.Contains(got, "@alpha") {
		t.Errorf("missing known user:\n%s", got)
	}
	if !strings.Contains(got, "User ID: 99") {
		t.Errorf("missing raw ID fallback:\n%s", got)
	}

	if got := PlayerList(nil, nil); !strings.Contains(got, "No confirmed players") {
		t.Errorf("empty roster message wrong: %q", got)
	}
}

func TestEarningsReport(t *testing.T) {
	now := time.Date(2025, 12, 25, 15, 30, 0, 0, time.UTC)

	got := EarningsReport("today", 1500, 3, now)
	for _, want := range []string{"TODAY'S", "₹1,500", "₹500", "25/12/2025"} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q:\n%s", want, got)
		}
	}

	// Zero payments must not divide.
	got = EarningsReport("week", 0, 0, now)
	if !strings.Contains(got, "THIS WEEK'S") || !strings.Contains(got, "₹0") {
		t.Errorf("empty report wrong:\n%s", got)
	}
}

func TestRoomDeliveryReportCounts(t *testing.T) {
	tournament := &models.Tournament{Name: "Test Cup"}
	got := RoomDeliveryReport(tournament, "9912", "pass", 5, 1)
	for _, want := range []string{"Test Cup", "9912", "pass", "Sent to: 5", "Failed: 1"} {
		if !strings.Contains(got, want) {
			t.Errorf("delivery report missing %q:\n%s", want, got)
		}
	}
}

func TestAdminPaymentKeyboardPayload(t *testing.T) {
	kb := AdminPaymentKeyboard(42, "64f000000000000000000001")
	if len(kb.InlineKeyboard) == 0 || len(kb.InlineKeyboard[0]) != 2 {
		t.Fatalf("unexpected keyboard shape: %+v", kb)
	}
	confirm := kb.InlineKeyboard[0][0].CallbackData
	decline := kb.InlineKeyboard[0][1].CallbackData
	if confirm == nil || *confirm != "confirm_payment_42_64f000000000000000000001" {
		t.Errorf("confirm payload = %v", confirm)
	}
	if decline == nil || *decline != "decline_payment_42_64f000000000000000000001" {
		t.Errorf("decline payload = %v", decline)
	}
}
