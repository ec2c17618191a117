package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tournament types
const (
	TournamentSolo  = "solo"
	TournamentSquad = "squad"
)

// Tournament status
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Prize distribution modes for solo tournaments.
const (
	PrizeKill = "kill"
	PrizeRank = "rank"
)

// Payment status
const (
	PaymentPending   = "pending"
	PaymentConfirmed = "confirmed"
	PaymentDeclined  = "declined"
)

// Expected failures surfaced to the user. Anything else is logged and
// reported generically.
var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNoActiveTournaments = errors.New("no active tournaments")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrAlreadyClaimed      = errors.New("payment already claimed")
)

// User represents a Telegram user known to the bot.
type User struct {
	UserID            int64      `bson:"user_id"` // Telegram ID, unique
	Username          string     `bson:"username,omitempty"`
	FirstName         string     `bson:"first_name,omitempty"`
	JoinedAt          time.Time  `bson:"joined_at"`
	IsMember          bool       `bson:"is_member"`
	TournamentsJoined int        `bson:"tournaments_joined"`
	MembershipUpdated *time.Time `bson:"membership_updated,omitempty"`
}

// Tournament is one match event managed by the admin.
type Tournament struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Name             string             `bson:"name"`
	Date             string             `bson:"date"` // DD/MM/YYYY, free text
	Time             string             `bson:"time"` // HH:MM AM/PM, free text
	EntryFee         int                `bson:"entry_fee"`
	PrizePool        int                `bson:"prize_pool"`
	PrizeType        string             `bson:"prize_type,omitempty"` // kill/rank, solo only
	Map              string             `bson:"map"`
	UPIID            string             `bson:"upi_id"`
	Type             string             `bson:"type"` // solo/squad
	Status           string             `bson:"status"`
	RoomID           string             `bson:"room_id,omitempty"`
	RoomPassword     string             `bson:"room_password,omitempty"`
	RoomDetailsSent  bool               `bson:"room_details_sent,omitempty"`
	Participants     []int64            `bson:"participants"`
	ConfirmedPlayers []int64            `bson:"confirmed_players"`
	CreatedAt        time.Time          `bson:"created_at"`
}

// HexID returns the tournament identifier as used in callback payloads.
func (t *Tournament) HexID() string {
	return t.ID.Hex()
}

// IsParticipant reports whether the user has joined this tournament.
func (t *Tournament) IsParticipant(userID int64) bool {
	for _, id := range t.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// Payment is one entry-fee claim awaiting or past admin review.
type Payment struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	UserID       int64              `bson:"user_id"`
	TournamentID string             `bson:"tournament_id"` // hex of Tournament.ID
	Amount       int                `bson:"amount"`
	Status       string             `bson:"status"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    *time.Time         `bson:"updated_at,omitempty"`
}

// Winner is one podium entry inside a WinnerRecord.
type Winner struct {
	Position int    `bson:"position"` // 1..3
	Username string `bson:"username"` // handle without the leading @
	Points   int    `bson:"points"`
	Prize    int    `bson:"prize"`
}

// WinnerRecord holds the declared podium of a finished tournament.
type WinnerRecord struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	TournamentID string             `bson:"tournament_id"`
	Winners      []Winner           `bson:"winners"`
	DeclaredAt   time.Time          `bson:"declared_at"`
}
