// Package wizard drives the multi-step admin flows: tournament creation,
// room credential distribution and winner declaration. Each admin owns at
// most one session; input is validated and accumulated one field per step
// and committed by the caller only once the session reaches StepDone.
package wizard

import (
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/Rahul24325/BgmiTournamentBot5/internal/models"
)

type Kind int

const (
	KindNone Kind = iota
	KindCreateTournament
	KindSendRoom
	KindDeclareWinners
)

type Step int

const (
	// tournament creation
	StepName Step = iota
	StepDate
	StepTime
	StepEntryFee
	StepPrizeType // solo only, button selection
	StepPrizePool
	StepMap
	StepUPIID

	// room distribution
	StepRoomTournament // button selection
	StepRoomID
	StepRoomPassword

	// winner declaration
	StepWinnerTournament // button selection
	StepFirstPlace
	StepSecondPlace
	StepThirdPlace

	StepDone
)

// Validation failures. The session stays on the same step and keeps its
// accumulated state; the caller re-prompts.
var (
	ErrNameTooShort      = errors.New("name must be at least 3 characters")
	ErrDateTooShort      = errors.New("date must be in DD/MM/YYYY format")
	ErrEmptyInput        = errors.New("input must not be empty")
	ErrNotANumber        = errors.New("value must be a number")
	ErrNegativeNumber    = errors.New("value must not be negative")
	ErrWinnerTokenCount  = errors.New("winner line needs handle, points and prize")
	ErrWinnerNotNumeric  = errors.New("points and prize must be numbers")
	ErrSelectionRequired = errors.New("use the buttons to select")
	ErrUnknownPayload    = errors.New("unknown selection")
)

// Session is the in-progress state of one wizard. It lives only in memory:
// a restart abandons it and the owner starts over.
type Session struct {
	OwnerID int64
	Kind    Kind
	Step    Step

	// tournament creation draft
	Tournament models.Tournament

	// room distribution draft
	RoomTournamentID string
	RoomID           string
	RoomPassword     string

	// winner declaration draft
	WinnerTournamentID string
	Winners            []models.Winner
}

// Done reports whether the accumulated record is ready to commit.
func (s *Session) Done() bool {
	return s.Step == StepDone
}

// Advance consumes one text input for the current step. On validation
// failure the step and accumulated state are left untouched.
func (s *Session) Advance(text string) error {
	text = strings.TrimSpace(text)

	switch s.Step {
	case StepName:
		if len(text) < 3 {
			return ErrNameTooShort
		}
		s.Tournament.Name = text
		s.Step = StepDate

	case StepDate:
		if len(text) < 8 {
			return ErrDateTooShort
		}
		s.Tournament.Date = text
		s.Step = StepTime

	case StepTime:
		if text == "" {
			return ErrEmptyInput
		}
		s.Tournament.Time = text
		s.Step = StepEntryFee

	case StepEntryFee:
		fee, err := parseAmount(text)
		if err != nil {
			return err
		}
		s.Tournament.EntryFee = fee
		if s.Tournament.Type == models.TournamentSolo {
			s.Step = StepPrizeType
		} else {
			s.Step = StepPrizePool
		}

	case StepPrizePool:
		pool, err := parseAmount(text)
		if err != nil {
			return err
		}
		s.Tournament.PrizePool = pool
		s.Step = StepMap

	case StepMap:
		if text == "" {
			return ErrEmptyInput
		}
		s.Tournament.Map = text
		s.Step = StepUPIID

	case StepUPIID:
		if text == "" {
			return ErrEmptyInput
		}
		s.Tournament.UPIID = text
		s.Step = StepDone

	case StepRoomID:
		if text == "" {
			return ErrEmptyInput
		}
		s.RoomID = text
		s.Step = StepRoomPassword

	case StepRoomPassword:
		if text == "" {
			return ErrEmptyInput
		}
		s.RoomPassword = text
		s.Step = StepDone

	case StepFirstPlace:
		w, err := ParseWinnerLine(1, text)
		if err != nil {
			return err
		}
		s.Winners = append(s.Winners, w)
		s.Step = StepSecondPlace

	case StepSecondPlace:
		w, err := ParseWinnerLine(2, text)
		if err != nil {
			return err
		}
		s.Winners = append(s.Winners, w)
		s.Step = StepThirdPlace

	case StepThirdPlace:
		w, err := ParseWinnerLine(3, text)
		if err != nil {
			return err
		}
		s.Winners = append(s.Winners, w)
		s.Step = StepDone

	default:
		// Button-only steps do not accept free text.
		return ErrSelectionRequired
	}

	return nil
}

// SelectPrizeType consumes the prize-type button payload for a solo
// tournament.
func (s *Session) SelectPrizeType(prizeType string) error {
	if s.Step != StepPrizeType {
		return ErrUnknownPayload
	}
	if prizeType != models.PrizeKill && prizeType != models.PrizeRank {
		return ErrUnknownPayload
	}
	s.Tournament.PrizeType = prizeType
	s.Step = StepPrizePool
	return nil
}

// SelectTournament consumes the tournament button payload for the room and
// winner wizards. The caller verifies the identifier resolves before
// calling.
func (s *Session) SelectTournament(tournamentID string) error {
	switch s.Step {
	case StepRoomTournament:
		s.RoomTournamentID = tournamentID
		s.Step = StepRoomID
	case StepWinnerTournament:
		s.WinnerTournamentID = tournamentID
		s.Step = StepFirstPlace
	default:
		return ErrUnknownPayload
	}
	return nil
}

// ParseWinnerLine parses "@handle points prize" into a podium entry.
// Wrong token count and non-numeric tokens fail distinguishably so the
// re-prompt can be precise.
func ParseWinnerLine(position int, text string) (models.Winner, error) {
	parts := strings.Fields(text)
	if len(parts) != 3 {
		return models.Winner{}, ErrWinnerTokenCount
	}

	username := strings.TrimPrefix(parts[0], "@")
	if username == "" {
		return models.Winner{}, ErrWinnerTokenCount
	}

	points, err := strconv.Atoi(parts[1])
	if err != nil {
		return models.Winner{}, ErrWinnerNotNumeric
	}
	prize, err := strconv.Atoi(parts[2])
	if err != nil {
		return models.Winner{}, ErrWinnerNotNumeric
	}

	return models.Winner{
		Position: position,
		Username: username,
		Points:   points,
		Prize:    prize,
	}, nil
}

func parseAmount(text string) (int, error) {
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, ErrNotANumber
	}
	if n < 0 {
		return 0, ErrNegativeNumber
	}
	return n, nil
}

// Store maps each owner to their single active session. Handlers for one
// owner never run concurrently, but different owners do share the store.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[int64]*Session)}
}

// Begin starts a fresh session for the owner, silently replacing any
// in-progress one. tournamentType is only meaningful for
// KindCreateTournament.
func (st *Store) Begin(ownerID int64, kind Kind, tournamentType string) *Session {
	s := &Session{OwnerID: ownerID, Kind: kind}

	switch kind {
	case KindCreateTournament:
		s.Step = StepName
		s.Tournament.Type = tournamentType
	case KindSendRoom:
		s.Step = StepRoomTournament
	case KindDeclareWinners:
		s.Step = StepWinnerTournament
	}

	st.mu.Lock()
	st.sessions[ownerID] = s
	st.mu.Unlock()
	return s
}

// Get returns the owner's active session, if any.
func (st *Store) Get(ownerID int64) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[ownerID]
	return s, ok
}

// End discards the owner's session. Ending an absent session is a no-op,
// so cancellation is idempotent.
func (st *Store) End(ownerID int64) {
	st.mu.Lock()
	delete(st.sessions, ownerID)
	st.mu.Unlock()
}
