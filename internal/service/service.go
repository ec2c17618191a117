package service

import (
	"context"
	"errors"
	"time"

	"github.com/Rahul24325/BgmiTournamentBot5/internal/models"
)

// Repository is the persistence gateway the service operates against.
// Implemented by repository.Repository; mocked in tests.
type Repository interface {
	UpsertUser(ctx context.Context, userID int64, username, firstName string) error
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	SetUserMembership(ctx context.Context, userID int64, isMember bool) error
	IncTournamentsJoined(ctx context.Context, userID int64) error

	CreateTournament(ctx context.Context, t *models.Tournament) (string, error)
	GetTournament(ctx context.Context, tournamentID string) (*models.Tournament, error)
	ActiveTournaments(ctx context.Context) ([]models.Tournament, error)
	UpdateTournament(ctx context.Context, tournamentID string, update map[string]interface{}) error
	DeleteTournament(ctx context.Context, tournamentID string) error
	AddParticipant(ctx context.Context, tournamentID string, userID int64) error
	ConfirmParticipant(ctx context.Context, tournamentID string, userID int64) error

	CreatePayment(ctx context.Context, userID int64, tournamentID string, amount int) error
	GetUserPayment(ctx context.Context, userID int64, tournamentID string) (*models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, userID int64, tournamentID, status string) error
	EarningsSince(ctx context.Context, cutoff time.Time) (int, int, error)

	AddWinners(ctx context.Context, tournamentID string, winners []models.Winner) error
	TournamentWinners(ctx context.Context, tournamentID string) (*models.WinnerRecord, error)

	CompleteStaleTournaments(ctx context.Context, cutoff time.Time) (int64, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RegisterUser records the user on first contact. Idempotent.
func (s *Service) RegisterUser(ctx context.Context, userID int64, username, firstName string) error {
	return s.repo.UpsertUser(ctx, userID, username, firstName)
}

func (s *Service) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.repo.GetUser(ctx, userID)
}

// MarkMember flips the channel-membership flag after verification.
func (s *Service) MarkMember(ctx context.Context, userID int64) error {
	return s.repo.SetUserMembership(ctx, userID, true)
}

func (s *Service) ActiveTournaments(ctx context.Context) ([]models.Tournament, error) {
	return s.repo.ActiveTournaments(ctx)
}

func (s *Service) GetTournament(ctx context.Context, tournamentID string) (*models.Tournament, error) {
	return s.repo.GetTournament(ctx, tournamentID)
}

// JoinTournament adds the user to the participant list. When the user has
// already claimed a payment for this tournament, the claim's status is
// returned instead and nothing changes.
func (s *Service) JoinTournament(ctx context.Context, tournamentID string, userID int64) (*models.Tournament, string, error) {
	t, err := s.repo.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, "", err
	}

	payment, err := s.repo.GetUserPayment(ctx, userID, tournamentID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, "", err
	}
	if payment != nil {
		return t, payment.Status, nil
	}

	if err := s.repo.AddParticipant(ctx, tournamentID, userID); err != nil {
		return nil, "", err
	}
	if err := s.repo.IncTournamentsJoined(ctx, userID); err != nil {
		return nil, "", err
	}
	return t, "", nil
}

// PendingClaimTournaments lists active tournaments the user has joined but
// not yet claimed a payment for.
func (s *Service) PendingClaimTournaments(ctx context.Context, userID int64) ([]models.Tournament, error) {
	tournaments, err := s.repo.ActiveTournaments(ctx)
	if err != nil {
		return nil, err
	}

	var pending []models.Tournament
	for _, t := range tournaments {
		if !t.IsParticipant(userID) {
			continue
		}
		_, err := s.repo.GetUserPayment(ctx, userID, t.HexID())
		if errors.Is(err, models.ErrNotFound) {
			pending = append(pending, t)
			continue
		}
		if err != nil {
			return nil, err
		}
	}
	return pending, nil
}

// SubmitPaymentClaim records a pending payment for the tournament's entry
// fee. A second claim for the same pair is rejected.
func (s *Service) SubmitPaymentClaim(ctx context.Context, userID int64, t *models.Tournament) error {
	_, err := s.repo.GetUserPayment(ctx, userID, t.HexID())
	if err == nil {
		return models.ErrAlreadyClaimed
	}
	if !errors.Is(err, models.ErrNotFound) {
		return err
	}
	return s.repo.CreatePayment(ctx, userID, t.HexID(), t.EntryFee)
}

// ConfirmPayment marks the payment confirmed and adds the user to the
// confirmed players. Returns ErrNotFound when no payment exists for the
// pair; repeating the confirmation does not duplicate the membership.
func (s *Service) ConfirmPayment(ctx context.Context, userID int64, tournamentID string) (*models.Tournament, error) {
	if err := s.repo.UpdatePaymentStatus(ctx, userID, tournamentID, models.PaymentConfirmed); err != nil {
		return nil, err
	}
	if err := s.repo.ConfirmParticipant(ctx, tournamentID, userID); err != nil {
		return nil, err
	}
	return s.repo.GetTournament(ctx, tournamentID)
}

// DeclinePayment marks the payment declined. The user stays a participant
// but is never confirmed.
func (s *Service) DeclinePayment(ctx context.Context, userID int64, tournamentID string) (*models.Tournament, error) {
	if err := s.repo.UpdatePaymentStatus(ctx, userID, tournamentID, models.PaymentDeclined); err != nil {
		return nil, err
	}
	return s.repo.GetTournament(ctx, tournamentID)
}

// ConfirmPaymentByHandle resolves @username to their pending payment and
// confirms it.
func (s *Service) ConfirmPaymentByHandle(ctx context.Context, username string) (*models.User, *models.Tournament, error) {
	user, t, err := s.pendingPaymentFor(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	confirmed, err := s.ConfirmPayment(ctx, user.UserID, t.HexID())
	if err != nil {
		return nil, nil, err
	}
	return user, confirmed, nil
}

// DeclinePaymentByHandle resolves @username to their pending payment and
// declines it.
func (s *Service) DeclinePaymentByHandle(ctx context.Context, username string) (*models.User, *models.Tournament, error) {
	user, t, err := s.pendingPaymentFor(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	declined, err := s.DeclinePayment(ctx, user.UserID, t.HexID())
	if err != nil {
		return nil, nil, err
	}
	return user, declined, nil
}

// pendingPaymentFor finds the first active tournament where the named user
// has a pending payment.
func (s *Service) pendingPaymentFor(ctx context.Context, username string) (*models.User, *models.Tournament, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}

	tournaments, err := s.repo.ActiveTournaments(ctx)
	if err != nil {
		return nil, nil, err
	}

	for i := range tournaments {
		t := &tournaments[i]
		if !t.IsParticipant(user.UserID) {
			continue
		}
		payment, err := s.repo.GetUserPayment(ctx, user.UserID, t.HexID())
		if errors.Is(err, models.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		if payment.Status == models.PaymentPending {
			return user, t, nil
		}
	}
	return nil, nil, models.ErrNotFound
}

// CreateTournament persists the assembled wizard draft as a new active
// tournament and returns its identifier.
func (s *Service) CreateTournament(ctx context.Context, t *models.Tournament) (string, error) {
	return s.repo.CreateTournament(ctx, t)
}

// SetRoomDetails stores the room credentials on the tournament. Called
// before the broadcast so the credentials survive delivery failures.
func (s *Service) SetRoomDetails(ctx context.Context, tournamentID, roomID, roomPassword string) error {
	return s.repo.UpdateTournament(ctx, tournamentID, map[string]interface{}{
		"room_id":           roomID,
		"room_password":     roomPassword,
		"room_details_sent": true,
	})
}

// DeclareWinners persists the podium and completes the tournament.
func (s *Service) DeclareWinners(ctx context.Context, tournamentID string, winners []models.Winner) (*models.Tournament, error) {
	t, err := s.repo.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddWinners(ctx, tournamentID, winners); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateTournament(ctx, tournamentID, map[string]interface{}{
		"status": models.StatusCompleted,
	}); err != nil {
		return nil, err
	}
	t.Status = models.StatusCompleted
	return t, nil
}

// CompleteTournament closes a tournament without declaring winners
// (the /clear flow). Payment history stays intact.
func (s *Service) CompleteTournament(ctx context.Context, tournamentID string) error {
	return s.repo.UpdateTournament(ctx, tournamentID, map[string]interface{}{
		"status": models.StatusCompleted,
	})
}

// CancelTournament removes a just-created tournament outright.
func (s *Service) CancelTournament(ctx context.Context, tournamentID string) error {
	return s.repo.DeleteTournament(ctx, tournamentID)
}

// Earnings periods.
const (
	PeriodToday = "today"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// PeriodCutoff computes the inclusive lower bound for an earnings report.
func PeriodCutoff(period string, now time.Time) time.Time {
	switch period {
	case PeriodToday:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	case PeriodMonth:
		return now.AddDate(0, 0, -30)
	default:
		return time.Time{}
	}
}

// Earnings sums confirmed payments recorded in the given period.
func (s *Service) Earnings(ctx context.Context, period string) (int, int, error) {
	return s.repo.EarningsSince(ctx, PeriodCutoff(period, time.Now()))
}

// CompleteStaleTournaments flips tournaments older than the retention
// window to completed. Run periodically.
func (s *Service) CompleteStaleTournaments(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return s.repo.CompleteStaleTournaments(ctx, cutoff)
}
