package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rahul24325/BgmiTournamentBot5/internal/models"
)

// Repository is the persistence gateway over the Mongo collections.
type Repository struct {
	users       *mongo.Collection
	tournaments *mongo.Collection
	payments    *mongo.Collection
	winners     *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{
		users:       db.Collection("users"),
		tournaments: db.Collection("tournaments"),
		payments:    db.Collection("payments"),
		winners:     db.Collection("winners"),
	}
}

// EnsureIndexes creates the indexes the queries rely on. Safe to call on
// every startup.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return wrapErr(err)
	}

	_, err = r.tournaments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: 1}},
	})
	if err != nil {
		return wrapErr(err)
	}

	_, err = r.payments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "tournament_id", Value: 1}},
	})
	return wrapErr(err)
}

// wrapErr maps driver errors onto the domain error taxonomy.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ErrNotFound
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	return err
}

// User methods

// UpsertUser registers the user on first contact. Existing users keep
// their stored fields.
func (r *Repository) UpsertUser(ctx context.Context, userID int64, username, firstName string) error {
	_, err := r.users.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$setOnInsert": models.User{
			UserID:    userID,
			Username:  username,
			FirstName: firstName,
			JoinedAt:  time.Now(),
			IsMember:  false,
		}},
		options.Update().SetUpsert(true),
	)
	return wrapErr(err)
}

func (r *Repository) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	err := r.users.FindOne(ctx, bson.M{"user_id": userID}).Decode(&user)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &user, nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.users.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &user, nil
}

func (r *Repository) SetUserMembership(ctx context.Context, userID int64, isMember bool) error {
	now := time.Now()
	_, err := r.users.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{"is_member": isMember, "membership_updated": now}},
	)
	return wrapErr(err)
}

func (r *Repository) IncTournamentsJoined(ctx context.Context, userID int64) error {
	_, err := r.users.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$inc": bson.M{"tournaments_joined": 1}},
	)
	return wrapErr(err)
}

// Tournament methods

func (r *Repository) CreateTournament(ctx context.Context, t *models.Tournament) (string, error) {
	t.Status = models.StatusActive
	t.Participants = []int64{}
	t.ConfirmedPlayers = []int64{}
	t.CreatedAt = time.Now()

	res, err := r.tournaments.InsertOne(ctx, t)
	if err != nil {
		return "", wrapErr(err)
	}
	id := res.InsertedID.(primitive.ObjectID)
	t.ID = id
	return id.Hex(), nil
}

func (r *Repository) GetTournament(ctx context.Context, tournamentID string) (*models.Tournament, error) {
	oid, err := primitive.ObjectIDFromHex(tournamentID)
	if err != nil {
		return nil, models.ErrNotFound
	}

	var t models.Tournament
	if err := r.tournaments.FindOne(ctx, bson.M{"_id": oid}).Decode(&t); err != nil {
		return nil, wrapErr(err)
	}
	return &t, nil
}

// ActiveTournaments returns all active tournaments, newest first.
func (r *Repository) ActiveTournaments(ctx context.Context) ([]models.Tournament, error) {
	cur, err := r.tournaments.Find(ctx,
		bson.M{"status": models.StatusActive},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer cur.Close(ctx)

	var tournaments []models.Tournament
	if err := cur.All(ctx, &tournaments); err != nil {
		return nil, wrapErr(err)
	}
	return tournaments, nil
}

func (r *Repository) UpdateTournament(ctx context.Context, tournamentID string, update map[string]interface{}) error {
	oid, err := primitive.ObjectIDFromHex(tournamentID)
	if err != nil {
		return models.ErrNotFound
	}

	res, err := r.tournaments.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": update})
	if err != nil {
		return wrapErr(err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteTournament(ctx context.Context, tournamentID string) error {
	oid, err := primitive.ObjectIDFromHex(tournamentID)
	if err != nil {
		return models.ErrNotFound
	}

	res, err := r.tournaments.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return wrapErr(err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// AddParticipant records a join. $addToSet keeps repeats idempotent.
func (r *Repository) AddParticipant(ctx context.Context, tournamentID string, userID int64) error {
	return r.addToSet(ctx, tournamentID, "participants", userID)
}

// ConfirmParticipant moves a paid user into the confirmed list.
func (r *Repository) ConfirmParticipant(ctx context.Context, tournamentID string, userID int64) error {
	return r.addToSet(ctx, tournamentID, "confirmed_players", userID)
}

func (r *Repository) addToSet(ctx context.Context, tournamentID, field string, userID int64) error {
	oid, err := primitive.ObjectIDFromHex(tournamentID)
	if err != nil {
		return models.ErrNotFound
	}

	res, err := r.tournaments.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$addToSet": bson.M{field: userID}},
	)
	if err != nil {
		return wrapErr(err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Payment methods

func (r *Repository) CreatePayment(ctx context.Context, userID int64, tournamentID string, amount int) error {
	_, err := r.payments.InsertOne(ctx, models.Payment{
		UserID:       userID,
		TournamentID: tournamentID,
		Amount:       amount,
		Status:       models.PaymentPending,
		CreatedAt:    time.Now(),
	})
	return wrapErr(err)
}

func (r *Repository) GetUserPayment(ctx context.Context, userID int64, tournamentID string) (*models.Payment, error) {
	var p models.Payment
	err := r.payments.FindOne(ctx, bson.M{"user_id": userID, "tournament_id": tournamentID}).Decode(&p)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &p, nil
}

// UpdatePaymentStatus transitions the payment for the (user, tournament)
// pair. Returns ErrNotFound when no payment matches.
func (r *Repository) UpdatePaymentStatus(ctx context.Context, userID int64, tournamentID, status string) error {
	now := time.Now()
	res, err := r.payments.UpdateOne(ctx,
		bson.M{"user_id": userID, "tournament_id": tournamentID},
		bson.M{"$set": bson.M{"status": status, "updated_at": now}},
	)
	if err != nil {
		return wrapErr(err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// EarningsSince aggregates confirmed payments created at or after the
// cutoff into a total amount and payment count.
func (r *Repository) EarningsSince(ctx context.Context, cutoff time.Time) (int, int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"status":     models.PaymentConfirmed,
			"created_at": bson.M{"$gte": cutoff},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":            nil,
			"total_amount":   bson.M{"$sum": "$amount"},
			"total_payments": bson.M{"$sum": 1},
		}}},
	}

	cur, err := r.payments.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, wrapErr(err)
	}
	defer cur.Close(ctx)

	var results []struct {
		TotalAmount   int `bson:"total_amount"`
		TotalPayments int `bson:"total_payments"`
	}
	if err := cur.All(ctx, &results); err != nil {
		return 0, 0, wrapErr(err)
	}
	if len(results) == 0 {
		return 0, 0, nil
	}
	return results[0].TotalAmount, results[0].TotalPayments, nil
}

// Winner methods

func (r *Repository) AddWinners(ctx context.Context, tournamentID string, winners []models.Winner) error {
	_, err := r.winners.InsertOne(ctx, models.WinnerRecord{
		TournamentID: tournamentID,
		Winners:      winners,
		DeclaredAt:   time.Now(),
	})
	return wrapErr(err)
}

func (r *Repository) TournamentWinners(ctx context.Context, tournamentID string) (*models.WinnerRecord, error) {
	var rec models.WinnerRecord
	err := r.winners.FindOne(ctx, bson.M{"tournament_id": tournamentID}).Decode(&rec)
	if err != nil {
		return nil, wrapErr(err)
	}
	return &rec, nil
}

// Maintenance

// CompleteStaleTournaments marks active tournaments created before the
// cutoff as completed and returns how many were touched.
func (r *Repository) CompleteStaleTournaments(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.tournaments.UpdateMany(ctx,
		bson.M{"status": models.StatusActive, "created_at": bson.M{"$lt": cutoff}},
		bson.M{"$set": bson.M{"status": models.StatusCompleted}},
	)
	if err != nil {
		return 0, wrapErr(err)
	}
	return res.ModifiedCount, nil
}
