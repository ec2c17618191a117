package main

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rahul24325/BgmiTournamentBot5/internal/config"
	"github.com/Rahul24325/BgmiTournamentBot5/internal/handlers"
	"github.com/Rahul24325/BgmiTournamentBot5/internal/logger"
	"github.com/Rahul24325/BgmiTournamentBot5/internal/repository"
	"github.com/Rahul24325/BgmiTournamentBot5/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatalf("failed to connect to MongoDB: %v", err)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatalf("failed to ping MongoDB: %v", err)
	}
	logger.Info("connected to MongoDB")

	repo := repository.NewRepository(client.Database(cfg.Mongo.Database))
	if err := repo.EnsureIndexes(ctx); err != nil {
		logger.Fatalf("failed to create indexes: %v", err)
	}

	svc := service.NewService(repo)

	bot, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		logger.Fatalf("failed to create bot: %v", err)
	}
	logger.Infof("authorized on account %s", bot.Self.UserName)

	handler := handlers.NewBotHandler(bot, svc, cfg)

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatalf("failed to create scheduler: %v", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(time.Hour),
		gocron.NewTask(func() {
			sweepCtx, sweepCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer sweepCancel()

			n, err := svc.CompleteStaleTournaments(sweepCtx, cfg.Cleanup.RetentionDays)
			if err != nil {
				logger.Errorf("stale tournament sweep failed: %v", err)
				return
			}
			if n > 0 {
				logger.Infof("completed %d stale tournaments", n)
			}
		}),
	)
	if err != nil {
		logger.Fatalf("failed to schedule cleanup job: %v", err)
	}
	scheduler.Start()
	defer func() {
		_ = scheduler.Shutdown()
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = []string{"message", "callback_query"}

	logger.Info("bot started, waiting for updates")
	for update := range bot.GetUpdatesChan(u) {
		handler.HandleUpdate(update)
	}
}
