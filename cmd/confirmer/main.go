// email-confirmer — appointment confirmation loop.
//
// Polls BlueFolder for technician assignments in a rolling date window,
// diffs them against the persisted snapshot, and emails each new or changed
// assignment's customer at most once. Publishes EVENT_CONFIRMATION_SENT to
// Redis when configured.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/laranseos/email-automation-gpt-bluefolder/internal/ai"
	"github.com/laranseos/email-automation-gpt-bluefolder/internal/config"
	"github.com/laranseos/email-automation-gpt-bluefolder/internal/db"
	"github.com/laranseos/email-automation-gpt-bluefolder/internal/mail"
	"github.com/laranseos/email-automation-gpt-bluefolder/internal/reply"
	"github.com/laranseos/email-automation-gpt-bluefolder/internal/schedule"
	"github.com/laranseos/email-automation-gpt-bluefolder/internal/store"
	"github.com/laranseos/email-automation-gpt-bluefolder/internal/workorder"
)

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	if err := godotenv.Load(); err != nil {
		log.Println("[confirmer] No .env file, using environment")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[confirmer] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── State store ──────────────────────────────────────────────────────────
	st, publisher, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		log.Fatalf("[confirmer] Store: %v", err)
	}
	defer cleanup()
	log.Printf("[confirmer] State backend: %s", cfg.StoreBackend)

	// ── Gmail ────────────────────────────────────────────────────────────────
	log.Println("[confirmer] Connecting to Gmail…")
	token, err := mail.LoadToken(cfg.GoogleTokenFile)
	if err != nil {
		log.Fatalf("[confirmer] OAuth token: %v", err)
	}
	oauthCfg := mail.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret)
	mailbox, err := mail.NewGmailClient(ctx, oauthCfg, token)
	if err != nil {
		log.Fatalf("[confirmer] Gmail: %v", err)
	}
	log.Println("[confirmer] Gmail connected ✓")

	// ── Confirmation cycle ───────────────────────────────────────────────────
	llm := ai.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	work := workorder.NewBlueFolder(cfg.BlueFolderToken, cfg.BlueFolderBaseURL)
	drafter := reply.NewGenerator(llm, nil, cfg.SenderSignature)
	ledger := schedule.LoadLedger(ctx, st, schedule.LedgerKey)
	log.Printf("[confirmer] Sent ledger loaded — %d entries", ledger.Len())

	confirmer := schedule.NewConfirmer(work, mailbox, drafter, st, ledger, publisher,
		cfg.FetchDaysAhead, cfg.FallbackRecipient)

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	spec := fmt.Sprintf("@every %s", cfg.ConfirmInterval)
	if _, err := c.AddFunc(spec, func() {
		if err := confirmer.RunCycle(ctx); err != nil {
			log.Printf("[confirmer] Cycle error: %v", err)
		}
	}); err != nil {
		log.Fatalf("[confirmer] cron.AddFunc: %v", err)
	}
	c.Start()
	log.Printf("[confirmer] Cron started — spec: %s, window: %d days", spec, cfg.FetchDaysAhead)

	// Run immediately on startup (non-blocking)
	go func() {
		if err := confirmer.RunCycle(ctx); err != nil {
			log.Printf("[confirmer] Cycle error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[confirmer] Shutting down…")
	<-c.Stop().Done()
	log.Println("[confirmer] Stopped.")
}

// buildStore selects the state backend from config. The Redis backend also
// doubles as the event publisher; the other backends publish nothing.
func buildStore(ctx context.Context, cfg *config.Config) (store.Store, schedule.Publisher, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		st, err := store.NewPostgresStore(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		return st, nil, pool.Close, nil

	case config.BackendRedis:
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		cleanup := func() {
			if err := rdb.Close(); err != nil {
				log.Printf("[confirmer] Redis close: %v", err)
			}
		}
		return store.NewRedisStore(rdb, "assistant:"), db.NewRedisPublisher(rdb), cleanup, nil

	default:
		st, err := store.NewFileStore(cfg.StoreDir)
		if err != nil {
			return nil, nil, nil, err
		}
		return st, nil, func() {}, nil
	}
}
