// email-responder — inbound email pipeline.
//
// Polls the Gmail inbox, classifies each new message, extracts the customer
// identity, matches it against open BlueFolder service requests, and sends
// a drafted reply. Confirmation replies update the linked work order.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/laranseos/email-automation-gpt-bluefolder/internal/ai"
	"github.com/laranseos/email-automation-gpt-bluefolder/internal/config"
	"github.com/laranseos/email-automation-gpt-bluefolder/internal/mail"
	"github.com/laranseos/email-automation-gpt-bluefolder/internal/match"
	"github.com/laranseos/email-automation-gpt-bluefolder/internal/reply"
	"github.com/laranseos/email-automation-gpt-bluefolder/internal/responder"
	"github.com/laranseos/email-automation-gpt-bluefolder/internal/workorder"
)

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	if err := godotenv.Load(); err != nil {
		log.Println("[responder] No .env file, using environment")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[responder] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Gmail ────────────────────────────────────────────────────────────────
	log.Println("[responder] Connecting to Gmail…")
	token, err := mail.LoadToken(cfg.GoogleTokenFile)
	if err != nil {
		log.Fatalf("[responder] OAuth token: %v", err)
	}
	oauthCfg := mail.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret)
	mailbox, err := mail.NewGmailClient(ctx, oauthCfg, token)
	if err != nil {
		log.Fatalf("[responder] Gmail: %v", err)
	}
	log.Println("[responder] Gmail connected ✓")

	// ── Collaborators ────────────────────────────────────────────────────────
	llm := ai.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	work := workorder.NewBlueFolder(cfg.BlueFolderToken, cfg.BlueFolderBaseURL)
	blacklist := mail.NewBlacklist(cfg.BlacklistEmails, cfg.BlacklistDomains)
	matcher := match.New(cfg.MatchWeights, cfg.MatchThreshold)
	drafter := reply.NewGenerator(llm, nil, cfg.SenderSignature)

	handler := responder.NewHandler(
		blacklist,
		ai.NewCategorizer(llm),
		ai.NewExtractor(llm),
		ai.NewReplyClassifier(llm),
		drafter,
		matcher,
		work,
		mailbox,
	)

	// ── Watcher + worker pool ────────────────────────────────────────────────
	watcher := responder.NewWatcher(mailbox, handler, cfg.Workers, time.Now())
	watcher.Start(ctx)

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	spec := fmt.Sprintf("@every %s", cfg.PollInterval)
	if _, err := c.AddFunc(spec, func() {
		if err := watcher.Poll(ctx); err != nil {
			log.Printf("[responder] Poll error: %v", err)
		}
	}); err != nil {
		log.Fatalf("[responder] cron.AddFunc: %v", err)
	}
	c.Start()
	log.Printf("[responder] Watching inbox — spec: %s, workers: %d", spec, cfg.Workers)

	// Run immediately on startup (non-blocking)
	go func() {
		if err := watcher.Poll(ctx); err != nil {
			log.Printf("[responder] Poll error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[responder] Shutting down…")
	<-c.Stop().Done()
	watcher.Stop()
	log.Println("[responder] Stopped.")
}
