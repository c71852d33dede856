package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fieldforce.com/fieldforce/ai"
	"fieldforce.com/fieldforce/config"
	fcore "fieldforce.com/fieldforce/fieldforce/core"
	"fieldforce.com/fieldforce/fieldforce/model"
	"fieldforce.com/fieldforce/fieldforce/store"
	"fieldforce.com/fieldforce/fieldforce/web/common"
	"fieldforce.com/fieldforce/fieldforce/web/handlers"
	"fieldforce.com/fieldforce/infrastructure/communication"
	"fieldforce.com/fieldforce/infrastructure/filesystem"
	"fieldforce.com/fieldforce/security"
	"fieldforce.com/fieldforce/web/middlewares"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatal(err)
	}
	secret, err := security.DecodeSecret(cfg.Auth.SigningSecret)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	dm, err := cfg.OpenDatabase()
	if err != nil {
		log.Fatal(err)
	}
	defer dm.Close()
	if err := dm.Migrate(ctx, model.All()...); err != nil {
		log.Fatal(err)
	}

	deps := fcore.Dependencies{
		Stores: fcore.Stores{
			Attendance: store.NewAttendanceStore(dm),
			Locations:  store.NewLocationStore(dm),
			Profiles:   store.NewProfileStore(dm),
			Branches:   store.NewBranchStore(dm),
			Vehicles:   store.NewVehicleStore(dm),
			Expenses:   store.NewExpenseStore(dm),
		},
	}

	positions := fcore.NewReportedPositions(time.Now)
	deps.Positions = positions

	if cfg.Storage.VoucherBucket != "" {
		bucket, err := filesystem.NewBucket(ctx, cfg.Storage.VoucherBucket, cfg.Storage.Region, cfg.Storage.PublicBaseURL)
		if err != nil {
			log.Fatal(err)
		}
		deps.Blobs = bucket
	} else {
		fmt.Printf("[WARN] no voucher bucket configured, vouchers will be rejected\n")
	}

	if cfg.AI.APIKey != "" {
		deps.Assistant = ai.NewAssistant(
			ai.NewGemini(ctx, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.Verbose),
			ai.WithTimeout(cfg.AI.Timeout),
			ai.WithLanguage(cfg.AI.Language),
		)
	} else {
		fmt.Printf("[INFO] no AI key, using fallback insights\n")
	}

	svc := fcore.NewService(deps, cfg.CoreOptions())
	sessions := fcore.NewRegistry(svc)

	slack := communication.ConnectSlack(cfg.Slack)
	scheduler := cron.New(cron.WithLocation(cfg.Location()))
	if cfg.Server.DigestSchedule != "" {
		_, err := scheduler.AddFunc(cfg.Server.DigestSchedule, func() {
			digest, err := svc.DailyDigest(context.Background(), svc.Today())
			if err != nil {
				slack.Error(fmt.Sprintf("daily digest: %v", err))
				return
			}
			if err := slack.Info(digest.Text()); err != nil {
				fmt.Printf("[ERROR] post digest: %v\n", err)
			}
		})
		if err != nil {
			log.Fatalf("digest schedule %q: %v", cfg.Server.DigestSchedule, err)
		}
	}
	scheduler.Start()

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: len(cfg.Server.AllowOrigins) > 0 && cfg.Server.AllowOrigins[0] != "*",
		MaxAge:           12 * time.Hour,
	}))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	protected := r.Group("/api")
	protected.Use(middlewares.Authentication(secret, cfg.Auth.Issuer))
	handlers.Register(protected, common.Handler{Service: svc, Sessions: sessions, Positions: positions})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Server.Port), Handler: r}
	go func() {
		fmt.Printf("[INFO] listening on %s\n", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Printf("[INFO] shutting down\n")
	<-scheduler.Stop().Done()
	sessions.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Printf("[ERROR] shutdown: %v\n", err)
	}
}
