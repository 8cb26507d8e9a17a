package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"receipts/internal/config"
	"receipts/internal/ledger"
	"receipts/internal/printer"
	"receipts/internal/render"
	"receipts/internal/tasks"
	"syscall"
	_ "time/tzdata"

	"github.com/hibiken/asynq"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store, err := ledger.OpenStore(cfg.DatabaseURL, cfg.LedgerPath)
	if err != nil {
		log.Fatalf("Failed to open ledger: %v", err)
	}

	renderer, err := render.New(render.Options{
		TemplateDir:  cfg.TemplateDir,
		OutputDir:    cfg.OutputDir,
		Format:       cfg.OutputFormat,
		PDFConverter: cfg.PDFConverter,
	})
	if err != nil {
		log.Fatalf("Failed to set up renderer: %v", err)
	}

	taskProcessor, err := tasks.NewTaskProcessor(store, cfg, renderer, printer.New(cfg.PrinterName, cfg.PrintCommand))
	if err != nil {
		log.Fatalf("Failed to create task processor: %v", err)
	}

	log.Printf("Polling %s every %s (timezone %s)", taskProcessor.DefaultNamespace(), cfg.PollInterval, cfg.Timezone)

	if cfg.RedisURL != "" {
		runAsynq(cfg, taskProcessor)
		return
	}
	runPoller(cfg, taskProcessor)
}

// runPoller drives passes from this process until SIGINT or SIGTERM.
func runPoller(cfg *config.Config, taskProcessor *tasks.TaskProcessor) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	poller := &tasks.Poller{
		Interval: cfg.PollInterval,
		Pass: func(ctx context.Context) error {
			_, err := taskProcessor.RunPass(ctx, taskProcessor.DefaultNamespace())
			return err
		},
	}

	log.Println("Starting poll loop...")
	poller.Run(ctx)

	log.Println("Shutdown signal received, poll loop stopped.")
}

// runAsynq schedules passes through redis so they survive worker restarts.
func runAsynq(cfg *config.Config, taskProcessor *tasks.TaskProcessor) {
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to parse Redis URL: %v", err)
	}

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Location: cfg.Location})
	pollRecordsTask, err := tasks.NewPollRecordsTask(nil, nil)
	if err != nil {
		log.Fatalf("Failed to create poll records task: %v", err)
	}

	entryID, err := scheduler.Register("@every "+cfg.PollInterval.String(), pollRecordsTask, tasks.PollRecordsScheduleOptions(cfg.PollInterval)...)
	if err != nil {
		log.Fatalf("Failed to register periodic task: %v", err)
	}
	log.Printf("Registered periodic task: %s (EntryID: %s)", pollRecordsTask.Type(), entryID)

	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Queues: map[string]int{
				"default": 1,
			},
			// passes share one ledger and one printer
			Concurrency: 1,
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(
		tasks.TypeTaskPollRecords,
		taskProcessor.HandlePollRecordsTask,
	)

	go func() {
		log.Println("Starting Asynq scheduler...")
		if err := scheduler.Run(); err != nil {
			log.Fatalf("Could not run Asynq scheduler: %v", err)
		}
	}()

	go func() {
		log.Println("Starting Asynq worker server...")
		if err := srv.Run(mux); err != nil {
			log.Fatalf("Could not run Asynq worker server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Println("Shutdown signal received, shutting down gracefully...")

	scheduler.Shutdown()
	log.Println("Asynq scheduler shut down.")

	srv.Shutdown()
	log.Println("Asynq worker server shut down.")

	log.Println("Worker process shut down complete.")
}
