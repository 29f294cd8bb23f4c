package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gapcheck/internal/client"
	"gapcheck/internal/config"
	"gapcheck/internal/domain"
	"gapcheck/internal/email/noop"
	"gapcheck/internal/email/ses"
	"gapcheck/internal/port"
	"gapcheck/internal/service"
	"gapcheck/internal/storage/local"
	s3storage "gapcheck/internal/storage/s3"
)

const usage = `Usage: gapcheck <command> [flags]

Commands:
  analyze  -curriculum FILE -standards FILE [-export pdf,json,xlsx,csv] [-email ADDR]
  resume   [-export ...] [-email ADDR] SESSION_ID
  report   SESSION_ID
  export   [-formats pdf,json,xlsx,csv] [-share DURATION] SESSION_ID
  mapping  SESSION_ID
  health`

func main() {
	if err := run(); err != nil {
		var uerr usageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		log.Fatal(domain.UserMessage(err) + " (" + err.Error() + ")")
	}
}

// app holds the wired dependencies shared by every command.
type app struct {
	cfg          *config.Config
	api          port.AnalysisAPI
	validator    *service.DocumentValidator
	orchestrator *service.Orchestrator
	exporter     *service.ExportService
	notifier     port.ReportNotifier
}

func run() error {
	if len(os.Args) < 2 {
		return usageError("missing command")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "analyze":
		return a.analyze(ctx, args)
	case "resume":
		return a.resume(ctx, args)
	case "report":
		return a.report(ctx, args)
	case "export":
		return a.export(ctx, args)
	case "mapping":
		return a.mapping(ctx, args)
	case "health":
		return a.health(ctx)
	case "help", "-h", "--help":
		fmt.Println(usage)
		return nil
	default:
		return usageError("unknown command: " + cmd)
	}
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	api := client.New(&cfg.API)

	// Initialize storage
	var (
		store port.ObjectStorage
		err   error
	)
	switch cfg.Export.Provider {
	case "s3":
		store, err = s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	default:
		store, err = local.NewLocalStorage(cfg.Export.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize export dir: %w", err)
		}
	}

	// Initialize notifier
	var notifier port.ReportNotifier
	switch cfg.Email.Provider {
	case "ses":
		notifier, err = ses.NewSESSender(ctx, cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		notifier = noop.NewNoopSender()
	}

	// Initialize services
	validator := service.NewDocumentValidator(&cfg.Upload)
	prefix := ""
	if cfg.Export.Provider == "s3" {
		prefix = cfg.S3.Prefix
	}

	return &app{
		cfg:          cfg,
		api:          api,
		validator:    validator,
		orchestrator: service.NewOrchestrator(api, validator, cfg.Poller),
		exporter:     service.NewExportService(api, store, prefix),
		notifier:     notifier,
	}, nil
}

type usageError string

func (e usageError) Error() string { return string(e) }
