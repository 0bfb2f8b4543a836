package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/signdispatch/internal/adapter/driven/localfs"
	"github.com/ericfisherdev/signdispatch/internal/adapter/driven/signnow"
	"github.com/ericfisherdev/signdispatch/internal/adapter/driven/xlsx"
	"github.com/ericfisherdev/signdispatch/internal/application"
	"github.com/ericfisherdev/signdispatch/internal/config"
	"github.com/ericfisherdev/signdispatch/internal/domain/model"
	"github.com/ericfisherdev/signdispatch/internal/metrics"
)

const usage = `usage: signdispatch <command> [flags]

commands:
  init               create missing workbooks and sample documents
  fetch-tokens       issue an access token for every account and append it to the tokens table
  import-recipients  replace the recipients table with recipients parsed from text
  list-recipients    print the recipients table and its size
  run                send the document to every recipient
`

// sampleDocuments is the number of placeholder PDFs created in an empty files dir.
const sampleDocuments = 2

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("missing command")
	}

	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	store := xlsx.NewStore(xlsx.Paths{
		Recipients: cfg.RecipientsFile,
		SendPlan:   cfg.SendPlanFile,
		Accounts:   cfg.AccountsFile,
		Tokens:     cfg.TokensFile,
	})
	if err := bootstrap(store, cfg.FilesDir, logger); err != nil {
		return err
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "init":
		logger.Info("workspace ready", "files_dir", cfg.FilesDir)
		return nil
	case "fetch-tokens":
		return fetchTokens(cfg, store, logger)
	case "import-recipients":
		return importRecipients(rest, store, logger)
	case "list-recipients":
		return listRecipients(store, logger)
	case "run":
		return dispatch(cfg, store, logger)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// newLogger builds the process logger. When cfg.LogFile is set, records are
// appended to it as well as written to stderr.
func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	var w io.Writer = os.Stderr
	closeFn := func() {}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, f)
		closeFn = func() { _ = f.Close() }
	}

	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h), closeFn, nil
}

func bootstrap(store *xlsx.Store, filesDir string, logger *slog.Logger) error {
	created, err := store.EnsureFiles()
	if err != nil {
		return fmt.Errorf("create workbooks: %w", err)
	}
	docs, err := localfs.EnsureSampleDocuments(filesDir, sampleDocuments)
	if err != nil {
		return fmt.Errorf("create sample documents: %w", err)
	}
	for _, path := range append(created, docs...) {
		logger.Info("created", "path", path)
	}
	return nil
}

func fetchTokens(cfg *config.Config, store *xlsx.Store, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := signnow.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, cfg.RequestInterval, logger)
	if err != nil {
		return err
	}

	svc := application.NewTokenService(client, store, store, cfg.DefaultTokenLimit, logger)
	n, err := svc.FetchTokens(ctx)
	if err != nil {
		return err
	}
	logger.Info("tokens saved", "count", n, "path", cfg.TokensFile)
	return nil
}

func importRecipients(args []string, store *xlsx.Store, logger *slog.Logger) error {
	fs := flag.NewFlagSet("import-recipients", flag.ContinueOnError)
	mode := fs.String("mode", string(model.NameModeUseExisting), "name handling: use_existing, fixed_name or random_name")
	name := fs.String("name", "", "name assigned to every recipient in fixed_name mode")
	file := fs.String("file", "", "text file with one recipient per line (default stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var in io.Reader = os.Stdin
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			return fmt.Errorf("open recipients text: %w", err)
		}
		defer f.Close()
		in = f
	}
	text, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read recipients text: %w", err)
	}

	svc := application.NewRecipientImportService(store, logger)
	_, err = svc.Import(context.Background(), string(text), model.NameMode(*mode), *name)
	return err
}

func listRecipients(store *xlsx.Store, logger *slog.Logger) error {
	svc := application.NewRecipientImportService(store, logger)
	recipients, err := svc.List(context.Background())
	if err != nil {
		return err
	}
	return application.WriteRecipients(os.Stdout, recipients)
}

// dispatch performs one run. The run is not interruptible between recipients,
// so no signal context is installed here.
func dispatch(cfg *config.Config, store *xlsx.Store, logger *slog.Logger) error {
	ctx := context.Background()

	rows, err := store.LoadCredentials(ctx)
	if err != nil {
		return fmt.Errorf("load tokens: %w", err)
	}
	pool := application.NewCredentialPool()
	if err := pool.Load(rows); err != nil {
		return err
	}
	logger.Info("credential pool loaded", "tokens", pool.Len(), "remaining", pool.Remaining())

	client, err := signnow.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, cfg.RequestInterval, logger)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           metrics.Handler(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("metrics server starting", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics server shutdown error", "error", err)
			}
		}()
	}

	// Send-plan paths are written relative to the working directory
	// (e.g. files/sample1.pdf), not to the files dir.
	attachments := localfs.NewAttachmentStore("")
	svc := application.NewDispatchService(client, store, store, attachments, collector, logger)

	report, err := svc.Run(ctx, pool)
	if err != nil {
		return err
	}
	if report.Exhausted {
		logger.Warn("run stopped early, recipients left unattempted", "unattempted", report.Unattempted)
	}
	return nil
}
