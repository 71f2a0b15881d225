package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/basel-ax/diffusionto/internal/config"
	"github.com/basel-ax/diffusionto/internal/domain"
	"github.com/basel-ax/diffusionto/internal/infrastructure/diffusion"
	"github.com/basel-ax/diffusionto/internal/logging"
	"github.com/basel-ax/diffusionto/internal/repository"
	"github.com/basel-ax/diffusionto/internal/service"
)

// NewCLI builds the diffusion command tree
func NewCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "diffusion",
		Short:        "Request and download AI-created images via diffusion.to",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         GenerateHandler,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	flags := rootCmd.Flags()
	flags.StringP("api-key", "a", "", "The token for the API (defaults to $DIFFUSION_API_KEY)")
	flags.StringP("prompt", "p", "", "The prompt for the image")
	flags.StringP("negative", "n", "", "The negative prompt for the image")
	flags.IntP("steps", "s", int(domain.StepsFifty), "The number of steps for the generation to use "+choices(domain.AllSteps()))
	flags.StringP("model", "m", domain.ModelBeautyRealism.String(), "The image model to use "+choices(domain.AllModels()))
	flags.String("size", domain.SizeSmall.String(), "The size of the image "+choices(domain.AllSizes()))
	flags.StringP("orientation", "o", domain.OrientationLandscape.String(), "The orientation of the image "+choices(domain.AllOrientations()))
	flags.String("out", "", "The file to output the image to (defaults to the sha256 of the image)")
	flags.Duration("timeout", 0, "Maximum time to wait for the image, negative waits without limit (defaults to $DIFFUSION_WAIT_TIMEOUT or 5m)")
	flags.String("schedule", "", "Cron expression with seconds; repeat the generation on this schedule until interrupted")
	_ = rootCmd.MarkFlagRequired("prompt")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recent generations from the history database",
		Args:  cobra.NoArgs,
		RunE:  HistoryHandler,
	}
	historyCmd.Flags().Int("limit", 10, "Number of generations to list")

	rootCmd.AddCommand(historyCmd)
	return rootCmd
}

func choices[T fmt.Stringer](values []T) string {
	s := make([]string, len(values))
	for i, v := range values {
		s[i] = v.String()
	}
	return "(" + strings.Join(s, "|") + ")"
}

// buildRequest converts the raw flag values into a validated request
func buildRequest(flags *pflag.FlagSet) (domain.GenerationRequest, error) {
	var req domain.GenerationRequest

	prompt, err := flags.GetString("prompt")
	if err != nil {
		return req, err
	}
	if strings.TrimSpace(prompt) == "" {
		return req, errors.New("prompt must not be empty")
	}

	rawSteps, err := flags.GetInt("steps")
	if err != nil {
		return req, err
	}
	steps, err := domain.ParseSteps(rawSteps)
	if err != nil {
		return req, err
	}

	rawModel, _ := flags.GetString("model")
	model, err := domain.ParseModel(rawModel)
	if err != nil {
		return req, err
	}

	rawSize, _ := flags.GetString("size")
	size, err := domain.ParseSize(rawSize)
	if err != nil {
		return req, err
	}

	rawOrientation, _ := flags.GetString("orientation")
	orientation, err := domain.ParseOrientation(rawOrientation)
	if err != nil {
		return req, err
	}

	req = domain.NewGenerationRequest(prompt).
		WithSteps(steps).
		WithModel(model).
		WithSize(size).
		WithOrientation(orientation)

	if flags.Changed("negative") {
		negative, _ := flags.GetString("negative")
		req = req.WithNegativePrompt(negative)
	}

	return req, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) zerolog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return logging.New(cmd.ErrOrStderr(), verbose || cfg.Verbose)
}

// openHistoryFunc is replaced in tests
var openHistoryFunc = openHistory

// openHistory connects to the history database when one is configured.
// The returned close function is never nil.
func openHistory(ctx context.Context, cfg *config.Config, log zerolog.Logger) (repository.HistoryRepository, func(), error) {
	if !cfg.HistoryEnabled() {
		return nil, func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	repo := repository.NewPostgresHistoryRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	log.Debug().Str("host", cfg.DB.Host).Str("database", cfg.DB.Database).Msg("history database connected")

	return repo, func() { db.Close() }, nil
}

// GenerateHandler requests an image, waits for it and writes it to disk
func GenerateHandler(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := newLogger(cmd, cfg)

	req, err := buildRequest(cmd.Flags())
	if err != nil {
		return err
	}

	apiKey, _ := cmd.Flags().GetString("api-key")
	if apiKey == "" {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		return errors.New("an API key is required: pass --api-key or set DIFFUSION_API_KEY")
	}

	client, err := diffusion.NewClient(apiKey, diffusion.Options{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.HTTPTimeout,
		Logger:  log,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	history, closeHistory, err := openHistoryFunc(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeHistory()

	svc := service.NewImageGenerationService(client, history, log)

	opts := service.GenerateOptions{OutputDir: cfg.OutputDir, MaxWait: cfg.WaitTimeout}
	opts.Output, _ = cmd.Flags().GetString("out")
	if cmd.Flags().Changed("timeout") {
		opts.MaxWait, _ = cmd.Flags().GetDuration("timeout")
	}

	if schedule, _ := cmd.Flags().GetString("schedule"); schedule != "" {
		return runScheduled(ctx, schedule, log, func(ctx context.Context) error {
			res, err := svc.Generate(ctx, req, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "image written to %s\n", res.Path)
			return nil
		})
	}

	res, err := svc.Generate(ctx, req, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "image written to %s\n", res.Path)
	return nil
}

// HistoryHandler lists the most recent generations
func HistoryHandler(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 1 {
		return fmt.Errorf("--limit must be at least 1, got %d", limit)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !cfg.HistoryEnabled() {
		return errors.New("no history database configured: set DB_HOST, DB_USER and DB_NAME")
	}
	log := newLogger(cmd, cfg)

	history, closeHistory, err := openHistoryFunc(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer closeHistory()

	records, err := history.ListRecent(cmd.Context(), limit)
	if err != nil {
		return err
	}

	var data [][]string
	for _, r := range records {
		data = append(data, []string{
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.Model,
			strconv.Itoa(r.Steps),
			strconv.FormatUint(r.CreditsUsed, 10),
			r.OutputPath,
			r.Prompt,
		})
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"CREATED", "MODEL", "STEPS", "CREDITS", "PATH", "PROMPT"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	return nil
}
