package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"vs_express_url/internal/config"
	"vs_express_url/internal/notifications"
	"vs_express_url/internal/page"
	"vs_express_url/internal/resolver"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/net/html"
)

type options struct {
	url         string
	file        string
	tableClass  string
	bannerClass string
	timeout     time.Duration
	notify      bool
}

func main() {
	setupEnvironment()

	var opts options
	rootCmd := &cobra.Command{
		Use:   "vs_express_url",
		Short: "Print the Visual Studio download link from the free offers page",
		Long: `vs_express_url fetches the Visual Studio free developer offers page,
finds the download link below the Visual Studio banner and prints it.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			applyFlags(cmd, &cfg, opts)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return run(cmd.Context(), cfg, opts.file, cmd.OutOrStdout())
		},
	}

	bindFlags(rootCmd, &opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logFailure(log.Logger, err)
		stop()
		os.Exit(1)
	}
}

func bindFlags(cmd *cobra.Command, opts *options) {
	flags := cmd.Flags()
	flags.StringVar(&opts.url, "url", "", "Offers page URL (default from VS_OFFERS_URL)")
	flags.StringVarP(&opts.file, "file", "f", "", "Read the page from a saved HTML file instead of fetching it")
	flags.StringVar(&opts.tableClass, "table-class", "", "Class marking the apps table")
	flags.StringVar(&opts.bannerClass, "banner-class", "", "Class of the target banner cell")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Fetch timeout")
	flags.BoolVar(&opts.notify, "notify", false, "Publish the link to the configured ntfy topic")
}

// applyFlags overrides the environment configuration with flags set on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config, opts options) {
	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.TargetURL = opts.url
	}
	if flags.Changed("table-class") {
		cfg.TableClass = opts.tableClass
	}
	if flags.Changed("banner-class") {
		cfg.BannerClass = opts.bannerClass
	}
	if flags.Changed("timeout") {
		cfg.FetchTimeout = opts.timeout
	}
	if flags.Changed("notify") {
		cfg.Notify.Enabled = opts.notify
	}
}

func run(ctx context.Context, cfg config.Config, file string, out io.Writer) error {
	doc, err := loadDocument(ctx, cfg, file)
	if err != nil {
		return err
	}

	r := resolver.New(cfg.TableClass, cfg.BannerClass, cfg.LinkClass)
	href, err := r.Resolve(doc)
	if err != nil {
		return fmt.Errorf("failed to resolve link: %w", err)
	}

	if _, err := fmt.Fprintln(out, href); err != nil {
		return fmt.Errorf("failed to write link: %w", err)
	}

	notifier := notifications.NewClient(cfg.Notify.BaseURL, cfg.Notify.Topic, cfg.Notify.Enabled, cfg.Notify.Priority)
	if err := notifier.SendLink(ctx, href); err != nil {
		log.Warn().Err(err).Str("topic", cfg.Notify.Topic).Msg("Failed to publish link")
	} else if notifier.Enabled() {
		log.Info().Str("topic", cfg.Notify.Topic).Msg("Published link")
	}
	return nil
}

func loadDocument(ctx context.Context, cfg config.Config, file string) (*html.Node, error) {
	if file != "" {
		return page.LoadFile(file)
	}

	fetcher := page.NewFetcher(cfg.FetchTimeout, cfg.UserAgent)
	ctx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()

	doc, err := fetcher.Fetch(ctx, cfg.TargetURL)
	log.Debug().Int64("requests", fetcher.RequestCount()).Msg("Fetch summary")
	return doc, err
}

func logFailure(logger zerolog.Logger, err error) {
	var (
		fetchErr  *page.FetchError
		structErr *resolver.StructureError
		notFound  *resolver.NotFoundError
	)
	switch {
	case errors.As(err, &fetchErr):
		logger.Error().Err(err).Str("url", fetchErr.URL).Int("status", fetchErr.StatusCode).Msg("Failed to fetch offers page")
	case errors.As(err, &notFound):
		logger.Error().Err(err).Str("banner_class", notFound.BannerClass).Msg("Banner not found; the page layout may have changed")
	case errors.As(err, &structErr):
		logger.Error().Err(err).Str("table_class", structErr.TableClass).Msg("Unexpected page structure")
	default:
		logger.Error().Err(err).Msg("Failed")
	}
}
