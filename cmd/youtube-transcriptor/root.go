package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Stephensmetana/youtube-transcriptor/client"
	"github.com/Stephensmetana/youtube-transcriptor/internal/config"
	"github.com/Stephensmetana/youtube-transcriptor/internal/cookies"
	"github.com/Stephensmetana/youtube-transcriptor/internal/innertube"
	"github.com/Stephensmetana/youtube-transcriptor/internal/logging"
	"github.com/Stephensmetana/youtube-transcriptor/internal/timedtext"
)

var version = "dev"

type rootOptions struct {
	configPath    string
	outputPath    string
	outputDir     string
	languages     []string
	format        string
	noTimestamps  bool
	proxy         string
	timeout       int
	logLevel      string
	logFormat     string
	cookiesPath   string
	verboseEvents bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "youtube-transcriptor <video-id-or-url>",
		Short: "Download YouTube transcripts as clean text files",
		Long: `youtube-transcriptor fetches the caption track of a YouTube video and
saves it as a plain text transcript, one timestamped line per caption.

The video may be given as a bare 11-character ID or any common URL form
(watch, youtu.be, shorts, embed, live).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, opts, args[0])
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file path (default ~/.config/youtube-transcriptor/config.toml)")
	flags.StringVar(&opts.proxy, "proxy", "", "proxy URL for all requests")
	flags.IntVar(&opts.timeout, "timeout", 0, "request timeout in seconds")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format (console, json)")
	flags.StringVar(&opts.cookiesPath, "cookies", "", "Netscape cookies.txt file for an authenticated session")

	local := cmd.Flags()
	local.StringVarP(&opts.outputPath, "output", "o", "", "write to this exact file path instead of deriving a name")
	local.StringVar(&opts.outputDir, "dir", "", "output directory for derived filenames (default transcripts)")
	local.StringSliceVarP(&opts.languages, "languages", "l", nil, "preferred caption language codes, in order")
	local.StringVar(&opts.format, "format", "", "output format: text, srt, vtt (default text)")
	local.BoolVar(&opts.noTimestamps, "no-timestamps", false, "omit [MM:SS] prefixes in text output")
	local.BoolVar(&opts.verboseEvents, "events", false, "log per-client extraction attempts")

	cmd.AddCommand(newTracksCommand(opts))
	cmd.AddCommand(newLanguagesCommand())
	cmd.AddCommand(newConfigCommand(opts))

	return cmd
}

// loadSettings merges the config file with command-line overrides.
func loadSettings(opts *rootOptions) (*config.Config, *slog.Logger, error) {
	cfg, path, exists, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}

	if opts.outputDir != "" {
		cfg.Output.Directory = opts.outputDir
	}
	if len(opts.languages) > 0 {
		cfg.Selection.Languages = opts.languages
	}
	if opts.format != "" {
		cfg.Output.Format = strings.ToLower(opts.format)
	}
	if opts.noTimestamps {
		cfg.Output.Timestamps = false
	}
	if opts.proxy != "" {
		cfg.Network.Proxy = opts.proxy
	}
	if opts.timeout > 0 {
		cfg.Network.RequestTimeoutSeconds = opts.timeout
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Logging.Format = opts.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return nil, nil, err
	}
	if exists {
		logger.Debug("config loaded", "path", path)
	}
	return cfg, logger, nil
}

func buildClient(cfg *config.Config, logger *slog.Logger, opts *rootOptions) (*client.Client, error) {
	clientCfg := client.Config{
		ProxyURL:               cfg.Network.Proxy,
		RequestTimeout:         time.Duration(cfg.Network.RequestTimeoutSeconds) * time.Second,
		ClientOverrides:        cfg.Clients.Order,
		ClientSkip:             cfg.Clients.Skip,
		DisableFallbackClients: cfg.Clients.DisableFallback,
		CaptionRetry: timedtext.RetryConfig{
			MaxRetries: cfg.Network.MaxRetries,
		},
		Logger: logger,
	}
	if opts.cookiesPath != "" {
		jar, err := cookies.LoadJar(opts.cookiesPath)
		if err != nil {
			return nil, err
		}
		clientCfg.CookieJar = jar
	}
	if opts.verboseEvents {
		clientCfg.OnExtractionEvent = func(ev innertube.ExtractionEvent) {
			if ev.Err != nil {
				logger.Debug("extraction", "stage", ev.Stage, "client", ev.Client, "video_id", ev.VideoID, "err", ev.Err)
				return
			}
			logger.Debug("extraction", "stage", ev.Stage, "client", ev.Client, "video_id", ev.VideoID)
		}
	}
	return client.New(clientCfg), nil
}

func runFetch(cmd *cobra.Command, opts *rootOptions, input string) error {
	cfg, logger, err := loadSettings(opts)
	if err != nil {
		return err
	}

	format, err := client.ResolveOutputFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	c, err := buildClient(cfg, logger, opts)
	if err != nil {
		return err
	}
	path, transcript, err := c.DownloadTranscript(cmd.Context(), input, client.DownloadOptions{
		OutputPath:     opts.outputPath,
		Directory:      cfg.Output.Directory,
		Languages:      cfg.Selection.Languages,
		Format:         format,
		OmitTimestamps: !cfg.Output.Timestamps,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved transcript for %q (%s, %d entries) to %s\n",
		transcript.Title, transcript.Track.LanguageCode, len(transcript.Entries), path)
	return nil
}
