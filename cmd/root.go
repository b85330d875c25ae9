package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"socialclient/api"
	"socialclient/config"
	"socialclient/database"
	"socialclient/session"
	"socialclient/utils"
)

var (
	version = "dev"
	commit  = "unknown"
)

// App is everything a command needs, built once per run.
type App struct {
	Client   *api.Client
	Session  *session.Context
	Prompt   *Prompter
	Registry *prometheus.Registry
	Logger   *zap.Logger

	// InitErr is why the stored session could not be resolved, if it
	// could not.
	InitErr error
}

var app *App

var rootCmd = &cobra.Command{
	Use:   "social",
	Short: "Command line client for the social network",
	Long: `social signs you in to the social network and lets you read and
write posts, manage friends and exchange messages from the terminal.`,
	Version:           fmt.Sprintf("%s (commit: %s)", version, commit),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", describe(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().BoolP("yes", "y", false, "answer yes to confirmation prompts")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("metrics", false, "print request metrics on exit")
}

func setup(cmd *cobra.Command, args []string) error {
	config.Load()

	level := config.Cfg.LogLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	utils.InitLogger(level)

	// A failed command skips teardown; release the previous run's store.
	database.Close()
	if err := database.Connect(config.Cfg.DataDir); err != nil {
		return fmt.Errorf("open local store: %w", err)
	}

	yes, _ := cmd.Flags().GetBool("yes")
	registry := prometheus.NewRegistry()
	client := api.New(api.Options{
		BaseURL:     config.Cfg.APIURL,
		Timeout:     config.Cfg.Timeout,
		Retries:     config.Cfg.Retries,
		RateLimit:   config.Cfg.RateLimit,
		RateBurst:   config.Cfg.RateBurst,
		Credentials: database.DB,
		Metrics:     api.NewMetrics(registry),
		Logger:      utils.Logger,
	})

	app = &App{
		Client:   client,
		Session:  session.New(client, session.WithCache(database.DB), session.WithLogger(utils.Logger)),
		Prompt:   NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout(), yes),
		Registry: registry,
		Logger:   utils.Logger,
	}

	if database.DB.Token() != "" {
		app.InitErr = app.Session.Init(ctxOf(cmd))
	}
	return nil
}

func teardown(cmd *cobra.Command, args []string) {
	if app != nil {
		if show, _ := cmd.Flags().GetBool("metrics"); show {
			printMetrics(cmd.ErrOrStderr(), app.Registry)
		}
		_ = app.Logger.Sync()
	}
	database.Close()
}

// signedIn returns the current user or tells the caller to log in first.
func signedIn() error {
	if _, err := app.Session.RequireAuth(); err != nil {
		if app.InitErr != nil {
			return app.InitErr
		}
		return fmt.Errorf("not logged in, run `social login` first")
	}
	return nil
}

// check reports err to the session so an expired credential signs the
// user out, and returns it unchanged.
func check(err error) error {
	if err == nil {
		return nil
	}
	return app.Session.Observe(err)
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
