package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"golang.org/x/oauth2"

	"daybrief/internal/ai"
	"daybrief/internal/config"
	"daybrief/internal/google"
	"daybrief/internal/render"
	"daybrief/internal/setup"
	sqlstorage "daybrief/internal/storage/sql"
	"daybrief/internal/syncer"
)

const version = "0.1.0"

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	app := &cli.App{
		Name:    "daybrief",
		Usage:   "Your day's calendar, summarized in the terminal.",
		Version: version,
		Commands: []*cli.Command{
			todayCommand(),
			setupCommand(),
			authCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func todayCommand() *cli.Command {
	return &cli.Command{
		Name:  "today",
		Usage: "Display today's activities in a formatted table.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Show AI-generated summaries for each activity."},
			&cli.BoolFlag{Name: "refresh", Usage: "Force a resync even if cached data is fresh."},
		},
		Action: func(c *cli.Context) error {
			logger := setupLogger(os.Getenv("LOG_LEVEL"))

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.IsConfigured() {
				return fmt.Errorf("daybrief is not configured, run 'daybrief setup' first")
			}

			dbCfg, err := cfg.Database()
			if err != nil {
				return err
			}
			store := sqlstorage.New(logger, sqlstorage.Config{
				Host:     dbCfg.Host,
				Port:     dbCfg.Port,
				Database: dbCfg.Name,
				Username: dbCfg.User,
				Password: dbCfg.Password,
			})
			if err := store.Connect(c.Context); err != nil {
				return fmt.Errorf("could not reach the database, run 'daybrief setup' to reconfigure: %w", err)
			}
			defer store.Close(c.Context)

			apiKey, err := config.OpenAIKey()
			if err != nil {
				return err
			}
			annotator, err := ai.NewClient(logger, apiKey)
			if err != nil {
				return err
			}

			source := google.NewClient(logger, google.Config{
				ClientID:        os.Getenv("GOOGLE_CLIENT_ID"),
				ClientSecret:    os.Getenv("GOOGLE_CLIENT_SECRET"),
				CredentialsFile: cfg.CredentialsFile(),
				TokenFile:       cfg.TokenFile(),
			})

			engine := syncer.New(logger, source, annotator, store)
			activities, err := engine.SyncToday(c.Context, c.Bool("refresh"))
			if err != nil {
				return fmt.Errorf("failed to sync activities: %w", err)
			}

			render.Activities(os.Stdout, activities, c.Bool("verbose"))
			return nil
		},
	}
}

func setupCommand() *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Interactive wizard for first-time configuration.",
		Action: func(c *cli.Context) error {
			logger := setupLogger(os.Getenv("LOG_LEVEL"))
			return setup.Run(c.Context, logger, os.Stdin, os.Stdout)
		},
	}
}

func authCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authenticate with Google Calendar and save the API token.",
		Action: func(c *cli.Context) error {
			logger := setupLogger(os.Getenv("LOG_LEVEL"))
			logger.Info("Starting Google authentication flow.")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			oauthConfig, err := google.OAuthConfig(google.Config{
				ClientID:        os.Getenv("GOOGLE_CLIENT_ID"),
				ClientSecret:    os.Getenv("GOOGLE_CLIENT_SECRET"),
				CredentialsFile: cfg.CredentialsFile(),
			})
			if err != nil {
				return fmt.Errorf("failed to get google oauth config: %w", err)
			}

			authURL := oauthConfig.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
			fmt.Printf("Go to the following link in your browser then type the "+
				"authorization code: \n%v\n", authURL)

			fmt.Print("Enter Authorization Code: ")
			reader := bufio.NewReader(os.Stdin)
			authCode, _ := reader.ReadString('\n')
			authCode = strings.TrimSpace(authCode)

			token, err := google.TokenFromWeb(c.Context, oauthConfig, authCode)
			if err != nil {
				return fmt.Errorf("unable to retrieve token from web: %w", err)
			}

			if err := google.SaveToken(cfg.TokenFile(), token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			logger.Info("Successfully authenticated and saved token.", "file", cfg.TokenFile())
			return nil
		},
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
