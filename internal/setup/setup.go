// Package setup implements the interactive first-run wizard.
package setup

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"daybrief/internal/config"
	sqlstorage "daybrief/internal/storage/sql"
)

// Run walks through database, OpenAI and Google Calendar
// configuration. The database connection is verified and the schema
// created before anything is saved.
func Run(ctx context.Context, logger *slog.Logger, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Welcome to daybrief setup.")
	fmt.Fprintln(out, "This wizard configures the PostgreSQL connection, the OpenAI API key and Google Calendar credentials.")
	fmt.Fprintln(out)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	reader := bufio.NewReader(in)

	// Step 1: database.
	fmt.Fprintln(out, "Step 1/3: Database configuration")
	host := prompt(reader, out, "Database host", "localhost")
	portStr := prompt(reader, out, "Database port", "5432")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port %q: %w", portStr, err)
	}
	name := prompt(reader, out, "Database name", "daybrief")
	user := prompt(reader, out, "Database user", "daybrief")
	password := prompt(reader, out, "Database password", "")

	db := config.Database{Host: host, Port: port, Name: name, User: user, Password: password}

	fmt.Fprintln(out, "Testing database connection...")
	store := sqlstorage.New(logger, sqlstorage.Config{
		Host:     db.Host,
		Port:     db.Port,
		Database: db.Name,
		Username: db.User,
		Password: db.Password,
	})
	if err := store.Connect(ctx); err != nil {
		fmt.Fprintln(out, "Database connection failed.")
		fmt.Fprintln(out, "  - Make sure PostgreSQL is running")
		fmt.Fprintln(out, "  - Check your credentials")
		fmt.Fprintln(out, "  - Verify the database exists")
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer store.Close(ctx)
	if err := store.CreateSchema(ctx); err != nil {
		return fmt.Errorf("failed to create database schema: %w", err)
	}
	cfg.SetDatabase(db)
	fmt.Fprintln(out, "Database connection verified and schema created.")
	fmt.Fprintln(out)

	// Step 2: OpenAI key, kept in the system keyring.
	fmt.Fprintln(out, "Step 2/3: OpenAI configuration")
	apiKey := prompt(reader, out, "OpenAI API key", "")
	if apiKey != "" {
		if err := config.SetOpenAIKey(apiKey); err != nil {
			return fmt.Errorf("failed to store OpenAI key: %w", err)
		}
		fmt.Fprintln(out, "OpenAI API key stored in the system keyring.")
	} else {
		fmt.Fprintln(out, "Skipped. Set OPENAI_API_KEY or re-run setup later.")
	}
	fmt.Fprintln(out)

	// Step 3: Google OAuth credentials.
	fmt.Fprintln(out, "Step 3/3: Google Calendar setup")
	fmt.Fprintln(out, "Create OAuth 2.0 desktop credentials in the Google Cloud Console,")
	fmt.Fprintln(out, "enable the Calendar API, and download credentials.json to:")
	fmt.Fprintf(out, "  %s\n", cfg.CredentialsFile())
	if _, err := os.Stat(cfg.CredentialsFile()); err == nil {
		fmt.Fprintln(out, "credentials.json found.")
	} else {
		fmt.Fprintln(out, "credentials.json not found yet; add it and run the 'auth' command.")
	}
	fmt.Fprintln(out)

	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Setup complete. Configuration saved to %s\n", cfg.Path())
	fmt.Fprintln(out, "Run 'daybrief today' to see today's activities.")
	return nil
}

func prompt(reader *bufio.Reader, out io.Writer, label, defaultValue string) string {
	if defaultValue != "" {
		fmt.Fprintf(out, "%s [%s]: ", label, defaultValue)
	} else {
		fmt.Fprintf(out, "%s: ", label)
	}
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return defaultValue
	}
	return line
}
