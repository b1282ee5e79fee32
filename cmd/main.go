package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"meetlog/internal/caldav"
	icscal "meetlog/internal/calendar"
	"meetlog/internal/config"
	"meetlog/internal/google"
	"meetlog/internal/runner"
	"os"
	"path/filepath"
	"strings"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"golang.org/x/oauth2"
)

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "meetlog",
		Usage: "Extract who you met with from calendar exports into a CSV report.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Path to a YAML config file.", EnvVars: []string{"MEETLOG_CONFIG"}},
		},
		DefaultCommand: "extract",
		Commands: []*cli.Command{
			extractCommand(),
			authCommand(),
			fetchGoogleCommand(),
			fetchCalDAVCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig loads the configuration and applies the flags shared by all commands.
func loadConfig(c *cli.Context) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dir := c.String("input-dir"); dir != "" {
		cfg.InputDir = dir
	}
	if out := c.String("output"); out != "" {
		cfg.OutputFile = out
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, setupLogger(cfg.LogLevel), nil
}

func extractCommand() *cli.Command {
	return &cli.Command{
		Name:  "extract",
		Usage: "Read every .ics file in the input directory and write the meetings report.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input-dir", Aliases: []string{"d"}, Usage: "Directory containing the .ics exports."},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "CSV file to write."},
			&cli.BoolFlag{Name: "dry-run", Usage: "Log the rows that would be written without writing the report."},
			&cli.BoolFlag{Name: "summary", Usage: "Log a per-file summary at the end of the run."},
		},
		Action: func(c *cli.Context) error {
			cfg, logger, err := loadConfig(c)
			if err != nil {
				return err
			}

			if c.Bool("dry-run") {
				logger.Info("Performing a dry run. No report will be written.")
			}

			res, err := runner.NewRunner(logger, cfg, c.Bool("dry-run")).Run(c.Context)
			if err != nil {
				return fmt.Errorf("extraction failed: %w", err)
			}

			if c.Bool("summary") {
				failed := 0
				for _, f := range res.Files {
					if f.Err != nil {
						failed++
					}
					logger.Info("File summary", "file", f.Name, "kind", f.Kind, "category", f.Category, "meetings", f.Count, "failed", f.Err != nil)
				}
				logger.Info("Total meetings extracted", "count", len(res.Records), "files", len(res.Files), "failed", failed)
			}
			return nil
		},
	}
}

func authCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authenticate with a Google account to get an API token.",
		Action: func(c *cli.Context) error {
			logger := setupLogger("info")
			logger.Info("Starting Google authentication flow.")

			oauthConfig, err := google.GetOAuthConfigForAuthFlow(os.Getenv("GOOGLE_CLIENT_ID"), os.Getenv("GOOGLE_CLIENT_SECRET"))
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

			fmt.Print("Enter a name for this account (e.g., 'personal', 'work'): ")
			accountName, _ := reader.ReadString('\n')
			accountName = strings.TrimSpace(accountName)
			tokenFile := google.TokenFile(accountName)

			if err := google.SaveToken(tokenFile, token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			logger.Info("Successfully authenticated and saved token.", "file", tokenFile)
			return nil
		},
	}
}

func fetchGoogleCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch-google",
		Usage: "Export a Google calendar (e.g. a shared group calendar) into the input directory.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "calendar-id", Required: true, Usage: "Google calendar ID, e.g. xyz@group.calendar.google.com."},
			&cli.StringFlag{Name: "account", Usage: "Account name given to the auth command. Defaults to the only saved account."},
			&cli.StringFlag{Name: "label", Usage: "Prefix of the exported file name."},
			&cli.StringFlag{Name: "input-dir", Aliases: []string{"d"}, Usage: "Directory to write the export to."},
		},
		Action: func(c *cli.Context) error {
			cfg, logger, err := loadConfig(c)
			if err != nil {
				return err
			}

			account := c.String("account")
			if account == "" {
				accounts, err := google.GetTokenAccounts(".")
				if err != nil {
					return fmt.Errorf("could not list google accounts: %w", err)
				}
				if len(accounts) != 1 {
					return fmt.Errorf("found %d google accounts, pass --account (run the 'auth' command first if none)", len(accounts))
				}
				account = accounts[0]
			}

			client, err := google.NewClient(c.Context, logger, os.Getenv("GOOGLE_CLIENT_ID"), os.Getenv("GOOGLE_CLIENT_SECRET"), account)
			if err != nil {
				return fmt.Errorf("failed to create google client for account %s: %w", account, err)
			}

			calendarID := c.String("calendar-id")
			cal, err := client.Export(c.Context, calendarID, cfg.Floor())
			if err != nil {
				return fmt.Errorf("failed to export google calendar: %w", err)
			}

			path := filepath.Join(cfg.InputDir, google.ExportFileName(c.String("label"), calendarID))
			if err := icscal.WriteFile(path, cal); err != nil {
				return err
			}
			logger.Info("Saved calendar export.", "file", path, "events", len(cal.Events()))
			return nil
		},
	}
}

func fetchCalDAVCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch-caldav",
		Usage: "Export a CalDAV (iCloud by default) calendar into the input directory as a personal calendar.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "calendar", Required: true, Usage: "Name of the calendar on the server."},
			&cli.StringFlag{Name: "contact-name", Required: true, Usage: "Display name of the calendar owner."},
			&cli.StringFlag{Name: "contact-email", Required: true, Usage: "Email address of the calendar owner."},
			&cli.StringFlag{Name: "endpoint", Value: caldav.ICloudEndpoint, EnvVars: []string{"CALDAV_ENDPOINT"}, Usage: "CalDAV server URL."},
			&cli.StringFlag{Name: "input-dir", Aliases: []string{"d"}, Usage: "Directory to write the export to."},
		},
		Action: func(c *cli.Context) error {
			cfg, logger, err := loadConfig(c)
			if err != nil {
				return err
			}

			client, err := caldav.NewClient(logger, c.String("endpoint"), os.Getenv("ICLOUD_USERNAME"), os.Getenv("ICLOUD_APP_SPECIFIC_PASSWORD"))
			if err != nil {
				return fmt.Errorf("failed to create caldav client: %w", err)
			}

			cal, err := client.Export(c.Context, c.String("calendar"), cfg.Floor())
			if err != nil {
				return fmt.Errorf("failed to export caldav calendar: %w", err)
			}

			path := filepath.Join(cfg.InputDir, caldav.ExportFileName(c.String("contact-name"), c.String("contact-email")))
			if err := icscal.WriteFile(path, cal); err != nil {
				return err
			}
			logger.Info("Saved calendar export.", "file", path, "events", len(cal.Events()))
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
