package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"rntap/pkg/auth"
	"rntap/pkg/config"
	"rntap/pkg/logger"
	"rntap/pkg/retailnext"
	"rntap/pkg/state"
	"rntap/pkg/tap"
)

var (
	statePath   string
	outputPath  string
	accountName string
	baseURL     string
	accessKey   string
	secretKey   string
	cadence     string
	increment   int
	startDate   string
	rateLimit   int
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one extraction pass",
	Long: `Execute one extraction pass: resolve the location hierarchy, advance
the query window and pull metrics for every leaf location.

The first run seeds the window from --start-date. Every successful run
prints a state message last; save it and pass it back via --state to
continue from where the previous run stopped.

Credentials come from --access-key/--secret-key, RNTAP_* environment
variables, or an account stored with 'rntap auth login'.`,
	Example: `  # First run, minute cadence
  rntap run --start-date 2024-03-01T09:00:00Z > out.jsonl

  # Resume from the previous run's state message
  tail -n 1 out.jsonl | jq .value > state.json
  rntap run --state state.json >> out.jsonl

  # Daily totals with a stored account
  rntap run --cadence day --increment 1 --start-date 2024-03-01T00:00:00Z --account mystore`,
	Run: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&statePath, "state", "s", "", "resume state file from a previous run")
	runCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the message stream to a file instead of stdout")
	runCmd.Flags().StringVarP(&accountName, "account", "a", "", "stored account to authenticate with")
	runCmd.Flags().StringVar(&baseURL, "base-url", "", "API base URL")
	runCmd.Flags().StringVar(&accessKey, "access-key", "", "API access key")
	runCmd.Flags().StringVar(&secretKey, "secret-key", "", "API secret key")
	runCmd.Flags().StringVar(&cadence, "cadence", "", "extraction cadence (minute, day)")
	runCmd.Flags().IntVar(&increment, "increment", 0, "window advance per run, in minutes or days")
	runCmd.Flags().StringVar(&startDate, "start-date", "", "window seed when no resume state is given (RFC3339)")
	runCmd.Flags().IntVar(&rateLimit, "rate-limit", 0, "maximum API requests per minute")
}

func runRun(cmd *cobra.Command, args []string) {
	flags := map[string]interface{}{
		"base-url":   baseURL,
		"access-key": accessKey,
		"secret-key": secretKey,
		"cadence":    cadence,
		"increment":  increment,
		"start-date": startDate,
		"rate-limit": rateLimit,
		"log-level":  logLevel,
	}

	// Stored accounts fill in keys the flags and environment left empty
	if accessKey == "" && secretKey == "" {
		if account := resolveAccount(accountName); account != nil {
			flags["access-key"] = account.AccessKey
			flags["secret-key"] = account.SecretKey
			if account.UserAgent != "" {
				flags["user-agent"] = account.UserAgent
			}
		}
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		fmt.Fprintln(os.Stderr, "logger setup failed:", err)
		os.Exit(1)
	}
	log := logger.GetLogger()

	cp, err := loadCheckpoint(cfg)
	if err != nil {
		log.WithError(err).Error("cannot build extraction checkpoint")
		os.Exit(1)
	}

	out, err := openOutput(outputPath)
	if err != nil {
		log.WithError(err).Error("cannot open output file")
		os.Exit(1)
	}

	client := retailnext.NewClient(cfg, log)
	t := tap.New(cfg, client, out, log)

	if err := t.Run(cp); err != nil {
		out.Close()
		log.WithError(err).Error("extraction pass failed")
		os.Exit(1)
	}

	// A close failure can mean buffered records, the state message included,
	// never reached disk
	if err := out.Close(); err != nil {
		log.WithError(err).Error("failed to finalize output file")
		os.Exit(1)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// openOutput opens the message stream destination. An empty path means
// stdout, which must stay open for the process lifetime.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

// loadCheckpoint reads the resume state, or seeds a fresh checkpoint from the
// configured start date when no state is supplied
func loadCheckpoint(cfg *config.Config) (*state.Checkpoint, error) {
	if statePath != "" {
		blob, err := os.ReadFile(statePath)
		if err != nil {
			return nil, fmt.Errorf("cannot read state file: %w", err)
		}
		return state.Parse(blob)
	}

	start, err := cfg.StartTime()
	if err != nil {
		return nil, fmt.Errorf("either --state or --start-date is required: %w", err)
	}
	return state.Seed(state.CadenceType(cfg.Extract.Cadence), cfg.Extract.Increment, start.UTC()), nil
}

// resolveAccount looks up stored credentials; a missing account is not fatal
// here because keys can still arrive through config or environment
func resolveAccount(name string) *auth.Account {
	manager, err := auth.NewManager()
	if err != nil {
		return nil
	}

	if name != "" {
		account, err := manager.Retrieve(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "stored account %q not found\n", name)
			os.Exit(1)
		}
		return account
	}

	account, err := manager.RetrieveDefault()
	if err != nil {
		return nil
	}
	return account
}
