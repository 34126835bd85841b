package main

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/clubhouse/internal/testdivisions"
)

// Default configuration constants.
const (
	defaultNumMembers  = 60
	defaultMinTeams    = 2
	defaultMaxTeams    = 6
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	config := &testdivisions.Config{}
	var logFile string

	cmd := &cobra.Command{
		Use:   "test-divisions",
		Short: "Check team divisions end to end against a running service",
		Long: `Registers a random roster through /members, runs a division for every
balance strategy and team count, and verifies that each result is a complete
partition with balanced team sizes. A report row is printed per case.`,
		Example: `  # Check with default settings
  go run ./cmd/test-divisions

  # Larger roster through the job queue
  go run ./cmd/test-divisions --members 200 --jobs --url http://localhost:8080`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := testdivisions.SetupLogging(logFile); err != nil {
				return err
			}
			config.LogFile = logFile
			config.Out = cmd.OutOrStdout()

			ctx, cancel := context.WithTimeout(cmd.Context(), defaultTestTimeout)
			defer cancel()
			return testdivisions.Run(ctx, config)
		},
	}

	f := cmd.Flags()
	f.StringVar(&config.BaseURL, "url", "http://localhost:9080", "Base URL of the service")
	f.IntVar(&config.NumMembers, "members", defaultNumMembers, "Number of members to register")
	f.IntVar(&config.MinTeams, "min-teams", defaultMinTeams, "Smallest team count to check")
	f.IntVar(&config.MaxTeams, "max-teams", defaultMaxTeams, "Largest team count to check")
	f.IntVar(&config.Workers, "workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
	f.DurationVar(&config.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	f.Uint64Var(&config.Seed, "seed", uint64(time.Now().UnixNano()), "Roster and division seed")
	f.BoolVar(&config.UseJobs, "jobs", false, "Run divisions through the asynchronous job queue")
	f.StringVar(&config.OutputFile, "output", "", "Write the JSON report to this file")
	f.StringVar(&logFile, "log", "", "Log file for check output (default: division_check_TIMESTAMP.log)")
	f.BoolVarP(&config.Verbose, "verbose", "v", false, "Enable verbose logging")

	return cmd
}
