package testdivisions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/okian/clubhouse/pkg/logger"
)

// Configuration errors.
var (
	ErrInvalidConfig = errors.New("invalid check configuration")
)

// Validate checks the configuration before a run.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: base url is required", ErrInvalidConfig)
	case c.NumMembers < 1:
		return fmt.Errorf("%w: members must be positive", ErrInvalidConfig)
	case c.MinTeams < 2 || c.MaxTeams > 6 || c.MinTeams > c.MaxTeams:
		return fmt.Errorf("%w: team range %d..%d outside 2..6", ErrInvalidConfig, c.MinTeams, c.MaxTeams)
	case c.NumMembers < c.MaxTeams:
		return fmt.Errorf("%w: %d members cannot fill %d teams", ErrInvalidConfig, c.NumMembers, c.MaxTeams)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	}
	return nil
}

// Run executes the complete division check.
func Run(ctx context.Context, config *Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting clubhouse division check",
		logger.String("baseURL", config.BaseURL),
		logger.Int("members", config.NumMembers),
		logger.Int("minTeams", config.MinTeams),
		logger.Int("maxTeams", config.MaxTeams),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Any("seed", config.Seed),
		logger.Bool("jobs", config.UseJobs))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate and register the roster
	rng := rand.New(rand.NewSource(int64(config.Seed))) //nolint:gosec // reproducible test data
	roster := generateRoster(ctx, rng, config.NumMembers, stats)
	ids, err := seedMembers(ctx, config, roster, stats)
	if err != nil {
		return fmt.Errorf("member registration failed: %w", err)
	}
	if len(ids) < config.MaxTeams {
		return fmt.Errorf("member registration failed: only %d of %d members created", len(ids), len(roster))
	}

	// Step 3: Run every strategy and team count
	outcomes := runDivisions(ctx, config, ids, buildCases(config.MinTeams, config.MaxTeams), stats)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	// Step 4: Report
	out := config.Out
	if out == nil {
		out = os.Stdout
	}
	printReport(out, outcomes)
	if config.OutputFile != "" {
		if err := saveReport(ctx, config.OutputFile, outcomes); err != nil {
			logger.Get().Warn(ctx, "failed to save report", logger.Error(err))
		}
	}
	displayFinalStats(stats)

	// Step 5: Verify
	if err := verifyResults(ctx, config, outcomes); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	logger.Get().Info(ctx, "check completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// The service answers with Prometheus metrics; any 200 is healthy.
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// printReport writes one row per case.
func printReport(w io.Writer, outcomes []Outcome) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STRATEGY\tTEAMS\tSIZES\tSCORE SPREAD\tLATENCY\tRESULT")
	for _, o := range outcomes {
		if o.Strategy == "" {
			continue
		}
		sizes, spread, result := "-", "-", "PASS"
		if o.Result != nil {
			lo, hi := sizeSpread(o.Result.Teams)
			sizes = fmt.Sprintf("%d..%d", lo, hi)
			spread = fmt.Sprintf("%.1f", scoreSpread(o.Result.Teams))
		}
		if !o.Passed() {
			result = "FAIL"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
			o.Strategy, o.Teams, sizes, spread, o.Latency.Round(time.Microsecond), result)
	}
	_ = tw.Flush()
}

// saveReport writes the outcomes to a JSON file.
func saveReport(ctx context.Context, filename string, outcomes []Outcome) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(outcomes, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(filename, data, logFilePermission); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	logger.Get().Info(ctx, "report saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final check statistics.
func displayFinalStats(stats *Stats) {
	var passRate float64
	if stats.DivisionsRun > 0 {
		passRate = float64(stats.DivisionsPassed) / float64(stats.DivisionsRun) * PercentageMultiplier
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("membersGenerated", stats.MembersGenerated),
		logger.Int("membersCreated", stats.MembersCreated),
		logger.Int("membersFailed", stats.MembersFailed),
		logger.Int("divisionsRun", stats.DivisionsRun),
		logger.Int("divisionsPassed", stats.DivisionsPassed),
		logger.Int("divisionsFailed", stats.DivisionsFailed),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("passRate", passRate))
}
