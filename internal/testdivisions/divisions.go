package testdivisions

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// runDivisions executes every case concurrently and verifies each result.
func runDivisions(ctx context.Context, config *Config, ids []string, cases []Case, stats *Stats) []Outcome {
	mode := "sync"
	if config.UseJobs {
		mode = "jobs"
	}
	log.Printf("⚽ Running %d divisions over %d members (%s) with %d workers...", len(cases), len(ids), mode, config.Workers)

	client := newHTTPClient(config.Timeout)
	outcomes := make([]Outcome, len(cases))

	caseChan := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range caseChan {
				outcomes[index] = runCase(ctx, client, config, ids, cases[index], index)
				if config.Verbose {
					o := outcomes[index]
					log.Printf("   %s/%d teams: passed=%t (%s)", o.Strategy, o.Teams, o.Passed(), o.Latency)
				}
			}
		}()
	}

	go func() {
		defer close(caseChan)
		for i := range cases {
			select {
			case <-ctx.Done():
				return
			case caseChan <- i:
			}
		}
	}()

	wg.Wait()

	for _, o := range outcomes {
		if o.Strategy == "" {
			continue // never dispatched
		}
		stats.DivisionsRun++
		if o.Passed() {
			stats.DivisionsPassed++
		} else {
			stats.DivisionsFailed++
		}
	}
	return outcomes
}

// runCase performs and verifies a single division.
func runCase(ctx context.Context, client *HTTPClient, config *Config, ids []string, c Case, index int) Outcome {
	seed := int64(config.Seed) + int64(index)
	req := DivideRequest{
		ParticipantIDs:  ids,
		NumberOfTeams:   c.Teams,
		BalanceStrategy: string(c.Strategy),
		Seed:            &seed,
	}

	start := time.Now()
	out := Outcome{Case: c}

	var err error
	if config.UseJobs {
		req.RequestID = uuid.NewString()
		out.Result, err = divideAsync(ctx, client, config.BaseURL, req)
	} else {
		out.Result, err = divide(ctx, client, config.BaseURL, req)
	}
	out.Latency = time.Since(start)
	if err != nil {
		out.Err = err.Error()
		return out
	}
	out.Problems = verifyDivision(c, ids, out.Result)
	return out
}
