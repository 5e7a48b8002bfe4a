// Command seed-events generates synthetic jump and workout history and
// submits it to a running service, for local development and load checks.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
)

// Default generator configuration.
const (
	defaultUsers      = 25
	defaultDays       = 45
	defaultTimeout    = 10 * time.Second
	defaultRunTimeout = 5 * time.Minute

	baseHeightInches   = 16.0
	heightSpreadInches = 14.0
	workoutChance      = 0.7
	jumpChance         = 0.8
	maxJumpsPerDay     = 4
)

type submitter struct {
	baseURL string
	client  *http.Client
	sent    int
	failed  int
}

func (s *submitter) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.failed++
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		s.failed++
		return fmt.Errorf("post %s: status %d", path, resp.StatusCode)
	}
	s.sent++
	return nil
}

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		users   = flag.Int("users", defaultUsers, "Number of synthetic users")
		days    = flag.Int("days", defaultDays, "Days of history to generate")
		seed    = flag.Int64("seed", 1, "Random seed for reproducible runs")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose = flag.Bool("verbose", false, "Log every rejected submission")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	rng := rand.New(rand.NewSource(*seed))
	sub := &submitter{
		baseURL: *baseURL,
		client:  &http.Client{Timeout: *timeout},
	}

	start := time.Now().UTC().AddDate(0, 0, -*days)
	for u := 0; u < *users; u++ {
		userID := fmt.Sprintf("athlete-%03d", u)
		// Per-user skill baseline so leaderboards are not uniform.
		skill := baseHeightInches + rng.Float64()*heightSpreadInches

		for d := 0; d < *days; d++ {
			day := start.AddDate(0, 0, d)

			if rng.Float64() < workoutChance {
				payload := map[string]any{
					"event_id":         uuid.NewString(),
					"user_id":          userID,
					"plan_id":          "plyo-basics",
					"completed_at":     day.Add(time.Duration(7+rng.Intn(3)) * time.Hour).Format(time.RFC3339),
					"duration_seconds": 900 + rng.Intn(2700),
				}
				if err := sub.post(ctx, "/workouts", payload); err != nil && *verbose {
					fmt.Fprintln(os.Stderr, err)
				}
			}

			if rng.Float64() < jumpChance {
				for j, n := 0, 1+rng.Intn(maxJumpsPerDay); j < n; j++ {
					// Slow upward drift plus jitter, so records and
					// improvement windows have something to find.
					height := skill + float64(d)*0.05 + rng.NormFloat64()
					payload := map[string]any{
						"event_id":      uuid.NewString(),
						"user_id":       userID,
						"height_inches": height,
						"captured_at":   day.Add(time.Duration(10+j) * time.Hour).Format(time.RFC3339),
						"confidence":    0.6 + rng.Float64()*0.4,
						"source":        "camera",
					}
					if err := sub.post(ctx, "/jumps", payload); err != nil && *verbose {
						fmt.Fprintln(os.Stderr, err)
					}
				}
			}
		}
	}

	fmt.Printf("seeded %d events (%d failed) across %d users over %d days\n",
		sub.sent, sub.failed, *users, *days)
}
