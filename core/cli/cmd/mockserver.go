package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/lariat-data/lariat-go/core/infrastructure/transport/http/middleware"
	"github.com/lariat-data/lariat-go/core/logger"
	"github.com/lariat-data/lariat-go/core/runtime/mockapi"
)

var (
	mockPort      string
	mockFixture   string
	mockWatch     bool
	mockRedisURL  string
	mockRateLimit int
	mockWindow    time.Duration
)

// mockServerCmd serves the public API locally from a fixture
var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Run a local mock of the public API for offline development",
	Long: `Run a local mock of the public API.

Point the client at it with:
  LARIAT_ENDPOINT=http://localhost:8002/public-api LARIAT_API_KEY=dev LARIAT_APPLICATION_KEY=dev lariat indicators list`,
	Args: cobra.NoArgs,
	RunE: runMockServer,
}

func init() {
	rootCmd.AddCommand(mockServerCmd)

	mockServerCmd.Flags().StringVarP(&mockPort, "port", "p", "8002", "Server port")
	mockServerCmd.Flags().StringVarP(&mockFixture, "fixture", "f", "", "Fixture YAML (default: built-in sample data)")
	mockServerCmd.Flags().BoolVarP(&mockWatch, "watch", "w", false, "Reload the fixture file when it changes")
	mockServerCmd.Flags().StringVar(&mockRedisURL, "redis-url", "", "Redis URL for per-key rate limiting (disabled when empty)")
	mockServerCmd.Flags().IntVar(&mockRateLimit, "rate-limit", 60, "Requests allowed per API key and window")
	mockServerCmd.Flags().DurationVar(&mockWindow, "rate-window", time.Minute, "Rate limit window")
}

func runMockServer(cmd *cobra.Command, _ []string) error {
	log := logger.New("mockapi")

	if mockWatch && mockFixture == "" {
		return logger.WithTag("mockapi", fmt.Errorf("--watch requires --fixture"))
	}

	fixture := mockapi.DefaultFixture()
	if mockFixture != "" {
		f, err := mockapi.LoadFixture(mockFixture)
		if err != nil {
			return logger.WithTag("mockapi", err)
		}
		fixture = f
		log.Infof("Loaded fixture %s", mockFixture)
	}

	opts := []mockapi.Option{mockapi.WithVersion(version)}
	if mockRedisURL != "" {
		redisOpts, err := redis.ParseURL(mockRedisURL)
		if err != nil {
			return logger.WithTag("mockapi", err)
		}
		rdb := redis.NewClient(redisOpts)
		defer rdb.Close()
		if err := rdb.Ping(cmd.Context()).Err(); err != nil {
			return logger.WithTag("mockapi", err)
		}
		opts = append(opts, mockapi.WithRateLimit(middleware.NewRedisRateLimiter(rdb), mockRateLimit, mockWindow))
		log.Infof("Rate limiting to %d request(s) per %s", mockRateLimit, mockWindow)
	}

	srv := mockapi.NewServer(fixture, mockPort, opts...)
	if mockWatch {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		if err := srv.WatchFixture(ctx, mockFixture); err != nil {
			return logger.WithTag("mockapi", err)
		}
	}
	if err := srv.Start(); err != nil {
		return logger.WithTag("mockapi", err)
	}
	return nil
}
