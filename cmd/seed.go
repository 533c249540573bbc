package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"pulseboard/pkg/client"
	"pulseboard/pkg/config"
)

var (
	seedURL      string
	seedKey      string
	seedCount    int
	seedInterval time.Duration
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Send demo data points to a running server",
	Long: `Seed pushes a stream of demo data points to a running pulseboard
server so the dashboard has something to show. Values follow a sine
wave with a little noise, which reads well on the live chart.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedURL, "url", "http://localhost:8080", "base URL of the target server")
	seedCmd.Flags().StringVar(&seedKey, "key", "", "API key (defaults to the server configuration)")
	seedCmd.Flags().IntVar(&seedCount, "points", 60, "number of points to send")
	seedCmd.Flags().DurationVar(&seedInterval, "interval", time.Second, "delay between points")
}

func runSeed(_ *cobra.Command, _ []string) error {
	key := seedKey
	if key == "" {
		// Pick up the local server's key so seeding against it just works.
		if cfg, err := config.Load(); err == nil {
			key = cfg.APIKey
		}
	}
	c := client.New(seedURL, client.WithAPIKey(key))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Printf("🚦 Seeding %d points to %s every %s", seedCount, seedURL, seedInterval)

	sent := 0
	for i := 0; i < seedCount; i++ {
		value := 50 + 25*math.Sin(float64(i)/8) + rand.Float64()*4
		meta := json.RawMessage(fmt.Sprintf(`{"source":"seed","seq":%d}`, i))

		id, err := c.Ingest(ctx, value, time.Time{}, meta)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Printf("⚠️  Point %d failed: %v", i+1, err)
		} else {
			sent++
			log.Printf("✅ Point #%d stored (id %d, value %.2f)", i+1, id, value)
		}

		if i == seedCount-1 {
			break
		}
		select {
		case <-ctx.Done():
			log.Println("🛑 Seeding interrupted")
			return nil
		case <-time.After(seedInterval):
		}
	}

	log.Printf("👋 Done, %d/%d points stored", sent, seedCount)
	return nil
}
