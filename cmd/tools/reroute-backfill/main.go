// cmd/tools/reroute-backfill/main.go

// reroute-backfill re-runs the routing decision for a batch of items,
// releasing and re-taking their quota reservations. Item IDs come from
// -ids or, with -all-routed, from every previously routed item.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"marketplace-routing/internal/common/config"
	"marketplace-routing/internal/common/database"
	"marketplace-routing/internal/common/logger"
	"marketplace-routing/internal/routing"
	"marketplace-routing/internal/routing/quota"
	"marketplace-routing/internal/store"
)

func main() {
	ids := flag.String("ids", "", "Comma-separated item IDs to re-route (or '-' to read IDs from stdin)")
	allRouted := flag.Bool("all-routed", false, "Re-route every item that already has a decision")
	dryRun := flag.Bool("dry-run", false, "Print the IDs that would be re-routed and exit")
	timeout := flag.Duration("timeout", 10*time.Second, "Per-item timeout")
	flag.Parse()

	if *ids == "" && !*allRouted {
		fmt.Fprintln(os.Stderr, "either -ids or -all-routed is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewStructured(cfg.Logging.Level, "console")

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		fmt.Fprintf(os.Stderr, "postgres: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()

	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		fmt.Fprintf(os.Stderr, "redis: %v\n", err)
		os.Exit(1)
	}
	defer rdb.Close()

	itemStore := store.NewItemStore(pg.DB, log)
	ledger := quota.NewRedisLedger(rdb.Client)
	routingCfg := cfg.Routing
	svc := routing.NewService(func() routing.Config {
		return routing.Config{
			HeavyWeightThresholdOunces: routingCfg.HeavyWeightThresholdOunces,
			HighValueBrandRatio:        routingCfg.HighValueBrandRatio,
			BlockedAmazonBrands:        routingCfg.BlockedAmazonBrands,
			QuotaTrackedTiers:          routingCfg.QuotaTrackedTiers,
		}
	}, ledger, itemStore, log)

	itemIDs, err := collectIDs(pg, *ids, *allRouted)
	if err != nil {
		fmt.Fprintf(os.Stderr, "collect ids: %v\n", err)
		os.Exit(1)
	}

	if *dryRun {
		for _, id := range itemIDs {
			fmt.Println(id)
		}
		fmt.Fprintf(os.Stderr, "%d items would be re-routed\n", len(itemIDs))
		return
	}

	var ok, failed int
	for _, id := range itemIDs {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		decision, err := svc.Reroute(ctx, id)
		cancel()
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", id, err)
			continue
		}
		ok++
		fmt.Printf("OK   %s primary=%s secondary=%s needsReview=%v\n",
			id, decision.Primary, decision.Secondary, decision.NeedsReview)
	}

	fmt.Fprintf(os.Stderr, "done: %d ok, %d failed\n", ok, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func collectIDs(pg *database.PostgresClient, ids string, allRouted bool) ([]string, error) {
	if allRouted {
		rows, err := pg.DB.Query(`SELECT id FROM items WHERE routed_at IS NOT NULL ORDER BY routed_at`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		var out []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return nil, err
			}
			out = append(out, id)
		}
		return out, rows.Err()
	}

	if ids == "-" {
		var out []string
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if id := strings.TrimSpace(scanner.Text()); id != "" {
				out = append(out, id)
			}
		}
		return out, scanner.Err()
	}

	var out []string
	for _, id := range strings.Split(ids, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out, nil
}
