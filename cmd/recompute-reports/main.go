// recompute-reports rewrites the derived totals of every stored report whose
// values drifted from the reconciliation formula, e.g. after importing rows
// by hand.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jadygoy/cafe_backend/config"
	"github.com/jadygoy/cafe_backend/models"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "only list the dates that would be rewritten")
	flag.Parse()

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}
	defer config.CloseDatabase()

	// Cached copies must be evicted together with the rewrite.
	config.ConnectRedisWithRetry()
	defer config.CloseRedis()

	var (
		cache  models.ReportCache
		locker models.DateLocker
	)
	if rdb := config.GetRedisDB(); rdb != nil {
		cache = models.NewRedisReportCache(rdb, config.ReportCacheTTL())
		locker = models.NewRedisDateLocker(config.GetRedisLock())
	}

	ledger := models.NewReportLedger(models.NewGormStore(db), cache, locker, config.GetLogger())
	changed, err := ledger.RecomputeAll(ctx, *dryRun)
	for _, date := range changed {
		fmt.Println(date)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "recompute failed: %v\n", err)
		os.Exit(1)
	}

	verb := "rewrote"
	if *dryRun {
		verb = "would rewrite"
	}
	fmt.Fprintf(os.Stderr, "%s %d report(s)\n", verb, len(changed))
}
