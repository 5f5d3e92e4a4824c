// Command reconcile sweeps the object store for blobs that no metadata row
// references and, with -purge, deletes them. Meant to run out of band,
// e.g. from cron.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/stashbin/filestore/pkg/filestore/admin"
	"github.com/stashbin/filestore/pkg/filestore/config"
)

func main() {
	purge := flag.Bool("purge", false, "delete orphaned blobs instead of only listing them")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	repo, store, err := cfg.Build(ctx)
	if err != nil {
		slog.Error("Failed to build stores", "err", err)
		os.Exit(1)
	}

	reconciler := admin.NewReconciler(repo, store)

	if *purge {
		purged, err := reconciler.Purge(ctx)
		if err != nil {
			slog.Error("Purge failed", "purged_so_far", len(purged), "err", err)
			os.Exit(1)
		}
		for _, key := range purged {
			fmt.Println(key)
		}
		slog.Info("Purge complete", "purged", len(purged))
		return
	}

	orphans, err := reconciler.Describe(ctx)
	if err != nil {
		slog.Error("Sweep failed", "err", err)
		os.Exit(1)
	}
	var total int64
	for _, o := range orphans {
		fmt.Printf("%s\t%d\n", o.Key, o.Size)
		total += o.Size
	}
	slog.Info("Sweep complete", "orphans", len(orphans), "bytes", total)
}
