// localdump prints the local question document as JSON, or copies it into the
// remote store with -to-remote. Records get new remote ids; text and
// timestamps are kept. Importing twice duplicates the records.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/itchan-dev/askanon/internal/storage/local"
	"github.com/itchan-dev/askanon/internal/storage/pg"
	"github.com/itchan-dev/askanon/shared/config"
	"github.com/itchan-dev/askanon/shared/logger"
)

func main() {
	var configFolder string
	var toRemote bool
	flag.StringVar(&configFolder, "config_folder", "config", "path to folder with configs")
	flag.BoolVar(&toRemote, "to-remote", false, "import the local document into the remote store")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.Log.Level, cfg.Public.Log.JSON)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := run(ctx, cfg, toRemote); err != nil {
		fmt.Fprintln(os.Stderr, "localdump:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, toRemote bool) error {
	src, err := local.Open(cfg.Public.Local)
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	defer src.Close()

	snap, err := src.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("read local document: %w", err)
	}

	if !toRemote {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	if !cfg.Private.Pg.Configured() {
		return fmt.Errorf("remote store is not configured")
	}
	dst, err := pg.New(ctx, cfg.Private.Pg)
	if err != nil {
		return fmt.Errorf("open remote store: %w", err)
	}
	defer dst.Close()

	questions, replies, err := dst.Import(ctx, snap)
	if err != nil {
		return err
	}
	logger.Log.Info("import finished", "questions", questions, "replies", replies)
	return nil
}
