package cmd

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sofmeright/cargoplug/src/logx"
	"github.com/sofmeright/cargoplug/src/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [manifest|dir]",
	Short: "Rebuild whenever package sources change",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func init() {
	addBuildFlags(watchCmd)
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	req, err := buildRequest(args)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	w := cmd.OutOrStdout()
	log := logx.FromContext(ctx)

	watcher, err := watch.New(filepath.Dir(req.ManifestPath), cfg.Watch)
	if err != nil {
		return err
	}
	defer watcher.Close()

	// A failed first build is reported and then watched like any other.
	_ = buildOnce(ctx, w, req)
	log.Info("watching", "dir", filepath.Dir(req.ManifestPath), "debounce", cfg.Watch.Debounce)

	err = watcher.Run(ctx, func(ctx context.Context, changed []string) error {
		log.Info("change detected", "files", len(changed), "first", changed[0])
		return buildOnce(ctx, w, req)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
