package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"storefront/internal/assets"
	"storefront/internal/repository"

	"github.com/spf13/cobra"
)

// ImageReferences reports which stored images products still point at
type ImageReferences interface {
	ReferencedImages(ctx context.Context) (map[string]struct{}, error)
}

// PruneOptions controls an assets prune run
type PruneOptions struct {
	DryRun bool
	MinAge time.Duration
	Now    time.Time
}

// PruneAssets removes stored images no product references. Files younger
// than MinAge are kept so uploads racing the scan survive.
func PruneAssets(ctx context.Context, images *assets.Handler, refs ImageReferences, opts PruneOptions, out io.Writer) ([]string, error) {
	referenced, err := refs.ReferencedImages(ctx)
	if err != nil {
		return nil, err
	}

	orphans, err := images.Orphans(ctx, referenced)
	if err != nil {
		return nil, fmt.Errorf("failed to list stored assets: %w", err)
	}

	var pruned []string
	for _, name := range orphans {
		if storedAt, ok := assets.StoredAt(name); ok && opts.Now.Sub(storedAt) < opts.MinAge {
			continue
		}
		pruned = append(pruned, name)
	}

	verb := "Removed"
	if opts.DryRun {
		verb = "Would remove"
	} else {
		images.RemoveAll(ctx, pruned)
	}

	for _, name := range pruned {
		fmt.Fprintf(out, "%s %s\n", verb, name)
	}
	fmt.Fprintf(out, "%s %d of %d unreferenced asset(s)\n", verb, len(pruned), len(orphans))

	return pruned, nil
}

func newAssetsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Manage stored product images",
	}

	var opts PruneOptions
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Remove images no product references",
		Long: "Product image replacement keeps the superseded files. " +
			"prune deletes every stored image that no product currently lists.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.database()
			if err != nil {
				return err
			}

			store, err := assets.OpenStore(cmd.Context(), a.cfg.Assets, a.cfg.Minio)
			if err != nil {
				return err
			}

			images := assets.NewHandler(store, a.cfg.Assets.MaxFiles, a.logger)
			opts.Now = time.Now()

			_, err = PruneAssets(cmd.Context(), images, repository.NewProductRepository(db.DB()), opts, cmd.OutOrStdout())
			return err
		},
	}
	prune.Flags().BoolVar(&opts.DryRun, "dry-run", false, "list unreferenced images without deleting them")
	prune.Flags().DurationVar(&opts.MinAge, "min-age", time.Hour, "keep unreferenced images newer than this")

	cmd.AddCommand(prune)
	return cmd
}
