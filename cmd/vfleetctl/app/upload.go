package app

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autopeer-io/vfleet/cmd/vfleetctl/app/options"
	"github.com/autopeer-io/vfleet/internal/routestore"
)

func newUploadCommand(opts *options.CtlOptions) *cobra.Command {
	var file, key string

	cmd := &cobra.Command{
		Use:     "upload",
		Short:   "Upload a route file to the route bucket",
		Example: "  vfleetctl upload --file route.json --key depot-a/route-1.json",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), sendTimeout)
			defer cancel()

			route, err := routestore.File{}.Load(ctx, file)
			if err != nil {
				return err
			}
			store, err := opts.Store()
			if err != nil {
				return err
			}
			if err := store.CheckBucket(ctx); err != nil {
				return err
			}
			if err := store.Save(ctx, key, route); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "route uploaded to %s/%s\n", opts.S3Options.BucketName, key)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Local JSON file with the route.")
	cmd.Flags().StringVar(&key, "key", "", "Object key in the bucket.")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}
