package cli

import (
	"github.com/spf13/cobra"

	"github.com/thushan/llamadeck/internal/bundler"
)

func newBundleCmd(a *app) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Compress the built web UI into a single index.html.gz",
		Long: "Inlines the favicon, normalises line endings and writes a deterministic\n" +
			"gzip of the built HTML shell for embedding in the server binary.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b := bundler.New(bundlerOptions(a), a.log)

			if watch {
				return b.Watch(cmd.Context())
			}

			result, err := b.Run()
			if err != nil {
				return err
			}
			if result.Skipped {
				a.log.WarnWithPath("Nothing to bundle, missing", b.Options().IndexPath)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-bundle whenever the HTML shell or favicon changes")
	return cmd
}

func bundlerOptions(a *app) bundler.Options {
	c := a.cfg.Bundle
	return bundler.Options{
		IndexPath:     c.IndexPath,
		OutputPath:    c.OutputPath,
		FaviconPath:   c.FaviconPath,
		Banner:        c.Banner,
		MaxBundleSize: c.MaxBundleSize,
		MaxAssetSize:  c.MaxAssetSize,
	}
}
