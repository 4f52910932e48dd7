package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thushan/llamadeck/internal/adapter/upload"
)

func newUploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload files to the llama.cpp server and print their server paths",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := upload.NewClient(a.cfg.API.BaseURL, a.cfg.API.Key, a.cfg.API.Timeout, a.log)
			a.log.Debug("Uploading", "endpoint", client.Endpoint(), "files", len(args))

			var errs []error
			for _, path := range args {
				serverPath, err := client.UploadFile(cmd.Context(), path)
				if err != nil {
					a.log.ErrorWithPath("Failed to upload", path, "error", err)
					errs = append(errs, fmt.Errorf("%s: %w", path, err))
					continue
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", path, serverPath)
			}
			return errors.Join(errs...)
		},
	}
}
