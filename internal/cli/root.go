// Package cli wires the llamadeck commands together
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thushan/llamadeck/internal/config"
	"github.com/thushan/llamadeck/internal/logger"
	"github.com/thushan/llamadeck/internal/version"
)

// app is shared by every command, populated before any of them run
type app struct {
	cfg        *config.Config
	log        *logger.StyledLogger
	cleanup    func()
	configFile string
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}

	slogger, styled, cleanup, err := logger.NewWithTheme(&logger.Config{
		Level:      cfg.Logging.Level,
		LogDir:     cfg.Logging.Dir,
		Theme:      cfg.Logging.Theme,
		FileOutput: cfg.Logging.FileOutput,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
	})
	if err != nil {
		return fmt.Errorf("failed to initialise logger: %w", err)
	}
	slog.SetDefault(slogger)

	a.cfg = cfg
	a.log = styled
	a.cleanup = cleanup

	if cfg.Filename != "" {
		styled.Debug("Loaded configuration", "file", cfg.Filename, "command", cmd.Name())
	}
	return nil
}

func (a *app) teardown(*cobra.Command, []string) {
	if a.cleanup != nil {
		a.cleanup()
	}
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:               version.ShortName,
		Short:             version.Description,
		Version:           version.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: a.teardown,
	}
	root.SetVersionTemplate(version.ShortName + " {{ .Version }}\n")
	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "config file (default llamadeck.yaml in . or ./config)")

	root.AddCommand(
		newBundleCmd(a),
		newDevCmd(a),
		newPropsCmd(a),
		newUploadCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command line until ctx is cancelled
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
