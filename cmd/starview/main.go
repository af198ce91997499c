// Package main is the starview command: the native solar-system viewer plus
// tools for catalogs and saved locations.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Faultbox/starview/internal/config"
	"github.com/Faultbox/starview/internal/logger"
)

var (
	flags config.Flags
	cfg   *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "starview",
	Short: "Fly a free camera through the solar system",
	Long: `starview renders a catalog of bodies in 3D. Fly with WASD/QE, drag to look
around, scroll to dolly (Shift+scroll zooms). Click a body or press Tab to fly
to it; B bookmarks the view, Alt+Left/Right walks the bookmarks, F12 saves a
screenshot. The camera pose is kept as a location string so a view can be resumed or shared.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runView,
}

func init() {
	flags.Bind(rootCmd.PersistentFlags())
}

// setup loads the configuration and starts logging for every command.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(&flags)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	logger.Sugar.Debugf("config: %+v", cfg)
	return nil
}

func main() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
