package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/starview/internal/logger"
	"github.com/Faultbox/starview/internal/viewer"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Open the viewer window",
	Long:  "Open the native viewer. The last camera pose is restored from the state file.",
	Args:  cobra.NoArgs,
	RunE:  runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	logger.Info("=== Starview ===")

	v, err := viewer.New(cmd.Context(), cfg)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		return err
	}
	defer v.Close()

	if err := v.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		return err
	}

	logger.Info("viewer closed normally")
	return nil
}
