package cli

import (
	"github.com/lariat-data/lariat-go/core/cli/cmd"
	"github.com/lariat-data/lariat-go/core/logger"
)

// Execute runs the CLI
func Execute() error {
	if err := cmd.Execute(); err != nil {
		tag := logger.ErrorTag(err)
		if tag == "" {
			tag = "cli"
		}
		logger.New(tag).Error(err.Error())
		return err
	}
	return nil
}
