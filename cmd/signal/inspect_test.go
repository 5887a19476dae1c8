package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// newInspectCommand builds the app from --config without running it.
func newInspectCommand(inspect func(*app)) *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Flags: []cli.Flag{configFlag(), logLevelFlag()},
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			a, err := newApp(cfg, log, true)
			if err != nil {
				return err
			}
			defer a.close()

			inspect(a)

			return nil
		},
	}
}
