package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"
	"github.com/wyfcoding/nkmodel/pkg/config"
)

func buildCalibrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "calibrate",
		Short: "Fetch macro data and print the calibrated initial conditions (percent)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if err := initLogger(cfg); err != nil {
				return err
			}
			cal := newCalibrator(cfg.Calibration, nil)
			if cal == nil {
				return errors.New("calibration.api_key is not configured")
			}
			c, err := cal.Calibrate(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"inflation":          c.Inflation,
				"output_gap":         c.OutputGap,
				"real_interest_rate": c.RealInterestRate,
				"as_of":              c.AsOf,
			})
		},
	}
}
