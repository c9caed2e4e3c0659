package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clocktimer/clock"
)

func newCaptureCmd(opts *options) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Save the board's clock registers to a snapshot file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := connect(opts)
			if err != nil {
				return err
			}
			defer m.Close()

			snap, err := m.CaptureClocks()
			if err != nil {
				return err
			}
			if err := clock.SaveSnapshot(out, snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %d registers to %s\n", len(snap), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "clocks.json", "snapshot file to write")
	return cmd
}
