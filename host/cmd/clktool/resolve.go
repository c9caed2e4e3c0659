package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"clocktimer/clock"
)

var (
	errNoDevice     = errors.New("no --device given and " + envDevice + " is not set")
	errUnknownRoot  = errors.New("unknown clock root")
	errUnresolvable = errors.New("some roots could not be resolved")
)

func newResolveCmd(opts *options) *cobra.Command {
	var snapshotPath string

	cmd := &cobra.Command{
		Use:   "resolve [root...]",
		Short: "Print the frequency of peripheral clock roots.",
		Long: "Resolves each named root (default: all of " + rootNames() + ") " +
			"from --snapshot, or from the board on --device.",
		RunE: func(cmd *cobra.Command, args []string) error {
			roots, err := pickRoots(args)
			if err != nil {
				return err
			}
			snap, err := loadRegisters(opts, snapshotPath)
			if err != nil {
				return err
			}
			return printResolved(cmd, clock.NewResolver(snap), roots)
		},
	}
	cmd.Flags().StringVarP(&snapshotPath, "snapshot", "s", "", "register snapshot JSON file")
	return cmd
}

func rootNames() string {
	var names []string
	for _, r := range clock.Roots() {
		names = append(names, r.Name)
	}
	return strings.Join(names, ", ")
}

func pickRoots(names []string) ([]clock.Root, error) {
	if len(names) == 0 {
		return clock.Roots(), nil
	}
	roots := make([]clock.Root, 0, len(names))
	for _, n := range names {
		r, ok := clock.RootByName(n)
		if !ok {
			return nil, fmt.Errorf("%w %q (have %s)", errUnknownRoot, n, rootNames())
		}
		roots = append(roots, r)
	}
	return roots, nil
}

// loadRegisters prefers a snapshot file and falls back to the board.
func loadRegisters(opts *options, path string) (clock.Snapshot, error) {
	if path != "" {
		return clock.LoadSnapshot(path)
	}
	m, err := connect(opts)
	if err != nil {
		return nil, err
	}
	defer m.Close()
	return m.CaptureClocks()
}

func printResolved(cmd *cobra.Command, r *clock.Resolver, roots []clock.Root) error {
	failed := false
	for _, root := range roots {
		f, err := r.Resolve(root)
		if err != nil {
			failed = true
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", root.Name, err)
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout(), f)
	}
	if failed {
		return errUnresolvable
	}
	return nil
}
