package main

import (
	"fmt"

	akita "github.com/sarchlab/akita/v4/sim"
	"github.com/spf13/cobra"

	"clocktimer/clock"
	"clocktimer/core"
	"clocktimer/gpt"
	"clocktimer/sim"
)

type simulateFlags struct {
	snapshot  string
	periodUS  uint32
	periods   uint64
	prescaler uint32
	events    bool
}

// defaultClocks feeds PERCLK from the 24 MHz oscillator divided by 24.
func defaultClocks() clock.Snapshot {
	s := clock.Snapshot{}
	s.Store32(clock.PerclkClkSel.Addr,
		clock.PerclkClkSel.Encode(uint32(clock.PerclkFromOsc))|clock.PerclkPodf.Encode(23))
	return s
}

func newSimulateCmd() *cobra.Command {
	var f simulateFlags

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the GPT driver against a simulated timer.",
		Long: "Programs a periodic alarm on a simulated GPT1 clocked from PERCLK " +
			"as resolved from --snapshot (default: 24 MHz oscillator / 24) and " +
			"counts the expiries delivered to the callback.",
		RunE: func(cmd *cobra.Command, args []string) error {
			regs := defaultClocks()
			if f.snapshot != "" {
				s, err := clock.LoadSnapshot(f.snapshot)
				if err != nil {
					return err
				}
				regs = s
			}
			res, err := simulate(regs, f)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res)
			if f.events {
				core.SetDebugWriter(func(s string) { fmt.Fprintln(cmd.OutOrStdout(), s) })
				core.DumpEvents()
				core.SetDebugWriter(nil)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&f.snapshot, "snapshot", "s", "", "register snapshot JSON file")
	cmd.Flags().Uint32Var(&f.periodUS, "period-us", 1000, "alarm period in microseconds")
	cmd.Flags().Uint64Var(&f.periods, "periods", 10, "number of periods to simulate")
	cmd.Flags().Uint32Var(&f.prescaler, "prescaler", 0, "GPT prescaler (PR)")
	cmd.Flags().BoolVar(&f.events, "events", false, "dump the driver event log afterwards")
	return cmd
}

type simResult struct {
	InputHz   uint32
	CounterHz uint32
	Top       uint32
	Callbacks int
	Expiries  uint32
	Remaining uint32
	SimTime   akita.VTimeInSec
}

func (r simResult) String() string {
	return fmt.Sprintf("perclk %d Hz, counter %d Hz, top %d: %d callbacks, %d expiries, %d ticks left, %.6fs simulated",
		r.InputHz, r.CounterHz, r.Top, r.Callbacks, r.Expiries, r.Remaining, float64(r.SimTime))
}

func simulate(regs clock.Snapshot, f simulateFlags) (simResult, error) {
	input, err := gpt.ResolveInput(clock.NewResolver(regs), gpt.ClockPeripheral)
	if err != nil {
		return simResult{}, err
	}

	engine := akita.NewSerialEngine()
	timer := sim.NewGPT(engine, akita.Freq(input), gpt.GPT1Base, regs)
	drv, err := gpt.New(timer, gpt.Config{
		Prescaler: f.prescaler,
		Clocks:    clock.NewResolver(timer),
	})
	if err != nil {
		return simResult{}, err
	}
	timer.ConnectIRQ(drv.HandleInterrupt)

	top, err := drv.TicksFromMicroseconds(f.periodUS)
	if err != nil {
		return simResult{}, err
	}
	callbacks := 0
	if err := drv.SetTopValue(top, true, func(any) { callbacks++ }, nil); err != nil {
		return simResult{}, err
	}
	if err := drv.Start(); err != nil {
		return simResult{}, err
	}
	if err := timer.RunTicks(uint64(top) * uint64(f.prescaler+1) * f.periods); err != nil {
		return simResult{}, err
	}
	remaining, _ := drv.GetValue()
	drv.Stop()

	return simResult{
		InputHz:   input,
		CounterHz: drv.Frequency(),
		Top:       top,
		Callbacks: callbacks,
		Expiries:  drv.Expiries(),
		Remaining: remaining,
		SimTime:   engine.CurrentTime(),
	}, nil
}
