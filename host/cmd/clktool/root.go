package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"clocktimer/host/mcu"
	"clocktimer/host/serial"
)

// Environment keys read from the process or a .env file.
const (
	envDevice  = "CLKTOOL_DEVICE"
	envBaud    = "CLKTOOL_BAUD"
	envTimeout = "CLKTOOL_TIMEOUT"
)

type options struct {
	device  string
	baud    int
	timeout time.Duration
}

// loadEnv fills defaults from .env without overriding variables already
// set in the environment.
func loadEnv(files ...string) options {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		log.Printf("ignoring env file: %v", err)
	}

	opts := options{baud: 115200, timeout: mcu.DefaultTimeout}
	opts.device = os.Getenv(envDevice)
	if v := os.Getenv(envBaud); v != "" {
		if baud, err := strconv.Atoi(v); err == nil {
			opts.baud = baud
		} else {
			log.Printf("%s=%q is not a number", envBaud, v)
		}
	}
	if v := os.Getenv(envTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			opts.timeout = d
		} else {
			log.Printf("%s=%q is not a duration", envTimeout, v)
		}
	}
	return opts
}

func newRootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "clktool",
		Short: "Resolve i.MX RT1062 peripheral clocks and exercise the GPT driver.",
		Long: `clktool walks the i.MX RT1062 clock tree from a saved register ` +
			`snapshot or a board running the timer firmware, and runs the GPT ` +
			`driver against a simulated timer.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.device, "device", opts.device,
		"serial device of the board (env "+envDevice+")")
	root.PersistentFlags().IntVar(&opts.baud, "baud", opts.baud,
		"baud rate, ignored by USB CDC (env "+envBaud+")")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", opts.timeout,
		"wait per firmware reply (env "+envTimeout+")")

	root.AddCommand(
		newResolveCmd(opts),
		newCaptureCmd(opts),
		newSimulateCmd(),
	)
	return root
}

// connect opens the board named by opts.
func connect(opts *options) (*mcu.MCU, error) {
	if opts.device == "" {
		return nil, errNoDevice
	}
	m := mcu.NewMCU()
	m.SetTimeout(opts.timeout)
	cfg := serial.DefaultConfig(opts.device)
	cfg.Baud = opts.baud
	if err := m.ConnectWithConfig(cfg); err != nil {
		return nil, err
	}
	return m, nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	opts := loadEnv()
	if err := newRootCmd(&opts).Execute(); err != nil {
		os.Exit(1)
	}
}
