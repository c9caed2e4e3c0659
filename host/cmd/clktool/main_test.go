package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clocktimer/clock"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	opts := options{baud: 115200, timeout: time.Second}
	cmd := newRootCmd(&opts)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeSnapshot(t *testing.T, s clock.Snapshot) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clocks.json")
	require.NoError(t, clock.SaveSnapshot(path, s))
	return path
}

func TestResolveFromSnapshot(t *testing.T) {
	path := writeSnapshot(t, defaultClocks())

	out, err := run(t, "resolve", "--snapshot", path, "perclk")
	require.NoError(t, err)
	assert.Contains(t, out, "perclk: 1000000 Hz")
}

func TestResolveUnknownRoot(t *testing.T) {
	path := writeSnapshot(t, defaultClocks())

	_, err := run(t, "resolve", "-s", path, "gpu")
	assert.ErrorIs(t, err, errUnknownRoot)
}

func TestResolveReportsUnresolvedRoots(t *testing.T) {
	s := defaultClocks()
	s.Store32(clock.PerclkClkSel.Addr, clock.PerclkClkSel.Encode(uint32(clock.PerclkFromIPG)))
	s.Store32(clock.PeriphClkSel.Addr, clock.PeriphClkSel.Encode(uint32(clock.PeriphFromClk2)))
	s.Store32(clock.PeriphClk2Sel.Addr, clock.PeriphClk2Sel.Encode(3))
	path := writeSnapshot(t, s)

	out, err := run(t, "resolve", "-s", path, "perclk")
	assert.ErrorIs(t, err, errUnresolvable)
	assert.Contains(t, out, clock.ErrUnresolvedClockPath.Error())
}

func TestResolveNeedsDeviceOrSnapshot(t *testing.T) {
	_, err := run(t, "resolve")
	assert.ErrorIs(t, err, errNoDevice)

	_, err = run(t, "capture")
	assert.ErrorIs(t, err, errNoDevice)
}

func TestSimulateDefaults(t *testing.T) {
	out, err := run(t, "simulate", "--period-us", "500", "--periods", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "counter 1000000 Hz, top 500: 4 callbacks, 4 expiries")
}

func TestSimulateWithPrescaler(t *testing.T) {
	res, err := simulate(defaultClocks(), simulateFlags{periodUS: 1000, periods: 3, prescaler: 3})
	require.NoError(t, err)
	assert.Equal(t, uint32(1000000), res.InputHz)
	assert.Equal(t, uint32(250000), res.CounterHz)
	assert.Equal(t, uint32(250), res.Top)
	assert.Equal(t, 3, res.Callbacks)
	assert.Equal(t, uint32(250), res.Remaining)
}

func TestSimulateRejectsShortPeriod(t *testing.T) {
	_, err := run(t, "simulate", "--period-us", "0")
	assert.Error(t, err)
}

func TestLoadEnv(t *testing.T) {
	for _, k := range []string{envDevice, envBaud, envTimeout} {
		prev, had := os.LookupEnv(k)
		require.NoError(t, os.Unsetenv(k))
		t.Cleanup(func() {
			if had {
				os.Setenv(k, prev)
			} else {
				os.Unsetenv(k)
			}
		})
	}

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		envDevice+"=/dev/ttyACM3\n"+envBaud+"=921600\n"+envTimeout+"=250ms\n"), 0o644))

	opts := loadEnv(path)
	assert.Equal(t, "/dev/ttyACM3", opts.device)
	assert.Equal(t, 921600, opts.baud)
	assert.Equal(t, 250*time.Millisecond, opts.timeout)

	opts = loadEnv(filepath.Join(t.TempDir(), "missing.env"))
	assert.Equal(t, "/dev/ttyACM3", opts.device)
}
