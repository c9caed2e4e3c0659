package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRingKeepsNewest(t *testing.T) {
	ClearEvents()
	for i := uint32(1); i <= EventRingSize+3; i++ {
		RecordEvent(EvtTimerExpire, 1, i, 0)
	}

	events := Events()
	require.Len(t, events, EventRingSize)
	assert.Equal(t, uint32(4), events[0].Value1)
	assert.Equal(t, uint32(EventRingSize+3), events[len(events)-1].Value1)

	ClearEvents()
	assert.Empty(t, Events())
}

func TestDumpEvents(t *testing.T) {
	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(string) {})

	ClearEvents()
	RecordEvent(EvtSetTop, 2, 1000, 1)
	RecordEvent(EvtClockReject, 1, 1, 0)
	DumpEvents()

	require.Len(t, lines, 4)
	assert.Equal(t, "[EVENT] SET_TOP unit=2 v1=1000 v2=1", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "[EVENT] CLOCK_REJECT!"))
}

func TestDebugPrintlnGated(t *testing.T) {
	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(string) {})

	SetDebugEnabled(false)
	DebugPrintln("hidden")
	SetDebugEnabled(true)
	DebugPrintln("shown")
	SetDebugEnabled(false)

	assert.Equal(t, []string{"shown"}, lines)
	assert.False(t, IsDebugEnabled())
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "0", Utoa(0))
	assert.Equal(t, "4294967295", Utoa(0xFFFFFFFF))
	assert.Equal(t, "0x401EC000", Hex32(0x401EC000))
	assert.Equal(t, "0x00000000", Hex32(0))
}
