package firmware

import (
	"testing"

	akita "github.com/sarchlab/akita/v4/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clocktimer/clock"
	"clocktimer/core"
	"clocktimer/gpt"
	"clocktimer/protocol"
	"clocktimer/sim"
)

type frame struct {
	seq     uint8
	payload []byte
}

// split cuts well formed output into frames.
func split(t *testing.T, data []byte) []frame {
	t.Helper()
	var out []frame
	for len(data) > 0 {
		n := int(data[protocol.MessagePositionLen])
		require.GreaterOrEqual(t, n, protocol.MessageLengthMin)
		require.LessOrEqual(t, n, len(data))
		out = append(out, frame{
			seq:     data[protocol.MessagePositionSeq],
			payload: append([]byte(nil), data[protocol.MessageHeaderSize:n-protocol.MessageTrailerSize]...),
		})
		data = data[n:]
	}
	return out
}

func request(t *testing.T, seq uint8, values ...uint32) protocol.InputBuffer {
	t.Helper()
	out := protocol.NewScratchOutput()
	for _, v := range values {
		protocol.EncodeVLQUint(out, v)
	}
	f, err := protocol.EncodeFrame(seq, out.Result())
	require.NoError(t, err)
	return protocol.NewSliceInputBuffer(f)
}

func newTestService(t *testing.T) (*Service, *sim.GPT, *gpt.Driver) {
	t.Helper()
	clocks := core.NewMemoryRegisters()
	clocks.Store32(clock.PerclkClkSel.Addr,
		clock.PerclkClkSel.Encode(uint32(clock.PerclkFromOsc))|clock.PerclkPodf.Encode(23))

	timer := sim.NewGPT(akita.NewSerialEngine(), 1*akita.MHz, gpt.GPT2Base, clocks)
	drv, err := gpt.New(timer, gpt.Config{Unit: 2, Base: gpt.GPT2Base, Clocks: clock.NewResolver(timer)})
	require.NoError(t, err)
	timer.ConnectIRQ(drv.HandleInterrupt)
	return NewService(timer, drv), timer, drv
}

func TestServiceRegistersCommands(t *testing.T) {
	svc, _, _ := newTestService(t)
	cmds := svc.Registry().Commands()
	require.Len(t, cmds, 2)
	assert.Equal(t, "capture_clocks", cmds[0].Name)
	assert.Equal(t, "query_timer", cmds[1].Name)
}

func TestServiceCaptureClocks(t *testing.T) {
	svc, timer, _ := newTestService(t)
	flushes := 0
	svc.SetFlushCallback(func() { flushes++ })

	svc.Receive(request(t, protocol.MessageDest, protocol.MsgCaptureClocks))
	frames := split(t, svc.Output())
	require.GreaterOrEqual(t, len(frames), 3)
	assert.Equal(t, 1, flushes)

	// Replies come first, the ACK closes the batch
	ack := frames[len(frames)-1]
	assert.Empty(t, ack.payload)
	assert.Equal(t, uint8(protocol.MessageDest+1), ack.seq)

	var a protocol.SnapshotAssembler
	var snap clock.Snapshot
	for _, f := range frames[:len(frames)-1] {
		data := f.payload
		cmdID, err := protocol.DecodeVLQUint(&data)
		require.NoError(t, err)
		s, err := a.Handle(uint16(cmdID), &data)
		require.NoError(t, err)
		if s != nil {
			snap = s
		}
	}
	require.NotNil(t, snap)
	assert.Equal(t, clock.CaptureSnapshot(timer), snap)

	svc.Drain()
	assert.Empty(t, svc.Output())
}

func TestServiceQueryTimer(t *testing.T) {
	svc, timer, drv := newTestService(t)
	require.NoError(t, drv.SetTopValue(400, true, func(any) {}, nil))
	require.NoError(t, drv.Start())
	require.NoError(t, timer.RunTicks(1300))

	svc.Receive(request(t, protocol.MessageDest, protocol.MsgQueryTimer, 2))
	frames := split(t, svc.Output())
	require.Len(t, frames, 2)

	data := frames[0].payload
	cmdID, err := protocol.DecodeVLQUint(&data)
	require.NoError(t, err)
	assert.Equal(t, uint32(protocol.MsgTimerStatus), cmdID)
	st, err := protocol.DecodeTimerStatus(&data)
	require.NoError(t, err)
	assert.Equal(t, protocol.TimerStatus{
		Unit:      2,
		Hz:        1000000,
		Top:       400,
		Remaining: 300,
		Expiries:  3,
	}, st)
}

func TestServiceUnknownTimer(t *testing.T) {
	svc, _, _ := newTestService(t)

	svc.Receive(request(t, protocol.MessageDest, protocol.MsgQueryTimer, 9))
	frames := split(t, svc.Output())
	require.Len(t, frames, 2)

	data := frames[0].payload
	_, err := protocol.DecodeVLQUint(&data)
	require.NoError(t, err)
	st, err := protocol.DecodeTimerStatus(&data)
	require.NoError(t, err)
	assert.Equal(t, protocol.TimerStatus{Unit: 9}, st)
}

func TestServiceUnknownCommandStillAcked(t *testing.T) {
	svc, _, _ := newTestService(t)

	svc.Receive(request(t, protocol.MessageDest, 99))
	frames := split(t, svc.Output())
	require.Len(t, frames, 1)
	assert.Empty(t, frames[0].payload)
	assert.Equal(t, uint8(protocol.MessageDest+1), frames[0].seq)
}
