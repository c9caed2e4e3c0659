package protocol

import (
	"errors"

	"clocktimer/clock"
	"clocktimer/core"
)

// Message IDs
const (
	MsgCaptureClocks = 1 // host: request a clock snapshot
	MsgSnapshotBegin = 2 // firmware: count
	MsgSnapshotRegs  = 3 // firmware: n, n * (addr, value)
	MsgSnapshotEnd   = 4 // firmware: count
	MsgTimerStatus   = 5 // firmware: unit, hz, top, remaining, expiries
	MsgQueryTimer    = 6 // host: request a timer status
)

// SnapshotPairsPerFrame keeps a register frame within MessageLengthMax even
// when every address and value needs five VLQ bytes.
const SnapshotPairsPerFrame = 5

var (
	ErrSnapshotSequence   = errors.New("snapshot message out of order")
	ErrSnapshotIncomplete = errors.New("snapshot register count mismatch")
)

// SendSnapshot streams s as a begin frame, register frames and an end frame.
func SendSnapshot(t *Transport, s clock.Snapshot) error {
	addrs := s.Addresses()
	count := uint32(len(addrs))

	err := t.SendCommand(MsgSnapshotBegin, func(o OutputBuffer) {
		EncodeVLQUint(o, count)
	})
	if err != nil {
		return err
	}

	for len(addrs) > 0 {
		n := min(len(addrs), SnapshotPairsPerFrame)
		chunk := addrs[:n]
		addrs = addrs[n:]

		err := t.SendCommand(MsgSnapshotRegs, func(o OutputBuffer) {
			EncodeVLQUint(o, uint32(len(chunk)))
			for _, a := range chunk {
				EncodeVLQUint(o, uint32(a))
				EncodeVLQUint(o, s[a])
			}
		})
		if err != nil {
			return err
		}
	}

	return t.SendCommand(MsgSnapshotEnd, func(o OutputBuffer) {
		EncodeVLQUint(o, count)
	})
}

// SnapshotAssembler rebuilds a snapshot from firmware messages.
type SnapshotAssembler struct {
	snap     clock.Snapshot
	expected uint32
	active   bool
}

// Handle consumes one snapshot message. It returns the finished snapshot
// after the end message and nil before that. Other message IDs are ignored.
func (a *SnapshotAssembler) Handle(cmdID uint16, data *[]byte) (clock.Snapshot, error) {
	switch cmdID {
	case MsgSnapshotBegin:
		count, err := DecodeVLQUint(data)
		if err != nil {
			return nil, err
		}
		a.snap = clock.Snapshot{}
		a.expected = count
		a.active = true

	case MsgSnapshotRegs:
		if !a.active {
			return nil, core.WrapError(ErrSnapshotSequence, "registers before begin")
		}
		n, err := DecodeVLQUint(data)
		if err != nil {
			return nil, err
		}
		for i := uint32(0); i < n; i++ {
			addr, err := DecodeVLQUint(data)
			if err != nil {
				return nil, err
			}
			value, err := DecodeVLQUint(data)
			if err != nil {
				return nil, err
			}
			a.snap[uintptr(addr)] = value
		}

	case MsgSnapshotEnd:
		if !a.active {
			return nil, core.WrapError(ErrSnapshotSequence, "end before begin")
		}
		count, err := DecodeVLQUint(data)
		if err != nil {
			return nil, err
		}
		a.active = false
		if count != a.expected || uint32(len(a.snap)) != count {
			return nil, core.WrapError(ErrSnapshotIncomplete, "announced "+core.Utoa(a.expected)+
				", end "+core.Utoa(count)+", received "+core.Utoa(uint32(len(a.snap))))
		}
		return a.snap, nil
	}
	return nil, nil
}

// TimerStatus is a periodic timer report from the firmware.
type TimerStatus struct {
	Unit      uint8
	Hz        uint32
	Top       uint32
	Remaining uint32
	Expiries  uint32
}

func SendTimerStatus(t *Transport, st TimerStatus) error {
	return t.SendCommand(MsgTimerStatus, func(o OutputBuffer) {
		EncodeVLQUint(o, uint32(st.Unit))
		EncodeVLQUint(o, st.Hz)
		EncodeVLQUint(o, st.Top)
		EncodeVLQUint(o, st.Remaining)
		EncodeVLQUint(o, st.Expiries)
	})
}

func DecodeTimerStatus(data *[]byte) (TimerStatus, error) {
	var fields [5]uint32
	for i := range fields {
		v, err := DecodeVLQUint(data)
		if err != nil {
			return TimerStatus{}, err
		}
		fields[i] = v
	}
	return TimerStatus{
		Unit:      uint8(fields[0]),
		Hz:        fields[1],
		Top:       fields[2],
		Remaining: fields[3],
		Expiries:  fields[4],
	}, nil
}
