package protocol

import (
	"errors"

	"clocktimer/core"
)

var ErrFrameTooLong = errors.New("frame too long")

// scanner splits a byte stream into validated frames. After a bad length,
// CRC or trailer it drops bytes up to the next sync byte.
type scanner struct {
	synchronized bool
	// dest, when non-zero, is the required value of seq's high nibble
	dest uint8
}

// scan calls emit for every complete frame in data and returns the number
// of bytes consumed. A partial frame at the end is left for the next call.
// resynced is called when a sync byte ends a desynchronized stretch.
func (s *scanner) scan(data []byte, emit func(seq uint8, payload []byte), resynced func()) int {
	total := len(data)
	for len(data) > 0 {
		if !s.synchronized {
			i := 0
			for i < len(data) && data[i] != MessageValueSync {
				i++
			}
			if i == len(data) {
				data = nil
				break
			}
			data = data[i+1:]
			s.synchronized = true
			if resynced != nil {
				resynced()
			}
			continue
		}

		if data[0] == MessageValueSync {
			data = data[1:]
			continue
		}
		if len(data) < MessageLengthMin {
			break
		}

		msgLen := int(data[MessagePositionLen])
		if msgLen < MessageLengthMin || msgLen > MessageLengthMax {
			s.synchronized = false
			continue
		}
		seq := data[MessagePositionSeq]
		if s.dest != 0 && seq&^MessageSeqMask != s.dest {
			s.synchronized = false
			continue
		}
		if len(data) < msgLen {
			break
		}
		if data[msgLen-MessageTrailerSync] != MessageValueSync {
			s.synchronized = false
			continue
		}
		crc := uint16(data[msgLen-MessageTrailerCRC])<<8 | uint16(data[msgLen-MessageTrailerCRC+1])
		if crc != CRC16(data[:msgLen-MessageTrailerSize]) {
			s.synchronized = false
			continue
		}

		emit(seq, data[MessageHeaderSize:msgLen-MessageTrailerSize])
		data = data[msgLen:]
	}
	return total - len(data)
}

// writeFrame appends one frame around the payload produced by body.
func writeFrame(output OutputBuffer, seq uint8, body func(OutputBuffer)) error {
	start := output.CurPosition()
	output.Output([]byte{0, seq})
	if body != nil {
		body(output)
	}

	n := len(output.DataSince(start)) + MessageTrailerSize
	if n > MessageLengthMax {
		if t, ok := output.(interface{ Truncate(pos int) }); ok {
			t.Truncate(start)
		}
		return core.WrapError(ErrFrameTooLong,
			core.Utoa(uint32(n))+" bytes (max "+core.Utoa(MessageLengthMax)+")")
	}
	output.Update(start, uint8(n))

	crc := CRC16(output.DataSince(start))
	output.Output([]byte{uint8(crc >> 8), uint8(crc), MessageValueSync})
	return nil
}

// EncodeFrame returns a complete frame carrying payload.
func EncodeFrame(seq uint8, payload []byte) ([]byte, error) {
	out := NewScratchOutput()
	err := writeFrame(out, seq, func(o OutputBuffer) { o.Output(payload) })
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), out.Result()...), nil
}
