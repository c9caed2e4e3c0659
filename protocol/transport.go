package protocol

import "sync/atomic"

// CommandHandler handles one decoded command. data is advanced past the
// arguments the handler consumed.
type CommandHandler func(cmdID uint16, data *[]byte) error

// Transport is the firmware end of the link. It acknowledges host frames
// and writes reply frames to an OutputBuffer that the main loop flushes.
type Transport struct {
	scanner      scanner
	nextSequence atomic.Uint32 // Expected host sequence, also used for replies
	output       OutputBuffer
	handler      CommandHandler

	resetCallback func()
	flushCallback func()
}

func NewTransport(output OutputBuffer, handler CommandHandler) *Transport {
	t := &Transport{
		scanner: scanner{synchronized: true, dest: MessageDest},
		output:  output,
		handler: handler,
	}
	t.nextSequence.Store(MessageDest)
	return t
}

// Receive parses every complete frame in input, dispatches in-sequence
// frames and answers each with an ACK carrying the next expected sequence.
func (t *Transport) Receive(input InputBuffer) {
	consumed := t.scanner.scan(input.Data(), t.receiveFrame, t.encodeAck)
	if consumed > 0 {
		input.Pop(consumed)
	}
}

func (t *Transport) receiveFrame(seq uint8, frame []byte) {
	expected := uint8(t.nextSequence.Load())
	if seq == MessageDest && expected != MessageDest {
		// Host restarted its sequence
		t.nextSequence.Store(MessageDest)
		expected = MessageDest
		if t.resetCallback != nil {
			t.resetCallback()
		}
	}

	if seq == expected {
		t.nextSequence.Store(uint32(nextSeq(seq)))
		_ = t.parseFrame(frame)
	}
	// Out of sequence frames are answered too; the ACK then acts as a NAK.
	t.encodeAck()
}

func (t *Transport) parseFrame(frame []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			t.scanner.synchronized = false
		}
	}()

	for len(frame) > 0 {
		cmdID, err := DecodeVLQUint(&frame)
		if err != nil {
			t.scanner.synchronized = false
			return err
		}
		if t.handler == nil {
			return nil
		}
		if err := t.handler(uint16(cmdID), &frame); err != nil {
			return err
		}
	}
	return nil
}

func (t *Transport) encodeAck() {
	_ = writeFrame(t.output, uint8(t.nextSequence.Load()), nil)
	if t.flushCallback != nil {
		t.flushCallback()
	}
}

// SendCommand writes one frame holding cmdID and its arguments.
func (t *Transport) SendCommand(cmdID uint16, args func(output OutputBuffer)) error {
	return writeFrame(t.output, uint8(t.nextSequence.Load()), func(o OutputBuffer) {
		EncodeVLQUint(o, uint32(cmdID))
		if args != nil {
			args(o)
		}
	})
}

// Reset forgets the host sequence, for example after a reconnect.
func (t *Transport) Reset() {
	t.scanner.synchronized = true
	t.nextSequence.Store(MessageDest)
	if t.resetCallback != nil {
		t.resetCallback()
	}
}

func (t *Transport) SetResetCallback(callback func()) {
	t.resetCallback = callback
}

// SetFlushCallback is called after every ACK. Replies to the frame are
// already in the output by then, followed by the ACK itself.
func (t *Transport) SetFlushCallback(callback func()) {
	t.flushCallback = callback
}
