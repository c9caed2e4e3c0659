package mcu

import (
	"errors"
	"fmt"
	"io"
	"time"

	"clocktimer/clock"
	"clocktimer/host/serial"
	"clocktimer/protocol"
)

var ErrNotConnected = errors.New("not connected to MCU")

// DefaultTimeout bounds each wait for a firmware reply.
const DefaultTimeout = time.Second

// MCU is a connection to the timer firmware.
type MCU struct {
	transport *protocol.HostTransport
	timeout   time.Duration

	statuses chan protocol.TimerStatus
}

func NewMCU() *MCU {
	return &MCU{timeout: DefaultTimeout}
}

// Connect opens device with the default serial settings.
func (m *MCU) Connect(device string) error {
	return m.ConnectWithConfig(serial.DefaultConfig(device))
}

func (m *MCU) ConnectWithConfig(cfg *serial.Config) error {
	port, err := serial.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open serial port: %w", err)
	}
	m.Attach(port)

	// Give a freshly enumerated board time to start its main loop
	time.Sleep(100 * time.Millisecond)
	return nil
}

// Attach runs the protocol over an already open port.
func (m *MCU) Attach(port io.ReadWriteCloser) {
	m.transport = protocol.NewHostTransport(port)
	m.statuses = make(chan protocol.TimerStatus, 16)
	m.transport.SetResponseHandler(m.handleResponse)
}

// SetTimeout changes how long each request waits for its reply.
func (m *MCU) SetTimeout(d time.Duration) {
	m.timeout = d
}

func (m *MCU) Close() error {
	if m.transport == nil {
		return nil
	}
	err := m.transport.Close()
	m.transport = nil
	return err
}

func (m *MCU) IsConnected() bool {
	return m.transport != nil
}

// CaptureClocks asks the firmware for its clock controller registers.
func (m *MCU) CaptureClocks() (clock.Snapshot, error) {
	if m.transport == nil {
		return nil, ErrNotConnected
	}
	if err := m.transport.SendCommandWithTimeout(protocol.MsgCaptureClocks, nil, m.timeout); err != nil {
		return nil, fmt.Errorf("capture request: %w", err)
	}

	var a protocol.SnapshotAssembler
	for {
		resp, err := m.transport.ReceiveResponse(m.timeout)
		if err != nil {
			return nil, fmt.Errorf("capture: %w", err)
		}
		data := resp.Payload
		cmdID, err := protocol.DecodeVLQUint(&data)
		if err != nil {
			return nil, fmt.Errorf("capture: %w", err)
		}
		snap, err := a.Handle(uint16(cmdID), &data)
		if err != nil {
			return nil, fmt.Errorf("capture: %w", err)
		}
		if snap != nil {
			return snap, nil
		}
	}
}

// QueryTimer asks for the status of one timer instance.
func (m *MCU) QueryTimer(unit uint8) (protocol.TimerStatus, error) {
	if m.transport == nil {
		return protocol.TimerStatus{}, ErrNotConnected
	}
	err := m.transport.SendCommandWithTimeout(protocol.MsgQueryTimer, func(o protocol.OutputBuffer) {
		protocol.EncodeVLQUint(o, uint32(unit))
	}, m.timeout)
	if err != nil {
		return protocol.TimerStatus{}, fmt.Errorf("timer query: %w", err)
	}

	deadline := time.After(m.timeout)
	for {
		select {
		case st := <-m.statuses:
			if st.Unit == unit {
				return st, nil
			}
		case <-deadline:
			return protocol.TimerStatus{}, fmt.Errorf("timer query: no status for gpt%d after %v", unit, m.timeout)
		}
	}
}

// handleResponse runs on the transport's reader goroutine.
func (m *MCU) handleResponse(cmdID uint16, data *[]byte) error {
	if cmdID != protocol.MsgTimerStatus {
		return nil
	}
	st, err := protocol.DecodeTimerStatus(data)
	if err != nil {
		return err
	}
	select {
	case m.statuses <- st:
	default:
	}
	return nil
}
