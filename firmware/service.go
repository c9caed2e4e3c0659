// Package firmware answers host requests over the serial link: it captures
// clock controller registers and reports timer status. It runs unchanged
// on the board and against simulated registers on the host.
package firmware

import (
	"clocktimer/clock"
	"clocktimer/core"
	"clocktimer/gpt"
	"clocktimer/protocol"
)

// Service owns the firmware end of the protocol.
type Service struct {
	regs      clock.RegisterReader
	timers    map[uint8]*gpt.Driver
	registry  *core.CommandRegistry
	output    *protocol.ScratchOutput
	transport *protocol.Transport
}

// NewService builds a service reading clock registers from regs. Replies
// are collected until Drain.
func NewService(regs clock.RegisterReader, timers ...*gpt.Driver) *Service {
	s := &Service{
		regs:     regs,
		timers:   make(map[uint8]*gpt.Driver, len(timers)),
		registry: core.NewCommandRegistry(),
		output:   protocol.NewScratchOutput(),
	}
	for _, t := range timers {
		s.timers[t.Unit()] = t
	}
	s.transport = protocol.NewTransport(s.output, s.registry.Dispatch)

	_ = s.registry.Register(protocol.MsgCaptureClocks, "capture_clocks", s.handleCaptureClocks)
	_ = s.registry.Register(protocol.MsgQueryTimer, "query_timer", s.handleQueryTimer)
	return s
}

// Receive parses host bytes; replies accumulate in Output.
func (s *Service) Receive(input protocol.InputBuffer) {
	s.transport.Receive(input)
}

// Output returns pending reply bytes. Call Drain once they are written.
func (s *Service) Output() []byte {
	return s.output.Result()
}

func (s *Service) Drain() {
	s.output.Reset()
}

// SetFlushCallback runs after every ACK so the main loop can write Output
// straight away.
func (s *Service) SetFlushCallback(cb func()) {
	s.transport.SetFlushCallback(cb)
}

// Registry exposes the command table, e.g. for listing commands.
func (s *Service) Registry() *core.CommandRegistry {
	return s.registry
}

func (s *Service) handleCaptureClocks(data *[]byte) error {
	snap := clock.CaptureSnapshot(s.regs)
	core.DebugPrintln("[FW] capture_clocks regs=" + core.Utoa(uint32(len(snap))))
	return protocol.SendSnapshot(s.transport, snap)
}

func (s *Service) handleQueryTimer(data *[]byte) error {
	unit, err := protocol.DecodeVLQUint(data)
	if err != nil {
		return err
	}
	t, ok := s.timers[uint8(unit)]
	if !ok {
		// Unknown units report an all-zero status so the host is not left waiting
		return protocol.SendTimerStatus(s.transport, protocol.TimerStatus{Unit: uint8(unit)})
	}

	top, _ := t.GetTopValue()
	remaining, _ := t.GetValue()
	return protocol.SendTimerStatus(s.transport, protocol.TimerStatus{
		Unit:      t.Unit(),
		Hz:        t.Frequency(),
		Top:       top,
		Remaining: remaining,
		Expiries:  t.Expiries(),
	})
}
