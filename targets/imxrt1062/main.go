//go:build tinygo && mimxrt1062

// Firmware for i.MX RT1062 boards (Teensy 4.x). GPT1 runs a 1 ms periodic
// alarm from PERCLK, and the USB serial link answers clock capture and
// timer status requests from clktool.
package main

import (
	"device/nxp"
	"machine"
	"runtime/interrupt"
	"time"

	"clocktimer/clock"
	"clocktimer/core"
	"clocktimer/firmware"
	"clocktimer/gpt"
	"clocktimer/protocol"
)

// CCM_CCGR1 gates for the GPT1 bus and serial clocks (CG10, CG11).
const (
	ccmCCGR1      = 0x400FC06C
	ccgr1GPT1Mask = 0xF << 20
)

const alarmPeriodUS = 1000

var (
	timer *gpt.Driver
	led   = machine.LED

	inputBuffer *protocol.FifoBuffer
	service     *firmware.Service

	ticks    uint32
	msgerror uint32
)

func main() {
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	core.SetDebugWriter(func(s string) {
		machine.Serial.Write([]byte(s + "\r\n"))
	})

	core.Reg32(core.Hardware(), ccmCCGR1).SetBits(ccgr1GPT1Mask)

	var err error
	timer, err = gpt.New(core.Hardware(), gpt.Config{
		Unit:   1,
		Base:   gpt.GPT1Base,
		Source: gpt.ClockPeripheral,
		Clocks: clock.NewResolver(core.Hardware()),
	})
	if err != nil {
		halt(err)
	}

	irq := interrupt.New(nxp.IRQ_GPT1, func(interrupt.Interrupt) {
		timer.HandleInterrupt()
	})
	irq.SetPriority(0xC0)
	irq.Enable()

	top, err := timer.TicksFromMicroseconds(alarmPeriodUS)
	if err != nil {
		halt(err)
	}
	if err := timer.SetTopValue(top, true, onAlarm, nil); err != nil {
		halt(err)
	}
	if err := timer.Start(); err != nil {
		halt(err)
	}
	core.DebugPrintln("[GPT] gpt1 at " + core.Hex32(uint32(gpt.GPT1Base)) +
		" " + core.Utoa(timer.Frequency()) + " Hz top=" + core.Utoa(top))

	inputBuffer = protocol.NewFifoBuffer(256)
	service = firmware.NewService(core.Hardware(), timer)
	service.SetFlushCallback(flush)

	for {
		readSerial()
		if inputBuffer.Available() > 0 {
			service.Receive(inputBuffer)
		}
		flush()
		time.Sleep(100 * time.Microsecond)
	}
}

// onAlarm runs in interrupt context once per period.
func onAlarm(any) {
	ticks++
	if ticks%500 == 0 {
		led.Set(!led.Get())
	}
}

func readSerial() {
	for machine.Serial.Buffered() > 0 {
		b, err := machine.Serial.ReadByte()
		if err != nil {
			msgerror++
			return
		}
		if inputBuffer.Write([]byte{b}) == 0 {
			// Full without a complete frame
			msgerror++
			inputBuffer.Reset()
			return
		}
	}
}

func flush() {
	out := service.Output()
	if len(out) == 0 {
		return
	}
	if _, err := machine.Serial.Write(out); err != nil {
		msgerror++
	}
	service.Drain()
}

// halt dumps the event ring and blinks fast forever.
func halt(err error) {
	core.SetDebugEnabled(true)
	core.DebugPrintln("[GPT] init failed: " + err.Error())
	core.DumpEvents()
	for {
		led.Set(!led.Get())
		time.Sleep(100 * time.Millisecond)
	}
}
