package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	akita "github.com/sarchlab/akita/v4/sim"

	"clocktimer/clock"
	"clocktimer/core"
	"clocktimer/gpt"
)

const base = gpt.GPT1Base

var _ = Describe("GPT", func() {
	var (
		engine  akita.Engine
		backing *core.MemoryRegisters
		timer   *GPT
	)

	BeforeEach(func() {
		engine = akita.NewSerialEngine()
		backing = core.NewMemoryRegisters()
		timer = NewGPT(engine, 1*akita.MHz, base, backing)
	})

	It("should forward addresses outside the timer window", func() {
		timer.Store32(0x400FC01C, 0x1234)
		Expect(backing.Load32(0x400FC01C)).To(Equal(uint32(0x1234)))
		Expect(timer.Load32(0x400FC01C)).To(Equal(uint32(0x1234)))
		Expect(backing.Len()).To(Equal(1))
	})

	It("should clear status flags written as one", func() {
		timer.Store32(base+gpt.OffsetOCR1, 2)
		timer.Store32(base+gpt.OffsetCR, gpt.CREnable)
		Expect(timer.RunTicks(2)).To(Succeed())
		Expect(timer.Load32(base + gpt.OffsetSR)).To(Equal(uint32(gpt.SROutputCompare1)))

		timer.Store32(base+gpt.OffsetSR, 0)
		Expect(timer.Load32(base + gpt.OffsetSR)).To(Equal(uint32(gpt.SROutputCompare1)))

		timer.Store32(base+gpt.OffsetSR, gpt.SROutputCompare1)
		Expect(timer.Load32(base + gpt.OffsetSR)).To(BeZero())
	})

	It("should self-clear software reset after a few polls", func() {
		timer.Store32(base+gpt.OffsetPR, 7)
		timer.Store32(base+gpt.OffsetCR, gpt.CRSoftwareReset)

		polls := 0
		for timer.Load32(base+gpt.OffsetCR)&gpt.CRSoftwareReset != 0 {
			polls++
			Expect(polls).To(BeNumerically("<", 10))
		}
		Expect(polls).To(Equal(resetPolls))
		Expect(timer.Load32(base + gpt.OffsetPR)).To(BeZero())
		Expect(timer.Load32(base + gpt.OffsetOCR1)).To(Equal(uint32(gpt.MaxTopValue)))
	})

	It("should ignore writes to the counter", func() {
		timer.Store32(base+gpt.OffsetCR, gpt.CREnable)
		Expect(timer.RunTicks(5)).To(Succeed())
		timer.Store32(base+gpt.OffsetCNT, 0)
		Expect(timer.Load32(base + gpt.OffsetCNT)).To(Equal(uint32(5)))
	})

	It("should divide the input by the prescaler", func() {
		timer.Store32(base+gpt.OffsetPR, 3)
		timer.Store32(base+gpt.OffsetOCR1, 10)
		timer.Store32(base+gpt.OffsetCR, gpt.CREnable)

		Expect(timer.RunTicks(400)).To(Succeed())
		Expect(timer.Expiries()).To(Equal(uint64(10)))
		Expect(timer.InputTicks()).To(Equal(uint64(400)))
	})

	It("should keep counting past compare in free-run mode", func() {
		timer.Store32(base+gpt.OffsetOCR1, 10)
		timer.Store32(base+gpt.OffsetCR, gpt.CREnable|gpt.CRFreeRun)

		Expect(timer.RunTicks(15)).To(Succeed())
		Expect(timer.Counter()).To(Equal(uint32(15)))
		Expect(timer.Expiries()).To(Equal(uint64(1)))
	})

	It("should restart the counter on enable only with ENMOD", func() {
		timer.Store32(base+gpt.OffsetCR, gpt.CREnable)
		Expect(timer.RunTicks(5)).To(Succeed())
		timer.Store32(base+gpt.OffsetCR, 0)
		timer.Store32(base+gpt.OffsetCR, gpt.CREnable)
		Expect(timer.Counter()).To(Equal(uint32(5)))

		timer.Store32(base+gpt.OffsetCR, 0)
		timer.Store32(base+gpt.OffsetCR, gpt.CREnable|gpt.CREnableMode)
		Expect(timer.Counter()).To(BeZero())
	})

	It("should restart the counter on every compare write in restart mode", func() {
		timer.Store32(base+gpt.OffsetOCR1, 100)
		timer.Store32(base+gpt.OffsetCR, gpt.CREnable)
		Expect(timer.RunTicks(30)).To(Succeed())

		timer.Store32(base+gpt.OffsetOCR1, 200)
		Expect(timer.Counter()).To(BeZero())

		timer.Store32(base+gpt.OffsetCR, gpt.CREnable|gpt.CRFreeRun)
		Expect(timer.RunTicks(30)).To(Succeed())
		timer.Store32(base+gpt.OffsetOCR1, 300)
		Expect(timer.Counter()).To(Equal(uint32(30)))
	})

	It("should only count the crystal with EN_24M set", func() {
		osc := uint32(gpt.ClockOsc) << gpt.CRClkSrcPos
		timer.Store32(base+gpt.OffsetCR, gpt.CREnable|osc)
		Expect(timer.RunTicks(5)).To(Succeed())
		Expect(timer.Counter()).To(BeZero())

		timer.Store32(base+gpt.OffsetCR, gpt.CREnable|gpt.CREnable24M|osc)
		Expect(timer.RunTicks(5)).To(Succeed())
		Expect(timer.Counter()).To(Equal(uint32(5)))
	})

	It("should hold the interrupt while interrupts are masked", func() {
		raised := 0
		timer.ConnectIRQ(func() {
			raised++
			timer.Store32(base+gpt.OffsetSR, gpt.SROutputCompare1)
		})
		timer.Store32(base+gpt.OffsetOCR1, 10)
		timer.Store32(base+gpt.OffsetIR, gpt.IROutputCompare1)
		timer.Store32(base+gpt.OffsetCR, gpt.CREnable)

		state := core.DisableInterrupts()
		Expect(timer.RunTicks(10)).To(Succeed())
		core.RestoreInterrupts(state)
		Expect(raised).To(BeZero())

		Expect(timer.RunTicks(1)).To(Succeed())
		Expect(raised).To(Equal(1))
	})
})

var _ = Describe("Driver on simulated GPT", func() {
	var (
		engine akita.Engine
		timer  *GPT
		drv    *gpt.Driver
		count  int
	)

	bump := func(ctx any) {
		*ctx.(*int)++
	}

	BeforeEach(func() {
		engine = akita.NewSerialEngine()
		clocks := core.NewMemoryRegisters()
		clocks.Store32(clock.PerclkClkSel.Addr,
			clock.PerclkClkSel.Encode(uint32(clock.PerclkFromOsc))|clock.PerclkPodf.Encode(23))

		timer = NewGPT(engine, 1*akita.MHz, base, clocks)

		var err error
		drv, err = gpt.New(timer, gpt.Config{Clocks: clock.NewResolver(timer)})
		Expect(err).NotTo(HaveOccurred())
		timer.ConnectIRQ(drv.HandleInterrupt)
		count = 0
	})

	It("should resolve a 1 MHz counting clock", func() {
		Expect(drv.Frequency()).To(Equal(uint32(1000000)))
		ticks, err := drv.TicksFromMicroseconds(1000)
		Expect(err).NotTo(HaveOccurred())
		Expect(ticks).To(Equal(uint32(1000)))
	})

	It("should fire once per period", func() {
		Expect(drv.SetTopValue(1000, true, bump, &count)).To(Succeed())
		Expect(drv.Start()).To(Succeed())

		Expect(timer.RunTicks(5000)).To(Succeed())
		Expect(count).To(Equal(5))

		v, err := drv.GetValue()
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(BeNumerically(">=", 0))
		Expect(v).To(BeNumerically("<=", 1000))
		Expect(drv.State()).To(Equal(gpt.StateRunning))
	})

	It("should count down between expiries", func() {
		Expect(drv.SetTopValue(1000, true, bump, &count)).To(Succeed())
		Expect(drv.Start()).To(Succeed())
		Expect(timer.RunTicks(250)).To(Succeed())

		v, err := drv.GetValue()
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(uint32(750)))
	})

	It("should finish the period when not resetting the counter", func() {
		Expect(drv.SetTopValue(1000, true, bump, &count)).To(Succeed())
		Expect(drv.Start()).To(Succeed())
		Expect(timer.RunTicks(300)).To(Succeed())

		Expect(drv.SetTopValue(500, false, bump, &count)).To(Succeed())
		Expect(timer.RunTicks(699)).To(Succeed())
		Expect(count).To(BeZero())
		Expect(timer.RunTicks(1)).To(Succeed())
		Expect(count).To(Equal(1))

		Expect(timer.RunTicks(500)).To(Succeed())
		Expect(count).To(Equal(2))
	})

	It("should not strand a counter already past the new top", func() {
		Expect(drv.SetTopValue(1000, true, bump, &count)).To(Succeed())
		Expect(drv.Start()).To(Succeed())
		Expect(timer.RunTicks(700)).To(Succeed())

		Expect(drv.SetTopValue(500, false, bump, &count)).To(Succeed())
		v, err := drv.GetValue()
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(uint32(300)))

		Expect(timer.RunTicks(300)).To(Succeed())
		Expect(count).To(Equal(1))
		Expect(timer.RunTicks(5000)).To(Succeed())
		Expect(count).To(Equal(11))

		v, err = drv.GetValue()
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(BeNumerically("<=", 500))
	})

	It("should restart the period when resetting the counter", func() {
		Expect(drv.SetTopValue(1000, true, bump, &count)).To(Succeed())
		Expect(drv.Start()).To(Succeed())
		Expect(timer.RunTicks(300)).To(Succeed())

		Expect(drv.SetTopValue(500, true, bump, &count)).To(Succeed())
		Expect(timer.RunTicks(499)).To(Succeed())
		Expect(count).To(BeZero())
		Expect(timer.RunTicks(1)).To(Succeed())
		Expect(count).To(Equal(1))
	})

	It("should not dispatch a flag left pending across stop", func() {
		Expect(drv.SetTopValue(100, true, nil, nil)).To(Succeed())
		Expect(drv.Start()).To(Succeed())
		Expect(timer.RunTicks(100)).To(Succeed())
		pending, err := drv.GetPendingInterrupt()
		Expect(err).NotTo(HaveOccurred())
		Expect(pending).To(BeTrue())
		drv.Stop()

		Expect(drv.SetTopValue(100, true, bump, &count)).To(Succeed())
		Expect(drv.Start()).To(Succeed())
		Expect(timer.RunTicks(99)).To(Succeed())
		Expect(count).To(BeZero())
		Expect(timer.RunTicks(1)).To(Succeed())
		Expect(count).To(Equal(1))
	})

	It("should stop from inside the callback", func() {
		stopper := func(ctx any) {
			*ctx.(*int)++
			drv.Stop()
		}
		Expect(drv.SetTopValue(100, true, stopper, &count)).To(Succeed())
		Expect(drv.Start()).To(Succeed())

		Expect(timer.RunTicks(1000)).To(Succeed())
		Expect(count).To(Equal(1))
		Expect(drv.State()).To(Equal(gpt.StateIdle))
	})

	It("should report an unresolvable clock when converting timeouts", func() {
		timer.Store32(clock.PerclkClkSel.Addr, clock.PerclkClkSel.Encode(uint32(clock.PerclkFromIPG)))
		timer.Store32(clock.PeriphClkSel.Addr, clock.PeriphClkSel.Encode(uint32(clock.PeriphFromClk2)))
		timer.Store32(clock.PeriphClk2Sel.Addr, clock.PeriphClk2Sel.Encode(3))

		_, err := drv.TicksFromMicroseconds(1000)
		Expect(err).To(MatchError(clock.ErrUnresolvedClockPath))
		Expect(drv.Frequency()).To(Equal(uint32(1000000)))
	})
})
