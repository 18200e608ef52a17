package window_test

import (
	"context"
	"math/bits"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/NearNodeFlash/dumpcard/internal/bridge"
	"github.com/NearNodeFlash/dumpcard/internal/config"
	"github.com/NearNodeFlash/dumpcard/internal/exca"
	"github.com/NearNodeFlash/dumpcard/internal/window"
)

var _ = Describe("Window Programming", func() {

	var cfg *config.ConfigFile

	BeforeEach(func() {
		var err error
		cfg, err = config.Load("")
		Expect(err).NotTo(HaveOccurred())
	})

	It("derives the register values for the default aperture", func() {
		p := window.NewProgramming(cfg.Bridge, exca.CommonMemory)
		Expect(p).To(Equal(window.Programming{
			Page:   0xFD,
			Offset: 0x8000,
			Start:  0x0400,
			End:    0x0500,
			Power:  0x90,
		}))
	})

	It("selects attribute space with the REG bit only", func() {
		common := window.NewProgramming(cfg.Bridge, exca.CommonMemory)
		attr := window.NewProgramming(cfg.Bridge, exca.AttributeMemory)

		Expect(attr.Offset).To(Equal(uint16(0xC000)))
		Expect(attr.Offset ^ common.Offset).To(Equal(exca.MWOAttribute))

		attr.Offset = common.Offset
		Expect(attr).To(Equal(common))
	})

	It("follows the configured aperture", func() {
		cfg.Bridge.ApertureBase = 0xe0010000
		cfg.Bridge.ApertureSize = 0x2000

		p := window.NewProgramming(cfg.Bridge, exca.CommonMemory)
		Expect(p.Page).To(Equal(uint8(0xE0)))
		Expect(p.Start).To(Equal(uint16(0x010)))
		Expect(p.End).To(Equal(uint16(0x012)))
	})
})

var _ = Describe("Window Controller", func() {

	var (
		ctrl    *bridge.MockMemoryController
		cfg     *config.ConfigFile
		session *bridge.Session
		logger  *logrus.Logger
		hook    *logtest.Hook
	)

	BeforeEach(func() {
		var err error
		cfg, err = config.Load("")
		Expect(err).NotTo(HaveOccurred())

		ctrl = bridge.NewMockMemoryController()

		logger, hook = logtest.NewNullLogger()
		logger.SetLevel(logrus.DebugLevel)

		session, err = bridge.Open(ctrl, cfg.Bridge, logger.WithField("component", "bridge"))
		Expect(err).NotTo(HaveOccurred())
		hook.Reset()
	})

	AfterEach(func() {
		Expect(session.Close()).To(Succeed())
	})

	newController := func() *window.Controller {
		return window.New(session, cfg, logger.WithField("component", "window"))
	}

	snapshot := func() exca.Registers {
		regs, err := session.Registers().Snapshot()
		Expect(err).NotTo(HaveOccurred())
		return regs
	}

	It("programs window 0 and powers the card", func() {
		newController().Enable(exca.CommonMemory)

		regs := snapshot()
		Expect(regs.MWP0).To(Equal(uint8(0xFD)))
		Expect(regs.MWO0).To(Equal(uint16(0x8000)))
		Expect(regs.MWS0).To(Equal(uint16(0x0400)))
		Expect(regs.MWE0).To(Equal(uint16(0x0500)))
		Expect(regs.AWEN).To(Equal(uint8(0x01)))
		Expect(regs.PCTRL).To(Equal(uint8(0x90)))
	})

	It("writes page and offset before the address range, and enables last", func() {
		newController().Enable(exca.AttributeMemory)

		var order []string
		for _, e := range hook.AllEntries() {
			if e.Message == "Register write" {
				order = append(order, e.Data["register"].(string))
			}
		}

		Expect(order).To(Equal([]string{"MWP0", "MWO0", "MWS0", "MWE0", "AWEN", "PCTRL"}))
	})

	It("returns AWEN and PCTRL to zero after enable and disable", func() {
		c := newController()
		c.Enable(exca.CommonMemory)
		c.Disable()

		regs := snapshot()
		Expect(regs.AWEN).To(BeZero())
		Expect(regs.PCTRL).To(BeZero())
	})

	It("leaves the other address window enables alone", func() {
		session.Registers().Write8(exca.AWEN, exca.AWENIOWindow0|exca.AWENMemoryWindow(2))

		c := newController()
		c.Enable(exca.CommonMemory)
		Expect(snapshot().AWEN).To(Equal(exca.AWENIOWindow0 | exca.AWENMemoryWindow(2) | exca.AWENMemoryWindow0))

		c.Disable()
		Expect(snapshot().AWEN).To(Equal(exca.AWENIOWindow0 | exca.AWENMemoryWindow(2)))
	})

	It("differs between attribute and common space by exactly one MWO0 bit", func() {
		c := newController()

		c.Enable(exca.CommonMemory)
		common := snapshot()
		c.Disable()

		c.Enable(exca.AttributeMemory)
		attr := snapshot()

		Expect(bits.OnesCount16(attr.MWO0 ^ common.MWO0)).To(Equal(1))
		Expect(attr.MWO0 &^ common.MWO0).To(Equal(exca.MWOAttribute))

		attr.MWO0 = common.MWO0
		Expect(attr).To(Equal(common))
	})

	It("waits the settle delay", func() {
		start := time.Now()
		Expect(newController().Settle(context.Background())).To(Succeed())
		Expect(time.Since(start)).To(BeNumerically(">=", cfg.Window.Settle))
	})

	It("stops waiting when the context is cancelled", func() {
		cfg.Window.Settle = time.Hour

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Expect(newController().Settle(ctx)).To(MatchError(context.Canceled))
	})
})
