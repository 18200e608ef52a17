package dump_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"syscall"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/NearNodeFlash/dumpcard/internal/bridge"
	"github.com/NearNodeFlash/dumpcard/internal/config"
	"github.com/NearNodeFlash/dumpcard/internal/dump"
	"github.com/NearNodeFlash/dumpcard/internal/exca"
)

var _ = Describe("Dump", func() {

	var (
		ctrl   *bridge.MockMemoryController
		cfg    *config.ConfigFile
		logger *logrus.Logger
		hook   *logtest.Hook
		out    bytes.Buffer
	)

	BeforeEach(func() {
		var err error
		cfg, err = config.Load("")
		Expect(err).NotTo(HaveOccurred())

		ctrl = bridge.NewMockMemoryController()
		logger, hook = logtest.NewNullLogger()
		out.Reset()

		ap := ctrl.Memory(cfg.Bridge.ApertureBase, cfg.Bridge.ApertureSize)
		binary.LittleEndian.PutUint16(ap[0:], 0x1234)
		binary.LittleEndian.PutUint16(ap[2:], 0xABCD)
	})

	excaRegisters := func() []byte {
		page := ctrl.Memory(cfg.Bridge.RegisterBase, cfg.Bridge.RegisterSize)
		return page[cfg.Bridge.ExcaOffset : cfg.Bridge.ExcaOffset+exca.Size]
	}

	It("dumps common memory low byte first", func() {
		res, err := dump.Run(context.Background(), ctrl, cfg, exca.CommonMemory, &out, logger)
		Expect(err).NotTo(HaveOccurred())

		Expect(res.Bytes).To(Equal(int64(1048576)))
		Expect(out.Len()).To(Equal(1048576))
		Expect(out.Bytes()[:4]).To(Equal([]byte{0x34, 0x12, 0xCD, 0xAB}))
	})

	It("dumps the low byte of each attribute memory slot", func() {
		res, err := dump.Run(context.Background(), ctrl, cfg, exca.AttributeMemory, &out, logger)
		Expect(err).NotTo(HaveOccurred())

		Expect(res.Bytes).To(Equal(int64(524288)))
		Expect(out.Len()).To(Equal(524288))
		Expect(out.Bytes()[:2]).To(Equal([]byte{0x34, 0xCD}))
	})

	It("disables the window and releases the bridge afterwards", func() {
		_, err := dump.Run(context.Background(), ctrl, cfg, exca.AttributeMemory, &out, logger)
		Expect(err).NotTo(HaveOccurred())

		regs := excaRegisters()
		Expect(regs[exca.AWEN.Offset]).To(BeZero())
		Expect(regs[exca.PCTRL.Offset]).To(BeZero())
		Expect(regs[exca.MWP0.Offset]).To(Equal(uint8(0xFD)))
		Expect(binary.LittleEndian.Uint16(regs[exca.MWO0.Offset:])).To(Equal(uint16(0xC000)))

		maps, opens := ctrl.Outstanding()
		Expect(maps).To(BeZero())
		Expect(opens).To(BeZero())
	})

	It("reports the initial register state", func() {
		regs := excaRegisters()
		regs[exca.IDR.Offset] = 0x84
		regs[exca.PCTRL.Offset] = 0x10

		_, err := dump.Run(context.Background(), ctrl, cfg, exca.CommonMemory, &out, logger)
		Expect(err).NotTo(HaveOccurred())

		var initial *logrus.Entry
		for _, e := range hook.AllEntries() {
			if e.Message == "Initial ExCA registers" {
				initial = e
			}
		}
		Expect(initial).NotTo(BeNil())
		Expect(initial.Data).To(HaveKeyWithValue("IDR", "84"))
		Expect(initial.Data).To(HaveKeyWithValue("PCTRL", "10"))
		Expect(initial.Data).To(HaveKeyWithValue("MWO0", "0000"))

		Expect(hook.LastEntry().Message).To(Equal("Card memory dumped"))
	})

	It("fails without touching a register when the device cannot be opened", func() {
		ctrl.OpenError = syscall.EACCES

		_, err := dump.Run(context.Background(), ctrl, cfg, exca.CommonMemory, &out, logger)
		Expect(errors.Is(err, bridge.ErrPermissionDenied)).To(BeTrue())

		Expect(ctrl.Maps).To(BeZero())
		Expect(excaRegisters()).To(Equal(make([]byte, exca.Size)))
		Expect(out.Len()).To(BeZero())
	})

	It("fails when the aperture cannot be mapped", func() {
		ctrl.MapErrors[cfg.Bridge.ApertureBase] = syscall.EINVAL

		_, err := dump.Run(context.Background(), ctrl, cfg, exca.CommonMemory, &out, logger)
		Expect(errors.Is(err, bridge.ErrMappingFailed)).To(BeTrue())
		Expect(excaRegisters()).To(Equal(make([]byte, exca.Size)))

		maps, opens := ctrl.Outstanding()
		Expect(maps).To(BeZero())
		Expect(opens).To(BeZero())
	})

	It("powers the card down when the output fails", func() {
		w := &brokenWriter{}

		_, err := dump.Run(context.Background(), ctrl, cfg, exca.CommonMemory, w, logger)
		Expect(err).To(MatchError(io.ErrClosedPipe))

		regs := excaRegisters()
		Expect(regs[exca.AWEN.Offset]).To(BeZero())
		Expect(regs[exca.PCTRL.Offset]).To(BeZero())
	})

	It("powers the card down when settling is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := dump.Run(ctx, ctrl, cfg, exca.CommonMemory, &out, logger)
		Expect(err).To(MatchError(context.Canceled))
		Expect(out.Len()).To(BeZero())

		regs := excaRegisters()
		Expect(regs[exca.AWEN.Offset]).To(BeZero())
		Expect(regs[exca.PCTRL.Offset]).To(BeZero())
	})
})

type brokenWriter struct{}

func (*brokenWriter) Write(p []byte) (int, error) { return 0, io.ErrClosedPipe }
