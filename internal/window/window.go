/*
 * Copyright 2026 Hewlett Packard Enterprise Development LP
 * Other additional copyright holders may be indicated within.
 *
 * The entirety of this work is licensed under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 *
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package window programs memory window 0 of an ExCA bridge so that the
// bridge's host aperture routes to the inserted card.
package window

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/NearNodeFlash/dumpcard/internal/bridge"
	"github.com/NearNodeFlash/dumpcard/internal/config"
	"github.com/NearNodeFlash/dumpcard/internal/exca"
)

// Index is the only memory window this package drives.
const Index = 0

// Programming holds the register values that route the aperture to the card.
type Programming struct {
	Page   uint8
	Offset uint16
	Start  uint16
	End    uint16
	Power  uint8
}

// NewProgramming derives window register values from the aperture
// placement. The page register takes host address bits 31..24, start and end
// take bits 23..12 of the first and one-past-last byte. The offset is zero
// with the window write protected; attribute space adds the REG bit.
func NewProgramming(cfg config.BridgeConfig, space exca.Space) Programming {
	end := cfg.ApertureBase + uint64(cfg.ApertureSize)

	p := Programming{
		Page:   uint8(cfg.ApertureBase >> 24),
		Offset: exca.MWOWriteProtect,
		Start:  uint16(cfg.ApertureBase>>exca.PageShift) & exca.MWSAddressMask,
		End:    uint16(end>>exca.PageShift) & exca.MWEAddressMask,
		Power:  exca.PCTRLCardOn,
	}

	if space == exca.AttributeMemory {
		p.Offset |= exca.MWOAttribute
	}

	return p
}

// Controller sequences the window registers of a live session.
type Controller struct {
	session *bridge.Session
	bridge  config.BridgeConfig
	settle  time.Duration
	log     *log.Entry
}

func New(s *bridge.Session, cfg *config.ConfigFile, logger *log.Entry) *Controller {
	return &Controller{
		session: s,
		bridge:  cfg.Bridge,
		settle:  cfg.Window.Settle,
		log:     logger,
	}
}

// Enable routes the aperture to the requested card space and powers the
// card. Page and offset are written before start and end, and the window is
// only enabled once all four are coherent. Callers must Settle before
// reading the aperture.
func (c *Controller) Enable(space exca.Space) {
	p := NewProgramming(c.bridge, space)
	w := exca.Window(Index)
	regs := c.session.Registers()

	c.log.WithField("space", space).Debug("Enabling memory window")

	c.write(regs, w.Page, uint16(p.Page))
	c.write(regs, w.Offset, p.Offset)
	c.write(regs, w.Start, p.Start)
	c.write(regs, w.End, p.End)
	c.write(regs, exca.AWEN, uint16(regs.Read8(exca.AWEN)|exca.AWENMemoryWindow(Index)))
	c.write(regs, exca.PCTRL, uint16(p.Power))
}

// Settle waits for the card to power up and the window to latch.
func (c *Controller) Settle(ctx context.Context) error {
	t := time.NewTimer(c.settle)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("window settle: %w", ctx.Err())
	case <-t.C:
		return nil
	}
}

// Disable turns the window off and removes card power.
func (c *Controller) Disable() {
	regs := c.session.Registers()

	c.log.Debug("Disabling memory window")

	c.write(regs, exca.AWEN, uint16(regs.Read8(exca.AWEN)&^exca.AWENMemoryWindow(Index)))
	c.write(regs, exca.PCTRL, 0)
}

func (c *Controller) write(regs *exca.Block, reg exca.Register, v uint16) {
	regs.Write(reg, v)
	c.log.WithFields(log.Fields{
		"register": reg.Name,
		"value":    fmt.Sprintf("%#0*x", reg.Width*2, v),
	}).Debug("Register write")
}
