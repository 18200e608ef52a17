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

// Package bridge owns the privileged mappings of a PCI-to-PCMCIA bridge:
// its register page (socket controller followed by the ExCA block) and the
// host aperture that a memory window routes to the card.
package bridge

import (
	"errors"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/NearNodeFlash/dumpcard/internal/config"
	"github.com/NearNodeFlash/dumpcard/internal/exca"
	"github.com/NearNodeFlash/dumpcard/internal/mmio"
)

// Session is the single owner of the bridge mappings. It is not safe for
// concurrent use.
type Session struct {
	dev MemoryDeviceInterface
	cfg config.BridgeConfig
	log *log.Entry

	regsMem     []byte
	apertureMem []byte

	socket   *exca.SocketBlock
	regs     *exca.Block
	aperture *mmio.View
}

// Open maps the register page and the aperture described by cfg. On error
// nothing remains mapped or open.
func Open(ctrl MemoryControllerInterface, cfg config.BridgeConfig, logger *log.Entry) (*Session, error) {
	dev, err := ctrl.Open(cfg.Device)
	if err != nil {
		return nil, newOpenError(cfg.Device, err)
	}

	s := &Session{
		dev: dev,
		cfg: cfg,
		log: logger,
	}

	if err := s.mapAll(); err != nil {
		if cerr := s.Close(); cerr != nil {
			logger.WithError(cerr).Warn("Failed to release partial bridge mapping")
		}
		return nil, err
	}

	s.log.WithFields(log.Fields{
		"registers": hex(cfg.RegisterBase),
		"aperture":  hex(cfg.ApertureBase),
		"size":      cfg.ApertureSize,
	}).Info("Bridge memory mapped")

	return s, nil
}

func (s *Session) mapAll() (err error) {
	cfg := &s.cfg

	s.regsMem, err = s.dev.Map(cfg.RegisterBase, cfg.RegisterSize)
	if err != nil {
		s.regsMem = nil
		return newMapError("bridge registers", cfg.RegisterBase, cfg.RegisterSize, err)
	}

	s.apertureMem, err = s.dev.Map(cfg.ApertureBase, cfg.ApertureSize)
	if err != nil {
		s.apertureMem = nil
		return newMapError("card aperture", cfg.ApertureBase, cfg.ApertureSize, err)
	}

	page := mmio.NewRegion(s.regsMem)
	s.socket = exca.NewSocketBlock(page.Sub(0, exca.SocketSize))
	s.regs = exca.NewBlock(page.Sub(cfg.ExcaOffset, exca.Size))
	s.aperture = mmio.NewRegion(s.apertureMem).ReadOnly()

	return nil
}

// Registers returns the ExCA register view. It panics once the session is
// closed.
func (s *Session) Registers() *exca.Block {
	if s.regs == nil {
		panic("bridge: register access on a closed session")
	}
	return s.regs
}

// Socket returns the socket controller register view.
func (s *Session) Socket() *exca.SocketBlock {
	if s.socket == nil {
		panic("bridge: register access on a closed session")
	}
	return s.socket
}

// Aperture returns the read-only host view of the card window.
func (s *Session) Aperture() *mmio.View {
	if s.aperture == nil {
		panic("bridge: aperture access on a closed session")
	}
	return s.aperture
}

// Close unmaps both regions and closes the device. Calling Close again is a
// no-op.
func (s *Session) Close() error {
	if s.dev == nil {
		return nil
	}

	s.socket, s.regs, s.aperture = nil, nil, nil

	var errs []error
	if s.apertureMem != nil {
		errs = append(errs, s.dev.Unmap(s.apertureMem))
		s.apertureMem = nil
	}
	if s.regsMem != nil {
		errs = append(errs, s.dev.Unmap(s.regsMem))
		s.regsMem = nil
	}
	errs = append(errs, s.dev.Close())
	s.dev = nil

	return errors.Join(errs...)
}

func hex(v uint64) string { return "0x" + strconv.FormatUint(v, 16) }
