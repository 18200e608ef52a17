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

// Package dump reads a card's attribute or common memory through an ExCA
// bridge, from opening the physical mappings through to powering the card
// back down.
package dump

import (
	"context"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/NearNodeFlash/dumpcard/internal/aperture"
	"github.com/NearNodeFlash/dumpcard/internal/bridge"
	"github.com/NearNodeFlash/dumpcard/internal/config"
	"github.com/NearNodeFlash/dumpcard/internal/exca"
	"github.com/NearNodeFlash/dumpcard/internal/logging"
	"github.com/NearNodeFlash/dumpcard/internal/window"
)

// Result describes a completed dump.
type Result struct {
	Space exca.Space
	Bytes int64
	CRC8  uint8
}

// Run dumps the selected card space to out. An error opening the bridge is
// returned before any register is touched. Once the window has been enabled
// it is always disabled again before Run returns.
func Run(ctx context.Context, ctrl bridge.MemoryControllerInterface, cfg *config.ConfigFile, space exca.Space, out io.Writer, logger *log.Logger) (Result, error) {
	res := Result{Space: space}

	if space == exca.AttributeMemory {
		logger.Info("Reading attribute memory")
	}

	session, err := bridge.Open(ctrl, cfg.Bridge, logging.Component(logger, "bridge"))
	if err != nil {
		return res, err
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.WithError(err).Warn("Failed to release bridge mappings")
		}
	}()

	if err := report(session, logger); err != nil {
		return res, err
	}

	win := window.New(session, cfg, logging.Component(logger, "window"))
	win.Enable(space)
	defer win.Disable()

	if err := win.Settle(ctx); err != nil {
		return res, err
	}

	res.Bytes, res.CRC8, err = aperture.Copy(out, session.Aperture(), space)
	if err != nil {
		return res, fmt.Errorf("write card memory after %d bytes: %w", res.Bytes, err)
	}

	logger.WithFields(log.Fields{
		"space": space,
		"bytes": res.Bytes,
		"crc8":  fmt.Sprintf("%02x", res.CRC8),
	}).Info("Card memory dumped")

	return res, nil
}

// report logs the register state found before the window is programmed.
func report(session *bridge.Session, logger *log.Logger) error {
	regs, err := session.Registers().Snapshot()
	if err != nil {
		return err
	}

	logger.WithFields(log.Fields{
		"IDR":   fmt.Sprintf("%02x", regs.IDR),
		"ISR":   fmt.Sprintf("%02x", regs.ISR),
		"AWEN":  fmt.Sprintf("%02x", regs.AWEN),
		"MWS0":  fmt.Sprintf("%04x", regs.MWS0),
		"MWE0":  fmt.Sprintf("%04x", regs.MWE0),
		"MWO0":  fmt.Sprintf("%04x", regs.MWO0),
		"MWP0":  fmt.Sprintf("%02x", regs.MWP0),
		"PCTRL": fmt.Sprintf("%02x", regs.PCTRL),
	}).Info("Initial ExCA registers")

	if logger.IsLevelEnabled(log.DebugLevel) {
		sock, err := session.Socket().Snapshot()
		if err != nil {
			return err
		}
		logger.WithFields(log.Fields{
			"event":   fmt.Sprintf("%08x", sock.Event),
			"mask":    fmt.Sprintf("%08x", sock.Mask),
			"state":   fmt.Sprintf("%08x", sock.State),
			"control": fmt.Sprintf("%08x", sock.Control),
			"power":   fmt.Sprintf("%08x", sock.Power),
		}).Debug("Socket controller")
	}

	return nil
}
