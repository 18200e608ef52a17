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

// Package exca describes the Exchangeable Card Architecture register set of
// a PCI-to-PCMCIA bridge and the CardBus socket controller block that
// precedes it in the bridge's register page.
package exca

import "fmt"

// Register identifies one ExCA register by its byte offset and width within
// the ExCA block.
type Register struct {
	Name   string
	Offset int
	Width  int
}

func (r Register) String() string { return r.Name }

const (
	// Size is the number of bytes spanned by the ExCA registers in use.
	Size = 0x45

	// NumMemoryWindows is the number of memory windows the block defines.
	NumMemoryWindows = 5
)

var (
	IDR   = Register{"IDR", 0x00, 1}
	ISR   = Register{"ISR", 0x01, 1}
	PCTRL = Register{"PCTRL", 0x02, 1}
	IGC   = Register{"IGC", 0x03, 1}
	CSC   = Register{"CSC", 0x04, 1}
	CSCI  = Register{"CSCI", 0x05, 1}
	AWEN  = Register{"AWEN", 0x06, 1}
	IOWC  = Register{"IOWC", 0x07, 1}
	IOWS0 = Register{"IOWS0", 0x08, 2}
	IOWE0 = Register{"IOWE0", 0x0A, 2}
	IOWS1 = Register{"IOWS1", 0x0C, 2}
	IOWE1 = Register{"IOWE1", 0x0E, 2}

	MWS0 = Register{"MWS0", 0x10, 2}
	MWE0 = Register{"MWE0", 0x12, 2}
	MWO0 = Register{"MWO0", 0x14, 2}
	CDC  = Register{"CDC", 0x16, 1}

	MWS1 = Register{"MWS1", 0x18, 2}
	MWE1 = Register{"MWE1", 0x1A, 2}
	MWO1 = Register{"MWO1", 0x1C, 2}
	GC   = Register{"GC", 0x1E, 1}

	MWS2 = Register{"MWS2", 0x20, 2}
	MWE2 = Register{"MWE2", 0x22, 2}
	MWO2 = Register{"MWO2", 0x24, 2}

	MWS3 = Register{"MWS3", 0x28, 2}
	MWE3 = Register{"MWE3", 0x2A, 2}
	MWO3 = Register{"MWO3", 0x2C, 2}

	MWS4  = Register{"MWS4", 0x30, 2}
	MWE4  = Register{"MWE4", 0x32, 2}
	MWO4  = Register{"MWO4", 0x34, 2}
	IOWO0 = Register{"IOWO0", 0x36, 2}
	IOWO1 = Register{"IOWO1", 0x38, 2}

	MWP0 = Register{"MWP0", 0x40, 1}
	MWP1 = Register{"MWP1", 0x41, 1}
	MWP2 = Register{"MWP2", 0x42, 1}
	MWP3 = Register{"MWP3", 0x43, 1}
	MWP4 = Register{"MWP4", 0x44, 1}
)

// Table lists every register in offset order.
var Table = []Register{
	IDR, ISR, PCTRL, IGC, CSC, CSCI, AWEN, IOWC,
	IOWS0, IOWE0, IOWS1, IOWE1,
	MWS0, MWE0, MWO0, CDC,
	MWS1, MWE1, MWO1, GC,
	MWS2, MWE2, MWO2,
	MWS3, MWE3, MWO3,
	MWS4, MWE4, MWO4, IOWO0, IOWO1,
	MWP0, MWP1, MWP2, MWP3, MWP4,
}

// MemoryWindow groups the four registers that describe one memory window.
type MemoryWindow struct {
	Start  Register
	End    Register
	Offset Register
	Page   Register
}

var MemoryWindows = [NumMemoryWindows]MemoryWindow{
	{MWS0, MWE0, MWO0, MWP0},
	{MWS1, MWE1, MWO1, MWP1},
	{MWS2, MWE2, MWO2, MWP2},
	{MWS3, MWE3, MWO3, MWP3},
	{MWS4, MWE4, MWO4, MWP4},
}

// Window returns the registers of memory window n.
func Window(n int) MemoryWindow {
	if n < 0 || n >= NumMemoryWindows {
		panic(fmt.Sprintf("exca: memory window %d out of range", n))
	}
	return MemoryWindows[n]
}

// AWEN - Address Window Enable
const (
	AWENMemoryWindow0 uint8 = 1 << 0
	AWENMemCS16       uint8 = 1 << 5
	AWENIOWindow0     uint8 = 1 << 6
	AWENIOWindow1     uint8 = 1 << 7
)

// AWENMemoryWindow returns the enable bit of memory window n.
func AWENMemoryWindow(n int) uint8 { return AWENMemoryWindow0 << uint(n) }

// PCTRL - Power Control
const (
	PCTRLVppMask      uint8 = 0x0F
	PCTRLPowerEnable  uint8 = 1 << 4
	PCTRLOutputEnable uint8 = 1 << 7

	// PCTRLCardOn applies Vcc and drives the card's outputs, which is what
	// a memory access requires.
	PCTRLCardOn = PCTRLOutputEnable | PCTRLPowerEnable
)

// MWS - Memory Window Start
const (
	MWSAddressMask uint16 = 0x0FFF
	MWSZeroWait    uint16 = 1 << 14
	MWSData16      uint16 = 1 << 15
)

// MWE - Memory Window End
const (
	MWEAddressMask uint16 = 0x0FFF
)

// MWO - Memory Window Offset
const (
	MWOAddressMask  uint16 = 0x3FFF
	MWOAttribute    uint16 = 1 << 14
	MWOWriteProtect uint16 = 1 << 15
)

// PageShift is the granularity of the start, end and offset registers.
const PageShift = 12
