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

package exca

// Registers is the decoded form of the ExCA block. Field order and widths
// follow the hardware exactly; structex packs the fields without padding.
type Registers struct {
	IDR   uint8
	ISR   uint8
	PCTRL uint8
	IGC   uint8
	CSC   uint8
	CSCI  uint8
	AWEN  uint8
	IOWC  uint8
	IOWS0 uint16
	IOWE0 uint16
	IOWS1 uint16
	IOWE1 uint16

	MWS0       uint16
	MWE0       uint16
	MWO0       uint16
	CDC        uint8
	Reserved23 uint8

	MWS1       uint16
	MWE1       uint16
	MWO1       uint16
	GC         uint8
	Reserved31 uint8

	MWS2       uint16
	MWE2       uint16
	MWO2       uint16
	Reserved38 [2]uint8

	MWS3       uint16
	MWE3       uint16
	MWO3       uint16
	Reserved46 [2]uint8

	MWS4  uint16
	MWE4  uint16
	MWO4  uint16
	IOWO0 uint16
	IOWO1 uint16

	Reserved58 [6]uint8

	MWP0 uint8
	MWP1 uint8
	MWP2 uint8
	MWP3 uint8
	MWP4 uint8
}

// SocketSize is the size of the CardBus socket controller block.
const SocketSize = 0x24

// SocketRegisters is the CardBus socket controller block at the start of
// the bridge register page.
type SocketRegisters struct {
	Event    uint32
	Mask     uint32
	State    uint32
	Force    uint32
	Control  uint32
	Reserved [3]uint32
	Power    uint32
}

// Socket register offsets within the socket controller block.
const (
	SocketEvent   = 0x00
	SocketMask    = 0x04
	SocketState   = 0x08
	SocketForce   = 0x0C
	SocketControl = 0x10
	SocketPower   = 0x20
)
