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

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/HewlettPackard/structex"

	"github.com/NearNodeFlash/dumpcard/internal/mmio"
)

// Space selects which card address space a memory window routes to.
type Space int

const (
	CommonMemory Space = iota
	AttributeMemory
)

func (s Space) String() string {
	switch s {
	case CommonMemory:
		return "common"
	case AttributeMemory:
		return "attribute"
	}
	return fmt.Sprintf("Space(%d)", int(s))
}

// Block is a volatile typed view over a mapped ExCA register block.
type Block struct {
	r *mmio.Region
}

// NewBlock returns the ExCA view of r, which must cover at least Size bytes.
func NewBlock(r *mmio.Region) *Block {
	if r.Len() < Size {
		panic(fmt.Sprintf("exca: region of %#x bytes is smaller than the register block", r.Len()))
	}
	return &Block{r: r}
}

// Read returns the current value of reg, zero extended.
func (b *Block) Read(reg Register) uint16 {
	switch reg.Width {
	case 1:
		return uint16(b.r.Load8(reg.Offset))
	case 2:
		return b.r.Load16(reg.Offset)
	}
	panic(fmt.Sprintf("exca: register %s has unsupported width %d", reg.Name, reg.Width))
}

// Write stores v into reg. Byte wide registers take the low byte of v.
func (b *Block) Write(reg Register, v uint16) {
	switch reg.Width {
	case 1:
		b.r.Store8(reg.Offset, uint8(v))
	case 2:
		b.r.Store16(reg.Offset, v)
	default:
		panic(fmt.Sprintf("exca: register %s has unsupported width %d", reg.Name, reg.Width))
	}
}

func (b *Block) Read8(reg Register) uint8 { return uint8(b.Read(reg)) }

func (b *Block) Write8(reg Register, v uint8) { b.Write(reg, uint16(v)) }

// Snapshot decodes the whole block into a Registers value.
func (b *Block) Snapshot() (Registers, error) {
	var regs Registers
	buf := bytes.NewBuffer(b.r.Copy(0, Size))
	if err := structex.DecodeByteBuffer(buf, &regs); err != nil {
		return regs, fmt.Errorf("decode exca registers: %w", err)
	}
	return regs, nil
}

// SocketBlock is a volatile view over the CardBus socket controller block.
type SocketBlock struct {
	r *mmio.Region
}

func NewSocketBlock(r *mmio.Region) *SocketBlock {
	if r.Len() < SocketSize {
		panic(fmt.Sprintf("exca: region of %#x bytes is smaller than the socket block", r.Len()))
	}
	return &SocketBlock{r: r}
}

func (s *SocketBlock) Read(off int) uint32 { return s.r.Load32(off) }

// Snapshot reads the socket block with 32-bit accesses and decodes it.
func (s *SocketBlock) Snapshot() (SocketRegisters, error) {
	var regs SocketRegisters

	raw := make([]byte, SocketSize)
	for off := 0; off < SocketSize; off += 4 {
		binary.LittleEndian.PutUint32(raw[off:], s.r.Load32(off))
	}

	if err := structex.DecodeByteBuffer(bytes.NewBuffer(raw), &regs); err != nil {
		return regs, fmt.Errorf("decode socket registers: %w", err)
	}
	return regs, nil
}
