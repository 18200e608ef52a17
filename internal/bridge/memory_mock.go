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

package bridge

import (
	"fmt"
	"sync"
)

// MockMemoryController simulates physical memory with plain byte slices.
// Memory persists across opens so a test can preload card contents or
// inspect register state after a session is closed.
type MockMemoryController struct {
	// OpenError, when set, is returned by Open.
	OpenError error
	// MapErrors fails Map for the listed base addresses.
	MapErrors map[uint64]error

	mutex  sync.Mutex
	memory map[uint64][]byte

	Opens  int
	Maps   int
	Unmaps int
	Closes int
}

func NewMockMemoryController() *MockMemoryController {
	return &MockMemoryController{
		MapErrors: make(map[uint64]error),
		memory:    make(map[uint64][]byte),
	}
}

// Memory returns the backing store for length bytes at base, allocating it
// on first use.
func (c *MockMemoryController) Memory(base uint64, length int) []byte {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.memoryLocked(base, length)
}

func (c *MockMemoryController) memoryLocked(base uint64, length int) []byte {
	mem, ok := c.memory[base]
	if !ok || len(mem) < length {
		grown := make([]byte, length)
		copy(grown, mem)
		c.memory[base] = grown
		mem = grown
	}
	return mem[:length:length]
}

// Outstanding reports mappings and opens that were never released.
func (c *MockMemoryController) Outstanding() (maps int, opens int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.Maps - c.Unmaps, c.Opens - c.Closes
}

func (c *MockMemoryController) Open(path string) (MemoryDeviceInterface, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.OpenError != nil {
		return nil, c.OpenError
	}

	c.Opens++
	return &MockMemoryDevice{ctrl: c, path: path, open: true}, nil
}

type MockMemoryDevice struct {
	ctrl *MockMemoryController
	path string
	open bool
}

func (d *MockMemoryDevice) Map(base uint64, length int) ([]byte, error) {
	c := d.ctrl
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !d.open {
		return nil, fmt.Errorf("%s: device closed", d.path)
	}
	if err, ok := c.MapErrors[base]; ok {
		return nil, err
	}

	c.Maps++
	return c.memoryLocked(base, length), nil
}

func (d *MockMemoryDevice) Unmap(mem []byte) error {
	d.ctrl.mutex.Lock()
	defer d.ctrl.mutex.Unlock()

	d.ctrl.Unmaps++
	return nil
}

func (d *MockMemoryDevice) Close() error {
	d.ctrl.mutex.Lock()
	defer d.ctrl.mutex.Unlock()

	if !d.open {
		return fmt.Errorf("%s: already closed", d.path)
	}
	d.open = false
	d.ctrl.Closes++
	return nil
}
