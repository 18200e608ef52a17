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
	"golang.org/x/sys/unix"
)

// DevMemController maps physical memory through a /dev/mem style device.
type DevMemController struct{}

func NewDevMemController() MemoryControllerInterface {
	return &DevMemController{}
}

func (DevMemController) Open(path string) (MemoryDeviceInterface, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_SYNC|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	return &DevMemDevice{fd: fd}, nil
}

type DevMemDevice struct {
	fd int
}

func (d *DevMemDevice) Map(base uint64, length int) ([]byte, error) {
	return unix.Mmap(d.fd, int64(base), length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}

func (d *DevMemDevice) Unmap(mem []byte) error {
	return unix.Munmap(mem)
}

func (d *DevMemDevice) Close() error {
	return unix.Close(d.fd)
}
