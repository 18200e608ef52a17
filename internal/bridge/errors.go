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
	"errors"
	"fmt"
	"syscall"
)

// ErrorKind classifies a failure to establish a bridge session.
type ErrorKind int

const (
	PermissionDenied ErrorKind = iota
	DeviceUnavailable
	MappingFailed
)

func (k ErrorKind) String() string {
	switch k {
	case PermissionDenied:
		return "permission denied"
	case DeviceUnavailable:
		return "device unavailable"
	case MappingFailed:
		return "mapping failed"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// SessionError reports the step of session setup that failed and the
// underlying OS error.
type SessionError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *SessionError) Error() string {
	if e.Op == "" {
		return e.Kind.String()
	}

	var errno syscall.Errno
	if errors.As(e.Err, &errno) {
		return fmt.Sprintf("%s: %v (errno %d)", e.Op, e.Err, int(errno))
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }

// Is matches any SessionError of the same kind, so callers can test
// against the sentinel values below.
func (e *SessionError) Is(target error) bool {
	t, ok := target.(*SessionError)
	return ok && t.Op == "" && t.Kind == e.Kind
}

var (
	ErrPermissionDenied  = &SessionError{Kind: PermissionDenied}
	ErrDeviceUnavailable = &SessionError{Kind: DeviceUnavailable}
	ErrMappingFailed     = &SessionError{Kind: MappingFailed}
)

func newOpenError(path string, err error) *SessionError {
	kind := DeviceUnavailable
	if errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPERM) {
		kind = PermissionDenied
	}
	return &SessionError{Kind: kind, Op: fmt.Sprintf("unable to open %s", path), Err: err}
}

func newMapError(what string, base uint64, length int, err error) *SessionError {
	return &SessionError{
		Kind: MappingFailed,
		Op:   fmt.Sprintf("unable to map %s [%#x, %#x)", what, base, base+uint64(length)),
		Err:  err,
	}
}
