//go:build linux

package event

import (
	"context"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// futexEvent implements eventImpl on top of a raw futex word. Avoiding
// a channel or sync.Cond here matters: the hot paths in
// portal.Endpoint.Write and Notify must be able to test "is anyone
// waiting" and wake them with a single syscall, not a runtime-managed
// channel send.
type futexEvent struct {
	state uint32
}

func newEventImpl() eventImpl {
	return &futexEvent{}
}

const (
	futexWaitPrivate = unix.FUTEX_WAIT | unix.FUTEX_PRIVATE_FLAG
	futexWakePrivate = unix.FUTEX_WAKE | unix.FUTEX_PRIVATE_FLAG
)

func (e *futexEvent) close() {}

func (e *futexEvent) set() {
	if atomic.SwapUint32(&e.state, 1) == 0 {
		e.futexWake()
	}
}

func (e *futexEvent) clear() {
	atomic.StoreUint32(&e.state, 0)
}

func (e *futexEvent) futexWake() {
	_, _, _ = unix.Syscall(unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(&e.state)),
		uintptr(futexWakePrivate),
		1)
}

// pollInterval bounds how long a single FUTEX_WAIT call blocks before
// wait rechecks ctx; it is not a polling sleep, the futex itself
// still parks the goroutine's OS thread for up to this long per call.
var pollInterval = unix.NsecToTimespec(int64(50 * 1e6))

func (e *futexEvent) wait(ctx context.Context) error {
	for atomic.LoadUint32(&e.state) == 0 {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
		ts := pollInterval
		_, _, errno := unix.Syscall6(unix.SYS_FUTEX,
			uintptr(unsafe.Pointer(&e.state)),
			uintptr(futexWaitPrivate),
			0,
			uintptr(unsafe.Pointer(&ts)),
			0, 0)
		switch errno {
		case 0, unix.EAGAIN, unix.EINTR, unix.ETIMEDOUT:
			// EAGAIN: state changed to 1 between the Load above and
			// the syscall; ETIMEDOUT/EINTR: recheck and retry.
		default:
			return errno
		}
	}
	return nil
}
