//go:build linux || darwin || freebsd || netbsd || openbsd

package securemem

import "golang.org/x/sys/unix"

func lock(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	return unix.Mlock(b) == nil
}

func unlock(b []byte) {
	_ = unix.Munlock(b)
}
