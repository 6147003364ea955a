//go:build unix

package spawn

import "syscall"

// detachAttr puts the child in a new session so closing the launcher's
// terminal does not send it SIGHUP.
func detachAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
