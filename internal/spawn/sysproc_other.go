//go:build !unix

package spawn

import "syscall"

func detachAttr() *syscall.SysProcAttr {
	return nil
}
