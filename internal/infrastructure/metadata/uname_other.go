//go:build !(linux || darwin || freebsd || netbsd || openbsd || windows)

package metadata

import "runtime"

func uname() (unameResult, error) {
	return unameResult{sysname: platformName(runtime.GOOS)}, nil
}
