//go:build linux || darwin || freebsd || netbsd || openbsd

package metadata

import "golang.org/x/sys/unix"

func uname() (unameResult, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return unameResult{}, err
	}
	return unameResult{
		sysname: unix.ByteSliceToString(uts.Sysname[:]),
		release: unix.ByteSliceToString(uts.Release[:]),
		version: unix.ByteSliceToString(uts.Version[:]),
		machine: unix.ByteSliceToString(uts.Machine[:]),
	}, nil
}
