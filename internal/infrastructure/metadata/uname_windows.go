//go:build windows

package metadata

import (
	"fmt"

	"golang.org/x/sys/windows"
)

func uname() (unameResult, error) {
	v := windows.RtlGetVersion()
	return unameResult{
		sysname: "Windows",
		release: fmt.Sprintf("%d", v.MajorVersion),
		version: fmt.Sprintf("%d.%d.%d", v.MajorVersion, v.MinorVersion, v.BuildNumber),
	}, nil
}
