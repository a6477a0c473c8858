// Package version reports the build version. Release builds set Version with
// -ldflags "-X github.com/bankingrestapi/bank/internal/version.Version=v1.2.3".
package version

import "runtime/debug"

var Version = "dev"

func String() string {
	if Version != "dev" {
		return Version
	}

	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return Version
	}
	return info.Main.Version
}
