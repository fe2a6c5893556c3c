//go:build !windows

package agentcli

import "syscall"

// terminateSignal is the graceful-termination signal sent during the
// terminate stage of Transport.Close's teardown sequence, before
// escalating to Kill.
var terminateSignal = syscall.SIGTERM
