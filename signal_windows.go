//go:build windows

package agentcli

import "os"

// terminateSignal has no direct Windows equivalent; os.Kill is the best
// available approximation for the terminate stage of Transport.Close.
var terminateSignal = os.Kill
