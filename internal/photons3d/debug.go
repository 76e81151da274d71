//go:build debug
// +build debug

package photons3d

import (
	"fmt"
	"os"
	"sync"
	"time"
)

var debugMu sync.Mutex

func DebugLog(format string, args ...interface{}) {
	debugMu.Lock()
	defer debugMu.Unlock()
	fmt.Fprintf(os.Stderr, "[DEBUG %s] "+format+"\n", append([]interface{}{time.Now().Format("15:04:05.000")}, args...)...)
}

// seen holds the formats already printed by DebugLogOnce.
var seen sync.Map

// DebugLogOnce prints the first message of each format and drops the rest,
// so per-photon conditions do not flood the output.
func DebugLogOnce(format string, args ...interface{}) {
	if _, dup := seen.LoadOrStore(format, struct{}{}); dup {
		return
	}
	DebugLog(format, args...)
}
