package funcdata

import (
	"io/ioutil"
	"log"
	"os"
)

// PrintDebugInfo gates verbose tracing of function-level lifecycle
// events (structuring, encode, decode), the same way ir.PrintDebugInfo
// and flow.PrintDebugInfo gate their packages.
var PrintDebugInfo = false

var logger *log.Logger

func init() {
	w := ioutil.Discard
	if PrintDebugInfo {
		w = os.Stderr
	}
	logger = log.New(w, "", log.Lshortfile)
}
