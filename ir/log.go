package ir

import (
	"io/ioutil"
	"log"
	"os"
)

// PrintDebugInfo gates verbose tracing of varnode bank and op-graph
// mutations, the way wasm.PrintDebugInfo/validate.PrintDebugInfo gate
// their packages.
var PrintDebugInfo = false

var logger *log.Logger

func init() {
	w := ioutil.Discard
	if PrintDebugInfo {
		w = os.Stderr
	}
	logger = log.New(w, "", log.Lshortfile)
}
