package flow

import (
	"io/ioutil"
	"log"
	"os"
)

// PrintDebugInfo gates verbose tracing of block-graph edge mutations.
var PrintDebugInfo = false

var logger *log.Logger

func init() {
	w := ioutil.Discard
	if PrintDebugInfo {
		w = os.Stderr
	}
	logger = log.New(w, "", log.Lshortfile)
}
