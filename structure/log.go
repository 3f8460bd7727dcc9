// Package structure turns a flat list of flow.Block leaves into a
// single hierarchical BlockGraph: spanning tree and edge
// classification, dominators, loop-edge marking, the greedy collapse
// rules, goto introduction, and the two post-processing passes.
package structure

import (
	"io/ioutil"
	"log"
	"os"
)

// PrintDebugInfo gates verbose tracing of the structuring fixed-point
// loop, following the same per-package debug logger pattern used
// throughout this module.
var PrintDebugInfo = false

var logger *log.Logger

func init() {
	w := ioutil.Discard
	if PrintDebugInfo {
		w = os.Stderr
	}
	logger = log.New(w, "", log.Lshortfile)
}
