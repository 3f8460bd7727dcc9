package symbol

import (
	"io/ioutil"
	"log"
	"os"
)

// PrintDebugInfo gates verbose tracing of scope attach/detach and
// symbol resolution, the way ir.PrintDebugInfo/flow.PrintDebugInfo
// gate their own packages.
var PrintDebugInfo = false

var logger *log.Logger

func init() {
	w := ioutil.Discard
	if PrintDebugInfo {
		w = os.Stderr
	}
	logger = log.New(w, "", log.Lshortfile)
}
