package manager

import (
	"os"
	"runtime"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// systemUnderLoad reports whether the 1-minute load average exceeds
// the number of available CPUs, the same advisory check the source
// performs before acquiring its lock -- it only warns, never aborts.
// /proc/loadavg is read directly rather than through a wrapping
// library: it's a single one-line parse with no Windows/macOS
// equivalent worth pulling a dependency in for, so Run degrades to a
// silent no-op off Linux.
func systemUnderLoad() (bool, float64) {
	raw, err := os.ReadFile("/proc/loadavg")
	if err != nil {
		log.WithError(err).Debug("could not read /proc/loadavg, skipping load check")
		return false, 0
	}
	fields := strings.Fields(string(raw))
	if len(fields) == 0 {
		return false, 0
	}
	load, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return false, 0
	}
	return load > float64(runtime.NumCPU()), load
}
