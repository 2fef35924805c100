package power

import (
	"github.com/shirou/gopsutil/v4/cpu"
)

// CPUReader estimates CPU power as overall utilization times the configured
// TDP. Utilization is the delta since the previous call, which matches the
// sampler's tick cadence.
type CPUReader struct {
	tdpWatts float64
}

func NewCPUReader(tdpWatts float64) *CPUReader {
	return &CPUReader{tdpWatts: tdpWatts}
}

func (r *CPUReader) Name() string {
	return "cpu"
}

func (r *CPUReader) Watts() (float64, error) {
	percentages, err := cpu.Percent(0, false)
	if err != nil {
		return 0, err
	}

	var overall float64
	if len(percentages) > 0 {
		overall = percentages[0]
	}

	return overall / 100.0 * r.tdpWatts, nil
}
