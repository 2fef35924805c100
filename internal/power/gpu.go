package power

// GPUReader reads NVIDIA GPU power draw. This build does not link NVML, so
// the reader degrades gracefully: it reports unavailable and 0 W, and a
// machine with no readable GPU simply never accrues GPU charge.
type GPUReader struct {
	available bool
}

func NewGPUReader() *GPUReader {
	return &GPUReader{available: false}
}

func (r *GPUReader) Name() string {
	return "gpu"
}

func (r *GPUReader) Available() bool {
	return r.available
}

func (r *GPUReader) Watts() (float64, error) {
	return 0, nil
}

func (r *GPUReader) Close() error {
	return nil
}
