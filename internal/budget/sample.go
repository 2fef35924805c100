package budget

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// EnergySample is a point-in-time view of the bucket and the sampler state
// behind it. Timestamps are epoch seconds.
type EnergySample struct {
	Timestamp    float64 `json:"ts"`
	CPUWatts     float64 `json:"cpu_w"`
	GPUWatts     float64 `json:"gpu_w"`
	IdleCPUWatts float64 `json:"idle_cpu_w"`
	IdleGPUWatts float64 `json:"idle_gpu_w"`
	NetWatts     float64 `json:"net_w"`
	BucketJoules float64 `json:"bucket_j"`
	Hash         string  `json:"hash"`
}

// sampleHash binds a sample to its timestamp and bucket level so a consumer
// can detect stale or replayed samples. It is an integrity check, not a
// security measure.
func sampleHash(ts, bucketJoules float64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%v:%v", ts, bucketJoules)))
	return hex.EncodeToString(sum[:])
}

// Verify recomputes the integrity hash from the sample's own fields.
func (s EnergySample) Verify() bool {
	return s.Hash == sampleHash(s.Timestamp, s.BucketJoules)
}
