package tracker

import "time"

// Statistics is a read-only snapshot of the client's request counters,
// taken at the end of a run for reporting.
type Statistics struct {
	TotalRequests   int64         `json:"totalRequests"`
	FailedRequests  int64         `json:"failedRequests"`
	SuccessRate     float64       `json:"successRate"`
	Elapsed         time.Duration `json:"elapsed"`
	AverageRPS      float64       `json:"averageRPS"`
	RateLimitHits   int           `json:"rateLimitHits"`
	CurrentRate     float64       `json:"currentRate"`
	CurrentInterval time.Duration `json:"currentInterval"`
}

// Statistics snapshots the counters accumulated since the client was created.
func (c *Client) Statistics() Statistics {
	total := c.totalRequests.Load()
	failed := c.failedRequests.Load()
	elapsed := time.Since(c.start)

	successRate := 100.0
	if total > 0 {
		successRate = float64(total-failed) / float64(total) * 100
	}
	averageRPS := 0.0
	if seconds := elapsed.Seconds(); seconds > 0 {
		averageRPS = float64(total) / seconds
	}
	return Statistics{
		TotalRequests:   total,
		FailedRequests:  failed,
		SuccessRate:     successRate,
		Elapsed:         elapsed,
		AverageRPS:      averageRPS,
		RateLimitHits:   c.limiter.ThrottleHits(),
		CurrentRate:     c.limiter.Rate(),
		CurrentInterval: c.limiter.Interval(),
	}
}
