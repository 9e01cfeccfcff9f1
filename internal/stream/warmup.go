package stream

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// WarmupStats summarizes the startup measurement window.
type WarmupStats struct {
	FramesReceived    int
	Duration          time.Duration
	FPSMean           float64
	FPSStdDev         float64
	FPSMin            float64
	FPSMax            float64
	FirstFrameLatency time.Duration
	Stable            bool
}

// Warmup consumes the provider for the given window without processing
// anything, measuring the real delivery rate before steady state begins.
// Returns an error when the stream closes mid-window or fewer than two
// frames arrive.
func Warmup(ctx context.Context, frames <-chan Frame, duration time.Duration) (*WarmupStats, error) {
	slog.Info("capture: warming up stream", "duration", duration)

	startTime := time.Now()
	frameTimes := make([]time.Time, 0, 100)
	var firstFrameLatency time.Duration

	warmupCtx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()

	for {
		select {
		case <-warmupCtx.Done():
			goto analyze

		case frame, ok := <-frames:
			if !ok {
				return nil, fmt.Errorf("stream closed during warm-up")
			}
			if len(frameTimes) == 0 {
				firstFrameLatency = time.Since(startTime)
			}
			frameTimes = append(frameTimes, frame.Timestamp)
		}
	}

analyze:
	elapsed := time.Since(startTime)

	if len(frameTimes) < 2 {
		return nil, fmt.Errorf("not enough frames during warm-up (got %d)", len(frameTimes))
	}

	stats := calculateRateStats(frameTimes, elapsed)
	stats.FirstFrameLatency = firstFrameLatency

	slog.Info("capture: warm-up complete",
		"frames", stats.FramesReceived,
		"duration", stats.Duration,
		"first_frame_ms", firstFrameLatency.Milliseconds(),
		"fps_mean", fmt.Sprintf("%.2f", stats.FPSMean),
		"fps_stddev", fmt.Sprintf("%.2f", stats.FPSStdDev),
		"fps_range", fmt.Sprintf("%.1f-%.1f", stats.FPSMin, stats.FPSMax),
		"stable", stats.Stable,
	)
	if !stats.Stable {
		slog.Warn("capture: delivery rate is unstable", "fps_stddev", stats.FPSStdDev)
	}

	return stats, nil
}

// calculateRateStats derives rate statistics from frame arrival times.
func calculateRateStats(frameTimes []time.Time, totalDuration time.Duration) *WarmupStats {
	n := len(frameTimes)
	fpsMean := float64(n) / totalDuration.Seconds()

	instantaneous := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		interval := frameTimes[i].Sub(frameTimes[i-1]).Seconds()
		if interval > 0 {
			instantaneous = append(instantaneous, 1.0/interval)
		}
	}

	if len(instantaneous) == 0 {
		return &WarmupStats{
			FramesReceived: n,
			Duration:       totalDuration,
			FPSMean:        fpsMean,
			Stable:         false,
		}
	}

	fpsMin := instantaneous[0]
	fpsMax := instantaneous[0]
	for _, fps := range instantaneous {
		fpsMin = min(fpsMin, fps)
		fpsMax = max(fpsMax, fps)
	}

	var sumSquares float64
	for _, fps := range instantaneous {
		diff := fps - fpsMean
		sumSquares += diff * diff
	}
	fpsStdDev := math.Sqrt(sumSquares / float64(len(instantaneous)))

	// Stable when the deviation stays under 15% of the mean rate.
	return &WarmupStats{
		FramesReceived: n,
		Duration:       totalDuration,
		FPSMean:        fpsMean,
		FPSStdDev:      fpsStdDev,
		FPSMin:         fpsMin,
		FPSMax:         fpsMax,
		Stable:         fpsStdDev < fpsMean*0.15,
	}
}
