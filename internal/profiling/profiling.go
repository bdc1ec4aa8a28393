package profiling

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Lightweight per-frame CPU profiler and event counters for tick-level insights.

var (
	mu          sync.Mutex
	frameTotals = make(map[string]time.Duration)
	frameCounts = make(map[string]int64)
	totalCounts = make(map[string]int64)
)

// Track returns a stop function that records the elapsed time under the given name.
// Usage: defer profiling.Track("subsystem.Operation")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		frameTotals[name] += d
		mu.Unlock()
	}
}

// Count adds n to the named counter for the current frame and for the session.
func Count(name string, n int64) {
	mu.Lock()
	frameCounts[name] += n
	totalCounts[name] += n
	mu.Unlock()
}

// ResetFrame clears current per-frame totals. Call at the start of each frame.
// Session counters are kept.
func ResetFrame() {
	mu.Lock()
	clear(frameTotals)
	clear(frameCounts)
	mu.Unlock()
}

// Snapshot returns a copy of current per-frame totals.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]time.Duration, len(frameTotals))
	for k, v := range frameTotals {
		out[k] = v
	}
	return out
}

// FrameCount returns the named counter for the current frame.
func FrameCount(name string) int64 {
	mu.Lock()
	defer mu.Unlock()
	return frameCounts[name]
}

// TotalCount returns the named counter accumulated since process start.
func TotalCount(name string) int64 {
	mu.Lock()
	defer mu.Unlock()
	return totalCounts[name]
}

// TopN formats top N durations from the current frame totals.
// Example: "terrain.Update:4.2ms, meshing.BuildChunk:2.1ms"
func TopN(n int) string {
	ss := Snapshot()
	type pair struct {
		name string
		dur  time.Duration
	}
	list := make([]pair, 0, len(ss))
	for k, v := range ss {
		list = append(list, pair{name: k, dur: v})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].dur > list[j].dur })
	n = min(n, len(list))
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ms := float64(list[i].dur.Microseconds()) / 1000.0
		parts = append(parts, list[i].name+":"+formatMs(ms))
	}
	return strings.Join(parts, ", ")
}

// formatMs keeps one decimal and drops a trailing ".0".
func formatMs(ms float64) string {
	s := strconv.FormatFloat(ms, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0") + "ms"
}
