// benchmark.go
// A reusable benchmarking module for fqcviz
// Measures execution time and memory usage for any wrapped function

package benchmark

import (
	"log/slog"
	"os"
	"runtime"
	"time"
)

// Stats is the resource usage of one Run.
type Stats struct {
	Label           string
	Elapsed         time.Duration
	MemoryUsedMB    float64
	TotalAllocMB    float64
	PeakHeapMB      float64
	GCCycles        uint32
	CPUCores        int
	GoroutinesStart int
	GoroutinesEnd   int
}

const mb = 1024.0 * 1024.0

// Run wraps any function to measure its runtime and memory usage. The figures are logged at
// info level and returned.
func Run(label string, f func()) Stats {
	logger := slog.With("benchmark", label)

	// Snapshot environment info
	host, _ := os.Hostname()
	logger.Info("running",
		"timestamp", time.Now().Format(time.RFC1123),
		"hostname", host,
		"go_version", runtime.Version(),
		"os_arch", runtime.GOOS+"/"+runtime.GOARCH)

	// Prepare for benchmark
	runtime.GC()
	var memStart, memEnd runtime.MemStats
	runtime.ReadMemStats(&memStart)
	start := time.Now()
	stats := Stats{
		Label:           label,
		CPUCores:        runtime.NumCPU(),
		GoroutinesStart: runtime.NumGoroutine(),
	}

	// Run benchmarked function
	f()

	stats.Elapsed = time.Since(start)
	runtime.ReadMemStats(&memEnd)
	stats.GoroutinesEnd = runtime.NumGoroutine()
	stats.MemoryUsedMB = (float64(memEnd.Alloc) - float64(memStart.Alloc)) / mb
	stats.TotalAllocMB = float64(memEnd.TotalAlloc-memStart.TotalAlloc) / mb
	stats.PeakHeapMB = float64(memEnd.HeapAlloc) / mb
	stats.GCCycles = memEnd.NumGC - memStart.NumGC

	// Report resource usage
	logger.Info("finished",
		"elapsed", stats.Elapsed,
		"memory_used_mb", stats.MemoryUsedMB,
		"total_allocated_mb", stats.TotalAllocMB,
		"peak_heap_mb", stats.PeakHeapMB,
		"gc_cycles", stats.GCCycles,
		"cpu_cores", stats.CPUCores,
		"goroutines_start", stats.GoroutinesStart,
		"goroutines_end", stats.GoroutinesEnd)
	return stats
}
