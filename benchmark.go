package main

import (
	"fmt"
	"time"
)

// BenchmarkResult stores performance test results
type BenchmarkResult struct {
	TotalCycles      int
	TotalDuration    time.Duration
	CyclesPerSec     float64
	DurationPerCycle time.Duration
}

// RunBenchmark runs a performance test in headless mode
func RunBenchmark(testCycles int, cfg *Config) *BenchmarkResult {
	bench := *cfg
	bench.Headless = true
	bench.VisualMode = "none"
	bench.TotalCycles = testCycles

	sim := NewSimulator(&bench)

	startTime := time.Now()
	sim.RunHeadless()
	duration := time.Since(startTime)

	cyclesPerSec := float64(testCycles) / duration.Seconds()
	durationPerCycle := duration / time.Duration(testCycles)

	return &BenchmarkResult{
		TotalCycles:      testCycles,
		TotalDuration:    duration,
		CyclesPerSec:     cyclesPerSec,
		DurationPerCycle: durationPerCycle,
	}
}

// RunBenchmarkSuite runs multiple benchmark tests with different configurations
func RunBenchmarkSuite() {
	fmt.Println("=== Headless Mode Performance Benchmark ===")
	fmt.Println()

	baseCfg := &Config{
		Seed:         42,
		RequestRate:  0.8,
		DangerRate:   0.3,
		GroupSizeMin: 1,
		GroupSizeMax: 8,
		DestID:       0xBEEF,
		ReadyMode:    ReadyRandom,
		ReadyRate:    0.6,
		Headless:     true,
		VisualMode:   "none",
	}

	testSizes := []int{10000, 50000, 100000}
	iterations := 3

	for _, cycles := range testSizes {
		fmt.Printf("Testing with %d cycles (running %d iterations)...\n", cycles, iterations)

		var totalCyclesPerSec float64
		var totalDuration time.Duration

		for i := 0; i < iterations; i++ {
			result := RunBenchmark(cycles, baseCfg)
			totalCyclesPerSec += result.CyclesPerSec
			totalDuration += result.TotalDuration
		}

		avgCyclesPerSec := totalCyclesPerSec / float64(iterations)
		avgDuration := totalDuration / time.Duration(iterations)

		fmt.Printf("  Average: %.2f cycles/sec\n", avgCyclesPerSec)
		fmt.Printf("  Average time: %v\n", avgDuration)
		fmt.Printf("  Average time per cycle: %.2f μs\n", float64(avgDuration.Nanoseconds())/float64(cycles)/1000.0)
		fmt.Println()
	}

	fmt.Println("Running comprehensive test (1,000,000 cycles)...")
	finalResult := RunBenchmark(1000000, baseCfg)
	fmt.Printf("Result: %.2f cycles/sec\n", finalResult.CyclesPerSec)
	fmt.Printf("Total time: %v\n", finalResult.TotalDuration)
	fmt.Printf("Time per cycle: %.2f μs\n", float64(finalResult.DurationPerCycle.Nanoseconds())/1000.0)
}
