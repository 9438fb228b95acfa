// Package diagnostics provides resource checks run before spawning a
// provider CLI. Agent CLIs are memory-hungry node processes; refusing to
// spawn on a starved host fails faster and with a clearer message than
// letting the child be OOM-killed mid-run.
package diagnostics

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// PreflightResult contains the result of pre-execution checks.
type PreflightResult struct {
	OK       bool
	Warnings []string
	Errors   []string
}

// Checker performs preflight resource checks.
type Checker struct {
	minFreeMemoryMB uint64
	minFreeDiskMB   uint64
	workDir         string
}

// DefaultMinFreeMemoryMB is the floor below which spawning is refused.
const DefaultMinFreeMemoryMB = 256

// DefaultMinFreeDiskMB is the disk-space floor for the working directory.
const DefaultMinFreeDiskMB = 128

// NewChecker creates a checker with the given thresholds. Zero thresholds
// disable the corresponding check.
func NewChecker(minFreeMemoryMB, minFreeDiskMB uint64, workDir string) *Checker {
	if workDir == "" {
		workDir = "."
	}
	return &Checker{
		minFreeMemoryMB: minFreeMemoryMB,
		minFreeDiskMB:   minFreeDiskMB,
		workDir:         workDir,
	}
}

// Run performs the preflight checks. Metric collection failures degrade
// to warnings; only confirmed resource exhaustion blocks execution.
func (c *Checker) Run() PreflightResult {
	result := PreflightResult{OK: true}

	if c.minFreeMemoryMB > 0 {
		vm, err := mem.VirtualMemory()
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("could not read memory stats: %v", err))
		} else {
			availMB := vm.Available / (1024 * 1024)
			if availMB < c.minFreeMemoryMB {
				result.OK = false
				result.Errors = append(result.Errors,
					fmt.Sprintf("insufficient free memory: %d MB available (minimum: %d MB)",
						availMB, c.minFreeMemoryMB))
			} else if availMB < c.minFreeMemoryMB*2 {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("free memory approaching limit: %d MB available", availMB))
			}
		}
	}

	if c.minFreeDiskMB > 0 {
		usage, err := disk.Usage(c.workDir)
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("could not read disk stats for %s: %v", c.workDir, err))
		} else {
			freeMB := usage.Free / (1024 * 1024)
			if freeMB < c.minFreeDiskMB {
				result.OK = false
				result.Errors = append(result.Errors,
					fmt.Sprintf("insufficient free disk: %d MB free in %s (minimum: %d MB)",
						freeMB, c.workDir, c.minFreeDiskMB))
			}
		}
	}

	return result
}
