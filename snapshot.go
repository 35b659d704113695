package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// DefaultCPUWindow is how long each CPU utilization read blocks.
	DefaultCPUWindow = 100 * time.Millisecond

	gib = 1 << 30
)

// Snapshot is a point-in-time reading of host resources. Counters are raw bytes, disk times are
// milliseconds, all cumulative since boot; CPU utilization is a percentage over the CPU window.
// A nil field is a counter the host did not expose.
type Snapshot struct {
	Sample  int       `bson:"sample,omitempty"`
	TakenAt time.Time `bson:"taken_at"`

	CPUUtil *float64 `bson:"cpu_util"`
	CPUFreq *float64 `bson:"cpu_freq"`

	DiskRead      *uint64 `bson:"disk_read"`
	DiskWrite     *uint64 `bson:"disk_write"`
	DiskReadTime  *uint64 `bson:"disk_read_time"`
	DiskWriteTime *uint64 `bson:"disk_write_time"`
	DiskUsed      *uint64 `bson:"disk_used"`
	DiskFree      *uint64 `bson:"disk_free"`

	SwapUsed *uint64 `bson:"swap_used"`
	SwapFree *uint64 `bson:"swap_free"`

	VirtualUsed *uint64 `bson:"virtual_used"`
	VirtualFree *uint64 `bson:"virtual_free"`
}

// Snapshotter takes resource snapshots. Snapshot may block; it must never fail as a whole.
type Snapshotter interface {
	Snapshot(ctx context.Context) Snapshot
}

// Collector builds Snapshots from a MetricsSource.
type Collector struct {
	source    MetricsSource
	cpuWindow time.Duration
	diskPath  string
	now       func() time.Time
}

// NewCollector reads source; disk usage is taken for the filesystem holding diskPath.
func NewCollector(source MetricsSource, cpuWindow time.Duration, diskPath string) *Collector {
	if cpuWindow <= 0 {
		cpuWindow = DefaultCPUWindow
	}
	if diskPath == "" {
		diskPath = "/"
	}
	return &Collector{
		source:    source,
		cpuWindow: cpuWindow,
		diskPath:  diskPath,
		now:       time.Now,
	}
}

func ptr[T any](v T) *T {
	return &v
}

func skipped(what string, err error) {
	log.Debug("snapshot field unavailable", "field", what, "err", err)
}

// Snapshot blocks for the CPU window, then reads the remaining counters.
func (c *Collector) Snapshot(ctx context.Context) Snapshot {
	snap := Snapshot{TakenAt: c.now()}

	if util, err := c.source.CPUPercent(ctx, c.cpuWindow); err == nil {
		snap.CPUUtil = ptr(util)
	} else {
		skipped("cpu_util", err)
	}

	if freq, err := c.source.CPUFrequency(ctx); err == nil {
		snap.CPUFreq = ptr(freq)
	} else {
		skipped("cpu_freq", err)
	}

	if io, err := c.source.DiskIO(ctx); err == nil {
		snap.DiskRead = ptr(io.ReadBytes)
		snap.DiskWrite = ptr(io.WriteBytes)
		snap.DiskReadTime = ptr(io.ReadTime)
		snap.DiskWriteTime = ptr(io.WriteTime)
	} else {
		skipped("disk_io", err)
	}

	if usage, err := c.source.DiskUsage(ctx, c.diskPath); err == nil {
		snap.DiskUsed = ptr(usage.Used)
		snap.DiskFree = ptr(usage.Free)
	} else {
		skipped("disk_usage", err)
	}

	if swap, err := c.source.Swap(ctx); err == nil {
		snap.SwapUsed = ptr(swap.Used)
		snap.SwapFree = ptr(swap.Free)
	} else {
		skipped("swap", err)
	}

	if vm, err := c.source.VirtualMemory(ctx); err == nil {
		snap.VirtualUsed = ptr(vm.Used)
		snap.VirtualFree = ptr(vm.Free)
	} else {
		skipped("virtual", err)
	}

	return snap
}

func gibString(v uint64) string {
	return fmt.Sprintf("%.3f GiB", float64(v)/gib)
}

// SystemReport describes the host in human-readable form with GiB-scaled sizes.
// Missing counters are printed as n/a.
func (c *Collector) SystemReport(ctx context.Context) string {
	var b strings.Builder
	line := func(label, value string) {
		fmt.Fprintf(&b, "%s: %s\n", label, value)
	}

	if logical, physical, err := c.source.CPUCounts(ctx); err == nil {
		line("cpu cores", fmt.Sprint(physical))
		line("cpu threads", fmt.Sprint(logical-physical))
	} else {
		line("cpu cores", "n/a")
		line("cpu threads", "n/a")
	}

	if freq, err := c.source.CPUFrequency(ctx); err == nil {
		line("cpu frequency", fmt.Sprintf("%.0f Mhz", freq))
	} else {
		line("cpu frequency", "n/a")
	}

	if io, err := c.source.DiskIO(ctx); err == nil {
		line("disk read", gibString(io.ReadBytes))
		line("disk write", gibString(io.WriteBytes))
		line("disk read time", fmt.Sprintf("%.3f s", float64(io.ReadTime)/1000))
		line("disk write time", fmt.Sprintf("%.3f s", float64(io.WriteTime)/1000))
	} else {
		line("disk io", "n/a")
	}

	if usage, err := c.source.DiskUsage(ctx, c.diskPath); err == nil {
		line("disk used", gibString(usage.Used))
		line("disk free", gibString(usage.Free))
	} else {
		line("disk usage", "n/a")
	}

	if swap, err := c.source.Swap(ctx); err == nil {
		line("swap total", gibString(swap.Total))
		line("swap used", gibString(swap.Used))
		line("swap free", gibString(swap.Free))
	} else {
		line("swap", "n/a")
	}

	if vm, err := c.source.VirtualMemory(ctx); err == nil {
		line("virtual total", gibString(vm.Total))
		line("virtual free", gibString(vm.Free))
		line("virtual used", gibString(vm.Used))
	} else {
		line("virtual", "n/a")
	}

	return b.String()
}
