package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
)

// DiskIO holds cumulative-since-boot disk counters summed over all devices.
type DiskIO struct {
	ReadBytes  uint64
	WriteBytes uint64
	ReadTime   uint64 // milliseconds
	WriteTime  uint64 // milliseconds
}

// SpaceUsage is used/free/total bytes of a disk or memory area.
type SpaceUsage struct {
	Total uint64
	Used  uint64
	Free  uint64
}

// MetricsSource exposes the host resource counters consumed by the Collector.
// Counters the host does not provide are reported with ErrMetricsUnavailable.
type MetricsSource interface {
	CPUPercent(ctx context.Context, window time.Duration) (float64, error)
	CPUFrequency(ctx context.Context) (float64, error)
	CPUCounts(ctx context.Context) (logical int, physical int, err error)
	DiskIO(ctx context.Context) (DiskIO, error)
	DiskUsage(ctx context.Context, path string) (SpaceUsage, error)
	Swap(ctx context.Context) (SpaceUsage, error)
	VirtualMemory(ctx context.Context) (SpaceUsage, error)
}

// HostMetrics reads the local host through gopsutil.
type HostMetrics struct{}

func unavailable(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrMetricsUnavailable, what, err)
}

// CPUPercent blocks for window and returns the utilization over it across all cores.
func (HostMetrics) CPUPercent(ctx context.Context, window time.Duration) (float64, error) {
	percents, err := cpu.PercentWithContext(ctx, window, false)
	if err != nil {
		return 0, unavailable("cpu percent", err)
	}
	if len(percents) == 0 {
		return 0, fmt.Errorf("%w: cpu percent", ErrMetricsUnavailable)
	}
	return percents[0], nil
}

// CPUFrequency returns the clock in MHz reported for the first CPU. On Linux gopsutil prefers
// the maximum frequency from sysfs when it is exposed.
func (HostMetrics) CPUFrequency(ctx context.Context) (float64, error) {
	infos, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return 0, unavailable("cpu frequency", err)
	}
	if len(infos) == 0 || infos[0].Mhz == 0 {
		return 0, fmt.Errorf("%w: cpu frequency", ErrMetricsUnavailable)
	}
	return infos[0].Mhz, nil
}

func (HostMetrics) CPUCounts(ctx context.Context) (int, int, error) {
	logical, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return 0, 0, unavailable("logical cpu count", err)
	}
	physical, err := cpu.CountsWithContext(ctx, false)
	if err != nil {
		return 0, 0, unavailable("physical cpu count", err)
	}
	return logical, physical, nil
}

func (HostMetrics) DiskIO(ctx context.Context) (DiskIO, error) {
	counters, err := disk.IOCountersWithContext(ctx)
	if err != nil {
		return DiskIO{}, unavailable("disk io", err)
	}
	if len(counters) == 0 {
		return DiskIO{}, fmt.Errorf("%w: disk io", ErrMetricsUnavailable)
	}
	var total DiskIO
	for _, c := range counters {
		total.ReadBytes += c.ReadBytes
		total.WriteBytes += c.WriteBytes
		total.ReadTime += c.ReadTime
		total.WriteTime += c.WriteTime
	}
	return total, nil
}

func (HostMetrics) DiskUsage(ctx context.Context, path string) (SpaceUsage, error) {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return SpaceUsage{}, unavailable("disk usage", err)
	}
	return SpaceUsage{Total: usage.Total, Used: usage.Used, Free: usage.Free}, nil
}

// Swap reports ErrMetricsUnavailable when no swap is configured.
func (HostMetrics) Swap(ctx context.Context) (SpaceUsage, error) {
	swap, err := mem.SwapMemoryWithContext(ctx)
	if err != nil {
		return SpaceUsage{}, unavailable("swap", err)
	}
	if swap.Total == 0 {
		return SpaceUsage{}, fmt.Errorf("%w: no swap configured", ErrMetricsUnavailable)
	}
	return SpaceUsage{Total: swap.Total, Used: swap.Used, Free: swap.Free}, nil
}

// VirtualMemory counts used memory as total minus available.
func (HostMetrics) VirtualMemory(ctx context.Context) (SpaceUsage, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return SpaceUsage{}, unavailable("virtual memory", err)
	}
	return SpaceUsage{Total: vm.Total, Used: vm.Total - vm.Available, Free: vm.Available}, nil
}
