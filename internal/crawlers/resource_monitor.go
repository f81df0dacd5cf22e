package crawlers

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

const bytesPerMB = 1024 * 1024

// MemoryStatus 一次资源检查的结果
type MemoryStatus struct {
	TotalMemory     uint64  // 系统总内存(字节)
	AvailableMemory uint64  // 可用内存(字节)
	CPUPercent      float64 // 自上次检查以来的CPU使用率,无法获取时为-1
	Low             bool    // 可用内存是否低于阈值
}

// ResourceMonitor 系统资源检查器
// 浏览器每个页面都要占用数百MB内存,启动浏览器和每次渲染前检查可用内存
// 只记录警告,不阻止渲染
type ResourceMonitor struct {
	minFree uint64 // 字节

	mu            sync.Mutex
	virtualMemory func() (*mem.VirtualMemoryStat, error)
	cpuPercent    func() (float64, error)
	lastLow       bool
}

// NewResourceMonitor 创建资源检查器, minFreeMB为0时不检查
func NewResourceMonitor(minFreeMB uint64) *ResourceMonitor {
	return &ResourceMonitor{
		minFree:       minFreeMB * bytesPerMB,
		virtualMemory: mem.VirtualMemory,
		cpuPercent: func() (float64, error) {
			percents, err := cpu.Percent(0, false)
			if err != nil {
				return -1, err
			}
			if len(percents) == 0 {
				return -1, fmt.Errorf("未获取到CPU使用率")
			}
			return percents[0], nil
		},
	}
}

// Check 检查当前可用内存
// 内存不足时记录警告;从不足恢复时记录一次信息日志
func (rm *ResourceMonitor) Check() (MemoryStatus, error) {
	if rm == nil || rm.minFree == 0 {
		return MemoryStatus{CPUPercent: -1}, nil
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	vmStat, err := rm.virtualMemory()
	if err != nil {
		log.Debug().Err(err).Msg("获取系统内存失败,跳过资源检查")
		return MemoryStatus{CPUPercent: -1}, fmt.Errorf("获取系统内存失败: %w", err)
	}

	status := MemoryStatus{
		TotalMemory:     vmStat.Total,
		AvailableMemory: vmStat.Available,
		CPUPercent:      -1,
		Low:             vmStat.Available < rm.minFree,
	}
	if percent, err := rm.cpuPercent(); err == nil {
		status.CPUPercent = percent
	}

	switch {
	case status.Low:
		log.Warn().
			Uint64("available_mb", status.AvailableMemory/bytesPerMB).
			Uint64("threshold_mb", rm.minFree/bytesPerMB).
			Float64("cpu_percent", status.CPUPercent).
			Msg("⚠️  可用内存不足,浏览器渲染可能变慢或崩溃")
	case rm.lastLow:
		log.Info().Uint64("available_mb", status.AvailableMemory/bytesPerMB).Msg("可用内存已恢复")
	}
	rm.lastLow = status.Low

	return status, nil
}
