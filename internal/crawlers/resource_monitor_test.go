package crawlers

import (
	"errors"
	"testing"

	"github.com/shirou/gopsutil/v3/mem"
)

func newTestMonitor(minFreeMB uint64, available uint64, memErr error) *ResourceMonitor {
	rm := NewResourceMonitor(minFreeMB)
	rm.virtualMemory = func() (*mem.VirtualMemoryStat, error) {
		if memErr != nil {
			return nil, memErr
		}
		return &mem.VirtualMemoryStat{Total: 8 * 1024 * bytesPerMB, Available: available}, nil
	}
	rm.cpuPercent = func() (float64, error) { return 12.5, nil }
	return rm
}

func TestResourceMonitor_Check(t *testing.T) {
	tests := []struct {
		name      string
		minFree   uint64
		available uint64
		wantLow   bool
	}{
		{"内存充足", 512, 2048 * bytesPerMB, false},
		{"内存不足", 512, 256 * bytesPerMB, true},
		{"恰好等于阈值", 512, 512 * bytesPerMB, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rm := newTestMonitor(tt.minFree, tt.available, nil)
			status, err := rm.Check()
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if status.Low != tt.wantLow {
				t.Errorf("Low = %v, want %v", status.Low, tt.wantLow)
			}
			if status.CPUPercent != 12.5 {
				t.Errorf("CPUPercent = %v, want 12.5", status.CPUPercent)
			}
		})
	}
}

func TestResourceMonitor_Disabled(t *testing.T) {
	var nilMonitor *ResourceMonitor
	if _, err := nilMonitor.Check(); err != nil {
		t.Errorf("nil检查器不应报错: %v", err)
	}

	rm := newTestMonitor(0, 0, errors.New("不应被调用"))
	status, err := rm.Check()
	if err != nil || status.Low {
		t.Errorf("阈值为0时应跳过检查, 得到 %+v, %v", status, err)
	}
}

func TestResourceMonitor_Error(t *testing.T) {
	rm := newTestMonitor(512, 0, errors.New("not implemented yet"))
	if _, err := rm.Check(); err == nil {
		t.Error("获取内存失败时应返回错误")
	}
}
