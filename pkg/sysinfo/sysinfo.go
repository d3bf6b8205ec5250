package sysinfo

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// Snapshot captures the machine state at the time a benchmark ran, so
// recorded durations can be judged against the hardware and load that
// produced them.
type Snapshot struct {
	Hostname      string  `json:"hostname"`
	OS            string  `json:"os"`
	CPUModel      string  `json:"cpu_model,omitempty"`
	CPUThreads    int     `json:"cpu_threads"`
	MemTotalBytes uint64  `json:"mem_total_bytes"`
	Load1         float64 `json:"load1"`
}

// Collect gathers a best-effort snapshot. Probes that fail leave their
// fields zero; a partially filled snapshot is still useful.
func Collect() Snapshot {
	snap := Snapshot{
		OS:         runtime.GOOS,
		CPUThreads: runtime.NumCPU(),
	}

	if info, err := host.Info(); err == nil {
		snap.Hostname = info.Hostname
	}
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		snap.CPUModel = infos[0].ModelName
	}
	if vmem, err := mem.VirtualMemory(); err == nil {
		snap.MemTotalBytes = vmem.Total
	}
	if avg, err := load.Avg(); err == nil {
		snap.Load1 = avg.Load1
	}
	return snap
}
