package monitor

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"inferd/pkg/types"
)

// smiTimeout bounds a single nvidia-smi invocation so a wedged driver
// cannot stall the monitor loop.
const smiTimeout = 2 * time.Second

// systemSampler reads host resources from procfs, statfs, and
// nvidia-smi. CPU usage is computed from the delta between consecutive
// ticks, so the first Sample omits the CPU metric.
type systemSampler struct {
	diskPath string
	smiPath  string // empty when nvidia-smi is not installed

	prevBusy  uint64
	prevTotal uint64
}

// NewSystemSampler returns a Sampler for the local host. Disk usage is
// measured for the volume holding diskPath (typically the models
// directory). GPU sampling is enabled only when nvidia-smi is on PATH.
func NewSystemSampler(diskPath string) Sampler {
	smi, _ := exec.LookPath("nvidia-smi")
	return &systemSampler{diskPath: diskPath, smiPath: smi}
}

func (s *systemSampler) Sample(ctx context.Context) []types.ResourceMetric {
	out := make([]types.ResourceMetric, 0, 4)
	if m, ok := s.sampleCPU(); ok {
		out = append(out, m)
	}
	if m, ok := s.sampleMemory(); ok {
		out = append(out, m)
	}
	if m, ok := s.sampleDisk(); ok {
		out = append(out, m)
	}
	if m, ok := s.sampleGPU(ctx); ok {
		out = append(out, m)
	}
	return out
}

func (s *systemSampler) sampleCPU() (types.ResourceMetric, bool) {
	data, err := os.ReadFile("/proc/stat")
	if err != nil {
		return types.ResourceMetric{}, false
	}
	line, _, _ := strings.Cut(string(data), "\n")
	fields := strings.Fields(line)
	if len(fields) < 5 || fields[0] != "cpu" {
		return types.ResourceMetric{}, false
	}

	var total, idle uint64
	for i, f := range fields[1:] {
		v, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return types.ResourceMetric{}, false
		}
		total += v
		// idle + iowait count as not busy
		if i == 3 || i == 4 {
			idle += v
		}
	}
	busy := total - idle

	prevBusy, prevTotal := s.prevBusy, s.prevTotal
	s.prevBusy, s.prevTotal = busy, total
	if prevTotal == 0 || total <= prevTotal {
		// first reading, or counter wrap: nothing to diff against
		return types.ResourceMetric{}, false
	}

	pct := 100 * float64(busy-prevBusy) / float64(total-prevTotal)
	return types.ResourceMetric{
		Resource:     types.ResourceCPU,
		UsagePercent: pct,
		Details:      map[string]any{"cores": runtime.NumCPU()},
	}, true
}

func (s *systemSampler) sampleMemory() (types.ResourceMetric, bool) {
	totalKB, availKB, ok := readMeminfo()
	if !ok {
		return types.ResourceMetric{}, false
	}
	return types.ResourceMetric{
		Resource:     types.ResourceMemory,
		UsagePercent: 100 * (totalKB - availKB) / totalKB,
		AvailableMB:  availKB / 1024,
		TotalMB:      totalKB / 1024,
	}, true
}

func readMeminfo() (totalKB, availKB float64, ok bool) {
	data, err := os.ReadFile("/proc/meminfo")
	if err != nil {
		return 0, 0, false
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "MemTotal:":
			totalKB, _ = strconv.ParseFloat(fields[1], 64)
		case "MemAvailable:":
			availKB, _ = strconv.ParseFloat(fields[1], 64)
		}
	}
	if totalKB == 0 {
		return 0, 0, false
	}
	return totalKB, availKB, true
}

// AvailableMemoryMB reports the host's currently available memory, 0
// when it cannot be determined. Attached to engine init failures so the
// error names what the model needed against what the box had.
func AvailableMemoryMB() int {
	_, availKB, ok := readMeminfo()
	if !ok {
		return 0
	}
	return int(availKB / 1024)
}

func (s *systemSampler) sampleDisk() (types.ResourceMetric, bool) {
	var st unix.Statfs_t
	if err := unix.Statfs(s.diskPath, &st); err != nil {
		return types.ResourceMetric{}, false
	}
	bsize := float64(st.Bsize)
	used := (float64(st.Blocks) - float64(st.Bfree)) * bsize
	avail := float64(st.Bavail) * bsize
	if used+avail == 0 {
		return types.ResourceMetric{}, false
	}
	return types.ResourceMetric{
		Resource:     types.ResourceDisk,
		UsagePercent: 100 * used / (used + avail),
		AvailableMB:  avail / (1024 * 1024),
		TotalMB:      float64(st.Blocks) * bsize / (1024 * 1024),
		Details:      map[string]any{"path": s.diskPath},
	}, true
}

func (s *systemSampler) sampleGPU(ctx context.Context) (types.ResourceMetric, bool) {
	if s.smiPath == "" {
		return types.ResourceMetric{}, false
	}
	ctx, cancel := context.WithTimeout(ctx, smiTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.smiPath,
		"--query-gpu=memory.total,memory.used,memory.free,utilization.gpu,temperature.gpu",
		"--format=csv,noheader,nounits")
	output, err := cmd.Output()
	if err != nil {
		return types.ResourceMetric{}, false
	}

	// nvidia-smi outputs CSV with ", " as delimiter; first line is GPU 0
	line, _, _ := strings.Cut(strings.TrimSpace(string(output)), "\n")
	parts := strings.Split(line, ", ")
	if len(parts) < 3 {
		return types.ResourceMetric{}, false
	}
	total, _ := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	used, _ := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	free, _ := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if total == 0 {
		return types.ResourceMetric{}, false
	}

	details := map[string]any{}
	if len(parts) > 3 {
		if util, err := strconv.Atoi(strings.TrimSpace(parts[3])); err == nil {
			details["utilization_percent"] = util
		}
	}
	if len(parts) > 4 {
		if temp, err := strconv.Atoi(strings.TrimSpace(parts[4])); err == nil {
			details["temperature_c"] = temp
		}
	}

	return types.ResourceMetric{
		Resource:     types.ResourceGPU,
		UsagePercent: 100 * used / total,
		AvailableMB:  free,
		TotalMB:      total,
		Details:      details,
	}, true
}
