package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestOutputManager_DisabledIsNil(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("NewOutputManager(\"\"): %v", err)
	}
	if om != nil {
		t.Fatal("empty dir should disable output")
	}

	// Every method is a no-op on the nil manager.
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Errorf("nil WriteTelemetry: %v", err)
	}
	if err := om.WritePerf(PerfStats{}, 0); err != nil {
		t.Errorf("nil WritePerf: %v", err)
	}
	if om.Dir() != "" {
		t.Errorf("nil Dir() = %q", om.Dir())
	}
	if err := om.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}

func TestOutputManager_WritesCSVWithSingleHeader(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	defer om.Close()

	for i := int64(1); i <= 3; i++ {
		stats := WindowStats{WindowEndTick: i * 100, Particles: 600}
		if err := om.WriteTelemetry(stats); err != nil {
			t.Fatalf("WriteTelemetry: %v", err)
		}
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatalf("reading telemetry.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header + 3 records:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], "window_end,") {
		t.Errorf("header = %q", lines[0])
	}
	if strings.Contains(lines[0], "window_start") {
		t.Error("internal-only field leaked into the CSV header")
	}
	if !strings.HasPrefix(lines[2], "200,") {
		t.Errorf("second record = %q, want window_end 200 first", lines[2])
	}
}

func TestOutputManager_WritesPerfCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	stats := PerfStats{
		AvgTickDuration: 500 * time.Microsecond,
		TicksPerSecond:  2000,
		PhasePct:        map[string]float64{PhaseForces: 70, PhaseIntegrate: 20},
	}
	if err := om.WritePerf(stats, 120); err != nil {
		t.Fatalf("WritePerf: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "perf.csv"))
	if err != nil {
		t.Fatalf("reading perf.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header + 1 record:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[1], "120,500,") {
		t.Errorf("record = %q, want window 120, avg 500us", lines[1])
	}
}

func TestPerfCollector_PhaseAccounting(t *testing.T) {
	p := NewPerfCollector(8)

	for i := 0; i < 3; i++ {
		p.StartTick()
		p.StartPhase(PhaseForces)
		time.Sleep(2 * time.Millisecond)
		p.StartPhase(PhaseIntegrate)
		time.Sleep(time.Millisecond)
		p.EndTick()
	}

	stats := p.Stats()
	if stats.AvgTickDuration < 3*time.Millisecond {
		t.Errorf("avg tick = %v, want at least 3ms", stats.AvgTickDuration)
	}
	if stats.MinTickDuration > stats.MaxTickDuration {
		t.Errorf("min %v > max %v", stats.MinTickDuration, stats.MaxTickDuration)
	}
	if stats.PhaseAvg[PhaseForces] <= stats.PhaseAvg[PhaseIntegrate] {
		t.Errorf("forces avg %v not above integrate avg %v",
			stats.PhaseAvg[PhaseForces], stats.PhaseAvg[PhaseIntegrate])
	}
	pctSum := stats.PhasePct[PhaseForces] + stats.PhasePct[PhaseIntegrate]
	if pctSum < 90 || pctSum > 110 {
		t.Errorf("phase percentages sum to %v, want near 100", pctSum)
	}
}

func TestPerfCollector_EmptyWindow(t *testing.T) {
	p := NewPerfCollector(60)
	stats := p.Stats()
	if stats.AvgTickDuration != 0 || stats.TicksPerSecond != 0 {
		t.Errorf("empty collector produced stats: %+v", stats)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	p := NewPerfCollector(4)
	for i := 0; i < 10; i++ {
		p.StartTick()
		p.StartPhase(PhaseForces)
		p.EndTick()
	}
	// The window holds at most 4 samples no matter how many ticks ran.
	if p.sampleCount != 4 {
		t.Errorf("sample count = %d, want window size 4", p.sampleCount)
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	stats := PerfStats{
		AvgTickDuration: 1500 * time.Microsecond,
		MinTickDuration: time.Millisecond,
		MaxTickDuration: 2 * time.Millisecond,
		TicksPerSecond:  666.6,
		PhasePct: map[string]float64{
			PhaseForces:    60,
			PhaseIntegrate: 25,
			PhaseTelemetry: 5,
		},
	}
	row := stats.ToCSV(900)
	if row.WindowEnd != 900 || row.AvgTickUS != 1500 || row.MinTickUS != 1000 || row.MaxTickUS != 2000 {
		t.Errorf("tick columns wrong: %+v", row)
	}
	if row.ForcesPct != 60 || row.IntegratePct != 25 || row.RenderPct != 0 || row.TelemetryPct != 5 {
		t.Errorf("phase columns wrong: %+v", row)
	}
}
