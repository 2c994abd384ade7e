package pwm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	rpipwm "github.com/reef-pi/rpi/pwm"
)

// fakeDriver records rpi/pwm Driver calls.
type fakeDriver struct {
	exported bool
	calls    []string
	fail     error
}

func (f *fakeDriver) record(format string, args ...any) error {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	return f.fail
}

func (f *fakeDriver) Export(ch int) error   { return f.record("export %d", ch) }
func (f *fakeDriver) Unexport(ch int) error { return f.record("unexport %d", ch) }
func (f *fakeDriver) DutyCycle(ch int, duty float64) error {
	return f.record("duty %d %g", ch, duty)
}
func (f *fakeDriver) Frequency(ch, freq int) error   { return f.record("freq %d %d", ch, freq) }
func (f *fakeDriver) Enable(ch int) error            { return f.record("enable %d", ch) }
func (f *fakeDriver) Disable(ch int) error           { return f.record("disable %d", ch) }
func (f *fakeDriver) IsEnabled(ch int) (bool, error) { return false, nil }
func (f *fakeDriver) IsExported(ch int) (bool, error) {
	return f.exported, nil
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func TestOpenProgramsChannel(t *testing.T) {
	d := &fakeDriver{exported: true}

	c, err := Open(d, 0, 20000)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	want := []string{"freq 0 20000", "duty 0 0", "enable 0"}
	if !reflect.DeepEqual(d.calls, want) {
		t.Errorf("calls: got %v, want %v", d.calls, want)
	}
	if c.Duty() != 0 {
		t.Errorf("Duty: got %v, want 0", c.Duty())
	}
}

func TestOpenExportsMissingChannel(t *testing.T) {
	d := &fakeDriver{}

	if _, err := Open(d, 1, 1000); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(d.calls) == 0 || d.calls[0] != "export 1" {
		t.Errorf("calls: got %v, want export first", d.calls)
	}
}

func TestOpenErrors(t *testing.T) {
	if _, err := Open(&fakeDriver{exported: true}, 0, 0); err == nil {
		t.Error("expected error for zero frequency")
	}
	d := &fakeDriver{exported: true, fail: errors.New("busy")}
	if _, err := Open(d, 0, 1000); err == nil {
		t.Error("expected driver error")
	}
}

func TestSetDutyPercent(t *testing.T) {
	d := &fakeDriver{exported: true}
	c, err := Open(d, 2, 1000)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	d.calls = nil

	c.SetDuty(0.25)
	c.SetDuty(0.25) // unchanged, not rewritten
	c.SetDuty(2)
	want := []string{"duty 2 25", "duty 2 100"}
	if !reflect.DeepEqual(d.calls, want) {
		t.Errorf("calls: got %v, want %v", d.calls, want)
	}
	if c.Duty() != 1 {
		t.Errorf("Duty: got %v, want 1", c.Duty())
	}
}

func TestSetDutyThroughRPi(t *testing.T) {
	d, rec := rpipwm.Noop()
	c, err := Open(d, 0, 1000)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	dutyFile := filepath.Join(rpipwm.SysFS, "pwm0", "duty_cycle")

	tests := []struct {
		fraction float64
		want     string
	}{
		{0.5, "500000\n"},
		{1.5, "1000000\n"},
		{-1, "0\n"},
	}
	for _, tt := range tests {
		if err := c.SetDuty(tt.fraction); err != nil {
			t.Fatalf("SetDuty(%v): %v", tt.fraction, err)
		}
		if got := string(rec.Get(dutyFile)); got != tt.want {
			t.Errorf("SetDuty(%v): duty_cycle=%q, want %q", tt.fraction, got, tt.want)
		}
	}
}

func TestClose(t *testing.T) {
	d := &fakeDriver{exported: true}
	c, err := Open(d, 0, 1000)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	c.SetDuty(0.3)
	d.calls = nil

	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	want := []string{"duty 0 0", "disable 0"}
	if !reflect.DeepEqual(d.calls, want) {
		t.Errorf("calls: got %v, want %v", d.calls, want)
	}
	if c.Duty() != 0 {
		t.Errorf("Duty after Close: got %v, want 0", c.Duty())
	}
}

func TestNewDriverDefaultChip(t *testing.T) {
	if _, ok := NewDriver(DefaultRoot, 0).(*chipDriver); ok {
		t.Error("pwmchip0 should use the rpi/pwm driver")
	}
	if _, ok := NewDriver(DefaultRoot, 1).(*chipDriver); !ok {
		t.Error("pwmchip1 should use the chip driver")
	}
}

func TestChipDriver(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "pwmchip1", "pwm0")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	c, err := Open(NewDriver(root, 1), 0, 20000)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := readFile(t, filepath.Join(dir, "period")); got != "50000" {
		t.Errorf("period: got %q, want 50000", got)
	}
	if got := readFile(t, filepath.Join(dir, "enable")); got != "1" {
		t.Errorf("enable: got %q, want 1", got)
	}
	if err := c.SetDuty(0.25); err != nil {
		t.Fatalf("SetDuty: %v", err)
	}
	if got := readFile(t, filepath.Join(dir, "duty_cycle")); got != "12500" {
		t.Errorf("duty_cycle: got %q, want 12500", got)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := readFile(t, filepath.Join(dir, "enable")); got != "0" {
		t.Errorf("enable after Close: got %q, want 0", got)
	}
}

func TestChipDriverExport(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "pwmchip1"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	// without a kernel nothing creates pwm1, so Open fails after exporting
	if _, err := Open(NewDriver(root, 1), 1, 1000); err == nil {
		t.Fatal("expected error when channel directory never appears")
	}
	if got := readFile(t, filepath.Join(root, "pwmchip1", "export")); got != "1" {
		t.Errorf("export: got %q, want 1", got)
	}
}
