package pwm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// chipDriver implements rpi/pwm's Driver for an arbitrary pwmchip
// directory. rpi/pwm.New is fixed to /sys/class/pwm/pwmchip0.
type chipDriver struct {
	dir string
}

func newChipDriver(root string, chip int) *chipDriver {
	return &chipDriver{dir: filepath.Join(root, "pwmchip"+strconv.Itoa(chip))}
}

func (d *chipDriver) file(ch int, name string) string {
	return filepath.Join(d.dir, "pwm"+strconv.Itoa(ch), name)
}

func (d *chipDriver) Export(ch int) error {
	return write(filepath.Join(d.dir, "export"), strconv.Itoa(ch))
}

func (d *chipDriver) Unexport(ch int) error {
	return write(filepath.Join(d.dir, "unexport"), strconv.Itoa(ch))
}

// DutyCycle takes duty as a percentage of the programmed period.
func (d *chipDriver) DutyCycle(ch int, duty float64) error {
	period, err := readInt(d.file(ch, "period"))
	if err != nil {
		return err
	}
	ns := int64(duty / 100 * float64(period))
	return write(d.file(ch, "duty_cycle"), strconv.FormatInt(ns, 10))
}

func (d *chipDriver) Frequency(ch, freq int) error {
	if freq <= 0 {
		return fmt.Errorf("invalid frequency %d", freq)
	}
	period := int64(1e9 / freq)
	// the kernel rejects a period shorter than the current duty
	if duty, err := readInt(d.file(ch, "duty_cycle")); err == nil && duty > period {
		if err := write(d.file(ch, "duty_cycle"), "0"); err != nil {
			return err
		}
	}
	return write(d.file(ch, "period"), strconv.FormatInt(period, 10))
}

func (d *chipDriver) Enable(ch int) error {
	return write(d.file(ch, "enable"), "1")
}

func (d *chipDriver) Disable(ch int) error {
	return write(d.file(ch, "enable"), "0")
}

func (d *chipDriver) IsEnabled(ch int) (bool, error) {
	b, err := os.ReadFile(d.file(ch, "enable"))
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(string(b)) == "1", nil
}

func (d *chipDriver) IsExported(ch int) (bool, error) {
	_, err := os.Stat(filepath.Join(d.dir, "pwm"+strconv.Itoa(ch)))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

func readInt(path string) (int64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(strings.TrimSpace(string(b)), 10, 64)
}

func write(path, value string) error {
	return os.WriteFile(path, []byte(value), 0o644)
}
