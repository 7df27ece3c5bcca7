package loader

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/apex-sim/apexsim/emu"
)

// LoadDataMemory reads a comma-separated list of integers from path and
// stores them into mem starting at cell 0, grounded in the original APEX
// reference's SetMem data-memory initializer.
func LoadDataMemory(path string, mem *emu.DataMemory) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("loader: open data memory %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	addr := int64(0)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, field := range strings.Split(line, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			v, err := strconv.ParseInt(field, 10, 64)
			if err != nil {
				return fmt.Errorf("loader: %s: bad cell %q: %w", path, field, err)
			}
			mem.Write(addr, v)
			addr++
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("loader: read data memory %s: %w", path, err)
	}
	return nil
}
