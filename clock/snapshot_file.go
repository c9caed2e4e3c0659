//go:build !tinygo

package clock

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

type snapshotFile struct {
	Registers map[string]string `json:"registers"`
}

// MarshalJSON writes {"registers": {"0x400FC014": "0x000A8300"}}.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	f := snapshotFile{Registers: make(map[string]string, len(s))}
	for addr, v := range s {
		f.Registers[fmt.Sprintf("0x%08X", uint64(addr))] = fmt.Sprintf("0x%08X", v)
	}
	return json.Marshal(f)
}

// UnmarshalJSON accepts the MarshalJSON format. Addresses and values may be
// written in any base strconv understands (0x, 0o, 0b or decimal).
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var f snapshotFile
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	out := make(Snapshot, len(f.Registers))
	for k, v := range f.Registers {
		addr, err := strconv.ParseUint(k, 0, 32)
		if err != nil {
			return fmt.Errorf("snapshot address %q: %w", k, err)
		}
		val, err := strconv.ParseUint(v, 0, 32)
		if err != nil {
			return fmt.Errorf("snapshot value for %s: %w", k, err)
		}
		out[uintptr(addr)] = uint32(val)
	}
	*s = out
	return nil
}

// LoadSnapshot reads a JSON snapshot file.
func LoadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return s, nil
}

// SaveSnapshot writes s as indented JSON.
func SaveSnapshot(path string, s Snapshot) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
