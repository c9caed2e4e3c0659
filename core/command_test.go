package core

import (
	"errors"
	"testing"
)

func TestCommandRegistry(t *testing.T) {
	registry := NewCommandRegistry()

	var got []byte
	err := registry.Register(6, "query_timer", func(data *[]byte) error {
		got = append(got, *data...)
		*data = nil
		return nil
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	cmd, ok := registry.GetCommand(6)
	if !ok || cmd.Name != "query_timer" {
		t.Fatalf("GetCommand(6) = %v, %v", cmd, ok)
	}

	data := []byte{1}
	if err := registry.Dispatch(6, &data); err != nil {
		t.Errorf("Dispatch failed: %v", err)
	}
	if len(got) != 1 || got[0] != 1 || len(data) != 0 {
		t.Errorf("handler saw %v, left %v", got, data)
	}
}

func TestCommandRegistryRejectsDuplicates(t *testing.T) {
	registry := NewCommandRegistry()
	noop := func(data *[]byte) error { return nil }

	if err := registry.Register(1, "capture_clocks", noop); err != nil {
		t.Fatal(err)
	}
	err := registry.Register(1, "other", noop)
	if !errors.Is(err, ErrDuplicateCommand) {
		t.Errorf("expected ErrDuplicateCommand, got %v", err)
	}
	if err != nil && err.Error() != "command ID already registered: 1 (capture_clocks)" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if registry.Count() != 1 {
		t.Errorf("expected 1 command, got %d", registry.Count())
	}
}

func TestCommandRegistryUnknown(t *testing.T) {
	ClearEvents()
	registry := NewCommandRegistry()

	var data []byte
	if err := registry.Dispatch(42, &data); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("expected ErrUnknownCommand, got %v", err)
	}

	events := Events()
	if len(events) != 1 || events[0].Type != EvtUnknownCommand || events[0].Value1 != 42 {
		t.Errorf("unexpected events %v", events)
	}
}

func TestCommandsSortedByID(t *testing.T) {
	registry := NewCommandRegistry()
	noop := func(data *[]byte) error { return nil }
	for _, id := range []uint16{6, 1, 3} {
		if err := registry.Register(id, "cmd"+Utoa(uint32(id)), noop); err != nil {
			t.Fatal(err)
		}
	}

	cmds := registry.Commands()
	if len(cmds) != 3 || cmds[0].ID != 1 || cmds[1].ID != 3 || cmds[2].ID != 6 {
		t.Errorf("unexpected order %v", cmds)
	}
	if cmds[2].Name != "cmd6" {
		t.Errorf("unexpected name %q", cmds[2].Name)
	}
}
