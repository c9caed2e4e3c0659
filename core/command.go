package core

import (
	"errors"
	"sort"
	"sync"
)

var (
	ErrUnknownCommand   = errors.New("unknown command")
	ErrDuplicateCommand = errors.New("command ID already registered")
)

// CommandHandler decodes its own arguments from data.
type CommandHandler func(data *[]byte) error

// Command is one host request the firmware answers.
type Command struct {
	ID      uint16
	Name    string
	Handler CommandHandler
}

// CommandRegistry maps wire IDs to handlers. IDs are fixed by the protocol
// rather than assigned at registration.
type CommandRegistry struct {
	mu       sync.RWMutex
	commands map[uint16]*Command
}

func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{commands: make(map[uint16]*Command)}
}

// Register adds handler under id.
func (r *CommandRegistry) Register(id uint16, name string, handler CommandHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, exists := r.commands[id]; exists {
		return WrapError(ErrDuplicateCommand, utoa(uint32(id))+" ("+prev.Name+")")
	}
	r.commands[id] = &Command{ID: id, Name: name, Handler: handler}
	return nil
}

func (r *CommandRegistry) GetCommand(id uint16) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[id]
	return cmd, ok
}

func (r *CommandRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Dispatch runs the handler registered for id.
func (r *CommandRegistry) Dispatch(id uint16, data *[]byte) error {
	cmd, ok := r.GetCommand(id)
	if !ok || cmd.Handler == nil {
		RecordEvent(EvtUnknownCommand, 0, uint32(id), 0)
		return ErrUnknownCommand
	}
	return cmd.Handler(data)
}

// Commands returns the registered commands ordered by ID.
func (r *CommandRegistry) Commands() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		out = append(out, *cmd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
