package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// Event is a driver transition captured for post-mortem analysis
type Event struct {
	Type   uint8  // Event type code
	Unit   uint8  // Peripheral instance (GPT1 = 1, ...)
	Value1 uint32 // Context-dependent value
	Value2 uint32 // Context-dependent value
}

// Event type codes
const (
	EvtTimerStart     = 1 // Counting enabled
	EvtTimerStop      = 2 // Counting disabled
	EvtSetTop         = 3 // Reload value reprogrammed (v1=top, v2=reset counter)
	EvtTimerExpire    = 4 // ISR dispatched (v1=callback present)
	EvtTimerReset     = 5 // Software reset completed (v1=spins)
	EvtClockReject    = 6 // Clock path could not be resolved
	EvtUnknownCommand = 7 // Host sent an unregistered command (v1=id)
)

const (
	EventRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {}

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// Event ring buffer (non-blocking, safe to call from an ISR)
	eventRing     [EventRingSize]Event
	eventRingHead uint8
	eventsEnabled bool = true
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// RecordEvent captures an event in the ring buffer.
// Never blocks and never allocates, so interrupt handlers may call it.
func RecordEvent(eventType, unit uint8, value1, value2 uint32) {
	if !eventsEnabled {
		return
	}
	idx := eventRingHead
	eventRing[idx] = Event{
		Type:   eventType,
		Unit:   unit,
		Value1: value1,
		Value2: value2,
	}
	eventRingHead = (idx + 1) % EventRingSize
}

// Events returns the recorded events, oldest first.
func Events() []Event {
	out := make([]Event, 0, EventRingSize)
	start := eventRingHead
	for i := uint8(0); i < EventRingSize; i++ {
		evt := eventRing[(start+i)%EventRingSize]
		if evt.Type == 0 {
			continue // Empty slot
		}
		out = append(out, evt)
	}
	return out
}

func eventName(t uint8) string {
	switch t {
	case EvtTimerStart:
		return "START"
	case EvtTimerStop:
		return "STOP"
	case EvtSetTop:
		return "SET_TOP"
	case EvtTimerExpire:
		return "EXPIRE"
	case EvtTimerReset:
		return "RESET"
	case EvtClockReject:
		return "CLOCK_REJECT!"
	case EvtUnknownCommand:
		return "UNKNOWN_CMD!"
	default:
		return "UNKNOWN"
	}
}

// DumpEvents outputs the event ring (call on shutdown/error)
func DumpEvents() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[EVENT] === Event Ring Dump ===")
	for _, evt := range Events() {
		debugPrintln("[EVENT] " + eventName(evt.Type) +
			" unit=" + utoa(uint32(evt.Unit)) +
			" v1=" + utoa(evt.Value1) +
			" v2=" + utoa(evt.Value2))
	}
	debugPrintln("[EVENT] === End Dump ===")
}

// ClearEvents clears the event ring
func ClearEvents() {
	for i := range eventRing {
		eventRing[i] = Event{}
	}
	eventRingHead = 0
}
