package events

import (
	"encoding/json"
	"log"
	"strings"
)

// LogObserver writes every matching event to the standard logger.
type LogObserver struct {
	name     string
	prefixes []string
}

// NewLogObserver creates an observer that logs events whose type starts with
// one of prefixes. No prefixes means every event.
func NewLogObserver(prefixes ...string) *LogObserver {
	return &LogObserver{name: "LogObserver", prefixes: prefixes}
}

// OnEvent logs the event type and its JSON payload.
func (o *LogObserver) OnEvent(event Event) error {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return err
	}
	log.Printf("[%s] %s %s", o.name, event.Type, payload)
	return nil
}

// GetName returns the observer's name.
func (o *LogObserver) GetName() string {
	return o.name
}

// ShouldHandle matches the configured prefixes.
func (o *LogObserver) ShouldHandle(eventType string) bool {
	if len(o.prefixes) == 0 {
		return true
	}
	for _, p := range o.prefixes {
		if strings.HasPrefix(eventType, p) {
			return true
		}
	}
	return false
}

var _ Observer = (*LogObserver)(nil)
