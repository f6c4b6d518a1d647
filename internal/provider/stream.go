// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LegalEase Contributors

package provider

import "context"

// streamBuffer is the event channel capacity handed to consumers.
const streamBuffer = 64

// Emit delivers one event. It reports false once the stream's context is
// done, after which the producer should return.
type Emit func(ChatEvent) bool

// Stream runs produce on its own goroutine and returns the events it emits.
// A nil return from produce ends the stream with EventTypeDone; an error
// ends it with EventTypeError. Sends stop when ctx is done, so a consumer
// that walks away never leaves the producer blocked.
func Stream(ctx context.Context, produce func(emit Emit) error) <-chan ChatEvent {
	ch := make(chan ChatEvent, streamBuffer)
	emit := func(ev ChatEvent) bool {
		select {
		case ch <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	go func() {
		defer close(ch)
		if err := produce(emit); err != nil {
			emit(ChatEvent{Type: EventTypeError, Error: err.Error()})
			return
		}
		emit(ChatEvent{Type: EventTypeDone})
	}()
	return ch
}

// EmitText sends a non-empty text delta.
func EmitText(emit Emit, text string) bool {
	if text == "" {
		return true
	}
	return emit(ChatEvent{Type: EventTypeTextDelta, Text: text})
}
