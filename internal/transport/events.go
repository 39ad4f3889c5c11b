package transport

import (
	"context"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// EventEmitter forwards conversion events to the frontend
type EventEmitter struct {
	ctx context.Context
}

func NewEventEmitter(ctx context.Context) *EventEmitter {
	return &EventEmitter{ctx: ctx}
}

func (e *EventEmitter) Emit(name string, payload any) {
	wailsruntime.EventsEmit(e.ctx, name, payload)
}
