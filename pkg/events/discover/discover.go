// Package discover builds bus bindings from the methods of a handler object.
//
// A method is a handler when its name starts with "On" or "Handle" and it
// takes exactly one parameter and returns nothing or an error:
//
//	type Auditor struct{ log []string }
//
//	func (a *Auditor) OnOrderPlaced(e OrderPlaced) error { ... }
//	func (a *Auditor) HandleAnything(e events.Payload)    { ... }
//
//	listeners, err := bus.RegisterBulk(discover.Source(&Auditor{}))
//
// The parameter type becomes the bus key. Methods promoted from embedded
// types are included. Priorities come from WithPriorities, then from a
// PriorityProvider implemented by the target, then default to Normal.
package discover

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/lunarlife/undefined-events/pkg/events"
)

// ErrNilTarget indicates Methods was called without a target.
var ErrNilTarget = errors.New("discover: nil target")

// PriorityProvider lets a handler object choose tiers for its own methods.
type PriorityProvider interface {
	EventPriority(method string) (events.Priority, bool)
}

// Option configures discovery.
type Option func(*options)

type options struct {
	names     map[string]string
	overrides map[string]events.Priority
	prefixes  []string
}

// WithPriorities overrides tiers by method name, using tier names such as
// "high" or "monitor" (as found in configuration files).
func WithPriorities(byMethod map[string]string) Option {
	return func(o *options) {
		for method, name := range byMethod {
			o.names[method] = name
		}
	}
}

// WithPriority overrides the tier of one method.
func WithPriority(method string, p events.Priority) Option {
	return func(o *options) {
		o.overrides[method] = p
	}
}

// WithPrefixes replaces the handler method prefixes (default "On", "Handle").
func WithPrefixes(prefixes ...string) Option {
	return func(o *options) {
		o.prefixes = prefixes
	}
}

var errorType = reflect.TypeFor[error]()

// Methods returns one binding per handler method of target, ordered by
// method name.
func Methods(target any, opts ...Option) ([]events.Binding, error) {
	if target == nil {
		return nil, ErrNilTarget
	}

	o := options{
		names:     make(map[string]string),
		overrides: make(map[string]events.Priority),
		prefixes:  []string{"On", "Handle"},
	}
	for _, opt := range opts {
		opt(&o)
	}
	for method, name := range o.names {
		p, err := events.ParsePriority(name)
		if err != nil {
			return nil, fmt.Errorf("discover: method %s: %w", method, err)
		}
		if _, set := o.overrides[method]; !set {
			o.overrides[method] = p
		}
	}

	provider, _ := target.(PriorityProvider)
	v := reflect.ValueOf(target)
	t := v.Type()

	var bindings []events.Binding
	for i := range t.NumMethod() {
		m := t.Method(i)
		if !o.isHandlerName(m.Name) {
			continue
		}
		fn := v.Method(i)
		param, ok := handlerParam(fn.Type())
		if !ok {
			continue
		}

		p := events.Normal
		if override, ok := o.overrides[m.Name]; ok {
			p = override
		} else if provider != nil {
			if chosen, ok := provider.EventPriority(m.Name); ok {
				p = chosen
			}
		}
		if !p.Valid() {
			return nil, fmt.Errorf("discover: method %s: %w", m.Name, events.ErrInvalidPriority)
		}

		bindings = append(bindings, bind(param, fn, p))
	}
	return bindings, nil
}

// Source adapts target to events.HandlerSource for Bus.RegisterBulk.
func Source(target any, opts ...Option) events.HandlerSource {
	return source{target: target, opts: opts}
}

type source struct {
	target any
	opts   []Option
}

func (s source) EventHandlers() ([]events.Binding, error) {
	return Methods(s.target, s.opts...)
}

func (o *options) isHandlerName(name string) bool {
	for _, prefix := range o.prefixes {
		if strings.HasPrefix(name, prefix) && len(name) > len(prefix) {
			return true
		}
	}
	return false
}

// handlerParam checks for func(P) or func(P) error and returns P.
func handlerParam(ft reflect.Type) (reflect.Type, bool) {
	if ft.NumIn() != 1 || ft.IsVariadic() {
		return nil, false
	}
	switch ft.NumOut() {
	case 0:
	case 1:
		if ft.Out(0) != errorType {
			return nil, false
		}
	default:
		return nil, false
	}
	return ft.In(0), true
}

func bind(param reflect.Type, fn reflect.Value, p events.Priority) events.Binding {
	returnsError := fn.Type().NumOut() == 1
	return events.Binding{
		Type:     param,
		Priority: p,
		Accepts: func(payload any) bool {
			return payload != nil && reflect.TypeOf(payload).AssignableTo(param)
		},
		Invoke: func(payload any) error {
			out := fn.Call([]reflect.Value{reflect.ValueOf(payload)})
			if !returnsError || out[0].IsNil() {
				return nil
			}
			return out[0].Interface().(error)
		},
	}
}
