package kensaku

import (
	"github.com/rs/zerolog"
)

func loadTermIntoArrayLogger(t Term, name string, arrayLogger *zerolog.Array) *zerolog.Array {
	dictLogger := zerolog.Dict()
	dictLogger = dictLogger.Int("component_id", int(t.ID))
	dictLogger = dictLogger.Str("component_name", name)
	dictLogger = dictLogger.Str("oper", t.Oper.String())
	if t.Access != AccessDefault {
		dictLogger = dictLogger.Str("access", t.Access.String())
	}
	if !t.IsSelf() {
		dictLogger = dictLogger.Stringer("src", t.Src)
	}
	return arrayLogger.Dict(dictLogger)
}

func loadFilterIntoEvent(zeroLoggerEvent *zerolog.Event, f *Filter) *zerolog.Event {
	zeroLoggerEvent = zeroLoggerEvent.Str("filter_id", f.id.String()).Stringer("ownership", f.own)
	s := f.state
	if s.IsEmpty() {
		return zeroLoggerEvent
	}
	if s.name != "" {
		zeroLoggerEvent = zeroLoggerEvent.Str("filter_name", s.name)
	}
	zeroLoggerEvent = zeroLoggerEvent.Int("term_count", len(s.terms))
	arrayLogger := zerolog.Arr()
	for i, t := range s.terms {
		arrayLogger = loadTermIntoArrayLogger(t, s.names[i], arrayLogger)
	}
	return zeroLoggerEvent.Array("terms", arrayLogger)
}

// logFilter logs the identity and terms of f.
func logFilter(logger *zerolog.Logger, level zerolog.Level, f *Filter, msg string) {
	zeroLoggerEvent := logger.WithLevel(level)
	if zeroLoggerEvent == nil {
		return
	}
	loadFilterIntoEvent(zeroLoggerEvent, f).Msg(msg)
}
