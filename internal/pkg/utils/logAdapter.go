package utils

import (
	"github.com/airenas/go-app/pkg/goapp"
	"github.com/rs/zerolog"
	"github.com/vgarvardt/gue/v5/adapter"
)

// GueLogAdapter writes gue pool logs to the app logger
type GueLogAdapter struct {
	fields []adapter.Field
}

// NewGueLoggerAdapter creates adapter, the pool name is added to every record
func NewGueLoggerAdapter(pool string) *GueLogAdapter {
	return &GueLogAdapter{fields: []adapter.Field{adapter.F("pool", pool)}}
}

// Debug implements adapter.Logger
func (l *GueLogAdapter) Debug(msg string, fields ...adapter.Field) {
	l.do(goapp.Log.Debug(), fields...).Msg(msg)
}

// Info implements adapter.Logger
func (l *GueLogAdapter) Info(msg string, fields ...adapter.Field) {
	l.do(goapp.Log.Info(), fields...).Msg(msg)
}

// Error implements adapter.Logger
func (l *GueLogAdapter) Error(msg string, fields ...adapter.Field) {
	l.do(goapp.Log.Error(), fields...).Str(zerolog.ErrorFieldName, msg).Send()
}

// With implements adapter.Logger
func (l *GueLogAdapter) With(fields ...adapter.Field) adapter.Logger {
	res := make([]adapter.Field, 0, len(l.fields)+len(fields))
	res = append(res, l.fields...)
	res = append(res, fields...)
	return &GueLogAdapter{fields: res}
}

func (l *GueLogAdapter) do(le *zerolog.Event, fields ...adapter.Field) *zerolog.Event {
	for _, f := range l.fields {
		le = le.Interface(f.Key, f.Value)
	}
	for _, f := range fields {
		le = le.Interface(f.Key, f.Value)
	}
	return le
}
