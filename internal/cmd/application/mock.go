package application

import (
	"github.com/rs/zerolog"

	"github.com/kodepos-id/kodepos"
	"github.com/kodepos-id/kodepos/pkg/profiles"
)

// Mock provides a mock implementation of Application for testing.
// A nil function field falls back to a working default: builders use the
// built-in profiles and the logger discards everything.
//
//	mock := &application.Mock{
//	    OutputFormatFunc: func() string { return "json" },
//	}
//	cmd := build.NewCommand(mock)
type Mock struct {
	BuilderFunc      func(opts ...kodepos.Option) (*kodepos.Builder, error)
	ProfilesFunc     func() profiles.Set
	DatabaseURLFunc  func() string
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

// Builder returns a builder using the mock function or kodepos.New.
func (m *Mock) Builder(opts ...kodepos.Option) (*kodepos.Builder, error) {
	if m.BuilderFunc != nil {
		return m.BuilderFunc(opts...)
	}
	return kodepos.New(append([]kodepos.Option{kodepos.WithProfiles(m.Profiles())}, opts...)...)
}

// Profiles returns profiles using the mock function or the built-ins.
func (m *Mock) Profiles() profiles.Set {
	if m.ProfilesFunc != nil {
		return m.ProfilesFunc()
	}
	return profiles.Builtin()
}

// DatabaseURL returns the DSN using the mock function or "".
func (m *Mock) DatabaseURL() string {
	if m.DatabaseURLFunc != nil {
		return m.DatabaseURLFunc()
	}
	return ""
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "json".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "json"
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builder using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}
