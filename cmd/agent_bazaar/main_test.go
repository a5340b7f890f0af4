package main

import (
	"io"
	"testing"

	"github.com/go-kratos/kratos/v2/log"
)

func TestNewZapLogger(t *testing.T) {
	zapLogger := NewZapLogger(log.NewStdLogger(io.Discard))
	if zapLogger == nil {
		t.Fatal("expected a usable zap logger")
	}
	// Must be safe to use immediately
	zapLogger.Info("logger constructed")
}
