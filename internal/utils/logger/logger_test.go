package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("err"))
	assert.Equal(t, LevelInfo, ParseLevel("chatty"))
}

func TestErrorWrapsCause(t *testing.T) {
	SetLevel("error")
	defer SetLevel("info")

	cause := errors.New("connection refused")
	err := New("test").Error("failed to reach %s", cause, "redis")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to reach redis: connection refused", err.Error())
}
