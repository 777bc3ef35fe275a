package resilience

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransientNil(t *testing.T) {
	assert.False(t, IsTransient(nil))
}

func TestIsTransientWrappedTransientError(t *testing.T) {
	inner := NewTransientError(errors.New("too many requests"), 429)
	wrapped := fmt.Errorf("calling service: %w", inner)
	assert.True(t, IsTransient(wrapped))
}

func TestIsTransientSyscallErrors(t *testing.T) {
	assert.True(t, IsTransient(syscall.ECONNRESET))
	assert.True(t, IsTransient(fmt.Errorf("dial: %w", syscall.ECONNREFUSED)))
}

func TestIsTransientProviderPatterns(t *testing.T) {
	assert.True(t, IsTransient(errors.New("anthropic: overloaded_error")))
	assert.True(t, IsTransient(errors.New("googleapi: RESOURCE EXHAUSTED: rate limit exceeded")))
	assert.True(t, IsTransient(errors.New("request failed with status 529")))
	assert.True(t, IsTransient(errors.New("i/o timeout")))
}

func TestIsTransientPermanentErrors(t *testing.T) {
	assert.False(t, IsTransient(errors.New("invalid api key")))
	assert.False(t, IsTransient(errors.New("model not found")))
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504, 529} {
		assert.True(t, IsTransientHTTPStatus(code), "status %d", code)
	}
	for _, code := range []int{200, 400, 401, 403, 404, 422} {
		assert.False(t, IsTransientHTTPStatus(code), "status %d", code)
	}
}
