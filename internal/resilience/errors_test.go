package resilience

import (
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient_NilError(t *testing.T) {
	t.Parallel()
	assert.False(t, IsTransient(nil))
}

func TestIsTransient_TransientError(t *testing.T) {
	t.Parallel()

	err := NewTransientError(eris.New("rate limited"), 429)
	assert.True(t, IsTransient(err))
	assert.Equal(t, 429, err.StatusCode)
	assert.Equal(t, "rate limited", err.Error())
}

func TestIsTransient_WrappedTransientError(t *testing.T) {
	t.Parallel()

	inner := NewTransientError(eris.New("503"), 503)
	wrapped := eris.Wrap(inner, "fetch profile")
	assert.True(t, IsTransient(wrapped))
}

func TestIsTransient_Syscall(t *testing.T) {
	t.Parallel()

	assert.True(t, IsTransient(syscall.ECONNRESET))
	assert.True(t, IsTransient(syscall.ECONNREFUSED))
	assert.True(t, IsTransient(syscall.ECONNABORTED))
}

func TestIsTransient_MessagePatterns(t *testing.T) {
	t.Parallel()

	assert.True(t, IsTransient(eris.New("read tcp: connection reset by peer")))
	assert.True(t, IsTransient(eris.New("dial tcp: i/o timeout")))
	assert.True(t, IsTransient(eris.New("lookup acme.com: no such host")))
}

func TestIsTransient_PermanentErrors(t *testing.T) {
	t.Parallel()

	assert.False(t, IsTransient(eris.New("unexpected status 404: not found")))
	assert.False(t, IsTransient(eris.New("invalid request body")))
}

func TestIsTransientHTTPStatus(t *testing.T) {
	t.Parallel()

	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), "status %d", code)
	}
	for _, code := range []int{200, 201, 301, 400, 401, 402, 403, 404, 422} {
		assert.False(t, IsTransientHTTPStatus(code), "status %d", code)
	}
}
