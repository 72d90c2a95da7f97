package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndError(t *testing.T) {
	err := New(ErrCodeTableNotFound, "no table in response")
	require.NotNil(t, err)
	assert.Equal(t, ErrCodeTableNotFound, err.Code)
	assert.Equal(t, "[TBL_001] no table in response", err.Error())
	assert.NotEmpty(t, err.Stack)
}

func TestErrorWithDetail(t *testing.T) {
	err := New(ErrCodeDatabaseError, "query failed").WithDetail("manufacturers lookup")
	assert.Equal(t, "[DB_001] query failed: manufacturers lookup", err.Error())

	// WithDetail must not mutate the original.
	base := New(ErrCodeDatabaseError, "query failed")
	_ = base.WithDetail("x")
	assert.Empty(t, base.Detail)
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeDatabaseError, "should vanish"))
}

func TestWrapPreservesChain(t *testing.T) {
	root := stderrors.New("connection refused")
	wrapped := Wrap(root, ErrCodeDatabaseError, "failed to upsert records")

	require.NotNil(t, wrapped)
	assert.True(t, stderrors.Is(wrapped, root))
	assert.Equal(t, root, stderrors.Unwrap(wrapped))
}

func TestWrapUnknownCodeAdoptsInnerCode(t *testing.T) {
	inner := New(ErrCodeSessionNotFound, "no such session")
	outer := Wrap(fmt.Errorf("handler: %w", inner), CodeUnknown, "request failed")
	assert.Equal(t, ErrCodeSessionNotFound, outer.Code)
}

func TestIsCode(t *testing.T) {
	inner := New(ErrCodeAgentRateLimit, "throttled")
	outer := Wrap(inner, ErrCodeDiscoveryFailed, "agent call failed")

	assert.True(t, IsCode(outer, ErrCodeDiscoveryFailed))
	assert.True(t, IsCode(outer, ErrCodeAgentRateLimit))
	assert.False(t, IsCode(outer, ErrCodeDatabaseError))
	assert.False(t, IsCode(nil, ErrCodeDatabaseError))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("gone")))
	assert.True(t, IsNotFound(New(ErrCodeRecordNotFound, "row missing")))
	assert.False(t, IsNotFound(Internal("boom")))
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil error", nil, CodeOK},
		{"plain error", stderrors.New("plain"), CodeUnknown},
		{"app error", New(ErrCodeBadRequest, "bad"), ErrCodeBadRequest},
		{"wrapped app error", fmt.Errorf("x: %w", New(ErrCodeTimeout, "slow")), ErrCodeTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetCode(tt.err))
		})
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrCodeSessionNotFound))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrCodeEmptyAPIName))
	assert.Equal(t, http.StatusTooManyRequests, HTTPStatus(ErrCodeAgentRateLimit))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(ErrCodeDatabaseError))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(ErrorCode("NO_SUCH")))
}

func TestDefaultMessage(t *testing.T) {
	assert.Equal(t, "session not found", DefaultMessage(ErrCodeSessionNotFound))
	assert.Equal(t, "unexpected error", DefaultMessage(ErrorCode("NO_SUCH")))
}

func TestConvenienceFactories(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, NotFound("x").Code)
	assert.Equal(t, ErrCodeBadRequest, InvalidParam("x").Code)
	assert.Equal(t, ErrCodeInternal, Internal("x").Code)
	assert.Equal(t, ErrCodeServiceUnavailable, Unavailable("x").Code)
}
