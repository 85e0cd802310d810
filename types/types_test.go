package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	err := NewError(KindConstruction, "The operator:op is not supported")

	assert.Equal(t, "The operator:op is not supported", err.Error())
	assert.True(t, errors.Is(err, ErrConstruction))
	assert.False(t, errors.Is(err, ErrTransport))
}

func TestErrorWithCause(t *testing.T) {
	cause := &StatusError{Node: "http://solr1:8983/solr/", StatusCode: 503, Reason: "Service Unavailable"}
	err := WrapError(KindTransport, "Unable to fetch from any SOLR nodes", cause)

	assert.Contains(t, err.Error(), "Unable to fetch from any SOLR nodes")
	assert.Contains(t, err.Error(), "Service Unavailable")
	assert.True(t, errors.Is(err, ErrTransport))

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 503, statusErr.StatusCode)
}

func TestIsKind(t *testing.T) {
	err := NewError(KindNotFound, "missing")
	wrapped := errors.Join(errors.New("outer"), err)

	assert.True(t, IsKind(wrapped, KindNotFound))
	assert.False(t, IsKind(wrapped, KindDuplicateKey))
	assert.False(t, IsKind(errors.New("plain"), KindNotFound))
}

func TestNodeError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &NodeError{Node: "http://solr2:8983/solr/", Cause: cause}

	assert.Contains(t, err.Error(), "solr2")
	assert.Contains(t, err.Error(), "connection refused")
	assert.True(t, errors.Is(err, cause))
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindConstruction, "construction"},
		{KindDuplicateKey, "duplicate_key"},
		{KindNotFound, "not_found"},
		{KindTransport, "transport"},
		{KindParse, "parse"},
		{KindMembership, "membership"},
		{KindSchema, "schema"},
		{KindMissingSection, "missing_section"},
		{KindConfiguration, "configuration"},
		{ErrorKind(42), "unknown(42)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.String())
		})
	}
}

func TestEverySentinelIsDistinct(t *testing.T) {
	seen := make(map[error]ErrorKind)
	for k := KindConstruction; k <= KindConfiguration; k++ {
		s := k.Sentinel()
		require.NotNil(t, s, k.String())
		_, dup := seen[s]
		require.False(t, dup, k.String())
		seen[s] = k
	}
}
