package common

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-42")
	assert.Equal(t, "req-42", RequestIDFromContext(ctx))
}

func TestRequestIDMintedWhenUnset(t *testing.T) {
	id := RequestIDFromContext(context.Background())
	_, err := uuid.Parse(id)
	require.NoError(t, err, "minted request ID should be a UUID")
}
