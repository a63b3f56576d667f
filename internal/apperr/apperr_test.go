package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, Conflict, KindOf(New(Conflict, "taken")))
	assert.Equal(t, Unauthorized, KindOf(New(Unauthorized, "nope")))
	assert.Equal(t, Internal, KindOf(errors.New("plain")))
	assert.Equal(t, Internal, KindOf(nil))
}

func TestKindOfWrapped(t *testing.T) {
	inner := New(NotFound, "user not found")
	outer := fmt.Errorf("loading profile: %w", inner)
	assert.Equal(t, NotFound, KindOf(outer))
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "taken", MessageOf(New(Conflict, "taken")))
	assert.Equal(t, "internal server error", MessageOf(errors.New("sql: connection refused")),
		"internal causes never leak to clients")
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Wrap(Internal, "failed to create user", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to create user")
}
