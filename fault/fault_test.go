package fault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindMatching(t *testing.T) {
	err := New(ConfigurationError, "missing key %q", "mesh")
	assert.True(t, Is(err, ConfigurationError))
	assert.False(t, Is(err, IOFailure))
	assert.Contains(t, err.Error(), "configuration error")
	assert.Contains(t, err.Error(), `"mesh"`)
}

func TestWrapPreservesChain(t *testing.T) {
	cause := errors.New("disk gone")
	err := Wrap(IOFailure, cause, "cannot read raster")
	assert.True(t, Is(err, IOFailure))
	assert.ErrorIs(t, err, cause)

	outer := fmt.Errorf("while loading: %w", err)
	assert.True(t, Is(outer, IOFailure))
}

func TestNestedKinds(t *testing.T) {
	inner := New(ConvergenceFailure, "too many repeated steps")
	outer := Wrap(IOFailure, inner, "run aborted")
	assert.True(t, Is(outer, IOFailure))
	assert.True(t, Is(outer, ConvergenceFailure))
	assert.False(t, Is(outer, NotImplemented))
}
