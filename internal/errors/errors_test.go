package errors

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelsSurviveWrapping(t *testing.T) {
	base := Usagef("missing home for %s", "tomcat")
	wrapped := Wrapf(base, ErrConfiguration, "failed to create a %s configuration", "tomcat")

	assert.True(t, Is(wrapped, ErrUsage))
	assert.True(t, Is(wrapped, ErrConfiguration))
	assert.False(t, Is(wrapped, ErrCapability))
	assert.Equal(t, "failed to create a tomcat configuration: missing home for tomcat", wrapped.Error())
}

func TestWrapfNil(t *testing.T) {
	assert.NoError(t, Wrapf(nil, ErrLifecycle, "ignored"))
}

func TestBuilder(t *testing.T) {
	err := Build(errors.New("start failed")).
		WithHintf("check the [%s] file containing the container logs", "/tmp/out.log").
		WithDetailf("container %s", "generic").
		Mark(ErrLifecycle).
		Err()

	require.Error(t, err)
	assert.True(t, Is(err, ErrLifecycle))
	assert.Equal(t, []string{"check the [/tmp/out.log] file containing the container logs"}, Hints(err))
	assert.Equal(t, "start failed", err.Error())

	assert.NoError(t, Build(nil).WithHint("x").Err())
}
