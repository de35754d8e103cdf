package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFieldError(t *testing.T) {
	err := NewFieldError("score", "only inspections carry a score")

	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Empty(t, vErr.Error()) // no underlying cause
	require.Len(t, vErr.Fields, 1)
	assert.Equal(t, FieldError{Field: "score", Error: "only inspections carry a score"}, vErr.Fields[0])
}

func TestNewUniquenessError(t *testing.T) {
	dup := errors.New("an organisation with this slug already exists")
	err := NewUniquenessError(dup, "slug")

	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, dup.Error(), vErr.Error())
	require.Len(t, vErr.Fields, 1)
	assert.Equal(t, FieldError{Field: "slug", Error: dup.Error()}, vErr.Fields[0])
}

func TestIsShutdown(t *testing.T) {
	err := NewShutdownError("integrity issue")
	assert.True(t, IsShutdown(err))
	assert.True(t, IsShutdown(errors.Wrap(err, "handling request")))
	assert.False(t, IsShutdown(errors.New("lol")))
}
