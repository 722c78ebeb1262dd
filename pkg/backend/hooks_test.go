package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptHooksTakeOnce(t *testing.T) {
	hooks := NewScriptHooks(&Hook{Script: "before"}, &Hook{Script: "after"})

	first := hooks.Take()
	require.NotNil(t, first)
	assert.Equal(t, "before", first.Pre.Script)
	assert.Equal(t, "after", first.Post.Script)

	assert.Nil(t, hooks.Take())
	assert.Nil(t, hooks.Take())
}

func TestScriptHooksNilSafe(t *testing.T) {
	var hooks *ScriptHooks
	assert.Nil(t, hooks.Take())
	assert.Nil(t, NewScriptHooks(nil, nil))
}

func TestIsNoMatch(t *testing.T) {
	assert.True(t, IsNoMatch(NewError(CodeNoMatch, "no matching records")))
	assert.False(t, IsNoMatch(NewError(500, "boom")))
	assert.False(t, IsNoMatch(nil))
	assert.False(t, IsNoMatch(assert.AnError))
}
