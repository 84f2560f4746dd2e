package core

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"
)

type fakeKeys map[glfw.Key]glfw.Action

func (f fakeKeys) GetKey(key glfw.Key) glfw.Action {
	return f[key]
}

func TestInputClickIsReleaseAfterPress(t *testing.T) {
	var in Input
	keys := fakeKeys{}

	keys[glfw.KeyP] = glfw.Press
	in.Poll(keys)
	assert.True(t, in.Pressed[KeyP])
	assert.True(t, in.JustPressed[KeyP])
	assert.False(t, in.Clicked(KeyP))

	keys[glfw.KeyP] = glfw.Repeat
	in.Poll(keys)
	assert.True(t, in.Pressed[KeyP])
	assert.False(t, in.JustPressed[KeyP])

	keys[glfw.KeyP] = glfw.Release
	in.Poll(keys)
	assert.False(t, in.Pressed[KeyP])
	assert.True(t, in.Clicked(KeyP))

	in.Poll(keys)
	assert.False(t, in.Clicked(KeyP))
}

func TestInputResetSuppressesClick(t *testing.T) {
	var in Input
	keys := fakeKeys{glfw.KeyTab: glfw.Press}
	in.Poll(keys)

	in.Reset()
	keys[glfw.KeyTab] = glfw.Release
	in.Poll(keys)
	assert.False(t, in.Clicked(KeyTab))
}

func TestInputCoversAllKeys(t *testing.T) {
	assert.Len(t, keyToGlfw, int(keyCount))
}
