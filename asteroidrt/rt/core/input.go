package core

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

type Key int

const (
	KeyW Key = iota
	KeyA
	KeyS
	KeyD
	KeyP
	KeyTab
	KeyEscape
	KeyPageUp
	KeyPageDown
	KeyF1
	keyCount
)

// KeySource reports the current state of a key. *glfw.Window implements it.
type KeySource interface {
	GetKey(key glfw.Key) glfw.Action
}

type Input struct {
	Pressed      [keyCount]bool
	JustPressed  [keyCount]bool
	JustReleased [keyCount]bool
}

// Poll refreshes the key tables from src. Call once per frame after
// glfw.PollEvents.
func (input *Input) Poll(src KeySource) {
	for key, glfwKey := range keyToGlfw {
		action := src.GetKey(glfwKey)

		input.JustPressed[key] = false
		input.JustReleased[key] = false

		if glfw.Press == action || glfw.Repeat == action {
			if !input.Pressed[key] {
				input.JustPressed[key] = true
			}
			input.Pressed[key] = true
		} else if glfw.Release == action {
			if input.Pressed[key] {
				input.JustReleased[key] = true
			}
			input.Pressed[key] = false
		}
	}
}

// Clicked reports a completed press: the key went down and was released on
// this poll.
func (input *Input) Clicked(key Key) bool {
	return input.JustReleased[key]
}

// Reset forgets all held keys, so a release after Reset is not a click.
func (input *Input) Reset() {
	*input = Input{}
}

var keyToGlfw = map[Key]glfw.Key{
	KeyW:        glfw.KeyW,
	KeyA:        glfw.KeyA,
	KeyS:        glfw.KeyS,
	KeyD:        glfw.KeyD,
	KeyP:        glfw.KeyP,
	KeyTab:      glfw.KeyTab,
	KeyEscape:   glfw.KeyEscape,
	KeyPageUp:   glfw.KeyPageUp,
	KeyPageDown: glfw.KeyPageDown,
	KeyF1:       glfw.KeyF1,
}
