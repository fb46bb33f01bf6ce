package gui

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/san-kum/plife/internal/driver"
)

type command uint8

const (
	cmdNone command = iota
	cmdAction
	cmdQuit
	cmdReload
)

var keyActions = map[glfw.Key]driver.Action{
	glfw.KeyR:          driver.ActionResetCamera,
	glfw.KeyEqual:      driver.ActionZoomIn,
	glfw.KeyKPAdd:      driver.ActionZoomIn,
	glfw.KeyMinus:      driver.ActionZoomOut,
	glfw.KeyKPSubtract: driver.ActionZoomOut,
	glfw.KeySpace:      driver.ActionTogglePause,
	glfw.KeyN:          driver.ActionRandomizeRules,
}

func commandForKey(key glfw.Key) command {
	switch key {
	case glfw.KeyEscape, glfw.KeyQ:
		return cmdQuit
	case glfw.KeyC:
		return cmdReload
	}
	if _, ok := keyActions[key]; ok {
		return cmdAction
	}
	return cmdNone
}

func actionForKey(key glfw.Key) driver.Action {
	return keyActions[key]
}
