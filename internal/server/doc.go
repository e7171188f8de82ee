// Package server exposes a running engine over HTTP and a websocket so a
// browser map renderer can act as the rendering collaborator.
//
// One goroutine owns the engine and ticks it in real time; handlers submit
// closures to it and never touch the engine directly. Every trace event is
// broadcast to connected clients, and clients send the same actions the
// automation scripts use:
//
//	{"do": "next"}
//	{"do": "goto", "main": 2, "content": 0}
//	{"do": "sub_scene", "arg": "antarctic"}
package server
