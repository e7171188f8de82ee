package story

import (
	_ "embed"
	"fmt"
)

//go:embed builtin.yaml
var builtinYAML []byte

// Builtin returns a fresh copy of the story compiled into the binary.
func Builtin() *File {
	f, err := Parse(builtinYAML)
	if err != nil {
		panic(fmt.Sprintf("story: builtin story is invalid: %v", err))
	}
	return f
}

// Resolve loads path, or the built-in story when path is empty.
func Resolve(path string) (*File, error) {
	if path == "" {
		return Builtin(), nil
	}
	return Load(path)
}
