package nvim

import (
	"bytes"

	"github.com/neovim/go-client/nvim"
)

// buffer exposes a Neovim buffer to the engine. RPC failures read as an empty,
// unnamed buffer, which the engine does not check.
type buffer struct {
	v *nvim.Nvim
	b nvim.Buffer
}

func (b *buffer) Text() string {
	lines, err := b.v.BufferLines(b.b, 0, -1, false)
	if err != nil || len(lines) == 0 {
		return ""
	}
	return string(bytes.Join(lines, []byte("\n"))) + "\n"
}

func (b *buffer) LineCount() int {
	n, err := b.v.BufferLineCount(b.b)
	if err != nil {
		return 0
	}
	return n
}

func (b *buffer) Language() string {
	var ft string
	if err := b.v.Call("getbufvar", &ft, int(b.b), "&filetype"); err != nil {
		return ""
	}
	return ft
}

func (b *buffer) Path() string {
	name, err := b.v.BufferName(b.b)
	if err != nil {
		return ""
	}
	return name
}
