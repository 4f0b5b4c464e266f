package library

import (
	"bytes"
	"embed"
	"path"
	"strings"

	"github.com/spf13/afero"
)

//go:embed lists/*.txt
var builtinLists embed.FS

// loadBuiltin parses the shipped list called name, if there is one
func loadBuiltin(fs afero.Fs, name string) (*List, bool, error) {
	data, err := builtinLists.ReadFile(path.Join("lists", strings.TrimSuffix(name, ".txt")+".txt"))
	if err != nil {
		return nil, false, nil
	}
	list, err := ParseFS(fs, name, bytes.NewReader(data))
	if list != nil {
		list.builtin = true
	}
	return list, true, err
}
