package modfile

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
	"src.elabenv.dev/pkg/decl"
	"src.elabenv.dev/pkg/name"
)

// A module file starts with a magic line and a checksum line, followed by
// the YAML body:
//
//	elabenv-module 1
//	blake3 <hex digest of the body>
//	imports: [...]
//	...
const (
	magic          = "elabenv-module 1"
	checksumPrefix = "blake3 "
)

// Errors for malformed module files. They are wrapped in ModuleReadError by
// Read.
var (
	ErrBadMagic         = errors.New("not a module file")
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

type encodedBody struct {
	Imports       []name.Name        `yaml:"imports"`
	Constants     []decl.Declaration `yaml:"constants"`
	Entries       []encodedEntries   `yaml:"entries"`
	Modifications string             `yaml:"modifications,omitempty"`
}

type encodedEntries struct {
	Extension name.Name `yaml:"extension"`
	Entries   []any     `yaml:"entries"`
}

type decodedBody struct {
	Imports       []name.Name        `yaml:"imports"`
	Constants     []decl.Declaration `yaml:"constants"`
	Entries       []decodedEntries   `yaml:"entries"`
	Modifications string             `yaml:"modifications"`
}

type decodedEntries struct {
	Extension name.Name   `yaml:"extension"`
	Entries   []yaml.Node `yaml:"entries"`
}

// Encode encodes module data in the module file format.
func Encode(d *ModuleData) ([]byte, error) {
	body := encodedBody{
		Imports:   d.Imports,
		Constants: d.Constants,
		Entries:   make([]encodedEntries, len(d.Entries)),
	}
	for i, e := range d.Entries {
		body.Entries[i] = encodedEntries{e.Extension, e.Entries}
	}
	if len(d.Modifications) > 0 {
		body.Modifications = base64.StdEncoding.EncodeToString(d.Modifications)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&body); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	sum := Checksum(buf.Bytes())

	var out bytes.Buffer
	out.Grow(len(magic) + len(checksumPrefix) + len(sum) + 2 + buf.Len())
	out.WriteString(magic + "\n")
	out.WriteString(checksumPrefix + sum + "\n")
	out.Write(buf.Bytes())
	return out.Bytes(), nil
}

// Checksum returns the hex blake3 digest of data.
func Checksum(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Decode decodes module data from the module file format. Extension entries in
// the result are *yaml.Node values.
func Decode(data []byte) (*ModuleData, error) {
	line, rest, ok := bytes.Cut(data, []byte("\n"))
	if !ok || string(line) != magic {
		return nil, ErrBadMagic
	}
	line, body, ok := bytes.Cut(rest, []byte("\n"))
	if !ok || !bytes.HasPrefix(line, []byte(checksumPrefix)) {
		return nil, ErrBadMagic
	}
	wantSum, err := hex.DecodeString(string(line[len(checksumPrefix):]))
	if err != nil {
		return nil, fmt.Errorf("bad checksum line: %w", err)
	}
	sum := blake3.Sum256(body)
	if !bytes.Equal(sum[:], wantSum) {
		return nil, ErrChecksumMismatch
	}

	var decoded decodedBody
	if err := yaml.Unmarshal(body, &decoded); err != nil {
		return nil, err
	}
	d := &ModuleData{
		Imports:   decoded.Imports,
		Constants: decoded.Constants,
		Entries:   make([]ExtensionEntries, len(decoded.Entries)),
	}
	for i, e := range decoded.Entries {
		entries := make([]any, len(e.Entries))
		for j := range e.Entries {
			entries[j] = &e.Entries[j]
		}
		d.Entries[i] = ExtensionEntries{e.Extension, entries}
	}
	if decoded.Modifications != "" {
		d.Modifications, err = base64.StdEncoding.DecodeString(decoded.Modifications)
		if err != nil {
			return nil, fmt.Errorf("bad modifications: %w", err)
		}
	}
	return d, nil
}
