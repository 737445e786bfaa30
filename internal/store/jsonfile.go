// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package store

import (
	"context"
	"errors"
	"io/fs"

	"crawshaw.dev/jsonfile"
)

// JSONFile is a file-backed implementation of the [Store] interface.
//
// Every Set is written through to disk before it returns, so the file is
// durable across restarts. A file that exists but does not parse is reported
// as an error; callers are expected to treat this as fatal at startup.
type JSONFile struct {
	f *jsonfile.JSONFile[jsonStore]
}

type jsonStore struct {
	Data map[string][]byte `json:"data"`
}

// NewJSONFile creates a new [JSONFile] backed by the file at path, creating
// the file if it does not exist.
func NewJSONFile(path string) (*JSONFile, error) {
	f, err := jsonfile.Load[jsonStore](path)
	if errors.Is(err, fs.ErrNotExist) {
		f, err = jsonfile.New[jsonStore](path)
		if err == nil {
			err = f.Write(func(js *jsonStore) error {
				js.Data = make(map[string][]byte)
				return nil
			})
		}
	}
	if err != nil {
		return nil, err
	}
	return &JSONFile{f: f}, nil
}

// Get retrieves a value for a given key.
func (s *JSONFile) Get(_ context.Context, key string) ([]byte, error) {
	var val []byte
	s.f.Read(func(js *jsonStore) {
		val = js.Data[key]
	})
	return val, nil
}

// Set stores a value for a given key.
func (s *JSONFile) Set(_ context.Context, key string, val []byte) error {
	return s.f.Write(func(js *jsonStore) error {
		if js.Data == nil {
			js.Data = make(map[string][]byte)
		}
		js.Data[key] = val
		return nil
	})
}

// Close closes the file store.
func (s *JSONFile) Close() error { return nil }
