// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package faq

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/poiesic/civicfaq/core"
)

// Load reads the ordered FAQ list at path.
//
// Files ending in .yaml or .yml are decoded as YAML, anything else as JSON
// with case-insensitive field names. A missing or empty file yields an empty
// list. Every entry is sanitized and validated; the first invalid entry
// fails the load.
func Load(fsys afero.Fs, path string) ([]core.FAQEntry, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []core.FAQEntry{}, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}

	return Parse(data, isYAML(path))
}

// LoadFile reads path from the operating system filesystem.
func LoadFile(path string) ([]core.FAQEntry, error) {
	return Load(afero.NewOsFs(), path)
}

// Parse decodes an FAQ list from data.
func Parse(data []byte, asYAML bool) ([]core.FAQEntry, error) {
	var entries []core.FAQEntry
	if len(strings.TrimSpace(string(data))) > 0 {
		var err error
		if asYAML {
			err = yaml.Unmarshal(data, &entries)
		} else {
			err = json.Unmarshal(data, &entries)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
		}
	}

	if entries == nil {
		return []core.FAQEntry{}, nil
	}

	for i := range entries {
		entries[i].Sanitize()
		if err := core.ValidateFAQEntry(&entries[i]); err != nil {
			return nil, fmt.Errorf("%w: entry %d (%q): %w", ErrInvalidEntry, i, entries[i].Title, err)
		}
	}
	return entries, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
