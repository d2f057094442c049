// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
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

package sortspec

import (
	"strings"

	"fdsgo/internal/fdserr"
	"fdsgo/internal/view"
)

// Compile parses the "-O <fields>" CLI string into a Spec.
// Each comma-separated entry is a field name optionally suffixed with
// ":asc" or ":desc" (default "desc", matching the engine's natural
// descending sort order).
func Compile(spec string, def *view.Definition) (Spec, error) {
	var out Spec
	for _, tok := range strings.Split(spec, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		name, asc := tok, false
		if i := strings.IndexByte(tok, ':'); i >= 0 {
			name, tok = tok[:i], tok[i+1:]
			switch strings.ToLower(tok) {
			case "asc", "ascending":
				asc = true
			case "desc", "descending":
				asc = false
			default:
				return nil, fdserr.Config("invalid sort direction %q for field %q", tok, name)
			}
		}
		f, ok := def.FieldByName(name)
		if !ok {
			return nil, fdserr.Config("unknown sort field %q", name)
		}
		out = append(out, Entry{Field: f, Ascending: asc})
	}
	if len(out) == 0 {
		return nil, fdserr.Config("empty sort specification")
	}
	return out, nil
}
