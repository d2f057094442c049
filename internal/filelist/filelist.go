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

// Package filelist is a thread-safe work queue of input file paths, glob
// patterns resolved once up front and handed out to worker goroutines one
// at a time via Pop.
package filelist

import (
	"os"
	"path/filepath"
	"sync"
)

// List is a mutex-guarded FIFO of file paths. The zero value is ready to
// use. Callers add every glob pattern up front (typically from CLI
// arguments) before workers start popping.
type List struct {
	mu    sync.Mutex
	files []string
}

// AddFiles expands pattern (a path glob, e.g. "/data/*.fds") and appends
// every matching regular file to the list. A pattern that matches nothing
// is not an error — the caller may have passed several patterns and only
// some apply to a given run.
func (l *List) AddFiles(pattern string) error {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range matches {
		if isDir(m) {
			continue
		}
		l.files = append(l.files, m)
	}
	return nil
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// Pop removes and returns one file path from the front of the list. The ok
// return is false once the list is empty; every worker goroutine spins on
// Pop until it sees ok == false.
func (l *List) Pop() (path string, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.files) == 0 {
		return "", false
	}
	path, l.files = l.files[0], l.files[1:]
	return path, true
}

// Len reports the number of files not yet popped.
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.files)
}
