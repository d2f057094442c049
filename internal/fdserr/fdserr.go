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

// Package fdserr carries the named error kinds the aggregation engine
// defines: small typed errors rather than a third-party errors package,
// distinguished by call site so callers can decide fatal-vs-per-file-vs-
// per-record handling with a type switch.
package fdserr

import "fmt"

// ConfigError marks an invalid view-definition token, filter expression, or
// other startup-time misconfiguration. Fatal: no aggregation is attempted.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "config error: " + e.Msg }

func Config(format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// IoError marks a per-file failure (open/read). The worker logs it once and
// continues with the next file.
type IoError struct {
	Path string
	Err  error
}

func (e *IoError) Error() string { return fmt.Sprintf("io error on %s: %v", e.Path, e.Err) }
func (e *IoError) Unwrap() error { return e.Err }

// DecodeError marks one malformed record. It is absorbed silently, with no
// per-record log spam; only a counter is incremented.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "decode error: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// ResourceError marks an allocation failure. Fatal for the owning worker;
// it propagates to the caller of the aggregation entry point.
type ResourceError struct {
	Msg string
}

func (e *ResourceError) Error() string { return "resource error: " + e.Msg }

// InternalError marks an invariant violation — a bug, not a user error.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string { return "internal error: " + e.Msg }
