/*
Copyright © 2024 the lidarprof authors.
This file is part of lidarprof.

lidarprof is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

lidarprof is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with lidarprof.  If not, see <http://www.gnu.org/licenses/>.
*/

package lidarprof

import (
	"errors"
	"fmt"
)

// ErrEmptyWindow is returned by Bundle.Window when no profiles fall
// inside the requested time window.
var ErrEmptyWindow = errors.New("lidarprof: no profiles in time window")

// FileAccessError is returned when a file does not exist or cannot be
// opened or read.
type FileAccessError struct {
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("lidarprof: cannot access %s: %v", e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error { return e.Err }

// FileFormatError is returned when a file can be opened but is not a
// recognized container, lacks an expected variable, or holds arrays
// with unexpected shapes or ordering.
type FileFormatError struct {
	Path string
	// Variable is the variable the error refers to, if any.
	Variable string
	Err      error
}

func (e *FileFormatError) Error() string {
	if e.Variable != "" {
		return fmt.Sprintf("lidarprof: %s: variable %s: %v", e.Path, e.Variable, e.Err)
	}
	return fmt.Sprintf("lidarprof: %s: %v", e.Path, e.Err)
}

func (e *FileFormatError) Unwrap() error { return e.Err }

// RenderError is returned when a bundle cannot be plotted or the plot
// cannot be written.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string { return fmt.Sprintf("lidarprof: render: %v", e.Err) }

func (e *RenderError) Unwrap() error { return e.Err }
