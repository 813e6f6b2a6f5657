/*
Copyright © 2019 the InMAP authors.
This file is part of regrid.

regrid is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

regrid is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with regrid.  If not, see <http://www.gnu.org/licenses/>.
*/

package regrid

import "fmt"

// FileNotFoundError is returned when an expected input file is missing
// or cannot be opened. It is fatal; there is no retry.
type FileNotFoundError struct {
	Path string
	Err  error
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("regrid: input file %s: %v", e.Path, e.Err)
}

func (e *FileNotFoundError) Unwrap() error { return e.Err }

// FormatError is returned when an input file cannot be parsed as
// NetCDF, or does not contain the expected variable or coordinate
// vectors.
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("regrid: reading %s: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// InsufficientDataError is returned when the source grid is too sparse
// or degenerate for the configured interpolation kernel.
type InsufficientDataError struct {
	Reason string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("regrid: insufficient source data: %s", e.Reason)
}

// WriteError is returned when the output file cannot be created or
// written. No partial output file is left behind.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("regrid: writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
