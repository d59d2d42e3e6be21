/*
 * chain.go, part of molingest.
 *
 * Copyright 2026 The molingest authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package source

import (
	"github.com/rmera/molingest"
)

//Chain reads several readers one after the other. Each reader is opened when the
//previous one is exhausted, and closed when it is exhausted itself.
type Chain struct {
	openers []func() (ReadCloser, error)
	cur     ReadCloser
	read    int
}

//NewChain returns a Chain over the given openers.
func NewChain(openers ...func() (ReadCloser, error)) *Chain {
	return &Chain{openers: openers}
}

//Next returns the next structure of the current reader, moving on to the next reader
//at the end of each. Errors other than the end of a reader are returned unchanged,
//and the chain is then exhausted.
func (C *Chain) Next() (*molingest.Structure, error) {
	for {
		if C.cur == nil {
			if len(C.openers) == 0 {
				return nil, molingest.NewLastFrameError("", "Next")
			}
			r, err := C.openers[0]()
			C.openers = C.openers[1:]
			if err != nil {
				C.openers = nil
				return nil, molingest.ErrDecorate(err, "Next")
			}
			C.cur = r
		}
		S, err := C.cur.Next()
		if err == nil {
			C.read++
			return S, nil
		}
		C.cur.Close()
		C.cur = nil
		if !molingest.IsLastFrame(err) {
			C.openers = nil
			return nil, molingest.ErrDecorate(err, "Next")
		}
	}
}

//Read returns the number of structures read so far.
func (C *Chain) Read() int {
	return C.read
}

//Close closes the current reader and drops the rest.
func (C *Chain) Close() error {
	C.openers = nil
	if C.cur == nil {
		return nil
	}
	err := C.cur.Close()
	C.cur = nil
	return err
}
