/*
Copyright © 2024 the heatload authors.
This file is part of heatload.

heatload is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

heatload is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with heatload.  If not, see <http://www.gnu.org/licenses/>.
*/

package heatload

import (
	"encoding/gob"
	"fmt"
	"io"

	"github.com/ctessum/geom"
)

func init() {
	gob.Register(geom.Polygon{})
	gob.Register(geom.MultiPolygon{})
}

// Save writes c to w in gob format.
func Save(w io.Writer, c *Collection) error {
	e := gob.NewEncoder(w)
	if err := e.Encode(c); err != nil {
		return fmt.Errorf("heatload.Save: %v", err)
	}
	return nil
}

// Load reads a collection previously written by Save from r.
func Load(r io.Reader) (*Collection, error) {
	dec := gob.NewDecoder(r)
	c := new(Collection)
	if err := dec.Decode(c); err != nil {
		return nil, fmt.Errorf("heatload.Load: %v", err)
	}
	return c, nil
}
