// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package iox provides the shared file decoding used by the
// format-specific packages tomlx and yamlx.
package iox

import (
	"bufio"
	"io"
	"os"

	"cogentcore.org/spacesim/base/errors"
)

// Decoder is a decoder that can decode into the given value.
type Decoder interface {
	Decode(v any) error
}

// DecoderFunc returns a [Decoder] for the given reader.
type DecoderFunc func(r io.Reader) Decoder

// Open reads the given object from the given filename using the given [DecoderFunc].
func Open(v any, filename string, f DecoderFunc) error {
	fp, err := os.Open(filename)
	if err != nil {
		return errors.Wrap(err)
	}
	defer fp.Close()
	return Read(v, bufio.NewReader(fp), f)
}

// Read reads the given object from the given reader using the given [DecoderFunc].
func Read(v any, reader io.Reader, f DecoderFunc) error {
	d := f(reader)
	return errors.Wrap(d.Decode(v))
}
