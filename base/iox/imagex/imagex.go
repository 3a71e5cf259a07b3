// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package imagex decodes and encodes texture images, identifying
// their format from the file content rather than the name.
package imagex

import (
	"bufio"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cogentcore.org/spacesim/base/errors"
	"github.com/h2non/filetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Formats are the supported image encoding / decoding formats
type Formats int32

// The supported image encoding formats
const (
	None Formats = iota
	PNG
	JPEG
	TIFF
	BMP
)

var formatNames = [...]string{"none", "png", "jpeg", "tiff", "bmp"}

func (f Formats) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return "unknown"
	}
	return formatNames[f]
}

// headerSize is the number of leading bytes needed to sniff a file type.
const headerSize = 262

// ExtToFormat returns a Format based on a filename extension,
// which can start with a . or not
func ExtToFormat(ext string) (Formats, error) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	switch ext {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "tif", "tiff":
		return TIFF, nil
	case "bmp":
		return BMP, nil
	case "":
		return None, errors.New("imagex: empty extension")
	}
	return None, errors.Errorf("imagex: extension %q not recognized", ext)
}

// Sniff returns the format of the encoded image whose first bytes are head.
func Sniff(head []byte) (Formats, error) {
	kind, err := filetype.Match(head)
	if err != nil {
		return None, errors.Wrap(err)
	}
	if kind == filetype.Unknown {
		return None, errors.New("imagex: unrecognized file type")
	}
	f, err := ExtToFormat(kind.Extension)
	if err != nil {
		return None, errors.Errorf("imagex: unsupported image type %s", kind.MIME.Value)
	}
	return f, nil
}

// Open opens an image from the given filename.
// The format is sniffed from the content,
// and is returned using the Formats enum.
func Open(filename string) (image.Image, Formats, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, None, errors.Wrap(err)
	}
	defer file.Close()
	im, f, err := Read(file)
	if err != nil {
		return nil, f, errors.Errorf("%s: %w", filename, err)
	}
	return im, f, nil
}

// Read reads an image from the given reader.
// png, jpeg, tiff and bmp are supported.
func Read(r io.Reader) (image.Image, Formats, error) {
	br := bufio.NewReaderSize(r, headerSize)
	head, err := br.Peek(headerSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, None, errors.Wrap(err)
	}
	f, err := Sniff(head)
	if err != nil {
		return nil, None, err
	}
	var im image.Image
	switch f {
	case PNG:
		im, err = png.Decode(br)
	case JPEG:
		im, err = jpeg.Decode(br)
	case TIFF:
		im, err = tiff.Decode(br)
	case BMP:
		im, err = bmp.Decode(br)
	}
	if err != nil {
		return nil, f, errors.Wrap(err)
	}
	return im, f, nil
}

// Save saves the image to the given filename,
// with the format inferred from the filename.
func Save(im image.Image, filename string) error {
	f, err := ExtToFormat(filepath.Ext(filename))
	if err != nil {
		return err
	}
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err)
	}
	defer file.Close()
	bw := bufio.NewWriter(file)
	if err := Write(im, bw, f); err != nil {
		return err
	}
	return errors.Wrap(bw.Flush())
}

// Write writes the image to the given writer using the given format.
func Write(im image.Image, w io.Writer, f Formats) error {
	switch f {
	case PNG:
		return errors.Wrap(png.Encode(w, im))
	case JPEG:
		return errors.Wrap(jpeg.Encode(w, im, &jpeg.Options{Quality: 90}))
	case TIFF:
		return errors.Wrap(tiff.Encode(w, im, nil))
	case BMP:
		return errors.Wrap(bmp.Encode(w, im))
	}
	return errors.Errorf("imagex: format %v not valid", f)
}
