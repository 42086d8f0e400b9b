// Package pptx performs a sanity check of Office Open XML presentations by
// loading them with a PowerPoint 2007 reader. It does not interpret slide
// content.
package pptx

import (
	"errors"
	"fmt"
	"os"

	gopresentation "github.com/VantageDataChat/GoPPT"
)

var (
	ErrEmptyPackage = errors.New("empty package")
	ErrUnreadable   = errors.New("presentation could not be read")
)

// Summary describes a presentation package.
type Summary struct {
	Slides int
	Size   int64
}

// Inspect loads the presentation at path and counts its slides.
func Inspect(path string) (summary *Summary, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return nil, ErrEmptyPackage
	}

	reader, err := gopresentation.NewReader(gopresentation.ReaderPowerPoint2007)
	if err != nil {
		return nil, fmt.Errorf("new presentation reader: %w", err)
	}

	// The reader walks converter output; a malformed part must not take the
	// process down.
	defer func() {
		if r := recover(); r != nil {
			summary, err = nil, fmt.Errorf("%w: %v", ErrUnreadable, r)
		}
	}()

	pres, err := reader.Read(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	return &Summary{Slides: pres.GetSlideCount(), Size: info.Size()}, nil
}
