package capture

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/tablesight/tablesight/internal/utils"
)

// StaticSource serves one in-memory frame forever.
type StaticSource struct {
	frame *image.RGBA
}

// NewStaticSource wraps an in-memory image as a frame source.
func NewStaticSource(img image.Image) (*StaticSource, error) {
	if img == nil {
		return nil, errors.New("static source image is nil")
	}
	return &StaticSource{frame: utils.ToRGBA(img)}, nil
}

func (s *StaticSource) CaptureFrame() (*image.RGBA, error) { return s.frame, nil }

func (s *StaticSource) Bounds() image.Rectangle { return s.frame.Bounds() }

func (s *StaticSource) Close() error { return nil }

// FileSource serves a single image file, loaded once at construction.
type FileSource struct {
	frame *image.RGBA
	path  string
}

// NewFileSource loads path and serves it on every capture.
func NewFileSource(path string) (*FileSource, error) {
	img, err := utils.LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load frame image: %w", err)
	}
	return &FileSource{frame: utils.ToRGBA(img), path: path}, nil
}

func (s *FileSource) CaptureFrame() (*image.RGBA, error) { return s.frame, nil }

func (s *FileSource) Bounds() image.Rectangle { return s.frame.Bounds() }

func (s *FileSource) Close() error { return nil }

// DirSource replays the supported images of a directory in lexical
// order, decoding one per capture. With loop set the sequence wraps
// around; otherwise its end reports ErrNoFrame.
type DirSource struct {
	paths  []string
	index  int
	loop   bool
	bounds image.Rectangle
}

// NewDirSource lists dir and prepares the replay. The first image is
// decoded immediately so Bounds is known up front.
func NewDirSource(dir string, loop bool) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame directory: %w", err)
	}
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !utils.IsSupportedImage(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no supported images in %s", dir)
	}

	first, err := utils.LoadImage(paths[0])
	if err != nil {
		return nil, fmt.Errorf("failed to load first frame: %w", err)
	}
	return &DirSource{paths: paths, loop: loop, bounds: first.Bounds()}, nil
}

// CaptureFrame decodes and returns the next frame. A frame that fails
// to decode costs one cycle; the replay continues past it.
func (s *DirSource) CaptureFrame() (*image.RGBA, error) {
	if s.index >= len(s.paths) {
		if !s.loop {
			return nil, ErrNoFrame
		}
		s.index = 0
	}
	path := s.paths[s.index]
	s.index++

	img, err := utils.LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load frame %s: %w", path, err)
	}
	return utils.ToRGBA(img), nil
}

// Bounds reports the first frame's dimensions.
func (s *DirSource) Bounds() image.Rectangle { return s.bounds }

// Len returns the number of frames in the replay.
func (s *DirSource) Len() int { return len(s.paths) }

func (s *DirSource) Close() error { return nil }
