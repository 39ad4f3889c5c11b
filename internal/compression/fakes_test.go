package compression

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"sync"

	compressionDomain "docfit/internal/domain/compression"
)

const kb = 1024

// fakeCodec produces payloads whose length is chosen by sizeFn
type fakeCodec struct {
	mu        sync.Mutex
	sizeFn    func(quality float64, width, height int) int
	lossless  bool
	failAt    float64
	qualities []float64
	resizes   int
}

func (f *fakeCodec) Encode(img image.Image, format compressionDomain.Format, quality float64) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAt != 0 && quality == f.failAt {
		return nil, errors.New("encoder exploded")
	}
	f.qualities = append(f.qualities, quality)

	width, height := img.Bounds().Dx(), img.Bounds().Dy()
	size := f.sizeFn(quality, width, height)
	tag := fmt.Sprintf("%s:%dx%d:", format, width, height)
	data := make([]byte, size)
	copy(data, tag)
	return data, nil
}

func (f *fakeCodec) Resize(img image.Image, width, height int) image.Image {
	f.mu.Lock()
	f.resizes++
	f.mu.Unlock()
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

func (f *fakeCodec) Lossless(format compressionDomain.Format) bool {
	return f.lossless && format == compressionDomain.FormatPNG
}

func (f *fakeCodec) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.qualities)
}

// sizesByQuality maps quality hundredths to kilobytes, falling back to def
func sizesByQuality(def float64, table map[int]float64) func(float64, int, int) int {
	return func(quality float64, _, _ int) int {
		key := int(quality*100 + 0.5)
		if v, ok := table[key]; ok {
			return int(v * kb)
		}
		return int(def * kb)
	}
}

// fakePacker returns payloads of scripted sizes, one per pass
type fakePacker struct {
	sizesKB   []float64
	failOn    int
	failStrip bool
	inputs    []int
	strips    int
}

func (f *fakePacker) StripMetadata(data []byte) ([]byte, error) {
	if f.failStrip {
		return nil, errors.New("unreadable trailer")
	}
	if len(f.inputs) > 0 {
		return nil, errors.New("metadata stripped after a pass")
	}
	f.strips++
	return data, nil
}

func (f *fakePacker) Repack(data []byte) ([]byte, error) {
	f.inputs = append(f.inputs, len(data))
	pass := len(f.inputs)
	if pass == f.failOn {
		return nil, errors.New("malformed xref")
	}
	size := f.sizesKB[len(f.sizesKB)-1]
	if pass <= len(f.sizesKB) {
		size = f.sizesKB[pass-1]
	}
	return make([]byte, int(size*kb)), nil
}

// fakeAssembler records the pages it was given
type fakeAssembler struct {
	pages []compressionDomain.Page
	size  int
	err   error
}

func (f *fakeAssembler) Assemble(pages []compressionDomain.Page) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.pages = pages
	size := f.size
	if size == 0 {
		size = 100 * kb
	}
	return make([]byte, size), nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCompressor(codec *fakeCodec, packer *fakePacker, assembler *fakeAssembler) *Compressor {
	return NewCompressor(codec, packer, assembler, 2, testLogger())
}

func newImage(width, height int) image.Image {
	return image.NewRGBA(image.Rect(0, 0, width, height))
}
