// Package render provides CPU rasterization for walkbg: a bounds-checked
// 32-bit pixel buffer and the dot-grid renderer that projects walk state
// onto it. The package draws into plain byte slices, so the same code paths
// serve shared-memory frames and in-memory test buffers.
package render

import (
	"fmt"
	"image/color"
)

// bytesPerPixel is the size of one pixel in the BGRX little-endian layout
// used by depth-24 ZPixmap frames.
const bytesPerPixel = 4

// PixelBuffer is a width x height raster of 32-bit BGRX pixels over a byte
// slice. Rows are stride bytes apart; stride may exceed width*4 when the
// backing store is padded. All pixel writes are clipped to the buffer, so
// callers never need their own bounds checks.
type PixelBuffer struct {
	width, height int
	stride        int
	data          []byte
}

// NewPixelBuffer allocates a zeroed buffer with the minimal stride.
func NewPixelBuffer(width, height int) *PixelBuffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &PixelBuffer{
		width:  width,
		height: height,
		stride: width * bytesPerPixel,
		data:   make([]byte, width*bytesPerPixel*height),
	}
}

// WrapPixelBuffer makes a buffer over caller-owned memory, typically a
// shared-memory segment. The slice must hold at least stride*height bytes
// and the stride must fit a full row of pixels.
func WrapPixelBuffer(width, height, stride int, data []byte) (*PixelBuffer, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("negative dimensions %dx%d", width, height)
	}
	if stride < width*bytesPerPixel {
		return nil, fmt.Errorf("stride %d too small for width %d", stride, width)
	}
	if len(data) < stride*height {
		return nil, fmt.Errorf("backing slice holds %d bytes, need %d", len(data), stride*height)
	}
	return &PixelBuffer{width: width, height: height, stride: stride, data: data}, nil
}

// Width returns the buffer width in pixels.
func (b *PixelBuffer) Width() int {
	return b.width
}

// Height returns the buffer height in pixels.
func (b *PixelBuffer) Height() int {
	return b.height
}

// Stride returns the distance between rows in bytes.
func (b *PixelBuffer) Stride() int {
	return b.stride
}

// Bytes returns the backing slice. Mutating it mutates the buffer.
func (b *PixelBuffer) Bytes() []byte {
	return b.data
}

// SetPixel writes c at (x, y). Coordinates outside the buffer are silently
// dropped. The alpha channel is stored as 0xFF; depth-24 frames ignore it.
func (b *PixelBuffer) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	i := y*b.stride + x*bytesPerPixel
	b.data[i+0] = c.B
	b.data[i+1] = c.G
	b.data[i+2] = c.R
	b.data[i+3] = 0xFF
}

// At returns the pixel at (x, y), or the zero color for coordinates
// outside the buffer.
func (b *PixelBuffer) At(x, y int) color.RGBA {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return color.RGBA{}
	}
	i := y*b.stride + x*bytesPerPixel
	return color.RGBA{B: b.data[i+0], G: b.data[i+1], R: b.data[i+2], A: b.data[i+3]}
}

// Fill sets every pixel to c. Padding bytes between rows are left alone.
func (b *PixelBuffer) Fill(c color.RGBA) {
	if b.width == 0 || b.height == 0 {
		return
	}
	// Write the first row pixel by pixel, then replicate it.
	for x := 0; x < b.width; x++ {
		i := x * bytesPerPixel
		b.data[i+0] = c.B
		b.data[i+1] = c.G
		b.data[i+2] = c.R
		b.data[i+3] = 0xFF
	}
	row := b.data[:b.width*bytesPerPixel]
	for y := 1; y < b.height; y++ {
		copy(b.data[y*b.stride:y*b.stride+len(row)], row)
	}
}
