package materialize

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/tiff" // TIFF decoder registration
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// ErrNotImage is returned for texture payloads that are not a known image.
var ErrNotImage = errors.New("texture payload is not an image")

// TextureInfo describes a validated texture.
type TextureInfo struct {
	Format string `yaml:"format"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// DecodeTexture decodes a texture payload. Formats with a signature are
// sniffed first; anything unrecognised is tried as TGA.
func DecodeTexture(data []byte) (image.Image, TextureInfo, error) {
	if len(data) == 0 {
		return nil, TextureInfo{}, fmt.Errorf("%w: empty payload", ErrNotImage)
	}

	if kind, _ := filetype.Match(data); kind != filetype.Unknown {
		if !filetype.IsImage(data) {
			return nil, TextureInfo{}, fmt.Errorf("%w: detected %s", ErrNotImage, kind.MIME.Value)
		}
		img, format, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, TextureInfo{}, fmt.Errorf("decoding %s texture: %w", kind.Extension, err)
		}
		return img, infoOf(img, format), nil
	}

	img, err := decodeTGA(data)
	if err != nil {
		return nil, TextureInfo{}, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	return img, infoOf(img, "tga"), nil
}

func infoOf(img image.Image, format string) TextureInfo {
	b := img.Bounds()
	return TextureInfo{Format: format, Width: b.Dx(), Height: b.Dy()}
}
