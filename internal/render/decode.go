package render

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"net/url"
	"os"
	"strings"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedSource is returned for image references that are neither
// data URLs nor readable files.
var ErrUnsupportedSource = errors.New("unsupported image source")

// DecodeSource turns an image object's src into a bitmap. src is either
// a data URL or a local file path.
func DecodeSource(src string) (image.Image, error) {
	data, err := sourceBytes(src)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func sourceBytes(src string) ([]byte, error) {
	if src == "" {
		return nil, ErrUnsupportedSource
	}
	if strings.HasPrefix(src, "data:") {
		meta, payload, ok := strings.Cut(src[len("data:"):], ",")
		if !ok {
			return nil, fmt.Errorf("%w: malformed data url", ErrUnsupportedSource)
		}
		if strings.HasSuffix(meta, ";base64") {
			b, err := base64.StdEncoding.DecodeString(payload)
			if err != nil {
				b, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
			}
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUnsupportedSource, err)
			}
			return b, nil
		}
		s, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedSource, err)
		}
		return []byte(s), nil
	}
	b, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedSource, err)
	}
	return b, nil
}

// DataURL wraps raw bytes of the given mime type in a base64 data URL.
func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ThumbnailQuality is the JPEG quality used for previews.
const ThumbnailQuality = 20

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: ThumbnailQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
