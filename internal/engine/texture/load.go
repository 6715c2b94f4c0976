// Package texture loads panorama images from disk or HTTP.
package texture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/tiff" // TIFF decoder registration
	_ "golang.org/x/image/webp" // WebP decoder registration

	"github.com/Faultbox/panoview/internal/logger"
)

const (
	// MaxImageBytes caps downloads and file reads.
	MaxImageBytes  = 256 << 20
	// MaxImagePixels caps the decoded size, checked from the image header
	// before decoding.
	MaxImagePixels = 16384 * 8192
)

// ErrImageTooLarge is returned for images whose header declares more than
// MaxImagePixels pixels.
var ErrImageTooLarge = errors.New("texture: image too large")

// Loader reads and decodes images. The zero value uses http.DefaultClient.
type Loader struct {
	Client *http.Client
}

// Load reads the image at src, a file path, file:// URL or http(s) URL, and
// returns it as RGBA with rows top to bottom.
func (l *Loader) Load(ctx context.Context, src string) (*image.RGBA, error) {
	data, err := l.read(ctx, src)
	if err != nil {
		return nil, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", src, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return nil, fmt.Errorf("%w: %s is %dx%d", ErrImageTooLarge, src, cfg.Width, cfg.Height)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", src, err)
	}

	bounds := img.Bounds()
	logger.Debug("panorama decoded",
		zap.String("src", src),
		zap.String("format", format),
		zap.Int("width", bounds.Dx()),
		zap.Int("height", bounds.Dy()),
	)

	return ToRGBA(img), nil
}

func (l *Loader) read(ctx context.Context, src string) ([]byte, error) {
	u, err := url.Parse(src)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 { // "C:\..." parses as scheme "c"
		return readFile(src)
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		return readFile(u.Path)
	case "http", "https":
		return l.fetch(ctx, src)
	default:
		return nil, fmt.Errorf("unsupported image source scheme %q", u.Scheme)
	}
}

func (l *Loader) fetch(ctx context.Context, src string) ([]byte, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", src, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", src, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %d", src, resp.StatusCode)
	}
	return readLimited(resp.Body, src)
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return readLimited(f, path)
}

func readLimited(r io.Reader, src string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", src, err)
	}
	if len(data) > MaxImageBytes {
		return nil, fmt.Errorf("%s exceeds %d bytes", src, MaxImageBytes)
	}
	return data, nil
}

// ToRGBA converts img to a zero-origin RGBA image, reusing it when possible.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
