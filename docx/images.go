package docx

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"wtpl/config"
	"wtpl/utils/images"
)

var (
	ErrRemoteDisabled   = errors.New("remote images are disabled")
	ErrUnsupportedImage = errors.New("unsupported image format")
)

// maxImageSize limits amount of data read from remote or local image source.
const maxImageSize = 32 << 20

// Fetcher retrieves remote image data.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher downloads images over http(s).
type HTTPFetcher struct {
	Client *http.Client
}

func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: timeout}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
}

// Image is picture data ready to be embedded: always png, jpeg or gif.
type Image struct {
	Data        []byte
	Ext         string
	ContentType string
	// natural size in pixels, 0 when unknown
	Width, Height int
}

// ImageLoader resolves image block sources into embeddable pictures.
type ImageLoader struct {
	cfg     *config.ImagesConfig
	fetcher Fetcher
	// base directory for relative file names
	BaseDir string
	log     *zap.Logger
}

// NewImageLoader creates loader. When fetcher is nil and remote images are
// enabled plain http client with configured timeout is used.
func NewImageLoader(cfg *config.ImagesConfig, fetcher Fetcher, log *zap.Logger) *ImageLoader {
	if fetcher == nil && cfg.FetchRemote {
		fetcher = NewHTTPFetcher(cfg.FetchTimeout)
	}
	return &ImageLoader{cfg: cfg, fetcher: fetcher, log: log}
}

// Load reads image from data URI, http(s) URL or file and normalizes it
// to a format Word displays.
func (l *ImageLoader) Load(ctx context.Context, src string) (*Image, error) {
	data, err := l.read(ctx, strings.TrimSpace(src))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("empty image data")
	}
	return l.normalize(data)
}

func (l *ImageLoader) read(ctx context.Context, src string) ([]byte, error) {
	lower := strings.ToLower(src)
	switch {
	case strings.HasPrefix(lower, "data:"):
		return decodeDataURI(src)
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		if !l.cfg.FetchRemote || l.fetcher == nil {
			return nil, ErrRemoteDisabled
		}
		data, err := l.fetcher.Fetch(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("unable to fetch image: %w", err)
		}
		return data, nil
	}

	name := src
	if u, err := url.Parse(src); err == nil && u.Scheme == "file" {
		name = u.Path
	}
	if !filepath.IsAbs(name) && l.BaseDir != "" {
		name = filepath.Join(l.BaseDir, name)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("unable to open image: %w", err)
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxImageSize))
}

// decodeDataURI handles "data:[<mediatype>][;base64],<data>".
func decodeDataURI(src string) ([]byte, error) {
	meta, payload, ok := strings.Cut(src[len("data:"):], ",")
	if !ok {
		return nil, errors.New("malformed data URI")
	}
	if strings.HasSuffix(strings.ToLower(meta), ";base64") {
		payload = strings.Map(func(r rune) rune {
			if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
				return -1
			}
			return r
		}, payload)
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// some producers drop padding
			if data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); err != nil {
				return nil, fmt.Errorf("malformed data URI: %w", err)
			}
		}
		return data, nil
	}
	data, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("malformed data URI: %w", err)
	}
	return []byte(data), nil
}

func (l *ImageLoader) normalize(data []byte) (*Image, error) {
	if images.IsSVG(data) {
		if !l.cfg.ConvertUnsupported {
			return nil, fmt.Errorf("%w: svg", ErrUnsupportedImage)
		}
		img, err := images.RasterizeSVG(data, 0, 0)
		if err != nil {
			return nil, fmt.Errorf("unable to rasterize svg: %w", err)
		}
		return l.encode(img, false)
	}

	kind, err := filetype.Image(data)
	if err != nil || kind == filetype.Unknown {
		return nil, ErrUnsupportedImage
	}

	switch kind.Extension {
	case "png", "jpg", "gif":
		res := &Image{Data: data, Ext: kind.Extension, ContentType: kind.MIME.Value}
		if kind.Extension == "jpg" {
			res.Ext = "jpeg"
		}
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			res.Width, res.Height = cfg.Width, cfg.Height
		} else {
			l.log.Debug("Unable to read image dimensions", zap.String("type", kind.MIME.Value), zap.Error(err))
		}
		return res, nil
	case "webp", "bmp", "tif":
		if !l.cfg.ConvertUnsupported {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, kind.MIME.Value)
		}
		img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		if err != nil {
			return nil, fmt.Errorf("unable to decode %s: %w", kind.MIME.Value, err)
		}
		l.log.Debug("Converting image", zap.String("from", kind.MIME.Value))
		return l.encode(img, true)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, kind.MIME.Value)
	}
}

// encode stores opaque photos as jpeg and everything else as png so
// transparency and sharp edges survive.
func (l *ImageLoader) encode(img image.Image, photo bool) (*Image, error) {
	b := img.Bounds()
	res := &Image{Width: b.Dx(), Height: b.Dy()}

	if photo && images.IsOpaque(img) {
		data, err := images.EncodeJPEG(img, l.cfg.JPEGQuality, images.DefaultDPI)
		if err != nil {
			return nil, fmt.Errorf("unable to encode jpeg: %w", err)
		}
		res.Data, res.Ext, res.ContentType = data, "jpeg", "image/jpeg"
		return res, nil
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return nil, fmt.Errorf("unable to encode png: %w", err)
	}
	res.Data, res.Ext, res.ContentType = buf.Bytes(), "png", "image/png"
	return res, nil
}
