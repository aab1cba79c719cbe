package collector

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/marek-kar/telltale/pkg/model"
)

// Extractor is the vision service that reads a dashboard photo. It reports
// what is visible and never classifies.
type Extractor interface {
	Extract(ctx context.Context, img Image) (model.RawObservation, error)
}

type Image struct {
	Name     string
	Data     []byte
	MIMEType string
}

func ReadImage(path string) (Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("read image: %w", err)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return Image{}, fmt.Errorf("read image %s: unsupported content type %q", path, mime)
	}
	return Image{Name: filepath.Base(path), Data: data, MIMEType: mime}, nil
}

// Collect runs one extraction bounded by opts.Timeout.
func Collect(ctx context.Context, ex Extractor, img Image, opts Options) (model.RawObservation, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	raw, err := ex.Extract(ctx, img)
	if err != nil {
		return model.RawObservation{}, fmt.Errorf("extract %s: %w", img.Name, err)
	}
	return raw, nil
}
