package pdf

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
)

// ErrUnsupportedImage is returned for images maroto cannot embed.
var ErrUnsupportedImage = errors.New("pdf: unsupported image type")

// ImageFetcher loads a remote image for embedding.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, extension.Type, error)
}

type HTTPImageFetcher struct {
	client *resty.Client
}

func NewHTTPImageFetcher(timeout time.Duration) *HTTPImageFetcher {
	return &HTTPImageFetcher{
		client: resty.New().
			SetTimeout(timeout).
			SetRetryCount(1).
			SetHeader("Accept", "image/png, image/jpeg"),
	}
}

func (f *HTTPImageFetcher) Fetch(ctx context.Context, url string) ([]byte, extension.Type, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, "", fmt.Errorf("fetch image: %w", err)
	}
	if resp.IsError() {
		return nil, "", fmt.Errorf("fetch image: status %d", resp.StatusCode())
	}
	body := resp.Body()
	switch http.DetectContentType(body) {
	case "image/png":
		return body, extension.Png, nil
	case "image/jpeg":
		return body, extension.Jpg, nil
	default:
		return nil, "", ErrUnsupportedImage
	}
}
