package status

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"os"
	"time"
)

const faviconPrefix = "data:image/png;base64,"

// Favicons may not exceed this many bytes once fetched; anything bigger
// is not a 64x64 PNG anyway.
const maxFaviconBytes = 1 << 20

var ErrUnknownFaviconSource = errors.New("unknown favicon source kind")

// DefaultFaviconLoader reads favicons from files, URLs and inline
// base64 data and encodes them as display-ready data URIs.
func DefaultFaviconLoader() FaviconLoader {
	return &defaultLoader{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type defaultLoader struct {
	client *http.Client
}

func (loader *defaultLoader) Load(source FaviconSource) (string, error) {
	var data []byte
	var err error
	switch source.Kind {
	case SourceFile:
		data, err = os.ReadFile(source.Value)
	case SourceURL:
		data, err = loader.fetch(source.Value)
	case SourceEncoded:
		data, err = base64.StdEncoding.DecodeString(source.Value)
	default:
		err = ErrUnknownFaviconSource
	}
	if err != nil {
		return "", err
	}
	return EncodeFavicon(data)
}

func (loader *defaultLoader) fetch(url string) ([]byte, error) {
	resp, err := loader.client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("favicon fetch returned status %v", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxFaviconBytes))
}

// EncodeFavicon validates the image bytes as PNG and wraps them into
// the data URI form status responses carry.
func EncodeFavicon(data []byte) (string, error) {
	if _, err := png.DecodeConfig(bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("favicon is not a valid png: %w", err)
	}
	return faviconPrefix + base64.StdEncoding.EncodeToString(data), nil
}
