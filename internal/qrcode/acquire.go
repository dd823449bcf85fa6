package qrcode

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrNoCode is returned when a source yields nothing decodable: the
// user cancelled, or the payload held no token.
var ErrNoCode = errors.New("no decodable code")

// CodeSource yields a candidate card token from some capture channel.
// Callers treat any error as "no code" and take no store action.
type CodeSource interface {
	Acquire(ctx context.Context) (string, error)
}

// StaticSource wraps an already-decoded token, the shape a simulated
// or browser-side live scan delivers.
type StaticSource struct {
	Code string
}

func (s StaticSource) Acquire(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.Code == "" {
		return "", ErrNoCode
	}
	return s.Code, nil
}

// ImageSource decodes a token from an uploaded still payload. Camera
// decoding stays outside this core: the payload's decodable content is
// the token text itself.
type ImageSource struct {
	r io.Reader
}

func NewImageSource(r io.Reader) ImageSource {
	return ImageSource{r: r}
}

func (s ImageSource) Acquire(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := io.ReadAll(s.r)
	if err != nil {
		return "", err
	}
	code := strings.TrimSpace(string(data))
	if code == "" {
		return "", ErrNoCode
	}
	return code, nil
}
