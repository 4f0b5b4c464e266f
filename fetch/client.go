package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/yhkl-dev/lofi/domain"
)

// DefaultUserAgent is sent with every network request
const DefaultUserAgent = "lofi/0.1 (+https://github.com/yhkl-dev/lofi)"

// Client resolves track references to raw bytes from the network or disk
type Client struct {
	HttpClient *http.Client
	Fs         afero.Fs
	UserAgent  string
}

// Init creates a fetch client. A nil fs reads from the OS filesystem.
func Init(fs afero.Fs, userAgent string) *Client {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		HttpClient: &http.Client{},
		Fs:         fs,
		UserAgent:  userAgent,
	}
}

// Fetch returns the full contents of ref. The timeout bounds the whole transfer,
// from the start of the request to the last body byte; zero means no limit.
// Failures are *domain.FetchError unless ctx itself was cancelled.
func (c *Client) Fetch(ctx context.Context, ref domain.TrackRef, timeout time.Duration) ([]byte, error) {
	if !ref.IsRemote() {
		return c.readLocal(ref.Locator)
	}

	reqCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	data, err := c.get(reqCtx, ref.Locator)
	if err == nil {
		return data, nil
	}
	if ctx.Err() != nil {
		return nil, errors.Wrapf(ctx.Err(), "fetch %s", ref.Locator)
	}
	var fe *domain.FetchError
	if errors.As(err, &fe) {
		return nil, fe
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		return nil, &domain.FetchError{Kind: domain.FetchTimeout, Locator: ref.Locator, Err: err}
	}
	return nil, &domain.FetchError{Kind: domain.FetchIO, Locator: ref.Locator, Err: err}
}

func (c *Client) get(ctx context.Context, locator string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "audio/*, application/octet-stream;q=0.9, */*;q=0.5")

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, &domain.FetchError{Kind: domain.FetchNotFound, Locator: locator,
			Err: fmt.Errorf("unexpected status: %d", resp.StatusCode)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &domain.FetchError{Kind: domain.FetchIO, Locator: locator,
			Err: fmt.Errorf("unexpected status: %d", resp.StatusCode)}
	}

	if mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil && mediaType == "text/html" {
		return nil, &domain.FetchError{Kind: domain.FetchDecodeRejected, Locator: locator,
			Err: errors.New("server returned a web page instead of audio")}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response failed")
	}
	return body, nil
}
