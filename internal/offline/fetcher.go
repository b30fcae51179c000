package offline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	FETCH_TIMEOUT  = 15 * time.Second
	MAX_BODY_BYTES = 10 * 1024 * 1024
)

// Fetcher performs the network half of a request.
type Fetcher interface {
	Fetch(ctx context.Context, request Request) (Response, error)
}

type httpFetcher struct {
	origin *url.URL
	client *http.Client
}

// NewHTTPFetcher resolves relative request URLs against origin and refuses
// any that land on another host.
func NewHTTPFetcher(origin *url.URL, client *http.Client) Fetcher {
	if client == nil {
		client = &http.Client{Timeout: FETCH_TIMEOUT}
	}
	return &httpFetcher{origin: origin, client: client}
}

func (f *httpFetcher) Fetch(ctx context.Context, request Request) (Response, error) {
	target, err := f.origin.Parse(request.URL)
	if err != nil {
		return Response{}, fmt.Errorf("invalid request url %q: %w", request.URL, err)
	}
	if !sameOrigin(f.origin, target) {
		return Response{}, fmt.Errorf("%w: %s", ErrCrossOrigin, target.Redacted())
	}

	method := request.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), nil)
	if err != nil {
		return Response{}, err
	}
	for name, values := range request.Header {
		for _, value := range values {
			req.Header.Add(name, value)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MAX_BODY_BYTES))
	if err != nil {
		return Response{}, err
	}

	return Response{
		Status: resp.StatusCode,
		Header: resp.Header.Clone(),
		Body:   body,
		Source: SourceNetwork,
	}, nil
}
