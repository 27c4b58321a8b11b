package cache

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// HeaderFromCache is set on responses served from the store
const HeaderFromCache = "X-From-Cache"

// Transport is an http.RoundTripper serving fresh GET responses from a Store
// and recording successful ones. Any other request passes straight through.
type Transport struct {
	Store *Store
	// Next performs real requests. http.DefaultTransport when nil.
	Next http.RoundTripper
}

// NewTransport wraps next with the given store
func NewTransport(store *Store, next http.RoundTripper) *Transport {
	return &Transport{Store: store, Next: next}
}

func (t *Transport) next() http.RoundTripper {
	if t.Next != nil {
		return t.Next
	}
	return http.DefaultTransport
}

// CanonicalURL renders u with its query parameters sorted by name, so
// requests differing only in parameter order share a key.
func CanonicalURL(u *url.URL) string {
	c := *u
	c.RawQuery = c.Query().Encode()
	c.Fragment = ""
	return c.String()
}

// RoundTrip implements http.RoundTripper
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.next().RoundTrip(req)
	}

	canonical := CanonicalURL(req.URL)
	key := Key(req.Method, canonical)
	ctx := req.Context()

	entry, ok, err := t.Store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if ok {
		log.WithFields(log.Fields{"url": canonical, "age": t.Store.now().Sub(entry.CreatedAt).Round(time.Second)}).Debug("serving response from cache")
		return entryResponse(req, entry), nil
	}

	resp, err := t.next().RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if err := t.Store.Set(ctx, key, canonical, resp.StatusCode, resp.Header, body); err != nil {
		// a broken cache must not fail the request
		log.WithError(err).Warn("could not store response in cache")
	}

	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	return resp, nil
}

func entryResponse(req *http.Request, e *Entry) *http.Response {
	header := e.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	header.Set(HeaderFromCache, "1")

	return &http.Response{
		Status:        strconv.Itoa(e.StatusCode) + " " + http.StatusText(e.StatusCode),
		StatusCode:    e.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}
