// Package syncer keeps the local dataset backed up to a snapshot server:
// debounced whole-dataset pushes on local change, and last-writer-wins
// pulls when the remote copy is newer at connect time.
package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/linktrove/linktrove/internal/export"
)

// ErrRemoteEmpty reports that the server holds no snapshot yet.
var ErrRemoteEmpty = errors.New("remote holds no snapshot")

// RemoteMeta describes the snapshot currently stored on the server without
// transferring it.
type RemoteMeta struct {
	Checksum   string    `json:"checksum"`
	ModifiedAt time.Time `json:"modifiedAt"`
	Size       int64     `json:"size"`
}

// Remote is a whole-dataset snapshot store.
type Remote interface {
	// Push uploads the document, replacing the stored snapshot.
	Push(ctx context.Context, doc *export.Document) error

	// Pull downloads the stored snapshot. Returns ErrRemoteEmpty when the
	// server has none.
	Pull(ctx context.Context) (*export.Document, error)

	// Meta fetches the stored snapshot's metadata. Returns ErrRemoteEmpty
	// when the server has none.
	Meta(ctx context.Context) (RemoteMeta, error)
}

// checksumHeader carries the snapshot checksum alongside the body so the
// server can record it without re-hashing.
const checksumHeader = "X-Snapshot-Checksum"

// HTTPRemote talks to a snapshot server over its /v1/snapshot endpoints
// with a bearer token.
type HTTPRemote struct {
	base   string
	token  string
	client *http.Client
}

var _ Remote = (*HTTPRemote)(nil)

// NewHTTPRemote creates a client for the snapshot server at baseURL.
func NewHTTPRemote(baseURL, token string) *HTTPRemote {
	return &HTTPRemote{
		base:   strings.TrimRight(baseURL, "/"),
		token:  token,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Push implements Remote.
func (r *HTTPRemote) Push(ctx context.Context, doc *export.Document) error {
	body, err := export.Encode(doc)
	if err != nil {
		return err
	}
	sum, err := export.Checksum(doc)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, r.base+"/v1/snapshot", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(checksumHeader, sum)
	r.authorize(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

// Pull implements Remote.
func (r *HTTPRemote) Pull(ctx context.Context) (*export.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.base+"/v1/snapshot", nil)
	if err != nil {
		return nil, err
	}
	r.authorize(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrRemoteEmpty
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return export.Decode(data)
}

// Meta implements Remote.
func (r *HTTPRemote) Meta(ctx context.Context) (RemoteMeta, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.base+"/v1/snapshot/meta", nil)
	if err != nil {
		return RemoteMeta{}, err
	}
	r.authorize(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return RemoteMeta{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return RemoteMeta{}, ErrRemoteEmpty
	}
	if err := checkStatus(resp); err != nil {
		return RemoteMeta{}, err
	}

	var meta RemoteMeta
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return RemoteMeta{}, err
	}
	return meta, nil
}

func (r *HTTPRemote) authorize(req *http.Request) {
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
}

// checkStatus maps non-2xx responses to errors carrying the server's
// message.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("snapshot server: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
}
