package sources

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/username/hu-holidays/internal/transport"
	"github.com/username/hu-holidays/pkg/dateutil"
)

// fakeClient serves canned responses by URL and counts calls
type fakeClient struct {
	mu    sync.Mutex
	pages map[string]transport.Response
	err   error
	calls []string
}

func (c *fakeClient) Get(ctx context.Context, rawURL string, timeout time.Duration) (transport.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, rawURL)
	if c.err != nil {
		return transport.Response{}, c.err
	}
	if err := ctx.Err(); err != nil {
		return transport.Response{}, err
	}
	resp, ok := c.pages[rawURL]
	if !ok {
		return transport.Response{URL: rawURL, Status: 404}, nil
	}
	return resp, nil
}

func (c *fakeClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	body, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return body
}

// serve returns a client answering url with the named fixture
func serve(t *testing.T, url, name string) *fakeClient {
	t.Helper()
	return &fakeClient{pages: map[string]transport.Response{
		url: {URL: url, Status: 200, Body: fixture(t, name)},
	}}
}

var testNow = time.Date(2025, time.March, 1, 9, 30, 0, 0, time.UTC)

func testDeps(t *testing.T, client transport.Client) Deps {
	return Deps{
		Client:  client,
		Clock:   dateutil.NewFixedClock(testNow),
		Timeout: time.Second,
		Logger:  zaptest.NewLogger(t),
	}
}
