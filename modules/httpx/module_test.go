package httpx_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
	"resty.dev/v3"

	"github.com/vk/taskgrid/internal/executor"
	"github.com/vk/taskgrid/internal/testutil"
	"github.com/vk/taskgrid/modules/httpx"
)

const httpDoc = `
parameters:
  base_url: ""

tasks:
  request:
    plugin: httpx.client.http_request
    inputs:
      - name: method
        type: string
        required: false
      - name: url
        type: string
      - name: headers
        type: mapping<string, string>
        required: false
      - name: body
        type: string
        required: false
    outputs:
      - name: status_code
        type: integer
      - name: body
        type: string

graph:
  ping:
    request:
      url: $base_url
      headers:
        X-Probe: taskgrid
  follow_up:
    request:
      method: POST
      url: $base_url
      body: $ping.body
`

func TestHttpRequest(t *testing.T) {
	var gotHeader, gotMethod, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			gotMethod = r.Method
			b, _ := io.ReadAll(r.Body)
			gotBody = string(b)
			w.WriteHeader(http.StatusCreated)
			return
		}
		gotHeader = r.Header.Get("X-Probe")
		_, _ = w.Write([]byte("pong"))
	}))
	defer srv.Close()

	client := resty.New()
	t.Cleanup(func() { _ = client.Close() })

	reg := testutil.Registry(t, &httpx.Module{Client: client})
	res := testutil.Run(t, httpDoc, reg, map[string]any{"base_url": srv.URL})

	require.Equal(t, executor.StatusCompleted, res.Status)
	assert.Equal(t, "taskgrid", gotHeader)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "pong", gotBody, "the follow-up must post the first response body")

	status, ok := res.Output("ping", "status_code")
	require.True(t, ok)
	assert.True(t, status.RawEquals(cty.NumberIntVal(http.StatusOK)))

	created, ok := res.Output("follow_up", "status_code")
	require.True(t, ok)
	assert.True(t, created.RawEquals(cty.NumberIntVal(http.StatusCreated)))
}

func TestHttpRequestConnectionErrorFailsStep(t *testing.T) {
	client := resty.New()
	t.Cleanup(func() { _ = client.Close() })

	reg := testutil.Registry(t, &httpx.Module{Client: client})
	res := testutil.Run(t, httpDoc, reg, map[string]any{"base_url": "http://127.0.0.1:1/nope"})

	assert.Equal(t, executor.StatusFailed, res.Status)
	require.Equal(t, executor.StepFailed, res.Steps["ping"].Status)
	assert.Equal(t, executor.StepSkipped, res.Steps["follow_up"].Status)
}
