package result

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Result_WriteResponse(t *testing.T) {
	testCases := []struct {
		name          string
		r             Result
		expectStatus  int
		expectType    string
		expectBody    string
		expectHeaders map[string]string
	}{
		{
			name:         "json",
			r:            OK(map[string]int{"states": 10}),
			expectStatus: http.StatusOK,
			expectType:   "application/json",
			expectBody:   `{"states":10}`,
		},
		{
			name:         "json error",
			r:            UnprocessableEntity("grammar has conflicts", "refused %d conflicts", 2),
			expectStatus: http.StatusUnprocessableEntity,
			expectType:   "application/json",
			expectBody:   `{"error":"grammar has conflicts","status":422}`,
		},
		{
			name:         "text",
			r:            Text("digraph {}\n", "dot"),
			expectStatus: http.StatusOK,
			expectType:   "text/plain; charset=utf-8",
			expectBody:   "digraph {}\n",
		},
		{
			name:          "header overrides content type",
			r:             Text("digraph {}", "dot").WithHeader("Content-Type", "text/vnd.graphviz"),
			expectStatus:  http.StatusOK,
			expectType:    "text/vnd.graphviz",
			expectBody:    "digraph {}",
			expectHeaders: map[string]string{"X-Content-Type-Options": "nosniff"},
		},
		{
			name:          "unauthorized",
			r:             Unauthorized(""),
			expectStatus:  http.StatusUnauthorized,
			expectType:    "application/json",
			expectBody:    `{"error":"You are not authorized to do that","status":401}`,
			expectHeaders: map[string]string{"WWW-Authenticate": `Bearer realm="clrviz server", charset="utf-8"`},
		},
		{
			name:          "redirect",
			r:             Redirection("/api/v1/info"),
			expectStatus:  http.StatusPermanentRedirect,
			expectType:    "text/plain; charset=utf-8",
			expectBody:    "",
			expectHeaders: map[string]string{"Location": "/api/v1/info"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// setup
			assert := assert.New(t)
			w := httptest.NewRecorder()

			// execute
			tc.r.WriteResponse(w)

			// assert
			assert.Equal(tc.expectStatus, w.Code)
			assert.Equal(tc.expectType, w.Header().Get("Content-Type"))
			assert.Equal(tc.expectBody, w.Body.String())
			for k, v := range tc.expectHeaders {
				assert.Equal(v, w.Header().Get(k), "header %s", k)
			}
		})
	}
}

func Test_Result_InternalMsg(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("not found", NotFound().InternalMsg)
	assert.Equal("grammar 12 missing", NotFound("grammar %d missing", 12).InternalMsg)
	assert.True(BadRequest("x").IsErr)
	assert.False(Created(struct{}{}).IsErr)
}

func Test_Result_WriteResponse_PanicsWhenEmpty(t *testing.T) {
	assert.Panics(t, func() {
		Result{}.WriteResponse(httptest.NewRecorder())
	})
}
