// Package result contains results that are used to write out API responses.
//
// Every constructor that takes a trailing internalMsg accepts either nothing,
// in which case a generic message for the status is logged, or a format
// string followed by its arguments.
package result

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorResponse is the JSON body of every error result.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// Result is the outcome of an endpoint, ready to be written to a client. The
// zero value is not a valid Result; use one of the constructors.
type Result struct {
	Status      int
	IsErr       bool
	IsJSON      bool
	InternalMsg string

	resp  interface{}
	redir string
	hdrs  [][2]string

	// set by calling PrepareMarshaledResponse.
	respJSONBytes []byte
}

// internalMsg builds the log message from optional format args, falling back
// to def when none are given.
func internalMsg(def string, fmtAndArgs []interface{}) string {
	if len(fmtAndArgs) < 1 {
		return def
	}
	return fmt.Sprintf(fmtAndArgs[0].(string), fmtAndArgs[1:]...)
}

// OK gives an HTTP-200 with respObj as its JSON body.
func OK(respObj interface{}, internal ...interface{}) Result {
	return Response(http.StatusOK, respObj, internalMsg("OK", internal))
}

// Created gives an HTTP-201 with respObj as its JSON body.
func Created(respObj interface{}, internal ...interface{}) Result {
	return Response(http.StatusCreated, respObj, internalMsg("created", internal))
}

// Text gives an HTTP-200 whose body is written as-is as plain text.
func Text(body string, internal string, v ...interface{}) Result {
	return Result{
		Status:      http.StatusOK,
		InternalMsg: fmt.Sprintf(internal, v...),
		resp:        body,
	}
}

// BadRequest gives an HTTP-400 that shows userMsg to the client.
func BadRequest(userMsg string, internal ...interface{}) Result {
	return Err(http.StatusBadRequest, userMsg, internalMsg("bad request", internal))
}

// UnprocessableEntity gives an HTTP-422 that shows userMsg to the client. It
// is for requests that are well-formed but that the server declines to carry
// out.
func UnprocessableEntity(userMsg string, internal ...interface{}) Result {
	return Err(http.StatusUnprocessableEntity, userMsg, internalMsg("unprocessable entity", internal))
}

// Unauthorized gives an HTTP-401 with a WWW-Authenticate header for bearer
// tokens. If userMsg is empty a generic one is used.
func Unauthorized(userMsg string, internal ...interface{}) Result {
	if userMsg == "" {
		userMsg = "You are not authorized to do that"
	}
	return Err(http.StatusUnauthorized, userMsg, internalMsg("unauthorized", internal)).
		WithHeader("WWW-Authenticate", `Bearer realm="clrviz server", charset="utf-8"`)
}

// NotFound gives an HTTP-404.
func NotFound(internal ...interface{}) Result {
	return Err(http.StatusNotFound, "The requested resource was not found", internalMsg("not found", internal))
}

// MethodNotAllowed gives an HTTP-405 naming the method and path of req.
func MethodNotAllowed(req *http.Request, internal ...interface{}) Result {
	userMsg := fmt.Sprintf("Method %s is not allowed for %s", req.Method, req.URL.Path)
	return Err(http.StatusMethodNotAllowed, userMsg, internalMsg("method not allowed", internal))
}

// InternalServerError gives an HTTP-500. The client only ever sees a generic
// message; the details go to the log.
func InternalServerError(internal ...interface{}) Result {
	return Err(http.StatusInternalServerError, "An internal server error occurred", internalMsg("internal server error", internal))
}

// Redirection gives an HTTP-308 to uri.
func Redirection(uri string) Result {
	return Result{
		Status:      http.StatusPermanentRedirect,
		InternalMsg: "redirect -> " + uri,
		redir:       uri,
	}
}

// Response gives a non-error result with respObj as its JSON body.
func Response(status int, respObj interface{}, internal string, v ...interface{}) Result {
	return Result{
		IsJSON:      true,
		Status:      status,
		InternalMsg: fmt.Sprintf(internal, v...),
		resp:        respObj,
	}
}

// Err gives an error result with an ErrorResponse JSON body.
func Err(status int, userMsg, internal string, v ...interface{}) Result {
	return Result{
		IsJSON:      true,
		IsErr:       true,
		Status:      status,
		InternalMsg: fmt.Sprintf(internal, v...),
		resp:        ErrorResponse{Error: userMsg, Status: status},
	}
}

// TextErr is like Err but the body is userMsg as plain text. It is for when
// JSON encoding itself cannot be trusted, such as after a panic.
func TextErr(status int, userMsg, internal string, v ...interface{}) Result {
	return Result{
		IsErr:       true,
		Status:      status,
		InternalMsg: fmt.Sprintf(internal, v...),
		resp:        userMsg,
	}
}

// WithHeader returns a copy of r that also sets the given header. Headers set
// this way are applied last, so they override Content-Type.
func (r Result) WithHeader(name, val string) Result {
	cp := r
	cp.respJSONBytes = nil
	cp.hdrs = append(append([][2]string(nil), r.hdrs...), [2]string{name, val})
	return cp
}

// PrepareMarshaledResponse marshals the JSON body of r if it has one. Calling
// it again after it succeeds does nothing.
func (r *Result) PrepareMarshaledResponse() error {
	if r.respJSONBytes != nil {
		return nil
	}
	if !r.IsJSON || r.redir != "" {
		return nil
	}

	var err error
	r.respJSONBytes, err = json.Marshal(r.resp)
	return err
}

// WriteResponse writes r to w. It panics if r was never populated or its body
// cannot be marshaled; call PrepareMarshaledResponse first to check.
func (r Result) WriteResponse(w http.ResponseWriter) {
	if r.Status == 0 {
		panic("result not populated")
	}

	if err := r.PrepareMarshaledResponse(); err != nil {
		panic(fmt.Sprintf("could not marshal response: %s", err.Error()))
	}

	var body []byte
	if r.IsJSON {
		w.Header().Set("Content-Type", "application/json")
		body = r.respJSONBytes
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		body = []byte(fmt.Sprintf("%v", r.resp))
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")

	if r.redir != "" {
		w.Header().Set("Location", r.redir)
		body = nil
	}
	for _, h := range r.hdrs {
		w.Header().Set(h[0], h[1])
	}

	w.WriteHeader(r.Status)
	w.Write(body)
}
