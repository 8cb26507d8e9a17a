package testhelpers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// Expectation is one canned response, consumed by the first request that matches it.
type Expectation struct {
	Method string
	URL    *url.URL

	StatusCode int
	RespBody   []byte
	Headers    http.Header
	Err        error

	reqHeaders     http.Header
	isMatched      bool
	MismatchReason string
}

type MockTransport struct {
	Expectations []*Expectation
	requests     []*http.Request
	mutex        sync.Mutex
}

func NewMockTransport() *MockTransport {
	return &MockTransport{
		Expectations: make([]*Expectation, 0),
	}
}

var (
	DefaultTransport                           = NewMockTransport()
	originalDefaultTransport http.RoundTripper = http.DefaultTransport
)

// New registers an expectation for requests to baseURL.
func New(baseURL string) *Expectation {
	u, err := url.Parse(baseURL)
	if err != nil {
		panic(fmt.Sprintf("httpmock: invalid base URL provided: %v", err))
	}

	if u.Scheme == "" || u.Host == "" {
		panic(fmt.Sprintf("httpmock: base URL must include scheme and host (e.g., https://%s)", baseURL))
	}

	exp := &Expectation{
		URL:        u,
		Headers:    make(http.Header),
		reqHeaders: make(http.Header),
	}
	DefaultTransport.Add(exp)
	return exp
}

// Get matches a GET on path. A query string in path must be present on the request.
func (e *Expectation) Get(path string) *Expectation {
	e.Method = http.MethodGet

	u, err := url.Parse(path)
	if err != nil {
		panic(fmt.Sprintf("httpmock: invalid path provided: %v", err))
	}

	e.URL.Path = u.Path
	e.URL.RawQuery = u.RawQuery
	return e
}

// MatchHeader requires the request to carry header key with value.
func (e *Expectation) MatchHeader(key, value string) *Expectation {
	e.reqHeaders.Set(key, value)
	return e
}

func (e *Expectation) Reply(statusCode int) *Expectation {
	e.StatusCode = statusCode
	return e
}

// ReplyError makes the transport fail the request with err, as a network failure would.
func (e *Expectation) ReplyError(err error) *Expectation {
	e.Err = err
	return e
}

func (e *Expectation) BodyString(body string) *Expectation {
	e.RespBody = []byte(body)
	return e
}

func (e *Expectation) Body(body []byte) *Expectation {
	e.RespBody = body
	return e
}

func (e *Expectation) JSON(v interface{}) *Expectation {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("httpmock: failed to marshal JSON: %v", err))
	}
	e.RespBody = data
	e.Headers.Set("Content-Type", "application/json")
	return e
}

func (e *Expectation) Header(key, value string) *Expectation {
	e.Headers.Set(key, value)
	return e
}

func (t *MockTransport) Add(exp *Expectation) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.Expectations = append(t.Expectations, exp)
}

func (t *MockTransport) Reset() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.Expectations = make([]*Expectation, 0)
	t.requests = nil
}

// IsDone reports whether every registered expectation was consumed.
func IsDone() bool {
	return len(Pending()) == 0
}

// Pending lists the expectations no request has matched yet.
func Pending() []string {
	DefaultTransport.mutex.Lock()
	defer DefaultTransport.mutex.Unlock()

	var out []string
	for _, exp := range DefaultTransport.Expectations {
		if !exp.isMatched {
			out = append(out, exp.Method+" "+exp.URL.String())
		}
	}
	return out
}

// Requests returns the URLs of every request seen since the last Deactivate,
// matched or not.
func Requests() []string {
	DefaultTransport.mutex.Lock()
	defer DefaultTransport.mutex.Unlock()

	out := make([]string, 0, len(DefaultTransport.requests))
	for _, req := range DefaultTransport.requests {
		out = append(out, req.Method+" "+req.URL.String())
	}
	return out
}

// Activate routes http.DefaultClient through the mock transport.
func Activate() {
	if http.DefaultClient.Transport == DefaultTransport {
		return
	}

	if http.DefaultClient.Transport != nil {
		originalDefaultTransport = http.DefaultClient.Transport
	} else {
		originalDefaultTransport = http.DefaultTransport
	}

	http.DefaultClient.Transport = DefaultTransport
}

// Deactivate restores the original transport and resets all mocks.
func Deactivate() {
	http.DefaultClient.Transport = originalDefaultTransport
	DefaultTransport.Reset()
}

func (t *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.requests = append(t.requests, req)

	for _, exp := range t.Expectations {
		if !exp.isMatched && t.matches(exp, req) {
			exp.isMatched = true
			if exp.Err != nil {
				return nil, exp.Err
			}
			return t.buildResponse(exp, req), nil
		}
	}

	var reasons []string
	for _, exp := range t.Expectations {
		if exp.MismatchReason != "" {
			reasons = append(reasons, exp.MismatchReason)
		}
	}

	extra := ""
	if len(reasons) > 0 {
		extra = " (" + strings.Join(reasons, "; ") + ")"
	}

	return nil, fmt.Errorf("httpmock: no match found for request %s %s%s", req.Method, req.URL, extra)
}

func (t *MockTransport) matches(exp *Expectation, req *http.Request) bool {
	exp.MismatchReason = ""

	if exp.Method != "" && exp.Method != req.Method {
		exp.MismatchReason = fmt.Sprintf("method mismatch: expected %s got %s", exp.Method, req.Method)
		return false
	}

	if exp.URL.Scheme != req.URL.Scheme || exp.URL.Host != req.URL.Host {
		exp.MismatchReason = fmt.Sprintf("host mismatch: expected %s://%s got %s://%s", exp.URL.Scheme, exp.URL.Host, req.URL.Scheme, req.URL.Host)
		return false
	}

	if exp.URL.Path != req.URL.Path {
		exp.MismatchReason = fmt.Sprintf("path mismatch: expected %s got %s", exp.URL.Path, req.URL.Path)
		return false
	}

	for key := range exp.reqHeaders {
		if got := req.Header.Get(key); got != exp.reqHeaders.Get(key) {
			exp.MismatchReason = fmt.Sprintf("header mismatch for %s: expected %q got %q", key, exp.reqHeaders.Get(key), got)
			return false
		}
	}

	actualQuery := req.URL.Query()
	for key, values := range exp.URL.Query() {
		actualValues, ok := actualQuery[key]
		if !ok {
			exp.MismatchReason = fmt.Sprintf("missing query key %s", key)
			return false
		}

		if strings.Join(actualValues, ",") != strings.Join(values, ",") {
			exp.MismatchReason = fmt.Sprintf("query mismatch for %s: expected %v got %v", key, values, actualValues)
			return false
		}
	}

	return true
}

func (t *MockTransport) buildResponse(exp *Expectation, req *http.Request) *http.Response {
	statusCode := exp.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}

	return &http.Response{
		StatusCode:    statusCode,
		Status:        fmt.Sprintf("%d %s", statusCode, http.StatusText(statusCode)),
		Body:          io.NopCloser(bytes.NewReader(exp.RespBody)),
		Header:        exp.Headers,
		Request:       req,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		ContentLength: int64(len(exp.RespBody)),
	}
}
