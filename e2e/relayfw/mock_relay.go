package relayfw

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// RecordedRequest is one call received by a MockRelay.
type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
	ContentType   string
	Body          []byte
}

// JSON decodes the recorded body into a generic map.
func (r RecordedRequest) JSON() (map[string]interface{}, error) {
	var out map[string]interface{}
	err := json.Unmarshal(r.Body, &out)

	return out, err
}

// ReplyFunc produces the status and body answered to a request.
type ReplyFunc func(req RecordedRequest) (status int, body string)

// StaticReply always answers with the same status and body.
func StaticReply(status int, body string) ReplyFunc {
	return func(RecordedRequest) (int, string) {
		return status, body
	}
}

// SignatureReply answers {"signature": signature} with status 200.
func SignatureReply(signature string) ReplyFunc {
	body, _ := json.Marshal(map[string]string{"signature": signature})

	return StaticReply(http.StatusOK, string(body))
}

// MockRelay is a TLS relay endpoint that records every request.
type MockRelay struct {
	server *httptest.Server

	mu       sync.Mutex
	reply    ReplyFunc
	requests []RecordedRequest
}

// NewMockRelay starts a relay that is closed when the test ends.
func NewMockRelay(t testing.TB, reply ReplyFunc) *MockRelay {
	m := &MockRelay{reply: reply}
	m.server = httptest.NewTLSServer(http.HandlerFunc(m.handle))
	t.Cleanup(m.server.Close)

	return m
}

func (m *MockRelay) handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req := RecordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
		Body:          body,
	}

	m.mu.Lock()
	m.requests = append(m.requests, req)
	reply := m.reply
	m.mu.Unlock()

	status, respBody := reply(req)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, respBody)
}

// URL is the https endpoint of the relay, including a submission path.
func (m *MockRelay) URL() string {
	return m.server.URL + "/api/v2/submit"
}

// Client trusts the relay's test certificate.
func (m *MockRelay) Client() *http.Client {
	return m.server.Client()
}

// SetReply changes how later requests are answered.
func (m *MockRelay) SetReply(reply ReplyFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reply = reply
}

func (m *MockRelay) Requests() []RecordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]RecordedRequest(nil), m.requests...)
}

// Close stops the relay early, e.g. to provoke transport failures.
func (m *MockRelay) Close() {
	m.server.Close()
}
