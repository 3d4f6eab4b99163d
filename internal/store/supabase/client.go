package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/obarros/lojinha/internal/auth"
	"github.com/obarros/lojinha/internal/config"
	inHttp "github.com/obarros/lojinha/internal/http"
	"github.com/obarros/lojinha/internal/log"
)

const (
	preferRepresentation = "return=representation"
	acceptSingleObject   = "application/vnd.pgrst.object+json"
)

// Client is the REST accessor over the hosted backend's data API.
// Each call is one request/response pair; errors come back to the
// caller exactly as the backend reported them.
type Client struct {
	baseUrl string
	key     string
	http    *http.Client
}

func NewClient(cfg config.Store) *Client {
	return &Client{
		baseUrl: strings.TrimRight(cfg.Url, "/"),
		key:     cfg.Key,
		http:    otelhttp.DefaultClient,
	}
}

// Error carries the backend's own error payload through unchanged.
type Error struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Code       string `json:"code"`
	Details    string `json:"details"`
	Hint       string `json:"hint"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("store returned status=%d", e.StatusCode)
	}
	return e.Message
}

type request struct {
	method string
	table  string
	query  url.Values
	prefer string
	single bool
	body   interface{}
}

func (cl *Client) do(c context.Context, r request, out interface{}) error {
	payload := &bytes.Buffer{}
	if r.body != nil {
		if err := json.NewEncoder(payload).Encode(r.body); err != nil {
			return fmt.Errorf("failed encoding request body with error=%w", err)
		}
	}

	endpoint := cl.baseUrl + "/rest/v1/" + r.table
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(c, r.method, endpoint, payload)
	if err != nil {
		return fmt.Errorf("failed creating request to store with error=%w", err)
	}

	token := auth.AccessTokenFromContext(c)
	if token == "" {
		token = cl.key
	}
	req.Header.Set("apikey", cl.key)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", inHttp.HeaderValueJson)
	if r.prefer != "" {
		req.Header.Set("Prefer", r.prefer)
	}
	if r.single {
		req.Header.Set("Accept", acceptSingleObject)
	}
	if requestId := log.RequestIDFromContext(c); requestId != "" {
		req.Header.Set(inHttp.KEY_HEADER_REQUEST_ID, requestId)
	}

	resp, err := cl.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed sending request to store with error=%w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		storeErr := &Error{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(storeErr)
		return storeErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func eq(id fmt.Stringer) string {
	return "eq." + id.String()
}
