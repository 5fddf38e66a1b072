package methods

import (
	"encoding/json"
	"fmt"
	"mime"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/avtocod/avtocod-go/apierrors"
)

// Method is one API call: it knows how to serialize itself into a
// request. How the request travels is the session layer's business.
type Method interface {
	BuildRequest() Request
}

// Request is the serialization view of a method call. Params values
// equal to nil or types.Unset are omitted from the wire payload by the
// session layer.
type Request struct {
	ID     string
	Method string
	Params map[string]any
}

// NewRequest builds a Request with a fresh UUID call id.
func NewRequest(method string, params map[string]any) Request {
	return Request{ID: uuid.NewString(), Method: method, Params: params}
}

// Envelope is a parsed JSON-RPC response wrapper.
type Envelope struct {
	ID     string
	Result json.RawMessage
}

// CheckResponse parses a raw response body according to its declared
// content type.
//
// A declared error in the envelope is returned as *apierrors.APIError;
// a body that is not a JSON envelope at all is a NetworkError.
func CheckResponse(contentType string, body []byte) (*Envelope, error) {
	if !isJSONContentType(contentType) {
		return nil, apierrors.NewNetwork(fmt.Sprintf("unexpected response content type %q", contentType), nil)
	}
	if !gjson.ValidBytes(body) {
		return nil, apierrors.NewNetwork("malformed response body", nil)
	}

	root := gjson.ParseBytes(body)

	if e := root.Get("error"); e.Exists() {
		apiErr := &apierrors.APIError{
			Code:    int(e.Get("code").Int()),
			Message: e.Get("message").String(),
		}
		if data := e.Get("data"); data.Exists() {
			apiErr.Data = json.RawMessage(data.Raw)
		}
		return nil, apiErr
	}

	result := root.Get("result")
	if !result.Exists() {
		return nil, apierrors.NewNetwork("response envelope carries neither result nor error", nil)
	}

	return &Envelope{
		ID:     root.Get("id").String(),
		Result: json.RawMessage(result.Raw),
	}, nil
}

func isJSONContentType(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}
