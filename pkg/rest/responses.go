package rest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apierr "github.com/intelcomp/taskwatch/pkg/api/types/errors"
)

type MessageFor map[StatusCodeRange]string

func (m MessageFor) of(resp *http.Response) string {
	scr := StatusCodeRangeOf(resp)
	if message, ok := m[scr]; ok {
		return message
	}
	return scr.String()
}

// unmarshal http response which has json content.
//
// args:
//   - resp: http response to be processed.
//   - v: value which response should be.
//   - messageFor: summary of error message for HTTP status code range.
//
// return:
//
//	error if...
//	- can not read response body
//	- response body is not shaped of v
//	- status code is not 2xx
func unmarshalJsonResponse[T any](resp *http.Response, v *T, messageFor MessageFor) error {
	if StatusCodeRangeOf(resp) != Status2xx {
		return errorResponse(resp, messageFor)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &ResponseError{
			Summary:    fmt.Sprintf("unexpected response: %s", err.Error()),
			StatusCode: resp.StatusCode,
			cause:      err,
		}
	}
	return nil
}

func unmarshalStreamResponse(resp *http.Response, messageFor MessageFor) (io.ReadCloser, error) {
	if StatusCodeRangeOf(resp) != Status2xx {
		return nil, errorResponse(resp, messageFor)
	}
	return resp.Body, nil
}

func unmarshalResponseDiscardingPayload(resp *http.Response, messageFor MessageFor) error {
	rc, err := unmarshalStreamResponse(resp, messageFor)
	if rc != nil {
		io.Copy(io.Discard, rc)
	}
	return err
}

func errorResponse(resp *http.Response, messageFor MessageFor) error {
	message := messageFor.of(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ResponseError{
			Summary:    message,
			StatusCode: resp.StatusCode,
			Detail:     fmt.Sprintf("cannot read server message: %s", err.Error()),
			cause:      err,
		}
	}

	return &ResponseError{
		Summary:    message,
		StatusCode: resp.StatusCode,
		Detail:     parseErrorMessage(body),
	}
}

// parseErrorMessage extracts human readable message from error response body.
func parseErrorMessage(body []byte) string {
	msg := new(struct {
		Message json.RawMessage `json:"message"`
	})
	if err := json.Unmarshal(body, msg); err == nil && len(msg.Message) != 0 {
		em := new(apierr.ErrorMessage)
		if err := json.Unmarshal(msg.Message, em); err == nil {
			return em.String()
		}
		var s string
		if err := json.Unmarshal(msg.Message, &s); err == nil {
			return s
		}
	}

	em := new(apierr.ErrorMessage)
	if err := json.Unmarshal(body, em); err == nil {
		return em.String()
	}

	return string(body)
}
