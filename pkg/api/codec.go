package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/getmockd/canonrest/pkg/httputil"
	"github.com/getmockd/canonrest/pkg/repository"
	"github.com/getmockd/canonrest/pkg/resource"
)

// errBodyTooLarge is reported as 413.
var errBodyTooLarge = errors.New("request body too large")

// decodeResource reads a JSON or XML resource from the request body.
// Empty and null bodies are validation errors.
func (a *API) decodeResource(w http.ResponseWriter, r *http.Request) (resource.Resource, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, a.maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return resource.Resource{}, errBodyTooLarge
		}
		return resource.Resource{}, &repository.ValidationError{Message: "failed to read request body"}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return resource.Resource{}, &repository.ValidationError{Message: "request body is required"}
	}

	if httputil.RequestMediaType(r) == httputil.MediaTypeXML {
		res, err := resource.DecodeXML(body)
		if err != nil {
			return resource.Resource{}, &repository.ValidationError{Message: err.Error()}
		}
		return res, nil
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return resource.Resource{}, &repository.ValidationError{Message: "invalid JSON: " + err.Error()}
	}
	if raw == nil {
		return resource.Resource{}, &repository.ValidationError{Message: "request body must not be null"}
	}
	if err := a.validateBody(raw); err != nil {
		return resource.Resource{}, err
	}

	var res resource.Resource
	if err := json.Unmarshal(body, &res); err != nil {
		return resource.Resource{}, &repository.ValidationError{Message: "invalid JSON: " + err.Error()}
	}
	return res, nil
}

// writeResource writes res in the negotiated media type.
func (a *API) writeResource(w http.ResponseWriter, r *http.Request, status int, res resource.Resource) {
	if httputil.Negotiate(r) == httputil.MediaTypeXML {
		body, err := resource.EncodeXML(res)
		if err != nil {
			a.writeError(w, err)
			return
		}
		httputil.WriteXML(w, status, body)
		return
	}
	httputil.WriteJSON(w, status, res)
}

func (a *API) writeList(w http.ResponseWriter, r *http.Request, rs []resource.Resource) {
	if httputil.Negotiate(r) == httputil.MediaTypeXML {
		body, err := resource.EncodeXMLList(rs)
		if err != nil {
			a.writeError(w, err)
			return
		}
		httputil.WriteXML(w, http.StatusOK, body)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rs)
}

// writeError maps err to its status and writes the JSON envelope.
func (a *API) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, errBodyTooLarge) {
		httputil.WriteError(w, http.StatusRequestEntityTooLarge, "payload_too_large", err.Error())
		return
	}

	resp := repository.ToErrorResponse(err)
	if resp.StatusCode >= http.StatusInternalServerError {
		a.log.Error("request failed", "error", err)
	}
	httputil.WriteJSON(w, resp.StatusCode, resp)
}
