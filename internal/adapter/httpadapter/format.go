package httpadapter

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	contentTypeJSON    = "application/json"
	contentTypeMsgPack = "application/x-msgpack"
)

// writeResponse encodes data as JSON, or as MessagePack when the request
// carries format=msgpack. Struct json tags drive both encodings. The body is
// encoded before the status is written, so an encoding failure becomes a 500.
func writeResponse(w http.ResponseWriter, req *http.Request, status int, data any) error {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	contentType := contentTypeJSON
	var (
		body []byte
		err  error
	)
	if req.URL.Query().Get("format") == "msgpack" {
		contentType = contentTypeMsgPack
		body, err = marshalMsgPack(data)
	} else {
		body, err = json.Marshal(data)
		body = append(body, '\n')
	}
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return err
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, err = w.Write(body)
	return err
}

func marshalMsgPack(data any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
