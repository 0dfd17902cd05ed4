package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/sandevgo/ragchat/internal/core"
)

const (
	pathUpload       = "/v1/documents/upload"
	uploadFieldName  = "file"
	defaultMediaType = "application/octet-stream"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// UploadClient sends a document for ingestion. The body carries only the
// file; namespace and user id travel as query parameters.
type UploadClient struct {
	transport *Transport
}

func NewUploadClient(t *Transport) *UploadClient {
	return &UploadClient{transport: t}
}

func (u *UploadClient) Upload(ctx context.Context, req core.UploadRequest) (core.UploadAck, error) {
	if len(req.File.Data) == 0 {
		return core.UploadAck{}, fmt.Errorf("%w: file %q is empty", core.ErrValidation, req.File.Name)
	}

	body, contentType, err := multipartBody(req.File)
	if err != nil {
		return core.UploadAck{}, fmt.Errorf("upload: %w", err)
	}

	query := url.Values{}
	query.Set("namespace", req.Namespace)
	query.Set("user_id", req.UserID)

	resp, err := u.transport.Send(ctx, http.MethodPost, pathUpload, body,
		WithQuery(query),
		WithContentType(contentType),
	)
	if err != nil {
		return core.UploadAck{}, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, core.KindUpload); err != nil {
		return core.UploadAck{}, fmt.Errorf("upload: %w", err)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.UploadAck{}, fmt.Errorf("upload: read body: %w", classify(err))
	}

	ack := core.UploadAck{}
	if len(bytes.TrimSpace(data)) > 0 {
		ack.Raw = json.RawMessage(data)
		// the ack is opaque; known fields are best effort
		_ = json.Unmarshal(data, &ack)
	}
	return ack, nil
}

func multipartBody(file core.UploadFile) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	name := file.Name
	if name == "" {
		name = "document"
	}
	mediaType := file.ContentType
	if mediaType == "" {
		mediaType = defaultMediaType
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		uploadFieldName, quoteEscaper.Replace(name)))
	h.Set("Content-Type", mediaType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create part: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", fmt.Errorf("write part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}

	return buf, w.FormDataContentType(), nil
}
