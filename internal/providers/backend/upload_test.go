package backend

import (
	"bytes"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/sandevgo/ragchat/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "00000000-0000-0000-0000-000000000001"

func TestUploadClient_Upload_Multipart(t *testing.T) {
	rec := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"document_id":"7b0f4c1e-1b7a-4a55-9d43-0f6a2d0b8c11","status":"uploaded"}`)
	})

	file := core.UploadFile{Name: `report "q3".pdf`, ContentType: "application/pdf", Data: []byte("%PDF-1.7 body")}
	ack, err := NewUploadClient(rec.transport(staticToken("tok1"))).Upload(context.Background(),
		core.UploadRequest{File: file, Namespace: "default", UserID: testUserID})
	require.NoError(t, err)

	assert.Equal(t, "7b0f4c1e-1b7a-4a55-9d43-0f6a2d0b8c11", ack.DocumentID)
	assert.Equal(t, "uploaded", ack.Status)
	assert.NotEmpty(t, ack.Raw)

	req := rec.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, pathUpload, req.Path)
	assert.Equal(t, []string{"default"}, req.Query["namespace"])
	assert.Equal(t, []string{testUserID}, req.Query["user_id"])

	mediaType, params, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)

	mr := multipart.NewReader(bytes.NewReader(req.Body), params["boundary"])
	part, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "file", part.FormName())
	assert.Equal(t, `report "q3".pdf`, part.FileName())
	assert.Equal(t, "application/pdf", part.Header.Get("Content-Type"))
	data, err := io.ReadAll(part)
	require.NoError(t, err)
	assert.Equal(t, file.Data, data)

	// the file is the only body field
	_, err = mr.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}

func TestUploadClient_Upload_EmptyFileNeverSent(t *testing.T) {
	rec := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := NewUploadClient(rec.transport(nil)).Upload(context.Background(),
		core.UploadRequest{File: core.UploadFile{Name: "empty.txt"}, Namespace: "default", UserID: testUserID})

	require.ErrorIs(t, err, core.ErrValidation)
	assert.Empty(t, rec.all())
}

func TestUploadClient_Upload_DefaultsAndOpaqueAck(t *testing.T) {
	rec := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = io.WriteString(w, "queued")
	})

	ack, err := NewUploadClient(rec.transport(nil)).Upload(context.Background(),
		core.UploadRequest{File: core.UploadFile{Data: []byte("x")}, Namespace: "ns", UserID: "not-a-uuid"})
	require.NoError(t, err)
	assert.Equal(t, "queued", string(ack.Raw))
	assert.Empty(t, ack.DocumentID)

	req := rec.last()
	_, params, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	require.NoError(t, err)
	part, err := multipart.NewReader(bytes.NewReader(req.Body), params["boundary"]).NextPart()
	require.NoError(t, err)
	assert.Equal(t, "document", part.FileName())
	assert.Equal(t, "application/octet-stream", part.Header.Get("Content-Type"))
	assert.Equal(t, []string{"not-a-uuid"}, req.Query["user_id"])
}

func TestUploadClient_Upload_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{"too large", http.StatusRequestEntityTooLarge, `{"detail":"File too large"}`, core.ErrUpload, "File too large"},
		{"missing content type", http.StatusBadRequest, `{"detail":"Missing content type"}`, core.ErrUpload, "Missing content type"},
		{"unauthorized", http.StatusUnauthorized, `{"detail":"Not authenticated"}`, core.ErrAuth, "Not authenticated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			_, err := NewUploadClient(rec.transport(nil)).Upload(context.Background(), core.UploadRequest{
				File:      core.UploadFile{Name: "a.txt", ContentType: "text/plain", Data: []byte("hello")},
				Namespace: "default",
				UserID:    testUserID,
			})
			require.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
