package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/ragchat/internal/core"
	"github.com/sandevgo/ragchat/internal/service/documents"
)

type Uploader interface {
	RunUpload(ctx context.Context, file core.UploadFile, namespace, userID string) (core.UploadAck, error)
}

type UploadCommand struct {
	uploader  Uploader
	formatter *ResponseFormatter
}

func NewUploadCommand(uploader Uploader) *UploadCommand {
	return &UploadCommand{uploader: uploader, formatter: NewResponseFormatter()}
}

func (c *UploadCommand) Name() string {
	return "upload"
}

func (c *UploadCommand) Description() string {
	return "Upload a local document into the current namespace"
}

func (c *UploadCommand) Execute(ctx context.Context, conv *core.Conversation, args []string) (string, error) {
	if len(args) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("Upload"),
			c.formatter.Usage("/upload <path>"),
			c.formatter.Examples([]string{"/upload ./contracts/lease.pdf"}),
		), nil
	}

	file, err := documents.LoadFile(strings.Join(args, " "))
	if err != nil {
		return "", err
	}

	ack, err := c.uploader.RunUpload(ctx, file, conv.Namespace, conv.UserID)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", file.Name, err)
	}
	return c.formatter.UploadNotice(file.Name, ack), nil
}
