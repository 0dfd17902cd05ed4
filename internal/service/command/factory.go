package command

import (
	"github.com/sandevgo/ragchat/internal/core"
)

func NewCommands(
	history core.HistoryRepository,
	auth Profiler,
	uploader Uploader,
) []core.Command {
	return []core.Command{
		NewNewSessionCommand(),
		NewSessionCommand(history),
		NewNamespaceCommand(),
		NewHistoryCommand(history),
		NewWhoamiCommand(auth),
		NewUploadCommand(uploader),
	}
}
