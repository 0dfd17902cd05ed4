package core

import "time"

type ClientConfig interface {
	GetBaseURL() string
	GetTimeout() time.Duration
}

type AppConfig interface {
	GetRuntimePath() string
	GetDatabasePath() string
	GetNamespace() string
	GetUserID() string
}
