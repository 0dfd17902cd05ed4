package config

import "os"

func IsDebug() bool {
	return os.Getenv("RAGCHAT_DEBUG") == "1"
}
