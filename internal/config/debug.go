package config

import "os"

func IsDebug() bool {
	return os.Getenv("LUMIBOT_DEBUG") == "1"
}
