package config

import "os"

type Config struct {
	Port         string
	TimelineFile string
	ExportFile   string
	LogLevel     string
}

func FromEnv() Config {
	c := Config{}
	c.Port = getenv("PORT", "8080")
	c.TimelineFile = os.Getenv("TIMELINE_FILE")
	c.ExportFile = os.Getenv("EXPORT_FILE")
	c.LogLevel = getenv("LOG_LEVEL", "info")
	return c
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
