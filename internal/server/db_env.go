package server

import (
	"net/url"
	"os"
	"strconv"
	"strings"
)

const defaultReleaseProjectID int64 = 1206

func dbDSNFromEnv() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}

	host := getenvDefault("DB_HOST", "127.0.0.1")
	port := getenvDefault("DB_PORT", "5432")
	user := getenvDefault("DB_USER", "app")
	pass := getenvDefault("DB_PASSWORD", "app")
	name := getenvDefault("DB_NAME", "people_console")
	sslmode := getenvDefault("DB_SSLMODE", "disable")

	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(user, pass),
		Host:   host + ":" + port,
		Path:   "/" + name,
	}
	q := u.Query()
	q.Set("sslmode", sslmode)
	u.RawQuery = q.Encode()
	return u.String()
}

// dbConfigured reports whether release plans should live in PostgreSQL.
// Without DATABASE_URL or DB_HOST the in-memory store is used.
func dbConfigured() bool {
	return os.Getenv("DATABASE_URL") != "" || os.Getenv("DB_HOST") != ""
}

func releaseProjectIDFromEnv() (int64, error) {
	raw := strings.TrimSpace(os.Getenv("RELEASE_PROJECT_ID"))
	if raw == "" {
		return defaultReleaseProjectID, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &envError{key: "RELEASE_PROJECT_ID", value: raw}
	}
	return id, nil
}

type envError struct {
	key   string
	value string
}

func (e *envError) Error() string {
	return "server: invalid " + e.key + "=" + strconv.Quote(e.value)
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
