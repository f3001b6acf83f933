package state

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"github.com/mark3labs/taskdeck/internal/logger"
)

const cookieFile = "cookies.json"

// savedCookie is the on-disk form of a session cookie.
type savedCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Path    string    `json:"path,omitempty"`
	Expires time.Time `json:"expires,omitempty"`
}

// cookieJar maps API host to its cookies.
type cookieJar map[string][]savedCookie

// LoadCookies returns the cookies saved for host. Expired cookies are
// dropped.
func LoadCookies(dataDir, host string) []*http.Cookie {
	jar := readJar(dataDir)
	now := time.Now()
	var out []*http.Cookie
	for _, c := range jar[host] {
		if !c.Expires.IsZero() && c.Expires.Before(now) {
			continue
		}
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value, Path: c.Path, Expires: c.Expires})
	}
	return out
}

// SaveCookies replaces the cookies saved for host. An empty slice removes
// the host entry.
func SaveCookies(dataDir, host string, cookies []*http.Cookie) error {
	jar := readJar(dataDir)
	if len(cookies) == 0 {
		delete(jar, host)
	} else {
		saved := make([]savedCookie, 0, len(cookies))
		for _, c := range cookies {
			saved = append(saved, savedCookie{Name: c.Name, Value: c.Value, Path: c.Path, Expires: c.Expires})
		}
		jar[host] = saved
	}

	data, err := sonic.Marshal(jar)
	if err != nil {
		return fmt.Errorf("marshaling cookies: %w", err)
	}
	return writeFile(dataDir, cookieFile, data, 0600)
}

func readJar(dataDir string) cookieJar {
	jar := cookieJar{}
	data, err := os.ReadFile(filepath.Join(dataDir, cookieFile))
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Failed to read cookie file: %v", err)
		}
		return jar
	}
	if err := sonic.Unmarshal(data, &jar); err != nil {
		logger.Warn("Failed to parse cookie file: %v", err)
		return cookieJar{}
	}
	return jar
}
