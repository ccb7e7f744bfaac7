// Package update compares the running version against the latest
// published release.
package update

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	goversion "github.com/hashicorp/go-version"
)

const releaseURL = "https://api.github.com/repos/sssemil/butane/releases/latest"

// Check reports the latest released version and whether it is newer
// than current. Network failures are returned, not fatal; callers treat
// the check as best-effort.
func Check(current string) (latest string, newer bool, err error) {
	cur, err := goversion.NewVersion(current)
	if err != nil {
		return "", false, fmt.Errorf("invalid version %q: %w", current, err)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(releaseURL)
	if err != nil {
		return "", false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("release check: unexpected status %s", resp.Status)
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", false, err
	}
	tag := strings.TrimPrefix(release.TagName, "v")
	lat, err := goversion.NewVersion(tag)
	if err != nil {
		return "", false, fmt.Errorf("invalid release tag %q: %w", release.TagName, err)
	}
	return tag, cur.LessThan(lat), nil
}
