package update

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/wanderlist/wanderlist/internal/config"
)

const (
	recheckAfter = 24 * time.Hour
	httpTimeout  = 3 * time.Second
	stateFile    = "update-check.json"
	releaseAPI   = "https://api.github.com/repos/wanderlist/wanderlist/releases/latest"
	releasesURL  = "https://github.com/wanderlist/wanderlist/releases"
)

var noticeStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("14")).
	Padding(0, 2)

// checkState is the on-disk record of the last release lookup.
type checkState struct {
	CheckedAt time.Time `json:"checked_at"`
	Latest    string    `json:"latest"`
}

func (st checkState) stale() bool {
	return st.Latest == "" || time.Since(st.CheckedAt) >= recheckAfter
}

func readState(path string) checkState {
	var st checkState
	if data, err := os.ReadFile(path); err == nil {
		json.Unmarshal(data, &st)
	}
	return st
}

func (st checkState) write(path string) {
	data, err := json.Marshal(st)
	if err != nil {
		return
	}
	os.MkdirAll(filepath.Dir(path), 0755)
	os.WriteFile(path, data, 0600)
}

// Checker looks up the latest release in the background so the version
// command can print immediately and collect the notice afterwards.
type Checker struct {
	current string
	notice  chan string
}

func NewChecker(current string) *Checker {
	return &Checker{current: current, notice: make(chan string, 1)}
}

// Start kicks off the lookup goroutine.
func (c *Checker) Start() {
	go func() { c.notice <- c.run() }()
}

// Notification waits for the lookup and returns the upgrade notice, or
// an empty string when already on the newest release.
func (c *Checker) Notification() string {
	return <-c.notice
}

func (c *Checker) run() string {
	statePath := filepath.Join(config.ConfigDirPath(), stateFile)
	st := readState(statePath)

	if st.stale() {
		if fetched, err := fetchLatestVersion(); err == nil {
			st = checkState{CheckedAt: time.Now(), Latest: fetched}
			st.write(statePath)
		}
		// A failed fetch falls back on whatever the state file held,
		// even when that is nothing.
	}

	if st.Latest == "" || !versionLess(c.current, st.Latest) {
		return ""
	}
	return renderNotice(c.current, st.Latest)
}

func renderNotice(current, latest string) string {
	body := fmt.Sprintf("Update available: %s → %s\n%s", current, latest, releasesURL)
	return "\n" + noticeStyle.Render(body) + "\n"
}

func fetchLatestVersion() (string, error) {
	client := &http.Client{Timeout: httpTimeout}
	resp, err := client.Get(releaseAPI)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", err
	}
	return strings.TrimPrefix(release.TagName, "v"), nil
}

// versionLess reports whether dotted version a predates b. Missing
// segments count as zero, so "1.2" and "1.2.0" compare equal.
func versionLess(a, b string) bool {
	ap := strings.Split(a, ".")
	bp := strings.Split(b, ".")
	for i := 0; i < len(ap) || i < len(bp); i++ {
		av, bv := segment(ap, i), segment(bp, i)
		if av != bv {
			return av < bv
		}
	}
	return false
}

func segment(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	n, _ := strconv.Atoi(parts[i])
	return n
}
