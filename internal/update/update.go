package update

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/fatih/color"
	"github.com/hashicorp/go-version"
	"github.com/rs/zerolog/log"

	"github.com/jhlee0409/selfish-pipeline/internal/config"
)

const (
	repoOwner     = "jhlee0409"
	repoName      = "selfish-pipeline"
	checkInterval = 24 * time.Hour
	cacheFileName = ".update-check"
)

// Endpoints are variables so tests can point them at an httptest server
var (
	githubAPIURL    = "https://api.github.com/repos/%s/%s/releases/latest"
	releaseAssetURL = "https://github.com/%s/%s/releases/download/%s/%s"
)

// Release represents a GitHub release
type Release struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
}

// UpdateInfo contains information about available updates
type UpdateInfo struct {
	CurrentVersion  string
	LatestVersion   string
	UpdateAvailable bool
	ReleaseURL      string
	ReleaseNotes    string
}

// Options controls PerformUpdate
type Options struct {
	// AssumeYes skips the confirmation prompt
	AssumeYes bool
}

// getCacheFile returns the path to the update cache file
func getCacheFile() (string, error) {
	configDir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, cacheFileName), nil
}

// ShouldCheck reports whether the cached result is older than the check interval
func ShouldCheck() bool {
	cacheFile, err := getCacheFile()
	if err != nil {
		return true
	}

	info, err := os.Stat(cacheFile)
	if err != nil {
		return true
	}

	return time.Since(info.ModTime()) > checkInterval
}

// fetchLatestRelease fetches the latest release from GitHub
func fetchLatestRelease() (*Release, error) {
	url := fmt.Sprintf(githubAPIURL, repoOwner, repoName)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &release, nil
}

// saveCache saves the latest version to cache
func saveCache(content string) error {
	cacheFile, err := getCacheFile()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(cacheFile), 0755); err != nil {
		return err
	}
	return os.WriteFile(cacheFile, []byte(content), 0644)
}

// readCache reads the cached version info
func readCache() (version string, hasUpdate bool) {
	cacheFile, err := getCacheFile()
	if err != nil {
		return "", false
	}

	data, err := os.ReadFile(cacheFile)
	if err != nil {
		return "", false
	}

	parts := strings.Split(string(data), "\n")
	if len(parts) >= 1 {
		version = strings.TrimSpace(parts[0])
	}
	if len(parts) >= 2 {
		hasUpdate = strings.TrimSpace(parts[1]) == "update"
	}

	return version, hasUpdate
}

// IsNewer reports whether latest is a newer release than current. A current
// version that isn't a version at all (a "dev" build) is always outdated; an
// unparsable latest never is.
func IsNewer(current, latest string) bool {
	latestV, err := version.NewVersion(latest)
	if err != nil {
		return false
	}
	currentV, err := version.NewVersion(current)
	if err != nil {
		return true
	}
	return latestV.GreaterThan(currentV)
}

// CheckForUpdate checks if a new version is available
func CheckForUpdate(currentVersion string) (*UpdateInfo, error) {
	release, err := fetchLatestRelease()
	if err != nil {
		return nil, err
	}

	info := &UpdateInfo{
		CurrentVersion:  currentVersion,
		LatestVersion:   release.TagName,
		UpdateAvailable: IsNewer(currentVersion, release.TagName),
		ReleaseURL:      release.HTMLURL,
		ReleaseNotes:    release.Body,
	}

	cacheContent := release.TagName
	if info.UpdateAvailable {
		cacheContent += "\nupdate"
	}
	if err := saveCache(cacheContent); err != nil {
		log.Debug().Err(err).Msg("failed to write update cache")
	}

	return info, nil
}

// CheckForUpdateAsync checks for updates in the background. The network is
// only used when the cached result is older than the check interval; otherwise
// the cache answers. The channel yields at most one value and is then closed.
func CheckForUpdateAsync(currentVersion string) <-chan *UpdateInfo {
	ch := make(chan *UpdateInfo, 1)

	go func() {
		defer close(ch)

		if !ShouldCheck() {
			latest, hasUpdate := readCache()
			if hasUpdate && IsNewer(currentVersion, latest) {
				ch <- &UpdateInfo{
					CurrentVersion:  currentVersion,
					LatestVersion:   latest,
					UpdateAvailable: true,
				}
			}
			return
		}

		info, err := CheckForUpdate(currentVersion)
		if err != nil {
			log.Debug().Err(err).Msg("background update check failed")
			return
		}
		if info.UpdateAvailable {
			ch <- info
		}
	}()

	return ch
}

// GetUpdateNotice returns a formatted update notice if the cache says one is
// available. It never touches the network.
func GetUpdateNotice(currentVersion string) string {
	latest, hasUpdate := readCache()
	if !hasUpdate || !IsNewer(currentVersion, latest) {
		return ""
	}
	return FormatNotice(latest, currentVersion)
}

// FormatNotice renders the one-line update notice. Colour follows fatih/color,
// so it is dropped when stderr is not a terminal.
func FormatNotice(latest, currentVersion string) string {
	return fmt.Sprintf("\n%s selfish %s available (current: %s) - run %s\n",
		color.New(color.FgYellow).Sprint("!"), latest, currentVersion,
		color.New(color.Bold).Sprint("selfish update"))
}

// AssetName returns the release asset for the given platform
func AssetName(goos, goarch string) string {
	name := fmt.Sprintf("selfish-%s-%s", goos, goarch)
	if goos == "windows" {
		name += ".exe"
	}
	return name
}

func confirm(latest string) (bool, error) {
	ok := false
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Install selfish %s?", latest)).
				Description("The current binary will be replaced").
				Affirmative("Update").
				Negative("Cancel").
				Value(&ok),
		),
	).Run()
	if err != nil {
		return false, fmt.Errorf("confirmation canceled: %w", err)
	}
	return ok, nil
}

// PerformUpdate downloads and installs the latest version
func PerformUpdate(currentVersion string, opts Options) error {
	fmt.Println("Checking for updates...")

	info, err := CheckForUpdate(currentVersion)
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}

	if !info.UpdateAvailable {
		fmt.Printf("Already up to date (version %s)\n", currentVersion)
		return nil
	}

	fmt.Printf("New version available: %s (current: %s)\n", info.LatestVersion, info.CurrentVersion)
	fmt.Printf("Release notes: %s\n\n", info.ReleaseURL)

	if !opts.AssumeYes {
		ok, err := confirm(info.LatestVersion)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Update skipped.")
			return nil
		}
	}

	assetName := AssetName(runtime.GOOS, runtime.GOARCH)
	downloadURL := fmt.Sprintf(releaseAssetURL, repoOwner, repoName, info.LatestVersion, assetName)

	fmt.Printf("Downloading %s...\n", assetName)

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Get(downloadURL)
	if err != nil {
		return fmt.Errorf("failed to download update: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status %d (asset may not exist for your platform)", resp.StatusCode)
	}

	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return fmt.Errorf("failed to resolve executable path: %w", err)
	}

	if err := replaceBinary(execPath, resp.Body); err != nil {
		return err
	}

	cacheFile, _ := getCacheFile()
	_ = os.Remove(cacheFile)

	fmt.Printf("\nSuccessfully updated to %s!\n", info.LatestVersion)
	return nil
}

// replaceBinary writes src next to target and swaps it in, restoring the
// previous binary if the swap fails
func replaceBinary(target string, src io.Reader) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(target), "selfish-update-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	_, err = io.Copy(tmpFile, src)
	_ = tmpFile.Close()
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}

	if err := os.Chmod(tmpPath, 0755); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	backupPath := target + ".backup"
	if err := os.Rename(target, backupPath); err != nil {
		return fmt.Errorf("failed to backup current binary: %w", err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Rename(backupPath, target)
		return fmt.Errorf("failed to install update: %w", err)
	}

	_ = os.Remove(backupPath)
	return nil
}
