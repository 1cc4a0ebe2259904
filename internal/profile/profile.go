package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	ErrorValidation    = errors.New("failed to validate device profile")
	ErrNoProfilesFound = errors.New("no device profiles found")
)

// Manifest is the device description shipped alongside a classic-flash
// profile. Only the fields the flasher surfaces to the operator are decoded;
// the rest of the JSON belongs to cloudcutter.
type Manifest struct {
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer"`
	GithubIssues []int    `json:"github_issues"`
	ImageURLs    []string `json:"image_urls"`
	Profiles     []string `json:"profiles"`
}

// Label is the operator-facing description of the device.
func (m *Manifest) Label() string {
	switch {
	case m.Name == "":
		return "unknown device"
	case m.Manufacturer == "":
		return m.Name
	default:
		return fmt.Sprintf("%v (%v)", m.Name, m.Manufacturer)
	}
}

type Config struct {
	ProfilesDirectory string
	NameOrPath        string
	Logger            *logrus.Logger
}

// Profile is a directory of JSON files describing one device, handed to the
// cloudcutter container by path.
type Profile struct {
	slug   string
	path   string
	logger *logrus.Logger
}

// New resolves a profile argument: an existing directory path wins,
// otherwise the argument is treated as a slug under the profiles directory.
func New(config *Config) (*Profile, error) {
	path := config.NameOrPath
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		path = filepath.Join(config.ProfilesDirectory, config.NameOrPath)
		info, err = os.Stat(path)
		if err != nil || !info.IsDir() {
			return nil, fmt.Errorf("%w: no profile directory at %v or %v",
				ErrorValidation, config.NameOrPath, path)
		}
	}
	return &Profile{
		slug:   filepath.Base(path),
		path:   path,
		logger: config.Logger,
	}, nil
}

func (p *Profile) Path() string {
	return p.path
}

func (p *Profile) Slug() string {
	return p.slug
}

func (p *Profile) Validate() error {
	p.logger.WithFields(logrus.Fields{
		"profile": p.slug,
	}).Info("running device profile validation")
	info, err := os.Stat(p.path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrorValidation, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %v is not a directory", ErrorValidation, p.path)
	}
	manifests, err := manifestFiles(p.path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrorValidation, err)
	}
	if len(manifests) == 0 {
		return fmt.Errorf("%w: no JSON manifest in %v", ErrorValidation, p.path)
	}
	return nil
}

// Manifest parses the device manifest. Profiles carry either a single
// manifest or one JSON file per flashing strategy; the first parseable one
// describes the device.
func (p *Profile) Manifest() (*Manifest, error) {
	manifests, err := manifestFiles(p.path)
	if err != nil {
		return nil, err
	}
	var lastErr error
	for _, file := range manifests {
		data, err := ioutil.ReadFile(file)
		if err != nil {
			lastErr = err
			continue
		}
		manifest := &Manifest{}
		if err := json.Unmarshal(data, manifest); err != nil {
			lastErr = err
			continue
		}
		return manifest, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrorValidation, lastErr)
}

// Discover maps profile slugs to their directories for operator-facing
// listings.
func Discover(profilesDirectory string) (map[string]string, error) {
	entries, err := ioutil.ReadDir(profilesDirectory)
	if err != nil {
		return nil, err
	}
	profiles := map[string]string{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(profilesDirectory, entry.Name())
		manifests, err := manifestFiles(dir)
		if err != nil || len(manifests) == 0 {
			continue
		}
		profiles[entry.Name()] = dir
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNoProfilesFound, profilesDirectory)
	}
	return profiles, nil
}

func manifestFiles(dir string) ([]string, error) {
	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var manifests []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		manifests = append(manifests, filepath.Join(dir, entry.Name()))
	}
	return manifests, nil
}
