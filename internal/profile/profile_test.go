package profile

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

const testManifest = `{
	"name": "Test Plug v2",
	"manufacturer": "Example Corp",
	"github_issues": [42],
	"image_urls": ["https://example.com/plug.jpg"],
	"profiles": ["example-plug-v2"]
}`

func writeProfile(t *testing.T, root, slug string, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(root, slug)
	assert.NoError(t, os.MkdirAll(dir, 0755))
	for name, contents := range files {
		assert.NoError(t, ioutil.WriteFile(filepath.Join(dir, name), []byte(contents), 0644))
	}
	return dir
}

func TestProfileValidate(t *testing.T) {
	root, err := ioutil.TempDir("", "cutterflash-profiles")
	assert.NoError(t, err)
	defer os.RemoveAll(root)

	valid := writeProfile(t, root, "example-plug-v2", map[string]string{"example-plug-v2.json": testManifest})
	empty := writeProfile(t, root, "empty-profile", map[string]string{"readme.txt": "nothing here"})

	tests := map[string]struct {
		nameOrPath      string
		expectedErr     error
		failsResolution bool
	}{
		"valid profile by path": {
			nameOrPath: valid,
		},
		"valid profile by slug": {
			nameOrPath: "example-plug-v2",
		},
		"profile without manifest fails": {
			nameOrPath:  empty,
			expectedErr: ErrorValidation,
		},
		"missing profile fails at resolution": {
			nameOrPath:      "no-such-device",
			expectedErr:     ErrorValidation,
			failsResolution: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			p, err := New(&Config{
				ProfilesDirectory: root,
				NameOrPath:        tc.nameOrPath,
				Logger:            logrus.StandardLogger(),
			})
			if tc.failsResolution {
				assert.True(t, errors.Is(err, tc.expectedErr))
				return
			}
			assert.NoError(t, err)

			err = p.Validate()
			if tc.expectedErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, tc.expectedErr))
			}
		})
	}
}

func TestProfileManifest(t *testing.T) {
	root, err := ioutil.TempDir("", "cutterflash-profiles")
	assert.NoError(t, err)
	defer os.RemoveAll(root)

	dir := writeProfile(t, root, "example-plug-v2", map[string]string{"example-plug-v2.json": testManifest})

	p, err := New(&Config{ProfilesDirectory: root, NameOrPath: dir, Logger: logrus.StandardLogger()})
	assert.NoError(t, err)

	manifest, err := p.Manifest()
	assert.NoError(t, err)
	assert.Equal(t, "Test Plug v2", manifest.Name)
	assert.Equal(t, "Example Corp", manifest.Manufacturer)
	assert.Equal(t, []int{42}, manifest.GithubIssues)
}

func TestManifestLabel(t *testing.T) {
	tests := map[string]struct {
		manifest Manifest
		expected string
	}{
		"name and manufacturer": {
			manifest: Manifest{Name: "Test Plug v2", Manufacturer: "Example Corp"},
			expected: "Test Plug v2 (Example Corp)",
		},
		"name only": {
			manifest: Manifest{Name: "Test Plug v2"},
			expected: "Test Plug v2",
		},
		"empty manifest": {
			manifest: Manifest{},
			expected: "unknown device",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.manifest.Label())
		})
	}
}

func TestDiscover(t *testing.T) {
	root, err := ioutil.TempDir("", "cutterflash-profiles")
	assert.NoError(t, err)
	defer os.RemoveAll(root)

	plug := writeProfile(t, root, "example-plug-v2", map[string]string{"device.json": testManifest})
	bulb := writeProfile(t, root, "example-bulb", map[string]string{"device.json": testManifest})
	writeProfile(t, root, "not-a-profile", map[string]string{"notes.md": "no json"})

	profiles, err := Discover(root)
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{
		"example-plug-v2": plug,
		"example-bulb":    bulb,
	}, profiles)
}

func TestDiscoverEmpty(t *testing.T) {
	root, err := ioutil.TempDir("", "cutterflash-profiles")
	assert.NoError(t, err)
	defer os.RemoveAll(root)

	_, err = Discover(root)
	assert.True(t, errors.Is(err, ErrNoProfilesFound))
}
