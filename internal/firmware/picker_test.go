package firmware

import (
	"bytes"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestPickToFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "cutterflash-firmware")
	assert.NoError(t, err)
	defer os.RemoveAll(dir)

	writeImage(t, dir, "esphome.bin", ugImage(1024))
	tasmota := writeImage(t, dir, "tasmota.bin", ugImage(1024))

	tests := map[string]struct {
		input       string
		expected    string
		expectedErr error
	}{
		"second entry selected": {
			input:    "2\n",
			expected: tasmota,
		},
		"first entry selected": {
			input:    "1\n",
			expected: filepath.Join(dir, "esphome.bin"),
		},
		"out of range choice fails": {
			input:       "9\n",
			expectedErr: ErrNoSelection,
		},
		"non numeric choice fails": {
			input:       "tasmota\n",
			expectedErr: ErrNoSelection,
		},
		"no input fails": {
			input:       "",
			expectedErr: ErrNoSelection,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			out := &bytes.Buffer{}
			picker := NewPicker(strings.NewReader(tc.input), out, logrus.StandardLogger())

			selectionFile, err := picker.PickToFile(dir)
			if tc.expectedErr != nil {
				assert.True(t, errors.Is(err, tc.expectedErr))
				return
			}
			assert.NoError(t, err)
			assert.Contains(t, out.String(), "tasmota.bin")

			selection, err := ReadSelection(selectionFile)
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, selection)

			// selection file is consumed on read
			_, err = os.Stat(selectionFile)
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestReadSelectionEmpty(t *testing.T) {
	selectionFile, err := ioutil.TempFile("", "cutterflash-firmware-selection")
	assert.NoError(t, err)
	selectionFile.Close()

	_, err = ReadSelection(selectionFile.Name())
	assert.True(t, errors.Is(err, ErrNoSelection))
}
