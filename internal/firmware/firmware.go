package firmware

import (
	"bytes"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	ErrorValidation    = errors.New("failed to validate firmware image")
	ErrNoFirmwareFound = errors.New("no firmware images found")
)

var (
	ugHeaderMagic  = []byte{0x55, 0xAA, 0x55, 0xAA}
	ugTrailerMagic = []byte{0xAA, 0x55, 0xAA, 0x55}
)

const (
	// UG packages smaller than this cannot hold a header plus any payload.
	minImageSize = 512
	// BK7231 parts top out at 2MiB of flash.
	maxImageSize = 2 << 20
)

// Image is a UG-packaged firmware file destined for the device.
type Image struct {
	path   string
	logger *logrus.Logger
}

func NewImage(path string, logger *logrus.Logger) *Image {
	return &Image{
		path:   path,
		logger: logger,
	}
}

func (i *Image) Path() string {
	return i.path
}

// Validate rejects images that the device bootloader would refuse anyway:
// wrong extension, implausible size, or missing UG package magics. The
// firmware payload itself stays opaque.
func (i *Image) Validate() error {
	i.logger.WithFields(logrus.Fields{
		"image": i.path,
	}).Info("running firmware image validation")
	info, err := os.Stat(i.path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrorValidation, err)
	}
	if !hasFirmwareExtension(info.Name()) {
		return fmt.Errorf("%w: image filename should end in .bin or .ug", ErrorValidation)
	}
	if info.Size() < minImageSize {
		return fmt.Errorf("%w: image is too small (%v bytes)", ErrorValidation, info.Size())
	}
	if info.Size() > maxImageSize {
		return fmt.Errorf("%w: image is too large (%v bytes)", ErrorValidation, info.Size())
	}
	data, err := ioutil.ReadFile(i.path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrorValidation, err)
	}
	if !bytes.HasPrefix(data, ugHeaderMagic) {
		return fmt.Errorf("%w: missing UG header magic", ErrorValidation)
	}
	if !bytes.HasSuffix(data, ugTrailerMagic) {
		return fmt.Errorf("%w: missing UG trailer magic", ErrorValidation)
	}
	return nil
}

// Discover maps firmware basenames to their paths under the firmware
// directory.
func Discover(firmwareDirectory string) (map[string]string, error) {
	entries, err := ioutil.ReadDir(firmwareDirectory)
	if err != nil {
		return nil, err
	}
	images := map[string]string{}
	for _, entry := range entries {
		if entry.IsDir() || !hasFirmwareExtension(entry.Name()) {
			continue
		}
		images[entry.Name()] = filepath.Join(firmwareDirectory, entry.Name())
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNoFirmwareFound, firmwareDirectory)
	}
	return images, nil
}

func hasFirmwareExtension(name string) bool {
	return strings.HasSuffix(name, ".bin") || strings.HasSuffix(name, ".ug")
}
