package firmware

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

var ErrNoSelection = errors.New("no firmware image selected")

// Picker interactively selects a firmware image when none was given on the
// command line. The selection is written to a temporary file which the
// caller reads and deletes, preserving the helper contract the setup
// scripts rely on.
type Picker struct {
	in     io.Reader
	out    io.Writer
	logger *logrus.Logger
}

func NewPicker(in io.Reader, out io.Writer, logger *logrus.Logger) *Picker {
	return &Picker{
		in:     in,
		out:    out,
		logger: logger,
	}
}

// PickToFile prompts for an image from the firmware directory and returns
// the path of a temporary file holding the selection.
func (p *Picker) PickToFile(firmwareDirectory string) (string, error) {
	images, err := Discover(firmwareDirectory)
	if err != nil {
		return "", err
	}

	names := make([]string, 0, len(images))
	for name := range images {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(p.out, "Available firmware images:")
	for i, name := range names {
		fmt.Fprintf(p.out, "  %v) %v\n", i+1, name)
	}
	fmt.Fprintf(p.out, "Select firmware to flash [1-%v]: ", len(names))

	scanner := bufio.NewScanner(p.in)
	if !scanner.Scan() {
		return "", ErrNoSelection
	}
	choice, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil || choice < 1 || choice > len(names) {
		return "", fmt.Errorf("%w: invalid choice %q", ErrNoSelection, scanner.Text())
	}
	selected := images[names[choice-1]]
	p.logger.Debugf("firmware selected: %v", selected)

	selectionFile, err := ioutil.TempFile("", "cutterflash-firmware-selection")
	if err != nil {
		return "", err
	}
	defer selectionFile.Close()
	if _, err := selectionFile.WriteString(selected + "\n"); err != nil {
		os.Remove(selectionFile.Name())
		return "", err
	}
	return selectionFile.Name(), nil
}

// ReadSelection consumes the selection file written by PickToFile: read
// once, then delete.
func ReadSelection(path string) (string, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return "", err
	}
	defer os.Remove(path)
	selection := strings.TrimSpace(string(data))
	if selection == "" {
		return "", ErrNoSelection
	}
	return selection, nil
}
