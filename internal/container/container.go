package container

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

const dockerExecutable = "docker"

var (
	ErrorDockerNotFound = errors.New("docker executable not found")
	ErrFlashFailed      = errors.New("cloudcutter flash run failed")
)

type Config struct {
	Image            string
	Command          string
	WorkingDirectory string
	Logger           *logrus.Logger
}

// Tool runs the cloudcutter python tool inside its docker image. The
// container needs host networking and privileges to drive the wifi adapter
// in AP mode; the working directory is mounted at /work so profiles and
// firmware images resolve inside the container.
type Tool struct {
	executable       string
	image            string
	command          string
	workingDirectory string
	logger           *logrus.Logger
}

func New(config *Config) (*Tool, error) {
	executable, err := exec.LookPath(dockerExecutable)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrorDockerNotFound, err)
	}
	workingDirectory, err := filepath.Abs(config.WorkingDirectory)
	if err != nil {
		return nil, err
	}
	return &Tool{
		executable:       executable,
		image:            config.Image,
		command:          config.Command,
		workingDirectory: workingDirectory,
		logger:           config.Logger,
	}, nil
}

// UpdateFirmware invokes `cloudcutter update_firmware` in the container and
// blocks until it exits. The run is judged solely by its exit code; all
// protocol output streams through to the operator.
func (t *Tool) UpdateFirmware(ctx context.Context, adapter, profile, firmware string) error {
	t.logger.WithFields(logrus.Fields{
		"image":   t.image,
		"adapter": adapter,
	}).Debug("starting cloudcutter container")
	cmd := exec.CommandContext(ctx, t.executable, t.updateArgs(adapter, profile, firmware)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFlashFailed, err)
	}
	return nil
}

func (t *Tool) updateArgs(adapter, profile, firmware string) []string {
	return []string{
		"run", "--rm",
		"--network", "host",
		"--privileged",
		"-v", fmt.Sprintf("%v:/work", t.workingDirectory),
		"-w", "/work",
		t.image,
		t.command, "update_firmware", adapter, profile, firmware,
	}
}
