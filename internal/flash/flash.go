//go:generate mockgen -destination=mocks/mocks.go -package=mocks . ProfileFlasher,FirmwareFlasher,AdapterManager,CloudcutterRunner
package flash

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tuya-cloudcutter/cutterflash/internal/networkmanager"
)

const (
	DefaultRestoreRetries       = 3
	DefaultRestoreRetryInterval = time.Second
)

var (
	ErrNotWifiAdapter = errors.New("not a wifi adapter")
	ErrAdapterRelease = errors.New("failed to release adapter from NetworkManager")
)

type ProfileFlasher interface {
	Validate() error
	Path() string
}

type FirmwareFlasher interface {
	Validate() error
	Path() string
}

type AdapterManager interface {
	IsWifiAdapter(name string) (bool, error)
	SetManaged(name string, managed bool) error
	GetManagedState(name string) (networkmanager.ManagedState, error)
	Unblock() error
}

type CloudcutterRunner interface {
	UpdateFirmware(ctx context.Context, adapter, profile, firmware string) error
}

type Config struct {
	Adapter              string
	Profile              ProfileFlasher
	Firmware             FirmwareFlasher
	Adapters             AdapterManager
	Runner               CloudcutterRunner
	Logger               *logrus.Logger
	RestoreRetries       int
	RestoreRetryInterval time.Duration
}

type Flash struct {
	adapter              string
	profile              ProfileFlasher
	firmware             FirmwareFlasher
	adapters             AdapterManager
	runner               CloudcutterRunner
	logger               *logrus.Logger
	sessionID            string
	restoreRetries       int
	restoreRetryInterval time.Duration
}

func New(config *Config) *Flash {
	return &Flash{
		adapter:              config.Adapter,
		profile:              config.Profile,
		firmware:             config.Firmware,
		adapters:             config.Adapters,
		runner:               config.Runner,
		logger:               config.Logger,
		sessionID:            uuid.New().String(),
		restoreRetries:       config.RestoreRetries,
		restoreRetryInterval: config.RestoreRetryInterval,
	}
}

// Flash runs the full sequence: validate inputs, release the adapter from
// NetworkManager, hand control to the cloudcutter container, and always
// return the adapter to NetworkManager afterwards.
func (f *Flash) Flash(ctx context.Context) error {
	logger := f.logger.WithFields(logrus.Fields{
		"session": f.sessionID,
		"adapter": f.adapter,
	})

	logger.Info("validating device profile")
	err := f.profile.Validate()
	if err != nil {
		return err
	}

	logger.Info("validating firmware image")
	err = f.firmware.Validate()
	if err != nil {
		return err
	}

	ok, err := f.adapters.IsWifiAdapter(f.adapter)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %v", ErrNotWifiAdapter, f.adapter)
	}

	err = f.adapters.Unblock()
	if err != nil {
		logger.Debugf("ignoring rfkill unblock error: %v", err)
	}

	logger.Info("releasing adapter from NetworkManager control")
	err = f.adapters.SetManaged(f.adapter, false)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAdapterRelease, err)
	}
	defer f.restoreManaged(logger)

	logger.Info("handing adapter to cloudcutter for AP mode flashing")
	err = f.runner.UpdateFirmware(ctx, f.adapter, f.profile.Path(), f.firmware.Path())
	if err != nil {
		return err
	}

	logger.Info("firmware update finished")
	return nil
}

// restoreManaged runs on every exit path. NetworkManager sometimes needs a
// moment after the container tears down the AP, so the restore is retried a
// bounded number of times and verified against the reported state.
func (f *Flash) restoreManaged(logger *logrus.Entry) {
	logger.Info("returning adapter to NetworkManager control")
	for i := 0; i <= f.restoreRetries; i++ {
		if i > 0 {
			time.Sleep(f.restoreRetryInterval)
		}
		err := f.adapters.SetManaged(f.adapter, true)
		if err != nil {
			logger.Debugf("restore attempt %v failed: %v", i+1, err)
			continue
		}
		state, err := f.adapters.GetManagedState(f.adapter)
		if err != nil {
			logger.Debugf("restore attempt %v state check failed: %v", i+1, err)
			continue
		}
		if state == networkmanager.Managed {
			logger.Info("adapter is managed again")
			return
		}
	}
	logger.Warnf("failed to return adapter %v to NetworkManager control, "+
		"run 'nmcli device set %v managed yes' manually", f.adapter, f.adapter)
}
