package config

import (
	"fmt"
	"io/ioutil"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultProfilesDirectory = "device-profiles"
	DefaultFirmwareDirectory = "custom-firmware"
	DefaultWorkDirectory     = "."
	DefaultDockerImage       = "cloudcutter:latest"
	DefaultCloudcutterCmd    = "cloudcutter"
)

// Config holds the paths and container settings the flasher needs. All
// fields have working defaults so the tool runs without a config file.
type Config struct {
	ProfilesDirectory  string `yaml:"profiles_directory"`
	FirmwareDirectory  string `yaml:"firmware_directory"`
	WorkDirectory      string `yaml:"work_directory"`
	DockerImage        string `yaml:"docker_image"`
	CloudcutterCommand string `yaml:"cloudcutter_command"`
}

func Default() *Config {
	return &Config{
		ProfilesDirectory:  DefaultProfilesDirectory,
		FirmwareDirectory:  DefaultFirmwareDirectory,
		WorkDirectory:      DefaultWorkDirectory,
		DockerImage:        DefaultDockerImage,
		CloudcutterCommand: DefaultCloudcutterCmd,
	}
}

// Load reads a YAML config file. A missing file is not an error and yields
// the defaults; unset fields fall back to their defaults as well.
func Load(path string) (*Config, error) {
	config := Default()
	data, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("unable to parse config %v: %w", path, err)
	}
	if config.ProfilesDirectory == "" {
		config.ProfilesDirectory = DefaultProfilesDirectory
	}
	if config.FirmwareDirectory == "" {
		config.FirmwareDirectory = DefaultFirmwareDirectory
	}
	if config.WorkDirectory == "" {
		config.WorkDirectory = DefaultWorkDirectory
	}
	if config.DockerImage == "" {
		config.DockerImage = DefaultDockerImage
	}
	if config.CloudcutterCommand == "" {
		config.CloudcutterCommand = DefaultCloudcutterCmd
	}
	return config, nil
}
