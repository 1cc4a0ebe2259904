package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"
	"github.com/tuya-cloudcutter/cutterflash/internal/color"
	"github.com/tuya-cloudcutter/cutterflash/internal/config"
	"github.com/tuya-cloudcutter/cutterflash/internal/container"
	"github.com/tuya-cloudcutter/cutterflash/internal/firmware"
	"github.com/tuya-cloudcutter/cutterflash/internal/flash"
	"github.com/tuya-cloudcutter/cutterflash/internal/networkmanager"
	"github.com/tuya-cloudcutter/cutterflash/internal/profile"
	"github.com/tuya-cloudcutter/cutterflash/internal/schema"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"
)

const usage = "usage: cutterflash [flags] <wifi_adapter> <profile> [<firmware>]"

var (
	configPath     string
	debug          bool
	pullSchemaDir  string
	flashTimeout   time.Duration
	downloadURL    string
	downloadSha256 string
	nmTool         *networkmanager.Tool
	flashAdapter   string
	cleanupFiles   []string
)

func parseFlags() {
	flag.StringVar(&configPath, "config", "cutterflash.yaml", "configuration file")
	flag.BoolVar(&debug, "debug", false, "debug logging")
	flag.StringVar(&pullSchemaDir, "pull-schema", "", "pull the device activation schema for a dump directory instead of flashing")
	flag.DurationVar(&flashTimeout, "timeout", 0, "upper bound on the flashing run (0 for no limit)")
	flag.StringVar(&downloadURL, "download", "", "download a firmware bundle into the firmware directory before flashing")
	flag.StringVar(&downloadSha256, "sha256", "", "expected sha256 of the downloaded firmware bundle")
	flag.Parse()
}

func main() {
	parseFlags()
	cleanupOnCtrlC()
	defer cleanup()

	logger := logrus.New()
	formatter := &prefixed.TextFormatter{ForceColors: true, ForceFormatting: true}
	formatter.SetColorScheme(&prefixed.ColorScheme{
		PrefixStyle: "white",
	})
	logger.SetFormatter(formatter)
	logger.SetOutput(colorable.NewColorableStdout())
	if debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf(color.Red("failed to load configuration: %v"), err)
	}

	if pullSchemaDir != "" {
		pullSchema(logger, pullSchemaDir)
		return
	}

	args := flag.Args()
	if len(args) < 2 {
		logger.Fatal(usage)
	}
	adapter := args[0]
	flashAdapter = adapter

	logger.Debug("setting up nmcli")
	nmTool, err = networkmanager.New()
	if err != nil {
		logger.Fatalf(color.Red("failed to setup nmcli: %v"), err)
	}

	logger.Debug("resolving device profile")
	prof, err := profile.New(&profile.Config{
		ProfilesDirectory: cfg.ProfilesDirectory,
		NameOrPath:        args[1],
		Logger:            logger,
	})
	if err != nil {
		listProfiles(logger, cfg.ProfilesDirectory)
		logger.Fatalf(color.Red("failed to resolve device profile %v: %v"), args[1], err)
	}
	manifest, err := prof.Manifest()
	if err != nil {
		logger.Debugf("no readable device manifest: %v", err)
	} else {
		logger.Infof("device profile: %v", manifest.Label())
	}

	if downloadURL != "" {
		logger.Debug("downloading firmware bundle")
		_, err := firmware.NewDownload(&firmware.DownloadConfig{
			URL:                  downloadURL,
			Sha256:               downloadSha256,
			HttpClient:           &http.Client{Timeout: 5 * time.Minute},
			DestinationDirectory: cfg.FirmwareDirectory,
			Logger:               logger,
		})
		if err != nil {
			logger.Fatalf(color.Red("firmware download failed: %v"), err)
		}
	}

	firmwarePath := ""
	if len(args) >= 3 {
		firmwarePath = args[2]
	} else {
		picker := firmware.NewPicker(os.Stdin, os.Stdout, logger)
		selectionFile, err := picker.PickToFile(cfg.FirmwareDirectory)
		if err != nil {
			logger.Fatalf(color.Red("firmware selection failed: %v"), err)
		}
		cleanupFiles = append(cleanupFiles, selectionFile)
		firmwarePath, err = firmware.ReadSelection(selectionFile)
		if err != nil {
			logger.Fatalf(color.Red("firmware selection failed: %v"), err)
		}
	}
	image := firmware.NewImage(firmwarePath, logger)

	logger.Debug("setting up docker")
	runner, err := container.New(&container.Config{
		Image:            cfg.DockerImage,
		Command:          cfg.CloudcutterCommand,
		WorkingDirectory: cfg.WorkDirectory,
		Logger:           logger,
	})
	if err != nil {
		logger.Fatalf(color.Red("failed to setup docker: %v"), err)
	}

	logger.Info(color.Yellow("1. Plug in the device and put it into pairing mode (usually by toggling power or holding its button)"))
	logger.Info(color.Yellow("2. Stay close to the device; the flashing access point has a short range"))
	logger.Info(color.Yellow("Press ENTER to continue"))
	_, _ = fmt.Scanln()

	ctx := context.Background()
	if flashTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flashTimeout)
		defer cancel()
	}

	err = flash.New(&flash.Config{
		Adapter:              adapter,
		Profile:              prof,
		Firmware:             image,
		Adapters:             nmTool,
		Runner:               runner,
		Logger:               logger,
		RestoreRetries:       flash.DefaultRestoreRetries,
		RestoreRetryInterval: flash.DefaultRestoreRetryInterval,
	}).Flash(ctx)
	if err != nil {
		if errors.Is(err, container.ErrFlashFailed) {
			logger.Fatal(color.Red("Flashing failed. Refer to the cloudcutter output above for details."))
		}
		logger.Fatal(color.Red(err))
	}
	logger.Info(color.Green("Firmware flashed successfully."))
}

func pullSchema(logger *logrus.Logger, dir string) {
	creds, err := schema.ReadCredentials(dir)
	if err != nil {
		if errors.Is(err, schema.ErrSchemaExists) {
			logger.Info("schema already present")
			return
		}
		logger.Fatalf(color.Red("failed to read credentials from %v: %v"), dir, err)
	}

	var token *schema.Token
	if flag.NArg() >= 1 {
		token, err = schema.ParseToken(flag.Arg(0))
		if err != nil {
			logger.Fatalf(color.Red("invalid token: %v"), err)
		}
	} else {
		logger.Info(color.Yellow("No token provided. In the Smart Life app on the same network, start the add device"))
		logger.Info(color.Yellow("procedure and back out at the wifi selection screen; the app will multicast a token."))
		logger.Info(color.Yellow("Note: this joins the device to your account. It can be deleted afterwards."))
		logger.Info("waiting for a multicast token from the app")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		token, err = schema.ListenForToken(ctx, logger)
		if err != nil {
			logger.Fatalf(color.Red("failed to receive a token: %v"), err)
		}
	}
	logger.Debugf("using token %v for region %v", token.Value, token.Region)

	conn, err := schema.NewConnection(creds.UUID, creds.AuthKey, &http.Client{Timeout: time.Minute}, logger)
	if err != nil {
		logger.Fatalf(color.Red("failed to setup API connection: %v"), err)
	}

	result, err := schema.NewPuller(conn, logger).Pull(context.Background(), creds, token)
	if err != nil {
		logger.Fatalf(color.Red("failed to pull schema: %v"), err)
	}
	if err := schema.WriteResult(dir, creds.OutputPrefix, result); err != nil {
		logger.Fatalf(color.Red("failed to write schema: %v"), err)
	}
	logger.Infof("schema id: %v", result.SchemaID)
	logger.Info(color.Green("Schema pulled successfully."))
}

func listProfiles(logger *logrus.Logger, profilesDirectory string) {
	profiles, err := profile.Discover(profilesDirectory)
	if err != nil {
		logger.Debugf("unable to list device profiles: %v", err)
		return
	}
	slugs := make([]string, 0, len(profiles))
	for slug := range profiles {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	logger.Infof("available profiles: %v", strings.Join(slugs, ", "))
}

func cleanup() {
	if nmTool != nil && flashAdapter != "" {
		err := nmTool.SetManaged(flashAdapter, true)
		if err != nil {
			fmt.Printf("cleanup error restoring managed state of %v: %v\n", flashAdapter, err)
		}
	}
	for _, file := range cleanupFiles {
		err := os.Remove(file)
		if err != nil && !os.IsNotExist(err) {
			fmt.Printf("cleanup error removing file %v: %v\n", file, err)
		}
	}
}

func cleanupOnCtrlC() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("\r- Ctrl+C pressed in Terminal")
		cleanup()
		os.Exit(1)
	}()
}
