package firmware

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/mholt/archiver/v3"
	"github.com/sirupsen/logrus"
)

const downloadRetries = 3

type DownloadConfig struct {
	URL                  string
	Sha256               string
	HttpClient           *http.Client
	DestinationDirectory string
	Logger               *logrus.Logger
}

// Download fetches a published firmware bundle, verifies its checksum and
// unpacks it when it arrives as an archive.
type Download struct {
	httpClient           *http.Client
	url                  string
	sha256               string
	destinationDirectory string
	file                 string
	path                 string
	logger               *logrus.Logger
}

func NewDownload(config *DownloadConfig) (*Download, error) {
	file := filepath.Join(config.DestinationDirectory, path.Base(config.URL))
	download := &Download{
		httpClient:           config.HttpClient,
		url:                  config.URL,
		sha256:               config.Sha256,
		destinationDirectory: config.DestinationDirectory,
		file:                 file,
		path:                 file,
		logger:               config.Logger,
	}
	err := download.initialize()
	if err != nil {
		return nil, err
	}
	return download, nil
}

func (d *Download) initialize() error {
	logger := d.logger.WithFields(logrus.Fields{
		"url":    d.url,
		"sha256": d.sha256,
		"file":   d.file,
	})

	logger.Debug("starting firmware download")
	err := backoff.Retry(d.fetch, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), downloadRetries))
	if err != nil {
		return err
	}

	if d.sha256 != "" {
		logger.Debug("starting firmware verify")
		err = d.verify()
		if err != nil {
			return err
		}
	}

	if isArchive(d.file) {
		logger.Debug("starting firmware extract")
		err = d.extract()
		if err != nil {
			return err
		}
	}

	return nil
}

// Path is the downloaded firmware file, or the directory its archive was
// extracted into.
func (d *Download) Path() string {
	return d.path
}

func (d *Download) fetch() error {
	d.logger.Debugf("making directory %v", d.destinationDirectory)
	_ = os.MkdirAll(d.destinationDirectory, os.ModePerm)

	out, err := os.Create(d.file)
	if err != nil {
		return backoff.Permanent(err)
	}
	defer out.Close()

	d.logger.Debugf("downloading %v", d.url)
	resp, err := d.httpClient.Get(d.url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad download status from %v: %v", d.url, resp.Status)
	}

	_, err = io.Copy(out, resp.Body)
	if err != nil {
		return err
	}
	return nil
}

func (d *Download) verify() error {
	sum, err := fileSha256(d.file)
	if err != nil {
		return err
	}
	if d.sha256 != sum {
		return fmt.Errorf("expected sha256 to be %v but got %v", d.sha256, sum)
	}
	return nil
}

func (d *Download) extract() error {
	d.logger.Debugf("unarchiving %v to directory %v", d.file, d.destinationDirectory)
	err := archiver.Unarchive(d.file, d.destinationDirectory)
	if err != nil {
		return err
	}
	d.path = d.destinationDirectory
	return nil
}

func fileSha256(file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func isArchive(file string) bool {
	for _, suffix := range []string{".zip", ".tar.gz", ".tgz"} {
		if strings.HasSuffix(file, suffix) {
			return true
		}
	}
	return false
}
