package schema

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultBaselineVersion = "40.00"
	defaultCADVersion      = "1.0.2"
	defaultCDVersion       = "1.0.0"
	defaultProtocolVersion = "2.2"
)

var (
	ErrSchemaExists     = errors.New("schema already present")
	ErrMissingField     = errors.New("missing activation credential")
	ErrTokenExpired     = errors.New("token has expired or belongs to another region")
	ErrActivationFailed = errors.New("activation request rejected")
)

// Error codes after which the API is worth retrying with the isFK flag
// flipped or the other key.
var retryableCodes = map[string]bool{
	"FIRMWARE_NOT_MATCH":    true,
	"APP_PRODUCT_UNSUPPORT": true,
	"NOT_EXISTS":            true,
}

// Credentials are the per-device values extracted from a firmware dump,
// stored as single-line text files next to the dump.
type Credentials struct {
	UUID            string
	AuthKey         string
	ProductKey      string
	FirmwareKey     string
	SoftwareVersion string
	BaselineVersion string
	CADVersion      string
	CDVersion       string
	ProtocolVersion string
	OutputPrefix    string
}

// ReadCredentials loads credentials from a profile-building directory. The
// file naming follows the dump tooling: `<chip>_uuid.txt`,
// `<chip>_auth_key.txt` and so on.
func ReadCredentials(dir string) (*Credentials, error) {
	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	creds := &Credentials{
		BaselineVersion: defaultBaselineVersion,
		CADVersion:      defaultCADVersion,
		CDVersion:       defaultCDVersion,
		ProtocolVersion: defaultProtocolVersion,
		OutputPrefix:    "device",
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch {
		case strings.HasSuffix(name, "_schema_id.txt"):
			return nil, fmt.Errorf("%w: %v", ErrSchemaExists, filepath.Join(dir, name))
		case strings.HasSuffix(name, "_uuid.txt"):
			creds.UUID = readSingleLine(filepath.Join(dir, name))
		case strings.HasSuffix(name, "_auth_key.txt"):
			creds.AuthKey = readSingleLine(filepath.Join(dir, name))
		case strings.HasSuffix(name, "_product_key.txt"):
			creds.ProductKey = readSingleLine(filepath.Join(dir, name))
		case strings.HasSuffix(name, "_firmware_key.txt"):
			creds.FirmwareKey = readSingleLine(filepath.Join(dir, name))
		case strings.HasSuffix(name, "_swv.txt"):
			creds.SoftwareVersion = readSingleLine(filepath.Join(dir, name))
		case strings.HasSuffix(name, "_bv.txt"):
			if bv := readSingleLine(filepath.Join(dir, name)); bv != "" {
				creds.BaselineVersion = bv
			}
		case strings.HasSuffix(name, "_chip.txt"):
			creds.OutputPrefix = strings.TrimSuffix(name, "_chip.txt")
		}
	}
	return creds, creds.validate()
}

func (c *Credentials) validate() error {
	if len(c.UUID) != 16 {
		// some dumps only carry the product key, which doubles as the uuid
		if len(c.ProductKey) == 16 {
			c.UUID = c.ProductKey
		} else {
			return fmt.Errorf("%w: uuid (expected 16 characters)", ErrMissingField)
		}
	}
	if len(c.AuthKey) != 32 {
		return fmt.Errorf("%w: auth_key (expected 32 characters)", ErrMissingField)
	}
	if c.ProductKey == "" && c.FirmwareKey == "" {
		return fmt.Errorf("%w: product_key or firmware_key", ErrMissingField)
	}
	if len(c.SoftwareVersion) < 5 {
		return fmt.Errorf("%w: swv (expected >= 5 characters)", ErrMissingField)
	}
	if len(c.BaselineVersion) < 5 {
		return fmt.Errorf("%w: bv (expected >= 5 characters)", ErrMissingField)
	}
	return nil
}

type Puller struct {
	conn   *Connection
	logger *logrus.Logger
	now    func() time.Time
}

func NewPuller(conn *Connection, logger *logrus.Logger) *Puller {
	return &Puller{
		conn:   conn,
		logger: logger,
		now:    time.Now,
	}
}

// Pull requests the device schema from the activation endpoint, walking the
// same fallback ladder as the device: product key first with isFK toggled,
// then the firmware key.
func (p *Puller) Pull(ctx context.Context, creds *Credentials, token *Token) (*ActivationResult, error) {
	endpoint := fmt.Sprintf("http://a.tuya%v.com/d.json", token.Region)
	return p.pullFrom(ctx, endpoint, creds, token)
}

func (p *Puller) pullFrom(ctx context.Context, endpoint string, creds *Credentials, token *Token) (*ActivationResult, error) {
	epoch := p.now().Unix()
	params := map[string]string{
		"a":    "tuya.device.active",
		"t":    strconv.FormatInt(epoch, 10),
		"uuid": creds.UUID,
		"v":    "4.4",
		"et":   "1",
	}

	attempt := func(key string, isFK bool) (*Response, error) {
		p.logger.WithFields(logrus.Fields{
			"key":  key,
			"isFK": isFK,
		}).Debug("requesting activation")
		return p.conn.Request(ctx, endpoint, params, activationData(epoch, token.Value, key, isFK, creds))
	}

	var response *Response
	var err error
	if creds.ProductKey != "" {
		response, err = attempt(creds.ProductKey, false)
		if err != nil {
			return nil, err
		}
		if !response.Success && retryableCodes[response.ErrorCode] {
			response, err = attempt(creds.ProductKey, true)
			if err != nil {
				return nil, err
			}
		}
	}

	if (response == nil || (!response.Success && response.ErrorCode != "EXPIRE")) && creds.FirmwareKey != "" {
		response, err = attempt(creds.FirmwareKey, true)
		if err != nil {
			return nil, err
		}
		if !response.Success && retryableCodes[response.ErrorCode] {
			response, err = attempt(creds.FirmwareKey, false)
			if err != nil {
				return nil, err
			}
		}
	}

	if response == nil {
		return nil, fmt.Errorf("%w: no usable key", ErrActivationFailed)
	}
	if response.Success {
		return &response.Result, nil
	}
	if response.ErrorCode == "EXPIRE" {
		return nil, ErrTokenExpired
	}
	return nil, fmt.Errorf("%w: %v", ErrActivationFailed, response.ErrorCode)
}

// WriteResult stores the pulled schema next to the credentials, in the
// layout the profile-building tooling expects.
func WriteResult(dir, prefix string, result *ActivationResult) error {
	err := ioutil.WriteFile(filepath.Join(dir, prefix+"_schema_id.txt"), []byte(result.SchemaID), 0644)
	if err != nil {
		return err
	}
	return ioutil.WriteFile(filepath.Join(dir, prefix+"_schema.txt"), []byte(result.Schema), 0644)
}

func activationData(epoch int64, token, key string, isFK bool, creds *Credentials) map[string]interface{} {
	return map[string]interface{}{
		"token":       token,
		"productKey":  key,
		"softVer":     creds.SoftwareVersion,
		"protocolVer": creds.ProtocolVersion,
		"baselineVer": creds.BaselineVersion,
		"options":     fmt.Sprintf(`{"isFK":%v}`, isFK),
		"cadVer":      creds.CADVersion,
		"cdVer":       creds.CDVersion,
		"t":           epoch,
	}
}

func readSingleLine(path string) string {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return ""
	}
	contents := strings.TrimRight(string(data), "\r\n")
	if strings.Contains(contents, "\n") {
		return ""
	}
	return contents
}
