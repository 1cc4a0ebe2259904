package schema

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

const (
	testUUID    = "abcdefgh12345678"
	testAuthKey = "0123456789abcdef0123456789abcdef"
)

func writeCredentialFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, contents := range files {
		assert.NoError(t, ioutil.WriteFile(filepath.Join(dir, name), []byte(contents), 0644))
	}
}

func TestReadCredentials(t *testing.T) {
	tests := map[string]struct {
		files       map[string]string
		expected    *Credentials
		expectedErr error
	}{
		"complete dump": {
			files: map[string]string{
				"bk7231t_uuid.txt":        testUUID,
				"bk7231t_auth_key.txt":    testAuthKey,
				"bk7231t_product_key.txt": "keyproduct123456",
				"bk7231t_swv.txt":         "1.0.3",
				"bk7231t_bv.txt":          "40.00",
				"bk7231t_chip.txt":        "BK7231T",
			},
			expected: &Credentials{
				UUID:            testUUID,
				AuthKey:         testAuthKey,
				ProductKey:      "keyproduct123456",
				SoftwareVersion: "1.0.3",
				BaselineVersion: "40.00",
				CADVersion:      defaultCADVersion,
				CDVersion:       defaultCDVersion,
				ProtocolVersion: defaultProtocolVersion,
				OutputPrefix:    "bk7231t",
			},
		},
		"product key doubles as uuid": {
			files: map[string]string{
				"device_auth_key.txt":    testAuthKey,
				"device_product_key.txt": "keyproduct123456",
				"device_swv.txt":         "1.0.3",
			},
			expected: &Credentials{
				UUID:            "keyproduct123456",
				AuthKey:         testAuthKey,
				ProductKey:      "keyproduct123456",
				SoftwareVersion: "1.0.3",
				BaselineVersion: defaultBaselineVersion,
				CADVersion:      defaultCADVersion,
				CDVersion:       defaultCDVersion,
				ProtocolVersion: defaultProtocolVersion,
				OutputPrefix:    "device",
			},
		},
		"schema already pulled": {
			files: map[string]string{
				"bk7231t_schema_id.txt": "0000000abc",
			},
			expectedErr: ErrSchemaExists,
		},
		"missing auth key": {
			files: map[string]string{
				"device_uuid.txt": testUUID,
				"device_swv.txt":  "1.0.3",
			},
			expectedErr: ErrMissingField,
		},
		"missing both keys": {
			files: map[string]string{
				"device_uuid.txt":     testUUID,
				"device_auth_key.txt": testAuthKey,
				"device_swv.txt":      "1.0.3",
			},
			expectedErr: ErrMissingField,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			dir, err := ioutil.TempDir("", "cutterflash-schema")
			assert.NoError(t, err)
			defer os.RemoveAll(dir)
			writeCredentialFiles(t, dir, tc.files)

			creds, err := ReadCredentials(dir)
			if tc.expectedErr != nil {
				assert.True(t, errors.Is(err, tc.expectedErr))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, creds)
		})
	}
}

// encryptedEnvelope builds the wire form of an API response the way the
// server does: JSON, ECB encrypted with the first half of the auth key,
// base64 wrapped in a result envelope.
func encryptedEnvelope(t *testing.T, response *Response) string {
	t.Helper()
	plaintext, err := json.Marshal(response)
	assert.NoError(t, err)
	ciphertext, err := ecbEncrypt([]byte(testAuthKey)[:16], plaintext)
	assert.NoError(t, err)
	envelope, err := json.Marshal(map[string]string{
		"result": base64.StdEncoding.EncodeToString(ciphertext),
	})
	assert.NoError(t, err)
	return string(envelope)
}

func TestConnectionRequest(t *testing.T) {
	var gotQuery, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		body, _ := ioutil.ReadAll(r.Body)
		gotBody = string(body)
		fmt.Fprint(w, encryptedEnvelope(t, &Response{
			Success: true,
			Result:  ActivationResult{SchemaID: "abc123", Schema: `[{"id":1}]`},
		}))
	}))
	defer server.Close()

	conn, err := NewConnection(testUUID, testAuthKey, &http.Client{Timeout: time.Second}, logrus.StandardLogger())
	assert.NoError(t, err)

	response, err := conn.Request(context.Background(), server.URL,
		map[string]string{"uuid": testUUID, "a": "tuya.device.active"},
		map[string]interface{}{"token": "12345678"})
	assert.NoError(t, err)
	assert.True(t, response.Success)
	assert.Equal(t, "abc123", response.Result.SchemaID)

	// query is sorted and signed
	assert.True(t, strings.HasPrefix(gotQuery, "a=tuya.device.active&uuid="+testUUID+"&sign="))
	// body is an uppercase hex blob
	assert.True(t, strings.HasPrefix(gotBody, "data="))
	blob := strings.TrimPrefix(gotBody, "data=")
	assert.Equal(t, strings.ToUpper(blob), blob)
}

func TestConnectionValidatesInputs(t *testing.T) {
	_, err := NewConnection("short", testAuthKey, http.DefaultClient, logrus.StandardLogger())
	assert.True(t, errors.Is(err, ErrInvalidUUID))

	_, err = NewConnection(testUUID, "short", http.DefaultClient, logrus.StandardLogger())
	assert.True(t, errors.Is(err, ErrInvalidAuthKey))
}

func TestPullerFallbackLadder(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		response := &Response{Success: false, ErrorCode: "NOT_EXISTS"}
		if requests == 2 {
			response = &Response{
				Success: true,
				Result:  ActivationResult{SchemaID: "schema-2", Schema: `[]`},
			}
		}
		fmt.Fprint(w, encryptedEnvelope(t, response))
	}))
	defer server.Close()

	conn, err := NewConnection(testUUID, testAuthKey, &http.Client{Timeout: time.Second}, logrus.StandardLogger())
	assert.NoError(t, err)
	puller := NewPuller(conn, logrus.StandardLogger())

	creds := &Credentials{
		UUID:            testUUID,
		AuthKey:         testAuthKey,
		ProductKey:      "keyproduct123456",
		SoftwareVersion: "1.0.3",
		BaselineVersion: defaultBaselineVersion,
		CADVersion:      defaultCADVersion,
		CDVersion:       defaultCDVersion,
		ProtocolVersion: defaultProtocolVersion,
	}
	// region resolution is bypassed by dialing the test server directly
	result, err := puller.pullFrom(context.Background(), server.URL, creds, &Token{Region: "us", Value: "12345678"})
	assert.NoError(t, err)
	assert.Equal(t, "schema-2", result.SchemaID)
	assert.Equal(t, 2, requests)
}

func TestPullerExpiredToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, encryptedEnvelope(t, &Response{Success: false, ErrorCode: "EXPIRE"}))
	}))
	defer server.Close()

	conn, err := NewConnection(testUUID, testAuthKey, &http.Client{Timeout: time.Second}, logrus.StandardLogger())
	assert.NoError(t, err)
	puller := NewPuller(conn, logrus.StandardLogger())

	creds := &Credentials{
		UUID:            testUUID,
		AuthKey:         testAuthKey,
		ProductKey:      "keyproduct123456",
		SoftwareVersion: "1.0.3",
		BaselineVersion: defaultBaselineVersion,
	}
	_, err = puller.pullFrom(context.Background(), server.URL, creds, &Token{Region: "us", Value: "12345678"})
	assert.True(t, errors.Is(err, ErrTokenExpired))
}

func TestWriteResult(t *testing.T) {
	dir, err := ioutil.TempDir("", "cutterflash-schema")
	assert.NoError(t, err)
	defer os.RemoveAll(dir)

	err = WriteResult(dir, "bk7231t", &ActivationResult{SchemaID: "abc123", Schema: `[{"id":1}]`})
	assert.NoError(t, err)

	schemaID, err := ioutil.ReadFile(filepath.Join(dir, "bk7231t_schema_id.txt"))
	assert.NoError(t, err)
	assert.Equal(t, "abc123", string(schemaID))

	schema, err := ioutil.ReadFile(filepath.Join(dir, "bk7231t_schema.txt"))
	assert.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(schema))
}
