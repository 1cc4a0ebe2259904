package schema

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	// Smart Life announces fresh pairing tokens over UDP multicast on this
	// port while the add-device flow is active.
	tokenPort = 6669

	tokenLength    = 14
	apiTokenLength = 8
)

var (
	ErrInvalidToken  = errors.New("invalid pairing token")
	ErrUnknownRegion = errors.New("unable to determine region from token")
)

// Token is a pairing token from the official mobile app: a two character
// region prefix followed by the 8 character token the API expects.
type Token struct {
	Region string
	Value  string
}

func ParseToken(raw string) (*Token, error) {
	if len(raw) != tokenLength {
		return nil, fmt.Errorf("%w: expected %v characters, got %v", ErrInvalidToken, tokenLength, len(raw))
	}
	var region string
	switch raw[:2] {
	case "AZ":
		region = "us"
	case "EU":
		region = "eu"
	case "AY":
		region = "cn"
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownRegion, raw[:2])
	}
	return &Token{
		Region: region,
		Value:  raw[2 : 2+apiTokenLength],
	}, nil
}

// ListenForToken blocks until the app multicasts a pairing token or the
// context is cancelled.
func ListenForToken(ctx context.Context, logger *logrus.Logger) (*Token, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: tokenPort})
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return receiveToken(ctx, conn, logger)
}

func receiveToken(ctx context.Context, conn *net.UDPConn, logger *logrus.Logger) (*Token, error) {
	var raw string
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		buf := make([]byte, 255)
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			n, _, err := conn.ReadFromUDP(buf)
			if err != nil {
				if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
					continue
				}
				return err
			}
			decoded, err := decodeTokenDatagram(buf[:n])
			if err != nil {
				logger.Debugf("ignoring datagram: %v", err)
				continue
			}
			raw = decoded
			return nil
		}
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ParseToken(raw)
}

// decodeTokenDatagram unwraps the app's announcement: a 16 byte header with
// a big-endian payload length at offset 12, then a JSON object carrying the
// token.
func decodeTokenDatagram(msg []byte) (string, error) {
	if len(msg) < 16 {
		return "", fmt.Errorf("datagram too short: %v bytes", len(msg))
	}
	length := binary.BigEndian.Uint32(msg[12:16])
	end := int(length) + 8
	if end <= 16 || end > len(msg) {
		return "", fmt.Errorf("truncated datagram: length %v", length)
	}
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(msg[16:end], &payload); err != nil {
		return "", err
	}
	if payload.Token == "" {
		return "", errors.New("datagram carries no token")
	}
	return payload.Token, nil
}
