package codec

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	systemIDOffset = 12
	systemIDEnd    = 28
)

// BoxInfo is the decoded header of a PSSH box.
type BoxInfo struct {
	Version    int
	SystemID   string
	KeyIDs     []string
	DataLength int
}

// SystemID reads bytes 12..28 of a PSSH box as a canonical uuid.
// boxes shorter than 28 bytes carry no system id.
func SystemID(box []byte) (string, bool) {
	if len(box) < systemIDEnd {
		return "", false
	}
	raw := box[systemIDOffset:systemIDEnd]
	id, err := uuid.FromBytes(raw)
	if err != nil {
		return hex.EncodeToString(raw), true
	}
	return id.String(), true
}

// ParseBox fully decodes a PSSH box. the caller decides whether a
// failure matters; SystemID works on boxes this rejects.
func ParseBox(box []byte) (info *BoxInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			info = nil
			err = fmt.Errorf("malformed pssh box: %v", r)
		}
	}()

	decoded, err := mp4.DecodeBox(0, bytes.NewReader(box))
	if err != nil {
		return nil, fmt.Errorf("decode box: %w", err)
	}
	psshBox, ok := decoded.(*mp4.PsshBox)
	if !ok {
		return nil, errors.Errorf("box is a %s instead of a pssh", decoded.Type())
	}

	systemID := hex.EncodeToString(psshBox.SystemID)
	if id, err := uuid.FromBytes(psshBox.SystemID); err == nil {
		systemID = id.String()
	}
	keyIDs := make([]string, 0, len(psshBox.KIDs))
	for _, kid := range psshBox.KIDs {
		keyIDs = append(keyIDs, hex.EncodeToString(kid))
	}

	return &BoxInfo{
		Version:    int(psshBox.Version),
		SystemID:   systemID,
		KeyIDs:     keyIDs,
		DataLength: len(psshBox.Data),
	}, nil
}

// BuildBox assembles a PSSH box, used to synthesize test fixtures and
// to wrap bare widevine init data.
func BuildBox(systemID string, keyIDs []string, data []byte) ([]byte, error) {
	id, err := uuid.Parse(systemID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid system id")
	}
	version := byte(0)
	if len(keyIDs) > 0 {
		version = 1
	}

	var body bytes.Buffer
	body.Write([]byte{version, 0, 0, 0})
	body.Write(id[:])
	if version == 1 {
		body.Write(uint32Bytes(uint32(len(keyIDs))))
		for _, keyID := range keyIDs {
			kid, err := hex.DecodeString(keyID)
			if err != nil || len(kid) != 16 {
				return nil, errors.Errorf("invalid key id %q", keyID)
			}
			body.Write(kid)
		}
	}
	body.Write(uint32Bytes(uint32(len(data))))
	body.Write(data)

	box := make([]byte, 0, 8+body.Len())
	box = append(box, uint32Bytes(uint32(8+body.Len()))...)
	box = append(box, "pssh"...)
	return append(box, body.Bytes()...), nil
}

func uint32Bytes(v uint32) []byte {
	return binary.BigEndian.AppendUint32(nil, v)
}
