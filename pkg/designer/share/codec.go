// Package share turns a workflow into a URL-safe token and back.
//
// A token is the CBOR encoding of {states, transitions, roles} written with
// the unpadded URL-safe base64 alphabet, so it never contains '+', '/' or
// '='. Transient editor state (role selection, hidden states) is never part
// of a token.
package share

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/domain"
)

const cborMajorMap = 5

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.EncOptions{NilContainers: cbor.NilContainerAsEmpty}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("share: cbor encode options: %v", err))
	}
	decMode, err = cbor.DecOptions{DupMapKey: cbor.DupMapKeyEnforcedAPF}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("share: cbor decode options: %v", err))
	}
}

// payload pins the serialized field set; adding fields to domain.Workflow
// does not silently change the token format.
type payload struct {
	States      []domain.State      `cbor:"states"`
	Transitions []domain.Transition `cbor:"transitions"`
	Roles       []domain.Role       `cbor:"roles"`
}

// Encode serializes the workflow into a share token.
func Encode(w domain.Workflow) (string, error) {
	data, err := encMode.Marshal(payload{States: w.States, Transitions: w.Transitions, Roles: w.Roles})
	if err != nil {
		return "", fmt.Errorf("encode workflow: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode parses a share token. Any malformed input yields an error wrapping
// domain.ErrDecode. Collections missing from the payload come back empty.
func Decode(token string) (*domain.Workflow, error) {
	data, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(token, "="))
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", domain.ErrDecode, err)
	}
	if len(data) == 0 || data[0]>>5 != cborMajorMap {
		return nil, fmt.Errorf("%w: payload is not a map", domain.ErrDecode)
	}

	var p payload
	if err := decMode.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: cbor: %v", domain.ErrDecode, err)
	}

	w := domain.Workflow{States: p.States, Transitions: p.Transitions, Roles: p.Roles}
	w.Normalize()
	if err := domain.CheckShape(w); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}
	return &w, nil
}
