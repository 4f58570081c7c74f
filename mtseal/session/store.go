package session

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/TheusHen/mtseal/mtseal/crypto"
)

var (
	ErrStateInvalid     = errors.New("session: persisted state invalid")
	ErrStateVersion     = errors.New("session: unsupported persisted state version")
	ErrStateWrongSecret = errors.New("session: wrong passphrase or corrupted state")
)

const (
	stateVersion   = 1
	stateHeaderLen = 1 + 1 + 8 + 8 + 4 + 2
)

var stateAD = []byte("mtseal-session-state-v1")

// State is the resumable part of a Context.
type State struct {
	Role       crypto.Role
	SessionID  int64
	ServerSalt int64
	SeqNo      uint32
	AuthKey    []byte
}

// State snapshots the context for persistence.
func (c *Context) State() State {
	return State{
		Role:       c.role,
		SessionID:  c.sessionID,
		ServerSalt: c.ServerSalt(),
		SeqNo:      c.SeqNo(),
		AuthKey:    append([]byte(nil), c.secret...),
	}
}

// Restore rebuilds a context from a persisted state.
func Restore(st State) (*Context, error) {
	return NewContext(st.AuthKey, Config{
		Role:       st.Role,
		ServerSalt: st.ServerSalt,
		SessionID:  st.SessionID,
		SeqNo:      st.SeqNo,
	})
}

// MarshalBinary encodes the state.
// Format (little endian):
//
//	1 byte: version
//	1 byte: role
//	8 bytes: session id
//	8 bytes: server salt
//	4 bytes: next sequence number
//	2 bytes: auth key length
//	N bytes: auth key
func (st State) MarshalBinary() ([]byte, error) {
	if len(st.AuthKey) == 0 || len(st.AuthKey) > 0xffff {
		return nil, fmt.Errorf("%w: auth key length %d", ErrStateInvalid, len(st.AuthKey))
	}
	out := make([]byte, stateHeaderLen+len(st.AuthKey))
	out[0] = stateVersion
	out[1] = byte(st.Role)
	binary.LittleEndian.PutUint64(out[2:10], uint64(st.SessionID))
	binary.LittleEndian.PutUint64(out[10:18], uint64(st.ServerSalt))
	binary.LittleEndian.PutUint32(out[18:22], st.SeqNo)
	binary.LittleEndian.PutUint16(out[22:24], uint16(len(st.AuthKey)))
	copy(out[stateHeaderLen:], st.AuthKey)
	return out, nil
}

// UnmarshalBinary decodes a state written by MarshalBinary.
func (st *State) UnmarshalBinary(data []byte) error {
	if len(data) < stateHeaderLen {
		return ErrStateInvalid
	}
	if data[0] != stateVersion {
		return fmt.Errorf("%w: %d", ErrStateVersion, data[0])
	}
	keyLen := int(binary.LittleEndian.Uint16(data[22:24]))
	if keyLen == 0 || len(data) != stateHeaderLen+keyLen {
		return ErrStateInvalid
	}
	st.Role = crypto.Role(data[1])
	st.SessionID = int64(binary.LittleEndian.Uint64(data[2:10]))
	st.ServerSalt = int64(binary.LittleEndian.Uint64(data[10:18]))
	st.SeqNo = binary.LittleEndian.Uint32(data[18:22])
	st.AuthKey = append([]byte(nil), data[stateHeaderLen:]...)
	return nil
}

// SealState encrypts the state under a passphrase.
func SealState(passphrase []byte, st State) ([]byte, error) {
	raw, err := st.MarshalBinary()
	if err != nil {
		return nil, err
	}
	defer clear(raw)
	return crypto.SealWithPassphrase(passphrase, raw, stateAD, nil)
}

// OpenState decrypts a state sealed by SealState.
func OpenState(passphrase, sealed []byte) (State, error) {
	raw, err := crypto.OpenWithPassphrase(passphrase, sealed, stateAD)
	if err != nil {
		if errors.Is(err, crypto.ErrDecryptionFailed) {
			return State{}, ErrStateWrongSecret
		}
		return State{}, err
	}
	defer clear(raw)
	var st State
	if err := st.UnmarshalBinary(raw); err != nil {
		return State{}, err
	}
	return st, nil
}

// SaveState seals the state and writes it to path with owner-only permissions.
func SaveState(path string, passphrase []byte, st State) error {
	sealed, err := SealState(passphrase, st)
	if err != nil {
		return err
	}
	return os.WriteFile(path, sealed, 0o600)
}

// LoadState reads and opens a state written by SaveState.
func LoadState(path string, passphrase []byte) (State, error) {
	sealed, err := os.ReadFile(path)
	if err != nil {
		return State{}, err
	}
	return OpenState(passphrase, sealed)
}
