// Package crypto implements the per-message key schedule of MTProto-style framing.
//
// A message is protected under a long-lived shared secret (the auth key):
//   - the payload is padded with random bytes to a 16-byte boundary
//   - a 16-byte message key is taken from SHA-256 over a role-specific slice of the
//     secret and the padded data
//   - the message key and two more secret slices expand into an AES-256 key and a
//     32-byte IGE initialization vector
//   - the padded data is encrypted with AES-256 in IGE mode
//
// Which slices of the secret are hashed depends on whether the local side initiated
// the session; see Schedule.
package crypto
