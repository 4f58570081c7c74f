// Package mtseal builds MTProto-style encrypted transport frames.
//
// A session.Context holds the shared secret, salt, session id and sequence
// counter of one connection. A protocol.Builder pads, fingerprints and
// encrypts payloads into frames for that context, and a Sender hands the
// frames to a transport such as the QUIC stream in transport/quic.
package mtseal
