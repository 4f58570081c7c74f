// Package commands defines the mtseal CLI.
//
// Commands
//
//   - init     Create a session state file from a shared secret
//   - keyid    Print the auth key id of the stored secret
//   - build    Build one encrypted frame and print it as hex
//   - send     Build frames and send them to a QUIC listener
//   - serve    Accept frames over QUIC and log them
//
// Every command that builds frames writes the advanced sequence number back to
// the state file, so consecutive invocations continue one session.
package commands
