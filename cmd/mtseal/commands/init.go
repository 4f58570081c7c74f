package commands

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/TheusHen/mtseal/mtseal/crypto"
	"github.com/TheusHen/mtseal/mtseal/session"
)

func initCmd() *cobra.Command {
	var (
		secretHex string
		roleName  string
		sessionID int64
		salt      int64
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a session state file",
		Long:  "Create a session state file. Without --secret a random 256-byte secret is generated.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			role, err := crypto.ParseRole(roleName)
			if err != nil {
				return err
			}

			var secret []byte
			if secretHex != "" {
				if secret, err = hex.DecodeString(secretHex); err != nil {
					return fmt.Errorf("secret: %w", err)
				}
			} else {
				secret = make([]byte, crypto.AuthKeySize)
				if _, err := rand.Read(secret); err != nil {
					return err
				}
			}
			if sessionID == 0 {
				var b [8]byte
				if _, err := rand.Read(b[:]); err != nil {
					return err
				}
				sessionID = int64(binary.LittleEndian.Uint64(b[:]))
			}

			sc, err := session.NewContext(secret, session.Config{Role: role, SessionID: sessionID, ServerSalt: salt})
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(statePath), 0o700); err != nil {
				return err
			}
			if err := saveContext(sc); err != nil {
				return err
			}
			fmt.Printf("Auth key id: %016x\n", sc.AuthKeyID())
			fmt.Printf("Session id:  %d\n", sc.SessionID())
			return nil
		},
	}
	cmd.Flags().StringVar(&secretHex, "secret", "", "shared secret as hex")
	cmd.Flags().StringVar(&roleName, "role", "initiator", "initiator or responder")
	cmd.Flags().Int64Var(&sessionID, "session-id", 0, "session id (default random)")
	cmd.Flags().Int64Var(&salt, "salt", 0, "server salt")
	return cmd
}
