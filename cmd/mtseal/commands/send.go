package commands

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/TheusHen/mtseal/mtseal"
)

// send <addr> <message...>: one frame per message over QUIC.
func sendCmd() *cobra.Command {
	var (
		timeout time.Duration
		pinHex  string
	)
	cmd := &cobra.Command{
		Use:   "send <addr> <message>...",
		Short: "Build frames and send them to a QUIC listener",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := loadContext()
			if err != nil {
				return err
			}
			cfg, err := builderConfig()
			if err != nil {
				return err
			}

			pin, err := hex.DecodeString(pinHex)
			if err != nil {
				return fmt.Errorf("pin: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			s, err := mtseal.Dial(ctx, args[0], pin, sc, cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			for _, msg := range args[1:] {
				if err := s.Send(ctx, []byte(msg)); err != nil {
					_ = saveContext(sc)
					return err
				}
			}
			fmt.Printf("sent %d frame(s), next seq %d\n", len(args)-1, sc.SeqNo())
			return saveContext(sc)
		},
	}
	cmd.Flags().StringVar(&pinHex, "pin", "", "SHA-256 of the listener certificate as hex, printed by serve")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "dial and send timeout")
	return cmd
}
