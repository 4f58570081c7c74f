package commands

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TheusHen/mtseal/mtseal"
	"github.com/TheusHen/mtseal/mtseal/capture"
	"github.com/TheusHen/mtseal/mtseal/transport"
)

// build <message>: print one frame as hex, optionally recording it.
func buildCmd() *cobra.Command {
	var capturePath string
	cmd := &cobra.Command{
		Use:   "build <message>",
		Short: "Build one encrypted frame and print it as hex",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := loadContext()
			if err != nil {
				return err
			}
			cfg, err := builderConfig()
			if err != nil {
				return err
			}

			var out transport.Transport = transport.Func(func(_ context.Context, frame []byte) error {
				fmt.Println(hex.EncodeToString(frame))
				return nil
			})
			var rec *capture.Recorder
			if capturePath != "" {
				f, err := os.Create(capturePath)
				if err != nil {
					return err
				}
				defer f.Close()
				if rec, err = capture.NewRecorder(f, capture.CompressionDefault, out); err != nil {
					return err
				}
				out = rec
			}

			s, err := mtseal.NewSender(sc, out, cfg)
			if err != nil {
				return err
			}
			sendErr := s.Send(cmd.Context(), []byte(args[0]))
			if rec != nil {
				if err := rec.Close(); err != nil && sendErr == nil {
					sendErr = err
				}
			}
			if sendErr != nil {
				return sendErr
			}
			return saveContext(sc)
		},
	}
	cmd.Flags().StringVar(&capturePath, "capture", "", "also write the frame to an LZ4 capture file")
	return cmd
}
