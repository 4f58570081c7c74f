package commands

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/TheusHen/mtseal/mtseal/capture"
	"github.com/TheusHen/mtseal/mtseal/protocol"
	"github.com/TheusHen/mtseal/mtseal/transport/quic"
)

// serve <addr>: log the header of every frame received. Frames are not decrypted.
func serveCmd() *cobra.Command {
	var capturePath string
	cmd := &cobra.Command{
		Use:   "serve <addr>",
		Short: "Accept frames over QUIC and log them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ln, err := quic.Listen(args[0])
			if err != nil {
				return err
			}
			defer ln.Close()
			log.Printf("listening on %s, cert sha256 %x", ln.AddrString(), ln.CertHash())

			var rec *capture.Recorder
			if capturePath != "" {
				f, err := os.Create(capturePath)
				if err != nil {
					return err
				}
				defer f.Close()
				if rec, err = capture.NewRecorder(f, capture.CompressionDefault, nil); err != nil {
					return err
				}
				defer rec.Close()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			for {
				conn, err := ln.Accept(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return err
				}
				log.Printf("peer %s connected", conn.RemoteAddr())
				if err := drain(ctx, conn, rec); err != nil && !errors.Is(err, io.EOF) {
					log.Printf("peer %s: %v", conn.RemoteAddr(), err)
				}
				_ = conn.Close()
			}
		},
	}
	cmd.Flags().StringVar(&capturePath, "capture", "", "record received frames to an LZ4 capture file")
	return cmd
}

func drain(ctx context.Context, conn *quic.Conn, rec *capture.Recorder) error {
	for {
		frame, err := conn.Receive(ctx)
		if err != nil {
			return err
		}
		keyID, msgKey, env, err := protocol.DecodeOuter(frame)
		if err != nil {
			log.Printf("bad frame: %v", err)
			continue
		}
		log.Printf("frame key_id=%016x msg_key=%x envelope=%d bytes", keyID, msgKey, len(env))
		if rec != nil {
			if err := rec.Send(ctx, frame); err != nil {
				return err
			}
		}
	}
}
