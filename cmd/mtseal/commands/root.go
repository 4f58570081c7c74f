package commands

import (
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/TheusHen/mtseal/mtseal/crypto"
	"github.com/TheusHen/mtseal/mtseal/observability"
	"github.com/TheusHen/mtseal/mtseal/observability/prom"
	"github.com/TheusHen/mtseal/mtseal/protocol"
	"github.com/TheusHen/mtseal/mtseal/session"
)

var (
	statePath   string
	passphrase  string
	sourceName  string
	paddingMode string
	metricsAddr string

	observer observability.FrameObserver = observability.NoopFrameObserver
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "mtseal",
		Short:        "Build MTProto-style encrypted frames",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if statePath == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				statePath = filepath.Join(dir, ".mtseal", "session.state")
			}
			if metricsAddr != "" {
				reg := prom.NewRegistry()
				observer = prom.NewFrameObserver(reg)
				go func() {
					if err := http.ListenAndServe(metricsAddr, prom.Handler(reg)); err != nil {
						log.Printf("metrics: %v", err)
					}
				}()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&statePath, "state", "", "session state file (default ~/.mtseal/session.state)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the state file")
	root.PersistentFlags().StringVar(&sourceName, "source", "plaintext", "message key source: plaintext or ciphertext")
	root.PersistentFlags().StringVar(&paddingMode, "padding", "fixed", "padding length: fixed or random")
	root.PersistentFlags().StringVar(&metricsAddr, "metrics", "", "serve Prometheus metrics on this address")

	root.AddCommand(initCmd(), keyIDCmd(), buildCmd(), sendCmd(), serveCmd())
	return root
}

func requirePassphrase() error {
	if passphrase == "" {
		return errors.New("passphrase required (-p)")
	}
	return nil
}

func loadContext() (*session.Context, error) {
	if err := requirePassphrase(); err != nil {
		return nil, err
	}
	st, err := session.LoadState(statePath, []byte(passphrase))
	if err != nil {
		return nil, err
	}
	return session.Restore(st)
}

func saveContext(sc *session.Context) error {
	return session.SaveState(statePath, []byte(passphrase), sc.State())
}

func builderConfig() (protocol.BuilderConfig, error) {
	cfg := protocol.DefaultBuilderConfig()
	src, err := protocol.ParseFingerprintSource(sourceName)
	if err != nil {
		return cfg, err
	}
	cfg.Source = src
	switch paddingMode {
	case "fixed":
		cfg.Padding.Distribution = crypto.PaddingFixed
	case "random":
		cfg.Padding.Distribution = crypto.PaddingRandom
	default:
		return cfg, errors.New("padding must be fixed or random")
	}
	cfg.Observer = observer
	return cfg, nil
}
