package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/service/keyring"
	"github.com/secmon-lab/riskpilot/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Crypto holds the key sealing member API keys at rest
type Crypto struct {
	key string
}

func (x *Crypto) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "encryption-key",
			Usage:       "Hex encoded 32 byte key for API keys at rest",
			Category:    "Security",
			Sources:     cli.EnvVars("RISKPILOT_ENCRYPTION_KEY"),
			Destination: &x.key,
		},
	}
}

func (x Crypto) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("configured", x.key != ""),
	)
}

// Configure returns the keyring. Without a key an ephemeral one is used and
// stored API keys become unreadable after restart.
func (x *Crypto) Configure() (*keyring.Keyring, error) {
	if x.key == "" {
		logging.Default().Warn("--encryption-key is not set, using an ephemeral key")
		k, err := keyring.NewEphemeral()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create ephemeral keyring")
		}
		return k, nil
	}

	k, err := keyring.NewFromHex(x.key)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid --encryption-key", goerr.V(FlagKey, "encryption-key"))
	}
	return k, nil
}
