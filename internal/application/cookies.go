package application

import (
	"fmt"
	"log/slog"
	"strings"

	"thirdcoast.systems/mediafetch/internal/config"
	"thirdcoast.systems/mediafetch/pkg/cookievault"
)

// InitCookieVault builds the vault for the configured cookie file. Without a
// key the vault passes plain cookie files through and refuses sealed ones.
func InitCookieVault(conf config.Config) (*cookievault.Vault, error) {
	cipherType := cookievault.CipherType(strings.ToLower(conf.CookiesCipher))
	if cipherType == "" {
		cipherType = cookievault.CipherXChaCha20Poly1305
	}

	vault, err := cookievault.NewFromHex(cipherType, conf.CookiesKey)
	if err != nil {
		return nil, fmt.Errorf("create cookie vault: %w", err)
	}

	slog.Info("Cookie vault ready", "cipher", cipherType, "sealing", conf.CookiesKey != "")
	return vault, nil
}
