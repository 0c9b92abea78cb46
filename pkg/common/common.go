package common

import (
	"crypto/sha256"
	"fmt"
	"os"
	"strings"

	"github.com/bwmarrin/snowflake"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var snowflakeNode *snowflake.Node

func init() {
	var err error
	snowflakeNode, err = snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
}

// UUIDint64 generates a snowflake int64 ID.
func UUIDint64() int64 {
	return snowflakeNode.Generate().Int64()
}

// UUIDstr generates a snowflake ID in base58 string form,
// used where a compact opaque identifier is required (sessions, order codes).
func UUIDstr() string {
	return snowflakeNode.Generate().Base58()
}

// GetSecretSalt returns the password salt, overridable by environment.
func GetSecretSalt() string {
	if v := os.Getenv("ORDERPORT_SECRET_SALT"); v != "" {
		return v
	}
	return "orderport-secret"
}

// Sha256HashWithSalt hashes src with the given salt.
func Sha256HashWithSalt(src string, salt string) string {
	h := sha256.New()
	h.Write([]byte(src + salt))
	return fmt.Sprintf("%x", h.Sum(nil))
}

var brlPrinter = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders a value as Brazilian currency text, e.g. "R$ 1.234,56".
func FormatBRL(value float64) string {
	return brlPrinter.Sprintf("R$ %.2f", value)
}

// IsEmptyOrNA reports whether the value carries no information.
func IsEmptyOrNA(val string) bool {
	v := strings.TrimSpace(val)
	return v == "" || strings.EqualFold(v, "n/a")
}
