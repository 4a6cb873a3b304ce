package model

import (
	"strings"

	"github.com/google/uuid"
)

// idNamespace scopes every name-based id this tool produces
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/ppiankov/contradicta"))

// StableID returns a name-based UUID over kind and parts, so identical inputs
// always produce identical ids across runs
func StableID(kind string, parts ...string) string {
	name := kind + "\x00" + strings.Join(parts, "\x00")
	return uuid.NewSHA1(idNamespace, []byte(name)).String()
}
