// Package ident generates prefixed opaque identifiers such as rsv_* and ttb_*.
package ident

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// New returns a fresh identifier of the form "<prefix>_<32 hex chars>".
func New(prefix string) string {
	u := uuid.New()
	return prefix + "_" + hex.EncodeToString(u[:])
}
