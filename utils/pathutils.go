package utils

import (
	"path/filepath"
	"strings"
)

// SanitizeSlotName turns a user-entered save-slot name into a safe file
// stem: traversal segments, separators and leading dots are stripped so a
// slot can never escape the saves directory.
func SanitizeSlotName(name string) string {
	name = strings.TrimSpace(name)

	// Drop any directory component the UI might sneak in.
	name = filepath.Base(filepath.Clean(name))
	name = strings.ReplaceAll(name, string(filepath.Separator), "_")
	name = strings.ReplaceAll(name, "/", "_")

	// Windows-hostile and hidden-file characters.
	for _, ch := range []string{":", "*", "?", "\"", "<", ">", "|"} {
		name = strings.ReplaceAll(name, ch, "_")
	}
	name = strings.TrimLeft(name, ".")

	if name == "" || name == "_" {
		return "slot"
	}
	return name
}
