package diagram

import (
	"regexp"
	"unicode/utf16"

	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/domain"
)

// Palette is the fixed set of role colors. Role ids hash into it, so the
// same id keeps its color across sessions; collisions are accepted once
// there are more roles than colors.
var Palette = []string{
	"#FF6B35", // sunset orange
	"#004E89", // deep ocean blue
	"#1A936F", // forest green
	"#88498F", // lavender purple
	"#FFBE0B", // golden yellow
	"#FB8500", // amber orange
	"#219EBC", // sky blue
	"#8ECAE6", // powder blue
}

// InaccessibleColor strokes edges no selected role may take.
const InaccessibleColor = "#999999"

var classUnsafe = regexp.MustCompile(`[^a-zA-Z0-9]`)

// roleHash is the 32-bit polynomial hash h = h*31 + c over UTF-16 code
// units, wrapping on overflow, returned as an absolute value.
func roleHash(id string) int64 {
	var h int32
	for _, c := range utf16.Encode([]rune(id)) {
		h = h*31 + int32(c)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}

// RoleColor returns the palette color for a role id.
func RoleColor(roleID string) string {
	if roleID == "" {
		return Palette[0]
	}
	return Palette[roleHash(roleID)%int64(len(Palette))]
}

// RoleColors maps every role of the workflow to its color.
func RoleColors(w domain.Workflow) map[string]string {
	colors := make(map[string]string, len(w.Roles))
	for _, r := range w.Roles {
		colors[r.ID] = RoleColor(r.ID)
	}
	return colors
}

// RoleClassName returns a CSS class name for the role, safe for Mermaid classDef.
func RoleClassName(roleID string) string {
	if roleID == "" {
		return "role-default"
	}
	return "role-" + classUnsafe.ReplaceAllString(roleID, "_")
}
