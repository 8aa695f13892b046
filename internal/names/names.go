package names

import "strings"

// Prefix keeps generated symbols out of the C namespace the program is
// linked against.
const Prefix = "mathic__"

// Display joins a nesting path for humans: ["main", "helper"] is
// "main::helper".
func Display(path []string) string {
	return strings.Join(path, "::")
}

// Symbol returns the backend symbol for the function at path. Nested
// functions keep their parents in the name, so two helpers with the same
// name in different parents do not collide.
//
//	["main"]           -> mathic__main
//	["main", "helper"] -> mathic__main.helper
func Symbol(path []string) string {
	var b strings.Builder
	b.WriteString(Prefix)
	for i, p := range path {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(p)
	}
	return b.String()
}

// Child extends path with name without aliasing path's backing array.
func Child(path []string, name string) []string {
	out := make([]string, 0, len(path)+1)
	out = append(out, path...)
	return append(out, name)
}
