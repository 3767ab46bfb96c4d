package crate

import "path"

// IndexPath maps a Name to its index-relative file path, per the Cargo
// registry index layout (spec.md §4.1). The mapping is total, deterministic,
// and byte-exact: downstream tools depend on it.
//
//	len(name) == 1 -> "1/<name>"
//	len(name) == 2 -> "2/<name>"
//	len(name) == 3 -> "3/<first-char>/<name>"
//	len(name) >= 4 -> "<first-2>/<chars-3-4>/<name>"
func IndexPath(n Name) string {
	s := n.s
	switch len(s) {
	case 1:
		return path.Join("1", s)
	case 2:
		return path.Join("2", s)
	case 3:
		return path.Join("3", s[:1], s)
	default:
		return path.Join(s[:2], s[2:4], s)
	}
}
