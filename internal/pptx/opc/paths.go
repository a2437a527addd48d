// Package opc implements the Open Packaging Conventions layer of a
// presentation package: part path arithmetic, relationship parts, the
// content-type registry and XML part I/O inside an extracted workspace.
package opc

import (
	"path"
	"strings"
)

// Resolve joins a relationship target against the directory of the part
// that owns the relationship and returns the normalized part path. Absolute
// targets are taken from the package root.
func Resolve(sourcePart, target string) string {
	if strings.HasPrefix(target, "/") {
		return path.Clean(strings.TrimPrefix(target, "/"))
	}

	return path.Clean(path.Join(path.Dir(sourcePart), target))
}

// Relativize returns the target string a relationship owned by sourcePart
// must store to point at destPart.
func Relativize(sourcePart, destPart string) string {
	from := splitPath(path.Dir(sourcePart))
	to := splitPath(path.Clean(destPart))

	common := 0
	for common < len(from) && common < len(to)-1 && from[common] == to[common] {
		common++
	}

	parts := make([]string, 0, len(from)-common+len(to)-common)
	for range from[common:] {
		parts = append(parts, "..")
	}

	parts = append(parts, to[common:]...)

	return strings.Join(parts, "/")
}

// RelsPathFor returns the relationships part path for a part:
// <dir>/_rels/<filename>.rels.
func RelsPathFor(part string) string {
	return path.Join(path.Dir(part), "_rels", path.Base(part)+".rels")
}

// PartName converts a part path to the absolute form used by content-type
// overrides.
func PartName(part string) string {
	return "/" + strings.TrimPrefix(path.Clean(part), "/")
}

func splitPath(p string) []string {
	if p == "." || p == "" || p == "/" {
		return nil
	}

	return strings.Split(strings.Trim(p, "/"), "/")
}
