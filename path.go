package iscab

import "strings"

// normalizePath converts a catalog path to slash-separated form with
// empty segments removed. Dot segments are kept so traversal attempts
// stay visible to fs.ValidPath.
func normalizePath(path string) string {
	path = strings.ReplaceAll(path, `\`, "/")
	path = strings.Trim(path, "/")
	if path == "" {
		return ""
	}

	parts := strings.Split(path, "/")
	kept := parts[:0]
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, "/")
}

// archivePath joins a catalog directory and file name into a
// normalized archive path.
func archivePath(dir, name string) string {
	dir = normalizePath(dir)
	name = normalizePath(name)
	if dir == "" {
		return name
	}
	if name == "" {
		return dir
	}
	return dir + "/" + name
}
