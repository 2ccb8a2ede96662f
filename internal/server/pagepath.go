package server

import (
	stderrors "errors"
	"strings"
)

// Page path errors.
var (
	ErrBackslashInPath = stderrors.New("path contains backslash")
	ErrNullByteInPath  = stderrors.New("path contains null byte")
	ErrPathEscapesRoot = stderrors.New("path escapes root via ..")
	ErrInvalidPageName = stderrors.New("invalid page name")
)

// canonicalPath normalizes a request path: repeated slashes collapse, "."
// segments drop, ".." pops a segment, and a trailing slash is removed. The
// result starts with "/" and changed reports whether it differs from p.
func canonicalPath(p string) (canonical string, changed bool, err error) {
	if strings.Contains(p, "\\") {
		return "", false, ErrBackslashInPath
	}
	if strings.Contains(p, "\x00") {
		return "", false, ErrNullByteInPath
	}

	var segments []string
	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(segments) == 0 {
				return "", false, ErrPathEscapesRoot
			}
			segments = segments[:len(segments)-1]
		default:
			segments = append(segments, seg)
		}
	}

	canonical = "/" + strings.Join(segments, "/")
	return canonical, canonical != p, nil
}

// pageName maps a canonical path to the document name it renders.
func pageName(canonical string) (string, error) {
	name := strings.TrimPrefix(canonical, "/")
	if name == "" {
		return IndexPage, nil
	}
	for _, seg := range strings.Split(name, "/") {
		if strings.HasPrefix(seg, ".") {
			return "", ErrInvalidPageName
		}
	}
	return name, nil
}
