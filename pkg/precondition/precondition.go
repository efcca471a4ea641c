// Package precondition evaluates If-Match and If-None-Match request headers
// against a resource's version tag.
//
// A presented tag matches when it is the wildcard or equals the current tag.
// An absent If-Match header means no precondition was requested.
package precondition

import (
	"net/http"
	"strings"

	"github.com/getmockd/canonrest/pkg/repository"
	"github.com/getmockd/canonrest/pkg/resource"
)

// Wildcard matches any current tag.
const Wildcard = "*"

// Header names.
const (
	HeaderETag        = "ETag"
	HeaderIfMatch     = "If-Match"
	HeaderIfNoneMatch = "If-None-Match"
)

// Quote formats tag as an ETag header value.
func Quote(tag string) string {
	return `"` + tag + `"`
}

// ParseETags splits an entity-tag list. Weak prefixes and quotes are
// stripped and empty entries dropped.
func ParseETags(header string) []string {
	var tags []string
	for len(header) > 0 {
		header = strings.TrimLeft(header, " \t,")
		if header == "" {
			break
		}
		header = strings.TrimPrefix(header, "W/")

		var tag string
		if strings.HasPrefix(header, `"`) {
			end := strings.IndexByte(header[1:], '"')
			if end < 0 {
				tag, header = header[1:], ""
			} else {
				tag, header = header[1:end+1], header[end+2:]
			}
		} else {
			end := strings.IndexByte(header, ',')
			if end < 0 {
				tag, header = header, ""
			} else {
				tag, header = header[:end], header[end:]
			}
		}

		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Matches reports whether any of tags is the wildcard or equals current.
func Matches(tags []string, current string) bool {
	for _, t := range tags {
		if t == Wildcard || t == current {
			return true
		}
	}
	return false
}

func headerTags(h http.Header, name string) []string {
	var tags []string
	for _, v := range h.Values(name) {
		tags = append(tags, ParseETags(v)...)
	}
	return tags
}

// CheckIfMatch returns a PreconditionFailedError when h carries If-Match
// tags and none matches current.
func CheckIfMatch(h http.Header, current resource.Resource) error {
	tags := headerTags(h, HeaderIfMatch)
	if len(tags) == 0 || Matches(tags, current.Tag) {
		return nil
	}
	return &repository.PreconditionFailedError{Key: current.Key, Current: current.Tag}
}

// IfMatchHook adapts CheckIfMatch to a repository hook.
func IfMatchHook(h http.Header) repository.Hook {
	return func(current resource.Resource) error {
		return CheckIfMatch(h, current)
	}
}

// IfNoneMatch reports whether h carries an If-None-Match tag matching
// current, meaning the caller's copy is fresh.
func IfNoneMatch(h http.Header, current resource.Resource) bool {
	return Matches(headerTags(h, HeaderIfNoneMatch), current.Tag)
}
