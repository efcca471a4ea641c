package resource

import (
	"strings"

	"github.com/google/uuid"
)

// ReadOnlyData is the server-assigned value of Resource.ReadOnlyData.
// Caller-supplied values for the field are discarded.
const ReadOnlyData = "This is read only data"

// VersionMode controls where CreateSanitized takes the tag from.
type VersionMode int

const (
	// VersionNew generates a fresh tag.
	VersionNew VersionMode = iota
	// VersionUseExisting copies the caller's tag. The copy is only used for
	// comparison against the stored version, never trusted as the final tag.
	VersionUseExisting
)

// String returns the mode name.
func (m VersionMode) String() string {
	switch m {
	case VersionNew:
		return "new"
	case VersionUseExisting:
		return "use-existing"
	default:
		return "unknown"
	}
}

// Resource is one stored item.
type Resource struct {
	Key          int    `json:"key" yaml:"key"`
	Data         string `json:"data" yaml:"data"`
	ReadOnlyData string `json:"readOnlyData" yaml:"readOnlyData"`
	Tag          string `json:"tag" yaml:"tag"`
}

// NewTag returns a fresh opaque version tag.
func NewTag() string {
	return uuid.NewString()
}

// New builds a trusted resource with a fresh tag.
func New(key int, data string) Resource {
	return Resource{
		Key:          key,
		Data:         data,
		ReadOnlyData: ReadOnlyData,
		Tag:          NewTag(),
	}
}

// CreateSanitized builds a trusted resource from an untrusted one. Only Data
// is copied from untrusted; Key comes from the caller of this function and
// ReadOnlyData is always the server constant.
func CreateSanitized(key int, untrusted Resource, mode VersionMode) Resource {
	tag := untrusted.Tag
	if mode == VersionNew {
		tag = NewTag()
	}
	return Resource{
		Key:          key,
		Data:         untrusted.Data,
		ReadOnlyData: ReadOnlyData,
		Tag:          tag,
	}
}

// IsValid reports whether the caller-writable fields are acceptable.
// Key is not checked; callers cannot set it.
func (r Resource) IsValid() bool {
	return strings.TrimSpace(r.Data) != ""
}

// DataChanged reports whether other carries different data.
func (r Resource) DataChanged(other Resource) bool {
	return r.Data != other.Data
}

// IsSameVersion reports whether other carries the same tag.
func (r Resource) IsSameVersion(other Resource) bool {
	return r.Tag == other.Tag
}

// UpdateFrom applies update when it targets the current version, is valid and
// actually changes the data. The result has a fresh tag in that case and is
// r unchanged otherwise, so replaying an applied update is a no-op.
func (r Resource) UpdateFrom(update Resource) Resource {
	if !r.IsSameVersion(update) || !update.IsValid() || !r.DataChanged(update) {
		return r
	}
	r.Data = update.Data
	return r.UpdateVersion()
}

// UpdateVersion returns r with a fresh tag.
func (r Resource) UpdateVersion() Resource {
	r.Tag = NewTag()
	return r
}
