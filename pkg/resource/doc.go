// Package resource defines the Resource value stored by the repository and
// the sanitizing rules that turn caller-supplied values into trusted ones.
//
// A Resource is a comparable value type. Callers always hold copies, so
// mutating a returned Resource can never bypass the version-tag protocol.
// The tag changes exactly when Data changes:
//
//	r := resource.New(1, "hello")
//	same := r.UpdateFrom(resource.CreateSanitized(1, r, resource.VersionUseExisting))
//	// same.Tag == r.Tag
//
// The package also provides JSON and XML codecs for the wire shape.
package resource
