// Package markup defines the markup tree consumed by the compiler and the
// YAML document format templates are stored in.
//
// Trees are immutable once built and may be shared by any number of
// compilations.
package markup
