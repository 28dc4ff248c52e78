// Package resolve decides, for every extracted literal, whether an existing
// catalog key can be reused or a new key must be created, and synthesizes
// collision-free names for new keys.
package resolve
