// Package progressive reads, writes and iterates semi-structured trees
// (map[string]any, []any and scalars) addressed by dot-separated paths.
//
// Supported steps:
//   - `key`            member of a mapping
//   - `[]`             append a new element on write; no identity on read
//   - `[N]`            array position N
//   - `[@field=value]` the array element whose field equals value (string form)
//   - `:name`          every key of a mapping (Walk only; a plain key elsewhere)
//
// A literal dot inside a step is written as the shield token `$#@#`.
//
// A key step applied to a sequence is a weak read: it matches the first
// element holding the key as one of its values. Writes reject it with
// ErrShape.
//
// Predicate lookups can be memoised in a caller-owned HashContext, turning
// repeated scans of the same array into O(1) index hits. Writes that delete
// prune every container left empty along the visited chain and evict the
// cache entries of removed elements.
package progressive
