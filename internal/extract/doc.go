// Package extract turns raw creature-game chat transcripts into name lists.
//
// The pipeline has three stages wired by [Names]:
//
//   - scan: three regex rules over the input (sparkle marker, gender tag,
//     line start), merged into one candidate stream ordered by source offset.
//   - Clean: per-candidate normalization (nickname, note and separator
//     stripping, whitespace collapse). Pure and idempotent.
//   - dedupe: insertion-ordered case-insensitive fold producing the unique
//     name list and the extra-occurrence counts.
//
// Extraction is total: any input string yields a well-formed [Result], never
// an error. All patterns are RE2, so matching stays linear in the input size.
package extract
