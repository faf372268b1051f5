// Package export assembles a fetched discussion into a single Markdown
// archive and writes it to disk.
//
// The archive layout is fixed: a metadata header, the original post, then
// every comment with its replies, numbered in chronological order. Body
// text is reproduced verbatim except for two normalizations that keep the
// archive well-formed: CRLF line endings become LF, and lines starting
// with '#' are escaped so body headings cannot be mistaken for the
// archive's own structure.
//
// The Service type drives the whole pipeline: fetch, asset download,
// reference rewriting, assembly, and the final file write.
package export
