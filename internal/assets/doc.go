// Package assets detects, downloads, and maps embedded discussion assets.
//
// GitHub serves user-uploaded images and videos from
// https://github.com/user-attachments/assets/<id>. The scanner finds such
// references in HTML <img> tags and Markdown image syntax, the downloader
// fetches each unique asset into a local directory, and the resulting
// identifier-to-path map drives the text transformer.
//
// Recognition is an anchored exact-prefix match on scheme, host, and path.
// Substring matching would let a URL on an unrelated host smuggle the
// trusted prefix and receive the bearer token during download.
package assets
