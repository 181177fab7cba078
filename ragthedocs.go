// Package ragthedocs turns a documentation website into a searchable vector
// index. It crawls the site into a local page tree, splits every page into
// bounded sections, embeds them and stores the result for retrieval.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, gemini/).
package ragthedocs
