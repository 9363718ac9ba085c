// Package pkgcat provides a catalog indexing and validation engine for
// curated, human-maintained lists of third-party packages. It parses
// loosely structured entries, normalizes them into a strict schema,
// detects duplicate and forked projects, probes their links, and builds
// a deterministic, queryable index together with a report of defects.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their concern or primary dependency (e.g., sqlite/, goquery/, http/).
package pkgcat
