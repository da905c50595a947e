// Package domain defines the core business types for the intake normalizer.
//
// Types in this package are pure value objects with no behavior beyond small
// helpers on their own fields. They are the shared language between the
// ingestion boundary, the normalization core, and the writers/exporters.
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No *sql.DB, no context.Context in struct fields
//   - JSON/DB tags are allowed (they're metadata, not behavior)
//   - Constants and enums belong here
package domain
