// Package workitem contains the Work Item bounded context.
// It turns the semi-structured column data of a work-board item into
// normalized contacts and file references.
//
// Key concepts:
//   - RawItem / Column: an item record as returned by the board platform
//   - ColumnPayload: tagged variant of a column's structured value, one per column type
//   - Extraction: restartable lazy sequences of Contacts and FileReferences
//   - Platform: port interface for the remote work-board service
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package workitem
