// Package signing contains the Signing bounded context.
// It maps the signer roles of a document template to contacts and builds
// the signature request sent to the signing platform.
//
// Key concepts:
//   - Template / SignerRole: a reusable document with the parties that must sign it
//   - Assignment: the role to contact mapping for one template
//   - SubmissionRequest: the validated payload built from a total Assignment
//   - Platform: port interface for the remote signing service
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package signing
