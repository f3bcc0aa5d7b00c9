// Package batch runs the label and lean pipeline over many documents.
//
// Each document gets its own run record with a status of ok, error,
// timeout or collision. Documents are processed concurrently up to a worker
// limit, each under its own deadline. Hash collisions are stored together
// with the offending graph so they can be reproduced.
package batch
