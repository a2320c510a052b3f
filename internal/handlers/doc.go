// Package handlers provides HTTP request handlers for the media manager API.
//
// It includes handlers for:
//   - Listing and triggering task operations
//   - Run history
//   - Snapshot listings per category
//   - Windows filename issues with rename proposals
//   - Health checks and version information
package handlers
