// Package batch drives QR generation over a URL list.
//
// Each non-empty input line is one payload. A payload is encoded once and
// rendered at every configured size; its files are named after the last
// four characters of the URL. A payload that fails at any stage produces no
// files and does not stop the batch.
package batch
