package ingest

import "net/http"

// MaxBodyBytes caps the size of an ingest request body. A single point
// with generous metadata is a few hundred bytes; the cap only exists to
// stop runaway payloads from tying up the decoder. Import bodies are
// not capped since a re-imported export can be arbitrarily large.
const MaxBodyBytes = 1 << 20 // 1 MiB

// limitBody wraps the request body so reads past MaxBodyBytes fail with
// *http.MaxBytesError.
func limitBody(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
}
