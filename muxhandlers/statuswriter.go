package muxhandlers

import "net/http"

// statusWriter records the status code written by inner handlers.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (sw *statusWriter) WriteHeader(statusCode int) {
	if sw.wroteHeader {
		return
	}

	sw.wroteHeader = true
	sw.status = statusCode

	sw.ResponseWriter.WriteHeader(statusCode)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if !sw.wroteHeader {
		sw.WriteHeader(http.StatusOK)
	}

	return sw.ResponseWriter.Write(b)
}

// Flush implements http.Flusher when the underlying writer does.
func (sw *statusWriter) Flush() {
	if f, ok := sw.ResponseWriter.(http.Flusher); ok {
		if !sw.wroteHeader {
			sw.WriteHeader(http.StatusOK)
		}
		f.Flush()
	}
}

// Unwrap returns the underlying ResponseWriter for middleware compatibility.
func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// Status returns the written status, or 200 when the handler wrote nothing.
func (sw *statusWriter) Status() int {
	if !sw.wroteHeader {
		return http.StatusOK
	}

	return sw.status
}
