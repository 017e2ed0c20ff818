package httpparse

import (
	"testing"

	"github.com/zdb1357/webserver/internal/connstate"
)

// BenchmarkStep_SingleRequest exercises the full parse path in one Step
// call, the common case where a request arrives in one read(2).
func BenchmarkStep_SingleRequest(b *testing.B) {
	request := "GET /index.html HTTP/1.1\r\nHost: example.com\r\nConnection: keep-alive\r\n\r\n"

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var s connstate.State
		feed(&s, request)
		Step(&s)
	}
}

// BenchmarkStep_ByteAtATime measures the cost of the fully incremental
// path, one byte fed per Step call.
func BenchmarkStep_ByteAtATime(b *testing.B) {
	request := "GET /index.html HTTP/1.1\r\nHost: example.com\r\nConnection: keep-alive\r\n\r\n"

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var s connstate.State
		for j := 0; j < len(request); j++ {
			feed(&s, string(request[j]))
			Step(&s)
		}
	}
}
