package respond

import (
	"testing"

	"github.com/zdb1357/webserver/internal/connstate"
)

func BenchmarkAssemble_FileOutcome(b *testing.B) {
	mapped := make([]byte, 4096)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var s connstate.State
		s.Outcome = connstate.OutcomeFile
		s.File.Size = int64(len(mapped))
		s.File.MappedPtr = mapped
		s.Req.KeepAlive = true
		if err := Assemble(&s); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAssemble_ErrorOutcome(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var s connstate.State
		s.Outcome = connstate.OutcomeNotFound
		if err := Assemble(&s); err != nil {
			b.Fatal(err)
		}
	}
}
