package main

import (
	"errors"
	"testing"

	"github.com/codegraph-dev/codegraph/pkg/cgerr"
)

func TestExitCodeForMapsErrorCodes(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{cgerr.InvalidArgument("bad depth"), 2},
		{cgerr.IOFailure(errors.New("disk full")), 3},
		{cgerr.CorruptIndex(errors.New("bad magic")), 4},
		{cgerr.NotFound("foo"), 1},
		{errors.New("plain error"), 1},
	}
	for _, c := range cases {
		if got := exitCodeFor(c.err); got != c.want {
			t.Errorf("exitCodeFor(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}
