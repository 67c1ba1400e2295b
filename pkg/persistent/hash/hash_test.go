package hash

import (
	"testing"

	"src.elabenv.dev/pkg/tt"
)

func TestDJB(t *testing.T) {
	tt.Test(t, tt.Fn("DJB", DJB), tt.Table{
		tt.Args().Rets(DJBInit),
		tt.Args(uint32(1)).Rets(DJBInit*33 + 1),
		tt.Args(uint32(1), uint32(2)).Rets((DJBInit*33+1)*33 + 2),
	})
}

func TestUInt64(t *testing.T) {
	tt.Test(t, tt.Fn("UInt64", UInt64), tt.Table{
		tt.Args(uint64(0)).Rets(uint32(0)),
		tt.Args(uint64(7)).Rets(uint32(7)),
		tt.Args(uint64(1) << 32).Rets(uint32(33)),
	})
}

func TestString(t *testing.T) {
	if String("foo") != String("foo") {
		t.Errorf("String is not deterministic")
	}
	if String("foo") == String("bar") {
		t.Errorf("String(foo) == String(bar)")
	}
}
