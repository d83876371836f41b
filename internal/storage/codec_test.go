package storage

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"pwviz/internal/model"
)

func TestDeathIndexCodecRoundTrip(t *testing.T) {
	in := model.DeathIndexRecord{VersionedRecord: Versioned(), RunDir: "/runs/a", LogSize: 42, LogModTime: 1700000000000000000, Deaths: map[int]int{4: 10, 9: 15}}
	data, err := EncodeDeathIndex(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeDeathIndex(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsVersionMismatch(t *testing.T) {
	_, err := DecodeGroupStats([]byte(`{"schema_version":2,"codec_version":1,"key":"k"}`))
	if !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected version mismatch, got %v", err)
	}
	_, err = DecodeDeathIndex([]byte(`{"run_dir":"x"}`))
	if !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected version mismatch for unversioned record, got %v", err)
	}
	if _, err := DecodeDeathIndex([]byte(`{`)); err == nil {
		t.Fatal("expected json error")
	}
}
